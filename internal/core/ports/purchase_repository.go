package ports

import (
	"context"

	"github.com/coursehub/marketplace/internal/core/domain"
)

// PurchaseRepository is the purchase ledger. Create returns
// domain.ErrAlreadyPurchased when the (user, course) pair already exists.
type PurchaseRepository interface {
	Create(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error)
	FindByUser(ctx context.Context, userID string) ([]*domain.Purchase, error)
}
