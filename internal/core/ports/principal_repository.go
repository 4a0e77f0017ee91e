package ports

import (
	"context"

	"github.com/coursehub/marketplace/internal/core/domain"
)

// PrincipalRepository persists admins and users. Each principal type has its
// own collection, so the same email may exist once per type.
type PrincipalRepository interface {
	// FindByEmail returns domain.ErrPrincipalNotFound when no record matches.
	FindByEmail(ctx context.Context, t domain.PrincipalType, email string) (*domain.Principal, error)
	// Create returns domain.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error)
}
