package ports

import (
	"context"

	"github.com/coursehub/marketplace/internal/core/domain"
)

// PurchasedCourses pairs a user's purchases with the courses they reference.
type PurchasedCourses struct {
	Purchases []*domain.Purchase
	Courses   []*domain.Course
}

type PurchaseService interface {
	Buy(ctx context.Context, userID, courseID string) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, userID string) (*PurchasedCourses, error)
}
