package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

type purchaseService struct {
	purchases ports.PurchaseRepository
	courses   ports.CourseRepository
	log       zerolog.Logger
}

// NewPurchaseService returns a PurchaseService backed by the purchase ledger.
func NewPurchaseService(purchases ports.PurchaseRepository, courses ports.CourseRepository, log zerolog.Logger) ports.PurchaseService {
	return &purchaseService{purchases: purchases, courses: courses, log: log}
}

// Buy records the purchase. Uniqueness of (user, course) is decided by the
// store alone; a second buy yields domain.ErrAlreadyPurchased.
func (s *purchaseService) Buy(ctx context.Context, userID, courseID string) (*domain.Purchase, error) {
	if userID == "" {
		return nil, domain.ErrForbidden
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("buy: find course: %w", err)
	}

	p, err := s.purchases.Create(ctx, &domain.Purchase{
		UserID:    userID,
		CourseID:  course.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyPurchased) {
			s.log.Debug().Str("user_id", userID).Str("course_id", courseID).Msg("repeat purchase rejected")
			return nil, err
		}
		return nil, fmt.Errorf("buy: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("course_id", course.ID).Msg("course purchased")
	return p, nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, userID string) (*ports.PurchasedCourses, error) {
	purchases, err := s.purchases.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	if purchases == nil {
		purchases = []*domain.Purchase{}
	}
	out := &ports.PurchasedCourses{
		Purchases: purchases,
		Courses:   []*domain.Course{},
	}
	if len(purchases) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.CourseID)
	}
	courses, err := s.courses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list purchases: courses: %w", err)
	}
	out.Courses = courses
	return out, nil
}
