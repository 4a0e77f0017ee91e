package ports

import (
	"context"

	"github.com/coursehub/marketplace/internal/core/domain"
)

// CoursePatch holds the optional fields of a course update. Nil means unchanged.
type CoursePatch struct {
	Title       *string
	Description *string
	Price       *float64
}

// Empty reports whether the patch changes nothing.
func (p CoursePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil
}

// Apply copies the set fields onto c.
func (p CoursePatch) Apply(c *domain.Course) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
}

// CourseRepository persists courses. Malformed IDs are reported as
// domain.ErrCourseNotFound.
type CourseRepository interface {
	Create(ctx context.Context, c *domain.Course) (*domain.Course, error)
	FindByID(ctx context.Context, id string) (*domain.Course, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Course, error)
	List(ctx context.Context) ([]*domain.Course, error)
	// Update and Delete only match a course created by creatorID.
	Update(ctx context.Context, id, creatorID string, patch CoursePatch) (*domain.Course, error)
	Delete(ctx context.Context, id, creatorID string) error
}
