package ports

import (
	"context"
	"io"

	"github.com/coursehub/marketplace/internal/core/domain"
)

// ImageUpload is an uploaded image stream with its declared metadata.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type CreateCourseInput struct {
	Title       string
	Description string
	Price       float64
	Image       *ImageUpload
}

type CourseService interface {
	CreateCourse(ctx context.Context, adminID string, in CreateCourseInput) (*domain.Course, error)
	UpdateCourse(ctx context.Context, adminID, courseID string, patch CoursePatch) (*domain.Course, error)
	DeleteCourse(ctx context.Context, adminID, courseID string) error
	ListCourses(ctx context.Context) ([]*domain.Course, error)
	GetCourse(ctx context.Context, courseID string) (*domain.Course, error)
}

// ImageStore saves and removes course images.
type ImageStore interface {
	Save(ctx context.Context, upload ImageUpload) (domain.Image, error)
	Delete(ctx context.Context, publicID string) error
}

// ImageCleaner schedules asynchronous removal of orphaned images.
type ImageCleaner interface {
	Enqueue(publicID string)
}
