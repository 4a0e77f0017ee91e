package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

// allowedImageTypes are the content types accepted for course images.
var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

type courseService struct {
	repo    ports.CourseRepository
	images  ports.ImageStore
	cleaner ports.ImageCleaner
	log     zerolog.Logger
}

// NewCourseService returns a CourseService. cleaner may be nil, in which case
// orphaned images are removed synchronously.
func NewCourseService(
	repo ports.CourseRepository,
	images ports.ImageStore,
	cleaner ports.ImageCleaner,
	log zerolog.Logger,
) ports.CourseService {
	s := &courseService{repo: repo, images: images, cleaner: cleaner, log: log}
	if cleaner == nil {
		s.cleaner = syncCleaner{store: images, log: log}
	}
	return s
}

func (s *courseService) CreateCourse(ctx context.Context, adminID string, in ports.CreateCourseInput) (*domain.Course, error) {
	if adminID == "" {
		return nil, domain.ErrForbidden
	}
	if in.Image == nil || in.Image.Reader == nil {
		return nil, fmt.Errorf("%w: image file is required", domain.ErrInvalidImage)
	}
	ct := strings.ToLower(strings.TrimSpace(in.Image.ContentType))
	if !allowedImageTypes[ct] {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidImage, in.Image.ContentType)
	}

	// 1. Store the image first so the course never points at a missing file.
	img, err := s.images.Save(ctx, *in.Image)
	if err != nil {
		return nil, fmt.Errorf("create course: save image: %w", err)
	}

	// 2. Persist; on failure the stored image is orphaned and scheduled for removal.
	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Course{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Image:       img,
		CreatorID:   adminID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.cleaner.Enqueue(img.PublicID)
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.log.Info().Str("course_id", created.ID).Str("admin_id", adminID).Msg("course created")
	return created, nil
}

func (s *courseService) UpdateCourse(ctx context.Context, adminID, courseID string, patch ports.CoursePatch) (*domain.Course, error) {
	course, err := s.ownedCourse(ctx, adminID, courseID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return course, nil
	}

	updated, err := s.repo.Update(ctx, courseID, adminID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update course: %w", err)
	}

	s.log.Info().Str("course_id", courseID).Str("admin_id", adminID).Msg("course updated")
	return updated, nil
}

func (s *courseService) DeleteCourse(ctx context.Context, adminID, courseID string) error {
	course, err := s.ownedCourse(ctx, adminID, courseID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, courseID, adminID); err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return err
		}
		return fmt.Errorf("delete course: %w", err)
	}
	if course.Image.PublicID != "" {
		s.cleaner.Enqueue(course.Image.PublicID)
	}

	s.log.Info().Str("course_id", courseID).Str("admin_id", adminID).Msg("course deleted")
	return nil
}

func (s *courseService) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *courseService) GetCourse(ctx context.Context, courseID string) (*domain.Course, error) {
	course, err := s.repo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

// ownedCourse loads the course and checks that adminID created it.
func (s *courseService) ownedCourse(ctx context.Context, adminID, courseID string) (*domain.Course, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.OwnedBy(adminID) {
		s.log.Warn().Str("course_id", courseID).Str("admin_id", adminID).Msg("course mutation by non-owner rejected")
		return nil, domain.ErrForbidden
	}
	return course, nil
}

type syncCleaner struct {
	store ports.ImageStore
	log   zerolog.Logger
}

func (c syncCleaner) Enqueue(publicID string) {
	if err := c.store.Delete(context.Background(), publicID); err != nil {
		c.log.Warn().Err(err).Str("public_id", publicID).Msg("failed to delete image")
	}
}
