package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

const courseColumns = `id, title, description, price, image_public_id, image_url, creator_id, created_at, updated_at`

type CourseRepository struct {
	db *sql.DB
}

func scanCourse(row scanner) (*domain.Course, error) {
	var (
		c                    domain.Course
		createdAt, updatedAt string
	)
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Price, &c.Image.PublicID, &c.Image.URL,
		&c.CreatorID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *domain.Course) (*domain.Course, error) {
	out := *c
	out.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO courses (`+courseColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.Title, out.Description, out.Price, out.Image.PublicID, out.Image.URL,
		out.CreatorID, formatTime(out.CreatedAt), formatTime(out.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite insert course: %w", err)
	}
	return &out, nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*domain.Course, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("sqlite find course: %w", err)
	}
	return c, nil
}

func (r *CourseRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Course, error) {
	if len(ids) == 0 {
		return []*domain.Course{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.query(ctx, `SELECT `+courseColumns+` FROM courses WHERE id IN (`+placeholders(len(ids))+`) ORDER BY created_at DESC`, args...)
}

func (r *CourseRepository) List(ctx context.Context) ([]*domain.Course, error) {
	return r.query(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
}

func (r *CourseRepository) query(ctx context.Context, q string, args ...any) ([]*domain.Course, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite query courses: %w", err)
	}
	defer rows.Close()

	out := []*domain.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite scan course: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update applies patch only when the course belongs to creatorID.
func (r *CourseRepository) Update(ctx context.Context, id, creatorID string, patch ports.CoursePatch) (*domain.Course, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	args = append(args, id, creatorID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE courses SET `+strings.Join(sets, ", ")+` WHERE id = ? AND creator_id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite update course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrCourseNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete removes the course only when it belongs to creatorID.
func (r *CourseRepository) Delete(ctx context.Context, id, creatorID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ? AND creator_id = ?`, id, creatorID)
	if err != nil {
		return fmt.Errorf("sqlite delete course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}
