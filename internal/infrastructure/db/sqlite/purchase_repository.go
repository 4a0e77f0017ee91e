package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/coursehub/marketplace/internal/core/domain"
)

// PurchaseRepository relies on UNIQUE(user_id, course_id) to reject repeat purchases.
type PurchaseRepository struct {
	db *sql.DB
}

func (r *PurchaseRepository) Create(ctx context.Context, p *domain.Purchase) (*domain.Purchase, error) {
	out := *p
	out.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO purchases (id, user_id, course_id, created_at)
VALUES (?, ?, ?, ?)`,
		out.ID, out.UserID, out.CourseID, formatTime(out.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyPurchased
		}
		return nil, fmt.Errorf("sqlite insert purchase: %w", err)
	}
	return &out, nil
}

func (r *PurchaseRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Purchase, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, course_id, created_at
FROM purchases
WHERE user_id = ?
ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite query purchases: %w", err)
	}
	defer rows.Close()

	out := []*domain.Purchase{}
	for rows.Next() {
		var (
			p         domain.Purchase
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.CourseID, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite scan purchase: %w", err)
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
