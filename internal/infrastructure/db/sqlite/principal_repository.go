package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/coursehub/marketplace/internal/core/domain"
)

type PrincipalRepository struct {
	db *sql.DB
}

// table maps a principal type to its table. Only these two names ever reach a query.
func table(t domain.PrincipalType) (string, error) {
	switch t {
	case domain.PrincipalAdmin:
		return "admins", nil
	case domain.PrincipalUser:
		return "users", nil
	default:
		return "", fmt.Errorf("unknown principal type %q", t)
	}
}

func (r *PrincipalRepository) Create(ctx context.Context, p *domain.Principal) (*domain.Principal, error) {
	tbl, err := table(p.Type)
	if err != nil {
		return nil, err
	}

	out := *p
	out.ID = uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
INSERT INTO `+tbl+` (id, first_name, last_name, email, password_hash, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		out.ID, out.FirstName, out.LastName, out.Email, out.PasswordHash, formatTime(out.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("sqlite insert %s: %w", p.Type, err)
	}
	return &out, nil
}

func (r *PrincipalRepository) FindByEmail(ctx context.Context, t domain.PrincipalType, email string) (*domain.Principal, error) {
	tbl, err := table(t)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `
SELECT id, first_name, last_name, email, password_hash, created_at
FROM `+tbl+`
WHERE email = ?`, email)

	p := &domain.Principal{Type: t}
	var createdAt string
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("sqlite find %s: %w", t, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return p, nil
}
