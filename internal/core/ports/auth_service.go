package ports

import (
	"context"
	"time"

	"github.com/coursehub/marketplace/internal/core/domain"
)

// RegisterInput is the signup payload shared by admins and users.
type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required,min=3"`
	LastName  string `json:"lastName" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Principal *domain.Principal
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, t domain.PrincipalType, in RegisterInput) (*domain.Principal, error)
	Authenticate(ctx context.Context, t domain.PrincipalType, email, password string) (*domain.Principal, error)
	Login(ctx context.Context, t domain.PrincipalType, email, password string) (*LoginResult, error)
}

// LoginThrottle counts failed logins per key inside a sliding window.
type LoginThrottle interface {
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
