package ports

import (
	"time"

	"github.com/coursehub/marketplace/internal/core/domain"
)

type TokenIssuer interface {
	Issue(principalID string, t domain.PrincipalType) (string, time.Time, error)
}

type TokenVerifier interface {
	Verify(token string, expected domain.PrincipalType) (*domain.TokenClaims, error)
}
