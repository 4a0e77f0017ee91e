package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/coursehub/marketplace/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// sessionClaims is the JWT payload: sub carries the principal ID and ptype
// pins the token to the secret it was signed with.
type sessionClaims struct {
	PrincipalType string `json:"ptype"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens. Admin and user
// tokens are signed with different secrets. It holds no mutable state.
type TokenService struct {
	secrets map[domain.PrincipalType][]byte
	ttl     time.Duration
	now     func() time.Time
}

func NewTokenService(adminSecret, userSecret string, ttl time.Duration) (*TokenService, error) {
	if adminSecret == "" || userSecret == "" {
		return nil, errors.New("token service: both secrets are required")
	}
	if adminSecret == userSecret {
		return nil, errors.New("token service: admin and user secrets must differ")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secrets: map[domain.PrincipalType][]byte{
			domain.PrincipalAdmin: []byte(adminSecret),
			domain.PrincipalUser:  []byte(userSecret),
		},
		ttl: ttl,
		now: time.Now,
	}, nil
}

// Issue signs a token for principalID. The returned time is the token expiry.
func (s *TokenService) Issue(principalID string, t domain.PrincipalType) (string, time.Time, error) {
	secret, ok := s.secrets[t]
	if !ok {
		return "", time.Time{}, fmt.Errorf("issue token: unknown principal type %q", t)
	}
	if principalID == "" {
		return "", time.Time{}, errors.New("issue token: empty principal id")
	}

	now := s.now()
	claims := sessionClaims{
		PrincipalType: string(t),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks signature, expiry and principal type. Every failure wraps
// domain.ErrInvalidToken.
func (s *TokenService) Verify(raw string, expected domain.PrincipalType) (*domain.TokenClaims, error) {
	secret, ok := s.secrets[expected]
	if !ok {
		return nil, fmt.Errorf("%w: unknown principal type %q", domain.ErrInvalidToken, expected)
	}

	var claims sessionClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.PrincipalType != string(expected) {
		return nil, fmt.Errorf("%w: token issued for %q", domain.ErrInvalidToken, claims.PrincipalType)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	out := &domain.TokenClaims{
		PrincipalID:   claims.Subject,
		PrincipalType: expected,
		ExpiresAt:     claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
