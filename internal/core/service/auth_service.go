package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
	"github.com/coursehub/marketplace/internal/pkg/validate"
)

const (
	passwordHashCost = 10
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

// AuthService implements registration, credential checks and login for both
// principal types.
type AuthService struct {
	repo      ports.PrincipalRepository
	tokens    ports.TokenIssuer
	throttle  ports.LoginThrottle
	validate  *validate.Validator
	log       zerolog.Logger
	dummyHash []byte
}

// NewAuthService returns an AuthService. throttle may be nil, in which case
// login attempts are not limited.
func NewAuthService(
	repo ports.PrincipalRepository,
	tokens ports.TokenIssuer,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) (*AuthService, error) {
	if throttle == nil {
		throttle = noopThrottle{}
	}
	// Compared against when the email is unknown so both failure paths cost one bcrypt run.
	dummy, err := bcrypt.GenerateFromPassword([]byte("coursehub-unknown-principal"), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: dummy hash: %w", err)
	}
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		throttle:  throttle,
		validate:  validate.New(),
		log:       log,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, t domain.PrincipalType, in ports.RegisterInput) (*domain.Principal, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("register: unknown principal type %q", t)
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	// max=72 counts runes; multi-byte passwords can still overflow bcrypt.
	if len(in.Password) > maxPasswordBytes {
		return nil, domain.NewValidationError(fmt.Sprintf("password must be at most %d bytes long", maxPasswordBytes))
	}

	_, err := s.repo.FindByEmail(ctx, t, in.Email)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrPrincipalNotFound):
		return nil, fmt.Errorf("register: lookup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.Principal{
		Type:         t,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("principal_type", t.String()).Str("principal_id", created.ID).Msg("principal registered")
	return created, nil
}

// Authenticate returns domain.ErrInvalidCredentials for both an unknown email
// and a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, t domain.PrincipalType, email, password string) (*domain.Principal, error) {
	p, err := s.repo.FindByEmail(ctx, t, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrPrincipalNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return p, nil
}

func (s *AuthService) Login(ctx context.Context, t domain.PrincipalType, email, password string) (*ports.LoginResult, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("login: unknown principal type %q", t)
	}
	key := throttleKey(t, email)

	// 1. Throttle check. A broken throttle store must not lock everyone out.
	blocked, err := s.throttle.Blocked(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("principal_type", t.String()).Msg("login throttle check failed, continuing")
	} else if blocked {
		return nil, domain.ErrTooManyAttempts
	}

	// 2. Credentials.
	p, err := s.Authenticate(ctx, t, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			if ferr := s.throttle.RecordFailure(ctx, key); ferr != nil {
				s.log.Warn().Err(ferr).Msg("failed to record login failure")
			}
		}
		return nil, err
	}

	if rerr := s.throttle.Reset(ctx, key); rerr != nil {
		s.log.Warn().Err(rerr).Msg("failed to reset login failures")
	}

	// 3. Session token.
	token, exp, err := s.tokens.Issue(p.ID, t)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("principal_type", t.String()).Str("principal_id", p.ID).Msg("login succeeded")
	return &ports.LoginResult{Principal: p, Token: token, ExpiresAt: exp}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func throttleKey(t domain.PrincipalType, email string) string {
	return t.String() + ":" + normalizeEmail(email)
}

type noopThrottle struct{}

func (noopThrottle) Blocked(context.Context, string) (bool, error) { return false, nil }
func (noopThrottle) RecordFailure(context.Context, string) error   { return nil }
func (noopThrottle) Reset(context.Context, string) error           { return nil }
