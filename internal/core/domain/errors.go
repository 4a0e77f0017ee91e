package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrPrincipalNotFound  = errors.New("principal not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")
	ErrCourseNotFound     = errors.New("course not found")
	ErrAlreadyPurchased   = errors.New("course already purchased")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrInvalidImage       = errors.New("invalid image")
)

// ValidationError carries every rule a payload violated.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}
