package validate

import (
	"errors"
	"testing"

	"github.com/coursehub/marketplace/internal/core/domain"
)

type signup struct {
	FirstName string `json:"firstName" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
}

type patch struct {
	Title *string  `json:"title" validate:"omitnil,min=1"`
	Price *float64 `json:"price" validate:"omitnil,gte=0"`
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	err := v.Struct(signup{FirstName: "Jane", Email: "jane@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_ListsEveryViolation(t *testing.T) {
	v := New()
	err := v.Struct(signup{FirstName: "Jo", Email: "nope", Password: "123"})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %T (%v)", err, err)
	}

	want := []string{
		"firstName must be at least 3 characters long",
		"email must be a valid email",
		"password must be at least 6 characters long",
	}
	if len(ve.Violations) != len(want) {
		t.Fatalf("expected %d violations, got %v", len(want), ve.Violations)
	}
	for i, msg := range want {
		if ve.Violations[i] != msg {
			t.Errorf("violation %d: expected %q, got %q", i, msg, ve.Violations[i])
		}
	}
}

func TestStruct_NilPointersAreSkipped(t *testing.T) {
	v := New()
	if err := v.Struct(patch{}); err != nil {
		t.Fatalf("empty patch should be valid, got %v", err)
	}

	neg := -1.0
	err := v.Struct(patch{Price: &neg})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %v", err)
	}
	if ve.Violations[0] != "price must be greater than or equal to 0" {
		t.Errorf("unexpected message %q", ve.Violations[0])
	}
}
