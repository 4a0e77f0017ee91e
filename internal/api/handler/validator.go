package handler

import (
	"github.com/coursehub/marketplace/internal/pkg/validate"
)

// echoValidator lets Echo call c.Validate(req). Failures come back as
// *domain.ValidationError and are rendered by the central error handler.
type echoValidator struct {
	v *validate.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validate.New()}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}
