package handler

import (
	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

type signupRequest struct {
	FirstName string `json:"firstName" example:"Jane"`
	LastName  string `json:"lastName" example:"Doe"`
	Email     string `json:"email" example:"jane@x.io"`
	Password  string `json:"password" example:"secret1"`
}

func (r signupRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required" example:"jane@x.io"`
	Password string `json:"password" validate:"required" example:"secret1"`
}

// principalResponse carries either admin or user depending on the route.
type principalResponse struct {
	Message string            `json:"message"`
	Admin   *domain.Principal `json:"admin,omitempty"`
	User    *domain.Principal `json:"user,omitempty"`
	Token   string            `json:"token,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Error  string   `json:"error" example:"validation failed"`
	Errors []string `json:"errors"`
}

type errorResponse struct {
	Error string `json:"error"`
}
