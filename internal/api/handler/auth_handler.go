package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/marketplace/internal/api/metrics"
	"github.com/coursehub/marketplace/internal/api/middleware"
	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

// AuthHandler serves signup, login and logout for one principal type.
type AuthHandler struct {
	authService   ports.AuthService
	principalType domain.PrincipalType
	secureCookies bool
}

func NewAuthHandler(authService ports.AuthService, t domain.PrincipalType, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, principalType: t, secureCookies: secureCookies}
}

func (h *AuthHandler) respond(message string, p *domain.Principal, token string) principalResponse {
	resp := principalResponse{Message: message, Token: token}
	if h.principalType == domain.PrincipalAdmin {
		resp.Admin = p
	} else {
		resp.User = p
	}
	return resp
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	}
}

// Signup creates an admin or user account.
//
// @Summary      Sign up
// @Tags         admin, user
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  principalResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      500   {object}  errorResponse
// @Router       /admin/signup [post]
// @Router       /user/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload()
	}

	p, err := h.authService.Register(c.Request().Context(), h.principalType, req.toInput())
	metrics.SignupsTotal.WithLabelValues(h.principalType.String(), signupResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, h.respond("signup succeeded", p, ""))
}

// Login authenticates an admin or user, returns the token and sets it as a cookie.
//
// @Summary      Log in
// @Tags         admin, user
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      201   {object}  principalResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      403   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /admin/login [post]
// @Router       /user/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload()
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), h.principalType, req.Email, req.Password)
	metrics.LoginsTotal.WithLabelValues(h.principalType.String(), loginResult(err)).Inc()
	if err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie(res.Token, res.ExpiresAt))
	return c.JSON(http.StatusCreated, h.respond("login successful", res.Principal, res.Token))
}

// Logout clears the session cookie.
//
// @Summary      Log out
// @Tags         admin, user
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /admin/logout [get]
// @Router       /user/logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(middleware.TokenCookie)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "kindly login first")
	}

	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	c.SetCookie(expired)
	return c.JSON(http.StatusOK, messageResponse{Message: "logged out successfully"})
}

func signupResult(err error) string {
	var ve *domain.ValidationError
	switch {
	case err == nil:
		return "created"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	default:
		return "error"
	}
}
