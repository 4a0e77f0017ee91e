package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/marketplace/internal/api/metrics"
	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

const (
	// TokenCookie is the cookie carrying the session token for browser clients.
	TokenCookie = "jwt"

	ContextKeyPrincipalID   = "principal_id"
	ContextKeyPrincipalType = "principal_type"
)

var errMissingToken = errors.New("missing authentication token")

// Principal identifies the caller resolved by a guard.
type Principal struct {
	ID   string
	Type domain.PrincipalType
}

type principalKey struct{}

// PrincipalFromContext returns the principal stored by RequireAdmin or RequireUser.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RequireAdmin admits only requests carrying a valid admin token.
func RequireAdmin(v ports.TokenVerifier) echo.MiddlewareFunc {
	return require(v, domain.PrincipalAdmin)
}

// RequireUser admits only requests carrying a valid user token.
func RequireUser(v ports.TokenVerifier) echo.MiddlewareFunc {
	return require(v, domain.PrincipalUser)
}

func require(v ports.TokenVerifier, t domain.PrincipalType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := tokenFromRequest(c)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(t.String(), "missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			claims, err := v.Verify(raw, t)
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues(t.String(), "invalid_token").Inc()
				return err
			}

			p := Principal{ID: claims.PrincipalID, Type: claims.PrincipalType}
			c.Set(ContextKeyPrincipalID, p.ID)
			c.Set(ContextKeyPrincipalType, p.Type)
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), principalKey{}, p)))

			return next(c)
		}
	}
}

// tokenFromRequest prefers the Authorization header and falls back to the cookie.
func tokenFromRequest(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", errors.New("invalid authorization header")
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", errMissingToken
}
