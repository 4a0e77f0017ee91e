package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/marketplace/internal/api/middleware"
)

// principalID returns the caller resolved by the access guard. An empty value
// means the route was registered without a guard.
func principalID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.ContextKeyPrincipalID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

func errInvalidPayload() error {
	return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
}
