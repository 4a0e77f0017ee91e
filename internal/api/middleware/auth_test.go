package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/service"
)

func newTokens(t *testing.T, ttl time.Duration) *service.TokenService {
	t.Helper()
	tokens, err := service.NewTokenService("admin-secret", "user-secret", ttl)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return tokens
}

func issue(t *testing.T, tokens *service.TokenService, id string, pt domain.PrincipalType) string {
	t.Helper()
	token, _, err := tokens.Issue(id, pt)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return token
}

// run executes mw around a handler that records whether it was reached.
func run(mw echo.MiddlewareFunc, req *http.Request) (called bool, c echo.Context, err error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)
	err = mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return called, c, err
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		if he.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", he.Code)
		}
	case errors.Is(err, domain.ErrInvalidToken):
	default:
		t.Fatalf("expected 401 or ErrInvalidToken, got %v", err)
	}
}

func TestRequireAdmin_BearerToken(t *testing.T) {
	tokens := newTokens(t, time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/course/create", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issue(t, tokens, "admin-1", domain.PrincipalAdmin))

	called, c, err := run(RequireAdmin(tokens), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("next not called")
	}
	if c.Get(ContextKeyPrincipalID) != "admin-1" || c.Get(ContextKeyPrincipalType) != domain.PrincipalAdmin {
		t.Errorf("principal not set on echo context: %v %v", c.Get(ContextKeyPrincipalID), c.Get(ContextKeyPrincipalType))
	}
	p, ok := PrincipalFromContext(c.Request().Context())
	if !ok || p.ID != "admin-1" || p.Type != domain.PrincipalAdmin {
		t.Errorf("principal not set on request context: %+v", p)
	}
}

func TestRequireUser_CookieFallback(t *testing.T) {
	tokens := newTokens(t, time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/course/buy/c1", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: issue(t, tokens, "user-1", domain.PrincipalUser)})

	called, c, err := run(RequireUser(tokens), req)
	if err != nil || !called {
		t.Fatalf("expected pass-through, err=%v called=%v", err, called)
	}
	if c.Get(ContextKeyPrincipalID) != "user-1" {
		t.Errorf("unexpected principal %v", c.Get(ContextKeyPrincipalID))
	}
}

func TestRequire_MissingToken(t *testing.T) {
	tokens := newTokens(t, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/user/purchased-courses", nil)

	called, _, err := run(RequireUser(tokens), req)
	if called {
		t.Fatal("next must not be called")
	}
	assertUnauthorized(t, err)
}

func TestRequire_MalformedHeader(t *testing.T) {
	tokens := newTokens(t, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")

	called, _, err := run(RequireUser(tokens), req)
	if called {
		t.Fatal("next must not be called")
	}
	assertUnauthorized(t, err)
}

func TestRequire_WrongPrincipalType(t *testing.T) {
	tokens := newTokens(t, time.Hour)

	userReq := httptest.NewRequest(http.MethodPost, "/course/create", nil)
	userReq.Header.Set(echo.HeaderAuthorization, "Bearer "+issue(t, tokens, "user-1", domain.PrincipalUser))
	called, _, err := run(RequireAdmin(tokens), userReq)
	if called {
		t.Fatal("user token passed admin guard")
	}
	assertUnauthorized(t, err)

	adminReq := httptest.NewRequest(http.MethodPost, "/course/buy/c1", nil)
	adminReq.Header.Set(echo.HeaderAuthorization, "Bearer "+issue(t, tokens, "admin-1", domain.PrincipalAdmin))
	called, _, err = run(RequireUser(tokens), adminReq)
	if called {
		t.Fatal("admin token passed user guard")
	}
	assertUnauthorized(t, err)
}

func TestRequire_ExpiredToken(t *testing.T) {
	// Expiry has second precision.
	tokens := newTokens(t, time.Millisecond)
	token := issue(t, tokens, "user-1", domain.PrincipalUser)
	time.Sleep(1100 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	called, _, err := run(RequireUser(tokens), req)
	if called {
		t.Fatal("expired token passed guard")
	}
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRequire_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	tokens := newTokens(t, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issue(t, tokens, "user-header", domain.PrincipalUser))
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: issue(t, tokens, "user-cookie", domain.PrincipalUser)})

	_, c, err := run(RequireUser(tokens), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Get(ContextKeyPrincipalID) != "user-header" {
		t.Errorf("expected header principal, got %v", c.Get(ContextKeyPrincipalID))
	}
}
