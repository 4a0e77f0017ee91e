package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/coursehub/marketplace/internal/core/service"
	"github.com/coursehub/marketplace/internal/infrastructure/config"
	"github.com/coursehub/marketplace/internal/infrastructure/db/sqlite"
	"github.com/coursehub/marketplace/internal/infrastructure/http/handlers"
	"github.com/coursehub/marketplace/internal/infrastructure/storage"
)

const pngHeader = "\x89PNG\r\n\x1a\n"

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	store, err := sqlite.Open(ctx, sqlite.Config{Path: filepath.Join(dir, "test.sqlite")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := service.NewTokenService("admin-secret", "user-secret", time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	log := zerolog.Nop()
	auth, err := service.NewAuthService(store.Principals, tokens, nil, log)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	images, err := storage.NewLocalImageStore(filepath.Join(dir, "media"), "", 1<<20)
	if err != nil {
		t.Fatalf("image store: %v", err)
	}

	cfg := &config.Config{Env: "development"}
	cfg.Media.Dir = images.Dir()
	cfg.Media.MaxUploadMB = 1
	cfg.HTTP.CORSOrigins = []string{"http://localhost:5173"}

	reg := prometheus.NewRegistry()
	return NewRouter(Dependencies{
		Config:     cfg,
		Auth:       auth,
		Tokens:     tokens,
		Courses:    service.NewCourseService(store.Courses, images, nil, log),
		Purchases:  service.NewPurchaseService(store.Purchases, store.Courses, log),
		Checks:     map[string]handlers.Check{"sqlite": store.Ping},
		Logger:     log,
		Registerer: reg,
		Gatherer:   reg,
	})
}

func do(t *testing.T, e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return m
}

// signupAndLogin registers a principal under kind ("admin" or "user") and returns its token.
func signupAndLogin(t *testing.T, e *echo.Echo, kind, email string) string {
	t.Helper()
	body := `{"firstName":"Jane","lastName":"Doe","email":"` + email + `","password":"secret1"}`
	if rec := do(t, e, http.MethodPost, "/api/v1/"+kind+"/signup", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("%s signup: %d %s", kind, rec.Code, rec.Body.String())
	}
	rec := do(t, e, http.MethodPost, "/api/v1/"+kind+"/login", `{"email":"`+email+`","password":"secret1"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("%s login: %d %s", kind, rec.Code, rec.Body.String())
	}
	token, _ := decode(t, rec)["token"].(string)
	if token == "" {
		t.Fatalf("%s login returned no token", kind)
	}
	return token
}

func createCourse(t *testing.T, e *echo.Echo, token, title string) string {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("title", title)
	_ = w.WriteField("description", "learn things")
	_ = w.WriteField("price", "19.5")
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="cover.png"`)
	hdr.Set("Content-Type", "image/png")
	part, _ := w.CreatePart(hdr)
	_, _ = part.Write([]byte(pngHeader + "rest-of-image"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/course/create", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create course: %d %s", rec.Code, rec.Body.String())
	}
	course, _ := decode(t, rec)["course"].(map[string]any)
	id, _ := course["id"].(string)
	if id == "" {
		t.Fatalf("create course returned no id: %s", rec.Body.String())
	}
	return id
}

func TestRouter_SignupLoginExample(t *testing.T) {
	e := newTestRouter(t)

	rec := do(t, e, http.MethodPost, "/api/v1/user/signup",
		`{"firstName":"Jane","lastName":"Doe","email":"jane@x.io","password":"secret1"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "secret1") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("secret leaked: %s", rec.Body.String())
	}

	rec = do(t, e, http.MethodPost, "/api/v1/user/login", `{"email":"jane@x.io","password":"secret1"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	if tok, _ := decode(t, rec)["token"].(string); tok == "" {
		t.Fatal("login returned no token")
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Fatal("login must set the session cookie")
	}

	rec = do(t, e, http.MethodPost, "/api/v1/user/login", `{"email":"jane@x.io","password":"wrong"}`, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong password: expected 403, got %d", rec.Code)
	}

	rec = do(t, e, http.MethodPost, "/api/v1/user/signup",
		`{"firstName":"Jane","lastName":"Doe","email":"jane@x.io","password":"secret1"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate signup: expected 400, got %d", rec.Code)
	}

	rec = do(t, e, http.MethodPost, "/api/v1/user/signup",
		`{"firstName":"Jo","lastName":"Doe","email":"jo@x.io","password":"123"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid signup: expected 400, got %d", rec.Code)
	}
	if errs, _ := decode(t, rec)["errors"].([]any); len(errs) != 2 {
		t.Fatalf("expected firstName and password violations, got %v", errs)
	}
}

func TestRouter_CourseOwnershipAndPurchases(t *testing.T) {
	e := newTestRouter(t)

	owner := signupAndLogin(t, e, "admin", "owner@x.io")
	other := signupAndLogin(t, e, "admin", "other@x.io")
	buyer := signupAndLogin(t, e, "user", "buyer@x.io")

	courseID := createCourse(t, e, owner, "Go 101")

	// Guards.
	if rec := do(t, e, http.MethodPut, "/api/v1/course/update/"+courseID, `{"price":1}`, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPut, "/api/v1/course/update/"+courseID, `{"price":1}`, buyer); rec.Code != http.StatusUnauthorized {
		t.Fatalf("user token on admin route: expected 401, got %d", rec.Code)
	}

	// Ownership.
	if rec := do(t, e, http.MethodPut, "/api/v1/course/update/"+courseID, `{"title":"Hijacked"}`, other); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign admin: expected 403, got %d", rec.Code)
	}
	rec := do(t, e, http.MethodGet, "/api/v1/course/"+courseID, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get course: %d", rec.Code)
	}
	if c, _ := decode(t, rec)["course"].(map[string]any); c["title"] != "Go 101" {
		t.Fatalf("course changed by foreign admin: %v", c)
	}
	if rec := do(t, e, http.MethodPut, "/api/v1/course/update/"+courseID, `{"title":"Go 102"}`, owner); rec.Code != http.StatusOK {
		t.Fatalf("owner update: %d %s", rec.Code, rec.Body.String())
	}

	// Purchases.
	if rec := do(t, e, http.MethodPost, "/api/v1/course/buy/"+courseID, "", owner); rec.Code != http.StatusUnauthorized {
		t.Fatalf("admin token on user route: expected 401, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodPost, "/api/v1/course/buy/"+courseID, "", buyer); rec.Code != http.StatusCreated {
		t.Fatalf("first buy: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, e, http.MethodPost, "/api/v1/course/buy/"+courseID, "", buyer)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "course already purchased" {
		t.Fatalf("second buy: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, e, http.MethodPost, "/api/v1/course/buy/missing", "", buyer); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown course: expected 404, got %d", rec.Code)
	}

	rec = do(t, e, http.MethodGet, "/api/v1/user/purchased-courses", "", buyer)
	if rec.Code != http.StatusOK {
		t.Fatalf("purchased-courses: %d", rec.Code)
	}
	body := decode(t, rec)
	purchased, _ := body["purchased"].([]any)
	courseData, _ := body["courseData"].([]any)
	if len(purchased) != 1 || len(courseData) != 1 {
		t.Fatalf("expected exactly one purchase, got %s", rec.Body.String())
	}

	// Delete.
	if rec := do(t, e, http.MethodDelete, "/api/v1/course/delete/"+courseID, "", other); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: expected 403, got %d", rec.Code)
	}
	if rec := do(t, e, http.MethodDelete, "/api/v1/course/delete/"+courseID, "", owner); rec.Code != http.StatusOK {
		t.Fatalf("owner delete: %d", rec.Code)
	}
	if rec := do(t, e, http.MethodGet, "/api/v1/course/"+courseID, "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted course: expected 404, got %d", rec.Code)
	}
}

func TestRouter_LogoutAndProbes(t *testing.T) {
	e := newTestRouter(t)

	if rec := do(t, e, http.MethodGet, "/api/v1/admin/logout", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("logout without cookie: expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/logout", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "anything"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout with cookie: expected 200, got %d", rec.Code)
	}

	if rec := do(t, e, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness: %d", rec.Code)
	}
	if rec := do(t, e, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("readiness: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, e, http.MethodGet, "/api/v1/course/courses", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("list courses: %d", rec.Code)
	}
	rec = do(t, e, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "coursehub_http_requests_total") {
		t.Fatalf("metrics: %d", rec.Code)
	}
}
