package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coursehub/marketplace/internal/api/middleware"
	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

type stubPurchaseService struct {
	buyFn  func(ctx context.Context, userID, courseID string) (*domain.Purchase, error)
	listFn func(ctx context.Context, userID string) (*ports.PurchasedCourses, error)
}

func (s *stubPurchaseService) Buy(ctx context.Context, userID, courseID string) (*domain.Purchase, error) {
	return s.buyFn(ctx, userID, courseID)
}

func (s *stubPurchaseService) ListPurchases(ctx context.Context, userID string) (*ports.PurchasedCourses, error) {
	return s.listFn(ctx, userID)
}

func TestPurchaseHandler_Buy(t *testing.T) {
	e := newEcho()
	bought := false
	stub := &stubPurchaseService{
		buyFn: func(_ context.Context, userID, courseID string) (*domain.Purchase, error) {
			if bought {
				return nil, domain.ErrAlreadyPurchased
			}
			bought = true
			return &domain.Purchase{ID: "p1", UserID: userID, CourseID: courseID}, nil
		},
	}
	h := NewPurchaseHandler(stub)

	call := func() (*httptest.ResponseRecorder, error) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/course/buy/c1", nil), rec)
		c.Set(middleware.ContextKeyPrincipalID, "user-1")
		c.SetParamNames("courseId")
		c.SetParamValues("c1")
		return rec, h.Buy(c)
	}

	rec, err := call()
	if err != nil || rec.Code != http.StatusCreated {
		t.Fatalf("first buy: err=%v code=%d", err, rec.Code)
	}
	if _, err := call(); !errors.Is(err, domain.ErrAlreadyPurchased) {
		t.Fatalf("expected ErrAlreadyPurchased, got %v", err)
	}
}

func TestPurchaseHandler_Purchased(t *testing.T) {
	e := newEcho()
	stub := &stubPurchaseService{
		listFn: func(_ context.Context, userID string) (*ports.PurchasedCourses, error) {
			return &ports.PurchasedCourses{
				Purchases: []*domain.Purchase{{ID: "p1", UserID: userID, CourseID: "c1"}},
				Courses:   []*domain.Course{{ID: "c1", Title: "Go"}},
			}, nil
		},
	}
	h := NewPurchaseHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/user/purchased-courses", nil), rec)
	c.Set(middleware.ContextKeyPrincipalID, "user-1")
	if err := h.Purchased(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Purchased  []map[string]any `json:"purchased"`
		CourseData []map[string]any `json:"courseData"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Purchased) != 1 || len(resp.CourseData) != 1 || resp.CourseData[0]["title"] != "Go" {
		t.Fatalf("unexpected payload %s", rec.Body.String())
	}
}
