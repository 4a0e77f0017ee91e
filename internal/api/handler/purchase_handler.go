package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/marketplace/internal/api/metrics"
	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

type PurchaseHandler struct {
	purchaseService ports.PurchaseService
}

func NewPurchaseHandler(purchaseService ports.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// Buy records a purchase of the course for the calling user.
//
// @Summary      Buy a course
// @Tags         course
// @Produce      json
// @Security     UserBearer
// @Param        courseId  path  string  true  "Course ID"
// @Success      201  {object}  purchaseResponse
// @Failure      400  {object}  errorResponse  "course already purchased"
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /course/buy/{courseId} [post]
func (h *PurchaseHandler) Buy(c echo.Context) error {
	userID, err := principalID(c)
	if err != nil {
		return err
	}

	p, err := h.purchaseService.Buy(c.Request().Context(), userID, c.Param("courseId"))
	metrics.PurchasesTotal.WithLabelValues(purchaseResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, purchaseResponse{Message: "course purchased successfully", Purchase: p})
}

// Purchased lists the calling user's purchases and the courses they cover.
//
// @Summary      Purchased courses
// @Tags         user
// @Produce      json
// @Security     UserBearer
// @Success      200  {object}  purchasedCoursesResponse
// @Failure      401  {object}  errorResponse
// @Router       /user/purchased-courses [get]
func (h *PurchaseHandler) Purchased(c echo.Context) error {
	userID, err := principalID(c)
	if err != nil {
		return err
	}

	res, err := h.purchaseService.ListPurchases(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, purchasedCoursesResponse{Purchased: res.Purchases, CourseData: res.Courses})
}

func purchaseResult(err error) string {
	switch {
	case err == nil:
		return "purchased"
	case errors.Is(err, domain.ErrAlreadyPurchased):
		return "already_purchased"
	case errors.Is(err, domain.ErrCourseNotFound):
		return "not_found"
	default:
		return "error"
	}
}
