package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coursehub/marketplace/internal/api/metrics"
	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

type CourseHandler struct {
	courseService ports.CourseService
}

func NewCourseHandler(courseService ports.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// Create adds a course owned by the calling admin.
//
// @Summary      Create a course
// @Tags         course
// @Accept       multipart/form-data
// @Produce      json
// @Security     AdminBearer
// @Param        title        formData  string  true  "Course title"
// @Param        description  formData  string  true  "Course description"
// @Param        price        formData  number  true  "Price"
// @Param        image        formData  file    true  "Thumbnail (png, jpeg or webp)"
// @Success      201  {object}  courseResponse
// @Failure      400  {object}  validationErrorResponse
// @Failure      401  {object}  errorResponse
// @Router       /course/create [post]
func (h *CourseHandler) Create(c echo.Context) error {
	adminID, err := principalID(c)
	if err != nil {
		return err
	}

	var req createCourseRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload()
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return fmt.Errorf("%w: image file is required", domain.ErrInvalidImage)
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	course, err := h.courseService.CreateCourse(c.Request().Context(), adminID, ports.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Image: &ports.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Reader:      f,
		},
	})
	metrics.CourseMutationsTotal.WithLabelValues("create", mutationResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, courseResponse{Message: "course created successfully", Course: course})
}

// Update changes title, description or price of a course the caller owns.
//
// @Summary      Update a course
// @Tags         course
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        courseId  path      string               true  "Course ID"
// @Param        body      body      updateCourseRequest  true  "Fields to change"
// @Success      200  {object}  courseResponse
// @Failure      400  {object}  validationErrorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /course/update/{courseId} [put]
func (h *CourseHandler) Update(c echo.Context) error {
	adminID, err := principalID(c)
	if err != nil {
		return err
	}

	var req updateCourseRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload()
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	course, err := h.courseService.UpdateCourse(c.Request().Context(), adminID, c.Param("courseId"), req.toPatch())
	metrics.CourseMutationsTotal.WithLabelValues("update", mutationResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, courseResponse{Message: "course updated successfully", Course: course})
}

// Delete removes a course the caller owns.
//
// @Summary      Delete a course
// @Tags         course
// @Produce      json
// @Security     AdminBearer
// @Param        courseId  path  string  true  "Course ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /course/delete/{courseId} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	adminID, err := principalID(c)
	if err != nil {
		return err
	}

	err = h.courseService.DeleteCourse(c.Request().Context(), adminID, c.Param("courseId"))
	metrics.CourseMutationsTotal.WithLabelValues("delete", mutationResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "course deleted successfully"})
}

// List returns every course.
//
// @Summary      List courses
// @Tags         course
// @Produce      json
// @Success      200  {object}  courseListResponse
// @Router       /course/courses [get]
func (h *CourseHandler) List(c echo.Context) error {
	courses, err := h.courseService.ListCourses(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, courseListResponse{Courses: courses})
}

// Get returns one course.
//
// @Summary      Course details
// @Tags         course
// @Produce      json
// @Param        courseId  path  string  true  "Course ID"
// @Success      200  {object}  courseResponse
// @Failure      404  {object}  errorResponse
// @Router       /course/{courseId} [get]
func (h *CourseHandler) Get(c echo.Context) error {
	course, err := h.courseService.GetCourse(c.Request().Context(), c.Param("courseId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, courseResponse{Course: course})
}

func mutationResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrCourseNotFound):
		return "not_found"
	default:
		return "error"
	}
}
