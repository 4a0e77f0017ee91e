package handler

import (
	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
)

// createCourseRequest holds the text fields of the multipart create form.
// The image arrives as the "image" file part.
type createCourseRequest struct {
	Title       string  `form:"title" json:"title" validate:"required,max=200"`
	Description string  `form:"description" json:"description" validate:"required"`
	Price       float64 `form:"price" json:"price" validate:"gte=0"`
}

type updateCourseRequest struct {
	Title       *string  `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string  `json:"description" validate:"omitnil,min=1"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0"`
}

func (r updateCourseRequest) toPatch() ports.CoursePatch {
	return ports.CoursePatch{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
	}
}

type courseResponse struct {
	Message string         `json:"message,omitempty"`
	Course  *domain.Course `json:"course"`
}

type courseListResponse struct {
	Courses []*domain.Course `json:"courses"`
}

type purchaseResponse struct {
	Message  string           `json:"message"`
	Purchase *domain.Purchase `json:"purchase"`
}

type purchasedCoursesResponse struct {
	Purchased  []*domain.Purchase `json:"purchased"`
	CourseData []*domain.Course   `json:"courseData"`
}
