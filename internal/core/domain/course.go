package domain

import "time"

// Image points at a stored course thumbnail.
type Image struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
}

// Course is a catalog item owned by the admin that created it.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       Image     `json:"image"`
	CreatorID   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OwnedBy reports whether adminID created the course.
func (c *Course) OwnedBy(adminID string) bool {
	return adminID != "" && c.CreatorID == adminID
}
