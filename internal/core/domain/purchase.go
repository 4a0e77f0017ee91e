package domain

import "time"

// Purchase records that a user owns a course. It is never mutated or deleted.
type Purchase struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
}
