package models

import "time"

const EnrollmentStatusBooked = "booked"

type Enrollment struct {
	ID        int64        `json:"id"`
	UserID    string       `json:"userId"`
	CourseID  int64        `json:"courseId"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	Course    *Course      `json:"course,omitempty"`
	User      *UserSummary `json:"user,omitempty"`
}

// EnrollmentFilter narrows enrollment listings. Zero values are ignored.
type EnrollmentFilter struct {
	UserID   string
	CourseID int64
}
