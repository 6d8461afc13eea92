package models

import "time"

type Course struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        time.Time     `json:"date"`
	Icon        string        `json:"icon"`
	TrainerID   string        `json:"trainerId"`
	CreatedAt   time.Time     `json:"createdAt"`
	Trainer     *UserSummary  `json:"trainer,omitempty"`
	Enrollments []*Enrollment `json:"enrollments,omitempty"`
}

// CourseFilter narrows course listings
type CourseFilter struct {
	TrainerID string
}
