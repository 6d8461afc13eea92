package models

import (
	"time"
)

// Roles
const (
	RoleTrainer = "trainer"
	RoleStudent = "student"
)

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // empty when no credential is stored
	Firstname    string
	Lastname     string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is the public projection of a user embedded in course and
// enrollment responses.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email,omitempty"`
}

// Summary returns the user's public projection
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
	}
}
