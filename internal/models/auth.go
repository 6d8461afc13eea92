package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the session token issued at login
type SessionClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
