package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Login throttling
	ErrRateLimitExceeded = errors.New("too many failed login attempts")

	// Signup conflicts
	ErrEmailTaken    = errors.New("email already in use")
	ErrUsernameTaken = errors.New("username already taken")

	// Booking errors
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
)

// LoginFailure is returned for rejected credentials. It never records whether
// the account exists, only how many attempts remain before the identifier is
// throttled.
type LoginFailure struct {
	RemainingAttempts int
}

func (e *LoginFailure) Error() string {
	return "invalid email or password"
}

func (e *LoginFailure) Unwrap() error {
	return ErrUnauthorized
}
