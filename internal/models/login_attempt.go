package models

import "time"

// LoginAttemptRecord tracks consecutive failed logins for one identifier
type LoginAttemptRecord struct {
	Count       int
	LastAttempt time.Time
}

// Expired reports whether the record has fallen outside the attempt window
func (r *LoginAttemptRecord) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(r.LastAttempt) > window
}
