package middleware

import (
	"net/http"
	"time"

	"github.com/BradenHooton/training-tracker/internal/auth"
	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultAuthRateLimit returns default rate limit config for auth endpoints (5 requests per minute)
func DefaultAuthRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 5,
	}
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteTooManyRequests(w, "Too many requests, please try again later")
}

// RateLimitByIP creates a middleware that rate limits requests by client IP.
// The address is RemoteAddr as left by TrustedProxies.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyByIP(),
		httprate.WithLimitHandler(writeRateLimited),
	)
}

// RateLimitBySession limits per signed-in user, falling back to the client
// IP for anonymous requests. Must run after auth.SessionMiddleware.
func RateLimitBySession(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if claims := auth.GetSessionFromContext(r); claims != nil {
				return "user:" + claims.UserID, nil
			}
			ip, err := httprate.KeyByIP(r)
			return "ip:" + ip, err
		}),
		httprate.WithLimitHandler(writeRateLimited),
	)
}
