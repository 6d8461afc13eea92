package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BradenHooton/training-tracker/internal/models"
	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing session claims in context
	SessionContextKey contextKey = "session"
)

// SessionMiddleware loads the session, when one is present and valid, into
// the request context. Requests without a session pass through unchanged;
// RequireSession decides whether that is acceptable.
func SessionMiddleware(sm *SessionManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := sessionTokenFromRequest(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := sm.Validate(tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionTokenFromRequest reads the session cookie, falling back to a Bearer header
func sessionTokenFromRequest(r *http.Request) string {
	if token, err := GetSessionCookie(r); err == nil && token != "" {
		return token
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireSession rejects requests that carry no valid session
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSessionFromContext(r) == nil {
			pkghttp.WriteUnauthorized(w, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole creates a middleware that enforces role-based access control.
// Must run after SessionMiddleware.
func RequireRole(role string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetSessionFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}

			if claims.Role != role {
				pkghttp.WriteForbidden(w, "Forbidden: insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts session claims from request context
func GetSessionFromContext(r *http.Request) *models.SessionClaims {
	return SessionFromContext(r.Context())
}

// SessionFromContext extracts session claims from a context
func SessionFromContext(ctx context.Context) *models.SessionClaims {
	claims, ok := ctx.Value(SessionContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithSession returns a copy of ctx carrying claims
func WithSession(ctx context.Context, claims *models.SessionClaims) context.Context {
	return context.WithValue(ctx, SessionContextKey, claims)
}
