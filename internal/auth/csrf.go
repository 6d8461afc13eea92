package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
	"github.com/google/uuid"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"

	// DefaultCSRFMaxAge is the lifetime of the csrf_token cookie in seconds
	DefaultCSRFMaxAge = 3600
)

// CSRFTokenManager implements the double-submit cookie pattern. Tokens are
// not tracked server-side: a request is valid when the token it submits
// equals the one held in its csrf_token cookie.
type CSRFTokenManager struct {
	cookieConfig CookieConfig
	maxAge       int
}

// NewCSRFTokenManager creates a new CSRF token manager
func NewCSRFTokenManager(cookieConfig CookieConfig, maxAge int) *CSRFTokenManager {
	if maxAge <= 0 {
		maxAge = DefaultCSRFMaxAge
	}
	return &CSRFTokenManager{
		cookieConfig: cookieConfig,
		maxAge:       maxAge,
	}
}

// MaxAge returns the default cookie lifetime in seconds
func (m *CSRFTokenManager) MaxAge() int {
	return m.maxAge
}

// GenerateToken returns a random version 4 UUID drawn from crypto/rand
func (m *CSRFTokenManager) GenerateToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return id.String(), nil
}

// PersistToken stores the token in a script-readable csrf_token cookie.
// The Secure attribute is only set when the request arrived over TLS.
func (m *CSRFTokenManager) PersistToken(w http.ResponseWriter, r *http.Request, token string, maxAge int) {
	cfg := m.cookieConfig
	cfg.Secure = cfg.Secure || IsSecureRequest(r)
	SetCSRFTokenCookie(w, token, maxAge, cfg)
}

// ExtractTokenFromCookieHeader returns the csrf_token value from a raw Cookie
// header, or "" when it is absent. Malformed pairs are skipped.
func ExtractTokenFromCookieHeader(header string) string {
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(name) == CSRFCookieName {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// ValidateToken reports whether submitted and stored are both non-empty and equal
func ValidateToken(submitted, stored string) bool {
	if submitted == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
}

// IsSecureRequest reports whether the request was served over an encrypted
// transport. Proxy headers count only once middleware.TrustedProxies has
// vouched for them.
func IsSecureRequest(r *http.Request) bool {
	return pkghttp.IsSecure(r)
}
