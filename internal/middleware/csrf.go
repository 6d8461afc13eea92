package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/BradenHooton/training-tracker/internal/auth"
	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
	pkglogger "github.com/BradenHooton/training-tracker/pkg/logger"
)

// maxCSRFBodyPeek bounds how much of a JSON body is read while looking for csrfToken
const maxCSRFBodyPeek = 1 << 20

// CSRFProtection rejects state-changing requests whose submitted token does
// not equal the csrf_token cookie. The token is taken from the X-CSRF-Token
// header, or failing that from the csrfToken field of a JSON body. Rejected
// requests never reach the handler.
func CSRFProtection(logger *slog.Logger, auditLogger *pkglogger.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isStateChangingMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			stored := auth.ExtractTokenFromCookieHeader(strings.Join(r.Header.Values("Cookie"), "; "))

			submitted := strings.TrimSpace(r.Header.Get(auth.CSRFHeaderName))
			if submitted == "" {
				submitted = peekBodyToken(r)
			}

			if !auth.ValidateToken(submitted, stored) {
				logger.Warn("CSRF validation failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Bool("cookie_present", stored != ""),
					slog.Bool("token_present", submitted != ""))
				auditLogger.Log(r.Context(), pkglogger.AuditEvent{
					EventType:     pkglogger.EventCSRFRejected,
					IPAddress:     r.RemoteAddr,
					FailureReason: "csrf_mismatch",
				})
				pkghttp.WriteForbidden(w, "Invalid request")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// peekBodyToken reads csrfToken from a JSON body and puts the body back for
// the handler. Anything that is not JSON, or does not parse, yields "".
func peekBodyToken(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return ""
		}
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxCSRFBodyPeek+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}
	if err != nil || len(buf) > maxCSRFBodyPeek {
		return ""
	}

	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.Unmarshal(buf, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.CSRFToken)
}

// isStateChangingMethod checks if the HTTP method modifies state
func isStateChangingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
