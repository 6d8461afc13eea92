package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

var sensitiveParams = []string{
	"password",
	"token",
	"secret",
	"email",
	"auth",
	"csrf",
	"session",
}

// SanitizedEmail masks an email address for logging (e.g., "u***@*******.com")
func SanitizedEmail(email string) string {
	username, domain, ok := strings.Cut(email, "@")
	if !ok || username == "" || domain == "" || strings.Contains(domain, "@") {
		return "[invalid-email]"
	}

	// Keep the first character of the local part
	if len(username) > 1 {
		username = username[:1] + strings.Repeat("*", len(username)-1)
	}

	// Keep only the TLD of the domain
	labels := strings.Split(domain, ".")
	if len(labels) > 1 {
		for i := 0; i < len(labels)-1; i++ {
			labels[i] = strings.Repeat("*", len(labels[i]))
		}
		domain = strings.Join(labels, ".")
	}

	return username + "@" + domain
}

// RedactedAttr returns a redacted slog attribute for sensitive values
// In production, returns "[REDACTED]"; in development, returns the actual value
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, redacted)
	}
	return slog.String(key, value)
}

// IsSensitiveParam reports whether a query parameter name looks like it
// carries a credential or personal data
func IsSensitiveParam(name string) bool {
	name = strings.ToLower(name)
	for _, p := range sensitiveParams {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// SanitizeQueryString returns rawQuery with the values of sensitive
// parameters replaced. A query that cannot be parsed is redacted whole.
func SanitizeQueryString(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return redacted
	}

	for key := range values {
		if IsSensitiveParam(key) {
			values[key] = []string{redacted}
		}
	}
	return values.Encode()
}
