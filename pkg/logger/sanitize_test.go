package logger_test

import (
	"net/url"
	"testing"

	"github.com/BradenHooton/training-tracker/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"user@example.com", "u***@*******.com"},
		{"a@b.io", "a@*.io"},
		{"trainer@mail.school.org", "t******@****.******.org"},
		{"no-at-sign", "[invalid-email]"},
		{"@example.com", "[invalid-email]"},
		{"x@y@z", "[invalid-email]"},
		{"", "[invalid-email]"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.SanitizedEmail(tt.in))
		})
	}
}

func TestSanitizeQueryString(t *testing.T) {
	got := logger.SanitizeQueryString("courseId=4&email=a@b.com&csrfToken=abc")

	values, err := url.ParseQuery(got)
	require.NoError(t, err)
	assert.Equal(t, "4", values.Get("courseId"))
	assert.Equal(t, "[REDACTED]", values.Get("email"))
	assert.Equal(t, "[REDACTED]", values.Get("csrfToken"))
	assert.NotContains(t, got, "abc")
}

func TestSanitizeQueryString_Empty(t *testing.T) {
	assert.Equal(t, "", logger.SanitizeQueryString(""))
}

func TestSanitizeQueryString_Unparseable(t *testing.T) {
	assert.Equal(t, "[REDACTED]", logger.SanitizeQueryString("password=%zz"))
}

func TestIsSensitiveParam(t *testing.T) {
	assert.True(t, logger.IsSensitiveParam("Password"))
	assert.True(t, logger.IsSensitiveParam("session_token"))
	assert.False(t, logger.IsSensitiveParam("trainerId"))
}

func TestRedactedAttr(t *testing.T) {
	assert.Equal(t, "[REDACTED]", logger.RedactedAttr("k", "v", "production").Value.String())
	assert.Equal(t, "v", logger.RedactedAttr("k", "v", "development").Value.String())
}
