package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/BradenHooton/training-tracker/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapturingAuditLogger() (*logger.AuditLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger.NewAuditLogger(l), &buf
}

func TestAuditLogger_Log_Failure(t *testing.T) {
	al, buf := newCapturingAuditLogger()

	al.Log(context.Background(), logger.AuditEvent{
		EventType:     logger.EventLoginFailure,
		Email:         "student@example.com",
		IPAddress:     "203.0.113.9",
		FailureReason: "invalid_credentials",
		Metadata:      map[string]string{"remaining_attempts": "2"},
	})

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "audit", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "login_failure", record["event_type"])
	assert.Equal(t, "s******@*******.com", record["email"])
	assert.Equal(t, "invalid_credentials", record["failure_reason"])
	assert.Equal(t, "2", record["remaining_attempts"])
	assert.NotContains(t, buf.String(), "student@example.com")
}

func TestAuditLogger_Log_Success(t *testing.T) {
	al, buf := newCapturingAuditLogger()

	al.Log(context.Background(), logger.AuditEvent{
		EventType: logger.EventLoginSuccess,
		UserID:    "u-1",
		Success:   true,
	})

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "u-1", record["user_id"])
	_, hasEmail := record["email"]
	assert.False(t, hasEmail)
}

func TestAuditLogger_NilSafe(t *testing.T) {
	var al *logger.AuditLogger
	assert.NotPanics(t, func() {
		al.Log(context.Background(), logger.AuditEvent{EventType: logger.EventLogout})
	})
}
