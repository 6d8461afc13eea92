package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret-32-characters-long!!")
	t.Setenv("DB_PASSWORD", "test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.True(t, cfg.Server.RunMigrations)

	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionExpiry)
	assert.Equal(t, 3600, cfg.Auth.CSRFMaxAge)
	assert.Equal(t, 3, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LoginAttemptWindow)
	assert.Equal(t, ThrottleBackendMemory, cfg.Auth.ThrottleBackend)
	assert.False(t, cfg.Auth.CookieSecure)
	assert.Equal(t, 10, cfg.Auth.LoginRateLimit)
	assert.Equal(t, 5, cfg.Auth.SignupRateLimit)
	assert.Equal(t, 30, cfg.Auth.BookingRateLimit)

	assert.False(t, cfg.Email.Enabled)
	assert.Equal(t, "training_tracker", cfg.Database.Name)
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_READ_TIMEOUT", "30s")
	t.Setenv("LOGIN_ATTEMPT_WINDOW", "10m")
	t.Setenv("MAX_LOGIN_ATTEMPTS", "5")
	t.Setenv("THROTTLE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("EMAIL_ENABLED", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")
	t.Setenv("BOOKING_RATE_LIMIT", "12")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Auth.BookingRateLimit)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Auth.LoginAttemptWindow)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, ThrottleBackendRedis, cfg.Auth.ThrottleBackend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Email.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_EXPIRY", "forever")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionExpiry)
}

func TestLoad_MissingSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DB_PASSWORD", "test")

	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_SECRET is required")
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret-32-characters-long!!")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD is required")
}

func TestLoad_UnknownThrottleBackend(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("THROTTLE_BACKEND", "memcached")

	_, err := Load()
	assert.ErrorContains(t, err, "THROTTLE_BACKEND")
}

func TestLoad_NonPositiveAttempts(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_LOGIN_ATTEMPTS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Server.IsProduction())
}

func TestValidateSessionSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		env     string
		wantErr bool
	}{
		{"dev ok", "sixteen-chars-ok", "development", false},
		{"dev too short", "short", "development", true},
		{"prod needs 32", "sixteen-chars-ok", "production", true},
		{"prod ok", "a-very-long-production-secret-value!", "production", false},
		{"repeated weak word", "secretsecretsecretsecret", "development", true},
		{"repeated weak word upper", "PASSWORDPASSWORD", "development", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSessionSecret(tt.secret, tt.env)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
