package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ThrottleBackendMemory = "memory"
	ThrottleBackendRedis  = "redis"
)

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Email     EmailConfig
	Bootstrap BootstrapConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RunMigrations  bool
}

type AuthConfig struct {
	SessionSecret      string
	SessionExpiry      time.Duration
	CookieDomain       string
	CookieSecure       bool
	CookieSameSite     string
	CSRFMaxAge         int
	MaxLoginAttempts   int
	LoginAttemptWindow time.Duration
	ThrottleBackend    string
	CleanupInterval    time.Duration
	TimingBaseDelayMs  int
	TimingRandomMs     int
	SignupRateLimit    int
	LoginRateLimit     int
	BookingRateLimit   int
	AllowTrainerSignup bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type EmailConfig struct {
	Enabled    bool
	AWSRegion  string
	FromEmail  string
	AppBaseURL string
}

// BootstrapConfig describes the trainer account created on first start
type BootstrapConfig struct {
	TrainerEmail    string
	TrainerPassword string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "training_tracker"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RunMigrations:  getEnvAsBool("RUN_MIGRATIONS", true),
		},
		Auth: AuthConfig{
			SessionSecret:      sessionSecret,
			SessionExpiry:      getEnvAsDuration("SESSION_EXPIRY", 24*time.Hour),
			CookieDomain:       getEnv("COOKIE_DOMAIN", ""),
			CookieSecure:       getEnvAsBool("COOKIE_SECURE", env == "production"),
			CookieSameSite:     strings.ToLower(getEnv("COOKIE_SAMESITE", "lax")),
			CSRFMaxAge:         getEnvAsInt("CSRF_MAX_AGE", 3600),
			MaxLoginAttempts:   getEnvAsInt("MAX_LOGIN_ATTEMPTS", 3),
			LoginAttemptWindow: getEnvAsDuration("LOGIN_ATTEMPT_WINDOW", 30*time.Minute),
			ThrottleBackend:    strings.ToLower(getEnv("THROTTLE_BACKEND", ThrottleBackendMemory)),
			CleanupInterval:    getEnvAsDuration("THROTTLE_CLEANUP_INTERVAL", 10*time.Minute),
			TimingBaseDelayMs:  getEnvAsInt("TIMING_BASE_DELAY_MS", 500),
			TimingRandomMs:     getEnvAsInt("TIMING_RANDOM_DELAY_MS", 100),
			SignupRateLimit:    getEnvAsInt("SIGNUP_RATE_LIMIT", 5),
			LoginRateLimit:     getEnvAsInt("LOGIN_RATE_LIMIT", 10),
			BookingRateLimit:   getEnvAsInt("BOOKING_RATE_LIMIT", 30),
			AllowTrainerSignup: getEnvAsBool("ALLOW_TRAINER_SIGNUP", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Email: EmailConfig{
			Enabled:    getEnvAsBool("EMAIL_ENABLED", false),
			AWSRegion:  getEnv("AWS_REGION", "us-east-1"),
			FromEmail:  getEnv("EMAIL_FROM", "noreply@example.com"),
			AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:3000"),
		},
		Bootstrap: BootstrapConfig{
			TrainerEmail:    getEnv("TRAINER_EMAIL", ""),
			TrainerPassword: getEnv("TRAINER_PASSWORD", ""),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateSessionSecret(sessionSecret, env); err != nil {
		return nil, err
	}

	switch cfg.Auth.ThrottleBackend {
	case ThrottleBackendMemory, ThrottleBackendRedis:
	default:
		return nil, fmt.Errorf("THROTTLE_BACKEND must be %q or %q (got %q)",
			ThrottleBackendMemory, ThrottleBackendRedis, cfg.Auth.ThrottleBackend)
	}

	if cfg.Auth.MaxLoginAttempts <= 0 {
		return nil, fmt.Errorf("MAX_LOGIN_ATTEMPTS must be positive")
	}
	if cfg.Auth.LoginAttemptWindow <= 0 {
		return nil, fmt.Errorf("LOGIN_ATTEMPT_WINDOW must be positive")
	}

	return cfg, nil
}

// validateSessionSecret enforces minimum security standards for the session signing key
func validateSessionSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32 // 256 bits
	}

	if len(secret) < minLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if strings.Repeat(weak, len(secretLower)/len(weak)) == secretLower {
			return fmt.Errorf("SESSION_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// IsProduction reports whether the server runs with ENV=production
func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if origins := getEnvAsList("ALLOWED_ORIGINS"); len(origins) > 0 {
		return origins
	}

	if env == "production" {
		return []string{}
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
