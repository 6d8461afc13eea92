package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/training-tracker/internal/auth"
	"github.com/BradenHooton/training-tracker/internal/models"
	pkglogger "github.com/BradenHooton/training-tracker/pkg/logger"
)

// CredentialVerifier checks a plaintext password against a stored hash. An
// empty hash must verify as false.
type CredentialVerifier interface {
	Verify(plaintext, storedHash string) bool
}

// LoginThrottle counts failed logins per identifier. Lock serialises logins
// for one identifier so the check and the record of a failure cannot
// interleave with another attempt.
type LoginThrottle interface {
	Lock(ctx context.Context, identifier string) (func(), error)
	RecordFailedAttempt(ctx context.Context, identifier string) (int, error)
	HasExceededAttempts(ctx context.Context, identifier string) (bool, error)
	ResetAttempts(ctx context.Context, identifier string) error
}

// ClientInfo describes the caller for audit records
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// LoginResult is returned by a successful login
type LoginResult struct {
	User         *models.User
	SessionToken string
	ExpiresIn    time.Duration
}

// AuthService handles authentication business logic
type AuthService struct {
	users       UserRepository
	verifier    CredentialVerifier
	throttle    LoginThrottle
	sessions    *auth.SessionManager
	timingDelay *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserRepository,
	verifier CredentialVerifier,
	throttle LoginThrottle,
	sessions *auth.SessionManager,
	timingDelay *auth.TimingDelay,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		users:       users,
		verifier:    verifier,
		throttle:    throttle,
		sessions:    sessions,
		timingDelay: timingDelay,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login authenticates a user. Attempts for one email run one at a time, and
// the throttle is consulted before the account is looked up, and an unknown email is handled exactly like a wrong
// password: both record a failure, both wait out the timing delay, and both
// return *models.LoginFailure.
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*LoginResult, error) {
	start := s.now()

	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.ErrBadRequest
	}

	release, err := s.throttle.Lock(ctx, email)
	if err != nil {
		s.logger.Error("failed to lock login throttle", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	defer release()

	exceeded, err := s.throttle.HasExceededAttempts(ctx, email)
	if err != nil {
		s.logger.Error("failed to read login throttle", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if exceeded {
		s.logger.Info("login throttled", slog.String("email", pkglogger.SanitizedEmail(email)))
		s.auditLogger.Log(ctx, pkglogger.AuditEvent{
			EventType:     pkglogger.EventLoginThrottled,
			Email:         email,
			IPAddress:     client.IPAddress,
			UserAgent:     client.UserAgent,
			FailureReason: "too_many_attempts",
		})
		return nil, models.ErrRateLimitExceeded
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, s.loginFailed(ctx, start, email, "", "invalid_credentials", client)
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !s.verifier.Verify(password, user.PasswordHash) {
		return nil, s.loginFailed(ctx, start, email, user.ID, "invalid_credentials", client)
	}

	if err := s.throttle.ResetAttempts(ctx, email); err != nil {
		// The login itself is valid; a stale counter only expires later
		s.logger.Warn("failed to reset login attempts", slog.Any("error", err))
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		s.logger.Error("failed to issue session", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventLoginSuccess,
		UserID:    user.ID,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		Success:   true,
	})

	return &LoginResult{
		User:         user,
		SessionToken: token,
		ExpiresIn:    s.sessions.Expiry(),
	}, nil
}

// loginFailed records the failure and returns the error to hand back. When
// the throttle store cannot be written the login fails closed.
func (s *AuthService) loginFailed(ctx context.Context, start time.Time, email, userID, reason string, client ClientInfo) error {
	remaining, err := s.throttle.RecordFailedAttempt(ctx, email)
	if err != nil {
		s.logger.Error("failed to record login attempt", slog.Any("error", err))
		s.timingDelay.WaitFrom(start)
		return models.ErrInternalServer
	}

	s.timingDelay.WaitFrom(start)

	s.logger.Info("login failed: invalid credentials")
	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType:     pkglogger.EventLoginFailure,
		UserID:        userID,
		Email:         email,
		IPAddress:     client.IPAddress,
		UserAgent:     client.UserAgent,
		FailureReason: reason,
		Metadata:      map[string]string{"remaining_attempts": strconv.Itoa(remaining)},
	})

	return &models.LoginFailure{RemainingAttempts: remaining}
}

// Logout records the logout. Sessions are stateless, so clearing the cookie
// is left to the caller.
func (s *AuthService) Logout(ctx context.Context, claims *models.SessionClaims, client ClientInfo) {
	event := pkglogger.AuditEvent{
		EventType: pkglogger.EventLogout,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		Success:   true,
	}
	if claims != nil {
		event.UserID = claims.UserID
	}
	s.auditLogger.Log(ctx, event)
}

// CurrentUser loads the user behind a session. A session whose user no
// longer exists is treated as no session.
func (s *AuthService) CurrentUser(ctx context.Context, claims *models.SessionClaims) (*models.User, error) {
	if claims == nil || claims.UserID == "" {
		return nil, models.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to load session user", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}
