package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/BradenHooton/training-tracker/pkg/auth"
	pkglogger "github.com/BradenHooton/training-tracker/pkg/logger"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// SignupInput carries the fields of a new account
type SignupInput struct {
	Username  string
	Email     string
	Password  string
	Firstname string
	Lastname  string
	Role      string
}

// UserService handles user business logic
type UserService struct {
	repo               UserRepository
	allowTrainerSignup bool
	logger             *slog.Logger
	auditLogger        *pkglogger.AuditLogger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, allowTrainerSignup bool, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:               repo,
		allowTrainerSignup: allowTrainerSignup,
		logger:             logger,
		auditLogger:        auditLogger,
	}
}

// CapitalizeName upper-cases the first letter and lower-cases the rest
func CapitalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}

// Signup creates a student account, or a trainer account when self
// registration of trainers is enabled. Password rules failures come back as
// *auth.PasswordValidationError.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	role := strings.ToLower(strings.TrimSpace(in.Role))
	switch role {
	case "":
		role = models.RoleStudent
	case models.RoleStudent:
	case models.RoleTrainer:
		if !s.allowTrainerSignup {
			s.logger.Warn("trainer self-registration rejected")
			return nil, models.ErrForbidden
		}
	default:
		return nil, models.ErrBadRequest
	}

	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, email, username); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Firstname:    CapitalizeName(in.Firstname),
		Lastname:     CapitalizeName(in.Lastname),
		Role:         role,
	})
	if err != nil {
		// A concurrent signup can still win the race past ensureAvailable
		if errors.Is(err, models.ErrEmailTaken) || errors.Is(err, models.ErrUsernameTaken) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID), slog.String("role", user.Role))
	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventSignup,
		UserID:    user.ID,
		Email:     user.Email,
		Success:   true,
	})

	return user, nil
}

// ensureAvailable reports an email clash before a username clash
func (s *UserService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return models.ErrEmailTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email availability", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return models.ErrUsernameTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check username availability", slog.Any("error", err))
		return models.ErrInternalServer
	}

	return nil
}

// ListUsers returns every user
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return users, nil
}

// EnsureTrainer creates the bootstrap trainer account if no account uses
// the email yet. It returns whether an account was created.
func (s *UserService) EnsureTrainer(ctx context.Context, email, password string) (bool, error) {
	email = NormalizeEmail(email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return false, err
	}

	if err := auth.ValidatePassword(password); err != nil {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	username, _, _ := strings.Cut(email, "@")
	user, err := s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Firstname:    "Trainer",
		Lastname:     CapitalizeName(username),
		Role:         models.RoleTrainer,
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("bootstrap trainer created", slog.String("user_id", user.ID))
	return true, nil
}
