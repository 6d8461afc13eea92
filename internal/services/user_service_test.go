package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/BradenHooton/training-tracker/internal/models"
	pkgauth "github.com/BradenHooton/training-tracker/pkg/auth"
	pkglogger "github.com/BradenHooton/training-tracker/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceForTest(repo UserRepository, allowTrainer bool) *UserService {
	logger := slog.Default()
	return NewUserService(repo, allowTrainer, logger, pkglogger.NewAuditLogger(logger))
}

func validSignup() SignupInput {
	return SignupInput{
		Username:  "jdoe",
		Email:     "JDoe@Example.com",
		Password:  "Str0ng!Pass",
		Firstname: "jOHN",
		Lastname:  "dOE",
	}
}

func echoCreate(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = "new-user"
	user.CreatedAt = time.Now()
	return user, nil
}

func TestCapitalizeName(t *testing.T) {
	tests := map[string]string{
		"jOHN":   "John",
		"doe":    "Doe",
		"X":      "X",
		"":       "",
		" ÉMILE": "Émile",
		"o'NEIL": "O'neil",
	}
	for in, want := range tests {
		assert.Equal(t, want, CapitalizeName(in), "input %q", in)
	}
}

func TestUserService_Signup_Success(t *testing.T) {
	var created *models.User
	repo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			created = user
			return echoCreate(ctx, user)
		},
	}
	svc := newUserServiceForTest(repo, false)

	user, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	assert.Equal(t, "new-user", user.ID)
	assert.Equal(t, "jdoe@example.com", created.Email)
	assert.Equal(t, "John", created.Firstname)
	assert.Equal(t, "Doe", created.Lastname)
	assert.Equal(t, models.RoleStudent, created.Role)
	assert.NotEqual(t, "Str0ng!Pass", created.PasswordHash)
	assert.True(t, pkgauth.VerifyPassword("Str0ng!Pass", created.PasswordHash))
}

func TestUserService_Signup_WeakPassword(t *testing.T) {
	repo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			t.Fatal("Create must not run for a weak password")
			return nil, nil
		},
	}
	svc := newUserServiceForTest(repo, false)

	in := validSignup()
	in.Password = "weakpass"

	_, err := svc.Signup(context.Background(), in)

	var pwErr *pkgauth.PasswordValidationError
	assert.True(t, errors.As(err, &pwErr))
}

func TestUserService_Signup_EmailTaken(t *testing.T) {
	repo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: "existing"}, nil
		},
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: "existing"}, nil
		},
	}
	svc := newUserServiceForTest(repo, false)

	_, err := svc.Signup(context.Background(), validSignup())
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestUserService_Signup_UsernameTaken(t *testing.T) {
	repo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: "existing"}, nil
		},
	}
	svc := newUserServiceForTest(repo, false)

	_, err := svc.Signup(context.Background(), validSignup())
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
}

func TestUserService_Signup_RaceOnInsert(t *testing.T) {
	repo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			return nil, models.ErrUsernameTaken
		},
	}
	svc := newUserServiceForTest(repo, false)

	_, err := svc.Signup(context.Background(), validSignup())
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
}

func TestUserService_Signup_Roles(t *testing.T) {
	repo := &MockUserRepository{CreateFunc: echoCreate}

	t.Run("trainer rejected by default", func(t *testing.T) {
		in := validSignup()
		in.Role = "trainer"
		_, err := newUserServiceForTest(repo, false).Signup(context.Background(), in)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("trainer allowed when enabled", func(t *testing.T) {
		in := validSignup()
		in.Role = "Trainer"
		user, err := newUserServiceForTest(repo, true).Signup(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, models.RoleTrainer, user.Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		in := validSignup()
		in.Role = "admin"
		_, err := newUserServiceForTest(repo, true).Signup(context.Background(), in)
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})
}

func TestUserService_EnsureTrainer(t *testing.T) {
	t.Run("creates when missing", func(t *testing.T) {
		var created *models.User
		repo := &MockUserRepository{
			CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
				created = user
				return echoCreate(ctx, user)
			},
		}

		ok, err := newUserServiceForTest(repo, false).EnsureTrainer(context.Background(), "Coach@Example.com", "Str0ng!Pass")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, models.RoleTrainer, created.Role)
		assert.Equal(t, "coach", created.Username)
	})

	t.Run("skips when present", func(t *testing.T) {
		repo := &MockUserRepository{
			GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
				return &models.User{ID: "u"}, nil
			},
		}

		ok, err := newUserServiceForTest(repo, false).EnsureTrainer(context.Background(), "coach@example.com", "Str0ng!Pass")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestUserService_ListUsers_Error(t *testing.T) {
	repo := &MockUserRepository{
		ListFunc: func(ctx context.Context) ([]*models.User, error) { return nil, errors.New("db down") },
	}

	_, err := newUserServiceForTest(repo, false).ListUsers(context.Background())
	assert.ErrorIs(t, err, models.ErrInternalServer)
}
