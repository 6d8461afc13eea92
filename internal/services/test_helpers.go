package services

import (
	"context"
	"sync"

	"github.com/BradenHooton/training-tracker/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc       func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	ListFunc          func(ctx context.Context) ([]*models.User, error)
	CreateFunc        func(ctx context.Context, user *models.User) (*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

// MockCourseRepository implements CourseRepository for testing
type MockCourseRepository struct {
	GetByIDFunc func(ctx context.Context, id int64) (*models.Course, error)
	ListFunc    func(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error)
	CreateFunc  func(ctx context.Context, course *models.Course) (*models.Course, error)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockCourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.Course{}, nil
}

func (m *MockCourseRepository) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, course)
	}
	return nil, models.ErrInternalServer
}

// MockEnrollmentRepository implements EnrollmentRepository for testing
type MockEnrollmentRepository struct {
	GetByIDFunc func(ctx context.Context, id int64) (*models.Enrollment, error)
	ListFunc    func(ctx context.Context, filter models.EnrollmentFilter) ([]*models.Enrollment, error)
	CreateFunc  func(ctx context.Context, enrollment *models.Enrollment) (*models.Enrollment, error)
	DeleteFunc  func(ctx context.Context, id int64) error
}

func (m *MockEnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockEnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]*models.Enrollment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.Enrollment{}, nil
}

func (m *MockEnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) (*models.Enrollment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, enrollment)
	}
	return nil, models.ErrInternalServer
}

func (m *MockEnrollmentRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockCredentialVerifier implements CredentialVerifier and counts calls
type MockCredentialVerifier struct {
	VerifyFunc func(plaintext, storedHash string) bool

	mu    sync.Mutex
	calls int
}

func (m *MockCredentialVerifier) Verify(plaintext, storedHash string) bool {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.VerifyFunc != nil {
		return m.VerifyFunc(plaintext, storedHash)
	}
	return false
}

// Calls returns how many times Verify ran
func (m *MockCredentialVerifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockLoginThrottle implements LoginThrottle for testing
type MockLoginThrottle struct {
	RecordFailedAttemptFunc func(ctx context.Context, identifier string) (int, error)
	HasExceededAttemptsFunc func(ctx context.Context, identifier string) (bool, error)
	ResetAttemptsFunc       func(ctx context.Context, identifier string) error
	LockFunc                func(ctx context.Context, identifier string) (func(), error)
}

func (m *MockLoginThrottle) Lock(ctx context.Context, identifier string) (func(), error) {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, identifier)
	}
	return func() {}, nil
}

func (m *MockLoginThrottle) RecordFailedAttempt(ctx context.Context, identifier string) (int, error) {
	if m.RecordFailedAttemptFunc != nil {
		return m.RecordFailedAttemptFunc(ctx, identifier)
	}
	return 2, nil
}

func (m *MockLoginThrottle) HasExceededAttempts(ctx context.Context, identifier string) (bool, error) {
	if m.HasExceededAttemptsFunc != nil {
		return m.HasExceededAttemptsFunc(ctx, identifier)
	}
	return false, nil
}

func (m *MockLoginThrottle) ResetAttempts(ctx context.Context, identifier string) error {
	if m.ResetAttemptsFunc != nil {
		return m.ResetAttemptsFunc(ctx, identifier)
	}
	return nil
}

// MockNotifier records the notifications it is asked to send
type MockNotifier struct {
	Err error

	mu            sync.Mutex
	Confirmations []*models.Enrollment
	Cancellations []*models.Enrollment
}

func (m *MockNotifier) SendBookingConfirmation(_ context.Context, e *models.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirmations = append(m.Confirmations, e)
	return m.Err
}

func (m *MockNotifier) SendBookingCancellation(_ context.Context, e *models.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancellations = append(m.Cancellations, e)
	return m.Err
}
