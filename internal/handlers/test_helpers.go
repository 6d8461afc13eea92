package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/training-tracker/internal/auth"
	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/BradenHooton/training-tracker/internal/services"
	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext attaches session claims for testing signed-in endpoints
func WithSessionContext(req *http.Request, userID, role string) *http.Request {
	claims := &models.SessionClaims{
		UserID: userID,
		Email:  userID + "@example.com",
		Role:   role,
	}
	return req.WithContext(auth.WithSession(req.Context(), claims))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks the status, error code and message of an error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError, expectedMessage string) pkghttp.ErrorResponse {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	if expectedMessage != "" {
		assert.Equal(t, expectedMessage, resp.Message, "Error message mismatch")
	}
	return resp
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc       func(ctx context.Context, email, password string, client services.ClientInfo) (*services.LoginResult, error)
	LogoutFunc      func(ctx context.Context, claims *models.SessionClaims, client services.ClientInfo)
	CurrentUserFunc func(ctx context.Context, claims *models.SessionClaims) (*models.User, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, client services.ClientInfo) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return nil, &models.LoginFailure{RemainingAttempts: 2}
	}
	return m.LoginFunc(ctx, email, password, client)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *models.SessionClaims, client services.ClientInfo) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, claims, client)
	}
}

func (m *MockAuthService) CurrentUser(ctx context.Context, claims *models.SessionClaims) (*models.User, error) {
	if m.CurrentUserFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.CurrentUserFunc(ctx, claims)
}

// MockUserService implements UserService for testing
type MockUserService struct {
	SignupFunc    func(ctx context.Context, in services.SignupInput) (*models.User, error)
	ListUsersFunc func(ctx context.Context) ([]*models.User, error)
}

func (m *MockUserService) Signup(ctx context.Context, in services.SignupInput) (*models.User, error) {
	if m.SignupFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.SignupFunc(ctx, in)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	if m.ListUsersFunc == nil {
		return []*models.User{}, nil
	}
	return m.ListUsersFunc(ctx)
}

// MockCourseService implements CourseService for testing
type MockCourseService struct {
	GetCourseFunc    func(ctx context.Context, id int64) (*models.Course, error)
	ListCoursesFunc  func(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error)
	CreateCourseFunc func(ctx context.Context, actor *models.SessionClaims, in services.CreateCourseInput) (*models.Course, error)
}

func (m *MockCourseService) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	if m.GetCourseFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetCourseFunc(ctx, id)
}

func (m *MockCourseService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	if m.ListCoursesFunc == nil {
		return nil, nil
	}
	return m.ListCoursesFunc(ctx, filter)
}

func (m *MockCourseService) CreateCourse(ctx context.Context, actor *models.SessionClaims, in services.CreateCourseInput) (*models.Course, error) {
	if m.CreateCourseFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateCourseFunc(ctx, actor, in)
}

// MockEnrollmentService implements EnrollmentService for testing
type MockEnrollmentService struct {
	GetEnrollmentFunc   func(ctx context.Context, id int64) (*models.Enrollment, error)
	ListEnrollmentsFunc func(ctx context.Context, filter models.EnrollmentFilter) ([]*models.Enrollment, error)
	EnrollFunc          func(ctx context.Context, actor *models.SessionClaims, userID string, courseID int64) (*models.Enrollment, error)
	CancelFunc          func(ctx context.Context, actor *models.SessionClaims, id int64) error
}

func (m *MockEnrollmentService) GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	if m.GetEnrollmentFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetEnrollmentFunc(ctx, id)
}

func (m *MockEnrollmentService) ListEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]*models.Enrollment, error) {
	if m.ListEnrollmentsFunc == nil {
		return nil, nil
	}
	return m.ListEnrollmentsFunc(ctx, filter)
}

func (m *MockEnrollmentService) Enroll(ctx context.Context, actor *models.SessionClaims, userID string, courseID int64) (*models.Enrollment, error) {
	if m.EnrollFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.EnrollFunc(ctx, actor, userID, courseID)
}

func (m *MockEnrollmentService) Cancel(ctx context.Context, actor *models.SessionClaims, id int64) error {
	if m.CancelFunc == nil {
		return nil
	}
	return m.CancelFunc(ctx, actor, id)
}

// MockCSRFIssuer implements CSRFTokenIssuer for testing
type MockCSRFIssuer struct {
	GenerateTokenFunc func() (string, error)
	Persisted         []string
}

func (m *MockCSRFIssuer) GenerateToken() (string, error) {
	if m.GenerateTokenFunc == nil {
		return "test-csrf-token", nil
	}
	return m.GenerateTokenFunc()
}

func (m *MockCSRFIssuer) PersistToken(w http.ResponseWriter, r *http.Request, token string, maxAge int) {
	m.Persisted = append(m.Persisted, token)
}

func (m *MockCSRFIssuer) MaxAge() int {
	return 3600
}

// MockPinger implements Pinger for testing
type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Err
}
