package auth

import (
	"testing"
	"time"

	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionSecret = "test-session-secret-at-least-32-bytes"

func testUser() *models.User {
	return &models.User{
		ID:        "0b6f3c1e-7c2a-4c55-9d0e-7d1c3a5b2f10",
		Username:  "jdoe",
		Email:     "jdoe@example.com",
		Firstname: "John",
		Lastname:  "Doe",
		Role:      models.RoleStudent,
	}
}

func TestSessionManager_IssueAndValidate(t *testing.T) {
	sm := NewSessionManager(testSessionSecret, 24*time.Hour)

	token, err := sm.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := sm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "0b6f3c1e-7c2a-4c55-9d0e-7d1c3a5b2f10", claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, claims.UserID, claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestSessionManager_Validate_Expired(t *testing.T) {
	sm := NewSessionManager(testSessionSecret, time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	sm.now = func() time.Time { return issued }

	token, err := sm.Issue(testUser())
	require.NoError(t, err)

	sm.now = time.Now
	_, err = sm.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_Validate_WrongSecret(t *testing.T) {
	token, err := NewSessionManager(testSessionSecret, time.Hour).Issue(testUser())
	require.NoError(t, err)

	_, err = NewSessionManager("another-secret-also-32-bytes-long!!", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_Validate_RejectsNoneAlgorithm(t *testing.T) {
	sm := NewSessionManager(testSessionSecret, time.Hour)

	claims := &models.SessionClaims{
		UserID: "someone",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = sm.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_Validate_WrongIssuer(t *testing.T) {
	sm := NewSessionManager(testSessionSecret, time.Hour)

	claims := &models.SessionClaims{
		UserID: "someone",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSessionSecret))
	require.NoError(t, err)

	_, err = sm.Validate(token)
	assert.Error(t, err)
}

func TestSessionManager_Validate_Garbage(t *testing.T) {
	sm := NewSessionManager(testSessionSecret, time.Hour)

	_, err := sm.Validate("not-a-token")
	assert.Error(t, err)
}
