package auth

import (
	"fmt"
	"time"

	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionIssuer = "training-tracker"

// SessionManager issues and validates the signed session tokens carried in
// the session_token cookie.
type SessionManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(secret string, expiry time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Expiry returns the session lifetime
func (sm *SessionManager) Expiry() time.Duration {
	return sm.expiry
}

// Issue creates a session token for the user
func (sm *SessionManager) Issue(user *models.User) (string, error) {
	now := sm.now()

	claims := &models.SessionClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    sessionIssuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(sm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(sm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Validate verifies a session token and returns its claims
func (sm *SessionManager) Validate(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return sm.secret, nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithTimeFunc(sm.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}
