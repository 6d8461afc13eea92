package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BradenHooton/training-tracker/internal/auth"
	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/BradenHooton/training-tracker/internal/services"
	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string, client services.ClientInfo) (*services.LoginResult, error)
	Logout(ctx context.Context, claims *models.SessionClaims, client services.ClientInfo)
	CurrentUser(ctx context.Context, claims *models.SessionClaims) (*models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service      AuthServiceInterface
	ipConfig     *pkghttp.IPConfig
	cookieConfig auth.CookieConfig
	logger       *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig, cookieConfig auth.CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		ipConfig:     ipConfig,
		cookieConfig: cookieConfig,
		logger:       logger,
	}
}

// LoginRequest represents the request body for login. csrfToken is
// consumed by the CSRF middleware before the handler runs.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	CSRFToken string `json:"csrfToken,omitempty"`
}

const invalidCredentialsMessage = "Invalid email or password. If you don't have an account, please sign up."

// Login handles user login
// @Summary User login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /api/auth [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		pkghttp.WriteBadRequest(w, "Email and password are required")
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password, h.clientInfo(r))
	if err != nil {
		var failure *models.LoginFailure
		switch {
		case errors.As(err, &failure):
			pkghttp.WriteLoginFailure(w, invalidCredentialsMessage, failure.RemainingAttempts)
		case errors.Is(err, models.ErrRateLimitExceeded):
			pkghttp.WriteTooManyRequests(w, "Too many failed login attempts. Please try again later.")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Email and password are required")
		default:
			pkghttp.WriteInternalError(w, "Authentication failed")
		}
		return
	}

	cfg := h.cookieConfig
	cfg.Secure = cfg.Secure || auth.IsSecureRequest(r)
	auth.SetSessionCookie(w, result.SessionToken, int(result.ExpiresIn/time.Second), cfg)

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(result.User))
}

// Logout clears the session cookie
// @Summary Logout
// @Success 204
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context(), auth.GetSessionFromContext(r), h.clientInfo(r))

	cfg := h.cookieConfig
	cfg.Secure = cfg.Secure || auth.IsSecureRequest(r)
	auth.ClearSessionCookie(w, cfg)

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user
// @Summary Current user
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/users/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetSessionFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	user, err := h.service.CurrentUser(r.Context(), claims)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Unauthorized")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to fetch user data")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}

func (h *AuthHandler) clientInfo(r *http.Request) services.ClientInfo {
	return services.ClientInfo{
		IPAddress: pkghttp.ClientIP(r, h.ipConfig),
		UserAgent: pkghttp.UserAgent(r),
	}
}
