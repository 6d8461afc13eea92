package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/BradenHooton/training-tracker/internal/models"
	"github.com/BradenHooton/training-tracker/internal/services"
	pkgauth "github.com/BradenHooton/training-tracker/pkg/auth"
	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
)

// UserService defines the interface for user business logic
type UserService interface {
	Signup(ctx context.Context, in services.SignupInput) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// Request/Response DTOs

// SignupRequest represents the request body for creating an account.
// Fields are checked in declaration order.
type SignupRequest struct {
	Username  string `json:"username" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	Firstname string `json:"firstname" validate:"required,max=100"`
	Lastname  string `json:"lastname" validate:"required,max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=trainer student"`
}

// UserResponse represents a user in the HTTP response. The password hash
// has no field here and so can never be serialised.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// userModelToResponse converts a user model to a response DTO
func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Firstname: user.Firstname,
		Lastname:  user.Lastname,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// ListUsers returns every account
//
// @Summary List users
// @Produce json
// @Success 200 {array} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch users")
		return
	}

	resp := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userModelToResponse(u))
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Signup creates a new account
//
// @Summary Sign up
// @Accept json
// @Param request body SignupRequest true "Signup request"
// @Produce json
// @Success 201 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/users [post]
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Firstname = strings.TrimSpace(req.Firstname)
	req.Lastname = strings.TrimSpace(req.Lastname)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Signup(r.Context(), services.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Role:      req.Role,
	})
	if err != nil {
		var pwErr *pkgauth.PasswordValidationError
		switch {
		case errors.As(err, &pwErr):
			pkghttp.WriteErrorWithDetails(w, http.StatusBadRequest, "bad_request",
				pwErr.Error(), strings.Join(pwErr.Errors, "; "))
		case errors.Is(err, models.ErrEmailTaken):
			pkghttp.WriteConflict(w, "Email already in use")
		case errors.Is(err, models.ErrUsernameTaken):
			pkghttp.WriteConflict(w, "Username already taken")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Trainer accounts cannot be self-registered")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid role")
		default:
			pkghttp.WriteInternalError(w, "Failed to create user")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, userModelToResponse(user))
}
