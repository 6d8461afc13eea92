package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/training-tracker/internal/auth"
	"github.com/BradenHooton/training-tracker/internal/models"
	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
)

// EnrollmentService defines the interface for booking business logic
type EnrollmentService interface {
	GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]*models.Enrollment, error)
	Enroll(ctx context.Context, actor *models.SessionClaims, userID string, courseID int64) (*models.Enrollment, error)
	Cancel(ctx context.Context, actor *models.SessionClaims, id int64) error
}

// EnrollmentHandler handles booking HTTP requests
type EnrollmentHandler struct {
	service EnrollmentService
	logger  *slog.Logger
}

// NewEnrollmentHandler creates a new EnrollmentHandler
func NewEnrollmentHandler(service EnrollmentService, logger *slog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{service: service, logger: logger}
}

// EnrollRequest represents the request body for booking a course. userId
// may be omitted, in which case the signed-in user is booked.
type EnrollRequest struct {
	UserID   string     `json:"userId"`
	CourseID flexibleID `json:"courseId" validate:"required"`
}

// GetEnrollments returns one enrollment when id is given, otherwise the
// enrollments matching the userId and courseId filters
//
// @Summary List or get enrollments
// @Param id query int false "Enrollment ID"
// @Param userId query string false "User ID"
// @Param courseId query int false "Course ID"
// @Produce json
// @Success 200 {array} models.Enrollment
// @Failure 404 {object} ErrorResponse
// @Router /api/enrollments [get]
func (h *EnrollmentHandler) GetEnrollments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	id, present, ok := parseIDParam(query.Get("id"))
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid enrollment ID")
		return
	}

	if present {
		enrollment, err := h.service.GetEnrollment(r.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				pkghttp.WriteNotFound(w, "Enrollment not found")
				return
			}
			pkghttp.WriteInternalError(w, "Failed to fetch enrollments")
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, enrollment)
		return
	}

	courseID, _, ok := parseIDParam(query.Get("courseId"))
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid course ID")
		return
	}

	enrollments, err := h.service.ListEnrollments(r.Context(), models.EnrollmentFilter{
		UserID:   strings.TrimSpace(query.Get("userId")),
		CourseID: courseID,
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch enrollments")
		return
	}
	if enrollments == nil {
		enrollments = []*models.Enrollment{}
	}
	pkghttp.WriteJSON(w, http.StatusOK, enrollments)
}

// CreateEnrollment books the signed-in user onto a course
//
// @Summary Book course
// @Accept json
// @Param request body EnrollRequest true "Booking"
// @Produce json
// @Success 201 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/enrollments [post]
func (h *EnrollmentHandler) CreateEnrollment(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	enrollment, err := h.service.Enroll(r.Context(), auth.GetSessionFromContext(r), strings.TrimSpace(req.UserID), int64(req.CourseID))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyEnrolled):
			pkghttp.WriteBadRequest(w, "You are already enrolled in this course")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Course not found")
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Unauthorized")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "You can only book courses for yourself")
		default:
			pkghttp.WriteInternalError(w, "Failed to create enrollment")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, enrollment)
}

// DeleteEnrollment cancels a booking
//
// @Summary Cancel booking
// @Param id query int true "Enrollment ID"
// @Produce json
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/enrollments [delete]
func (h *EnrollmentHandler) DeleteEnrollment(w http.ResponseWriter, r *http.Request) {
	id, present, ok := parseIDParam(r.URL.Query().Get("id"))
	if !present {
		pkghttp.WriteBadRequest(w, "Enrollment ID is required")
		return
	}
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid enrollment ID")
		return
	}

	if err := h.service.Cancel(r.Context(), auth.GetSessionFromContext(r), id); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Enrollment not found")
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Unauthorized")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "You cannot cancel this enrollment")
		default:
			pkghttp.WriteInternalError(w, "Failed to cancel enrollment")
		}
		return
	}

	pkghttp.WriteMessage(w, http.StatusOK, "Enrollment cancelled successfully")
}
