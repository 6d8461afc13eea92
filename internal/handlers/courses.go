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

// CourseService defines the interface for course business logic
type CourseService interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error)
	CreateCourse(ctx context.Context, actor *models.SessionClaims, in services.CreateCourseInput) (*models.Course, error)
}

// CourseHandler handles course-related HTTP requests
type CourseHandler struct {
	service CourseService
	logger  *slog.Logger
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(service CourseService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{service: service, logger: logger}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	Date        string `json:"date" validate:"required"`
	Icon        string `json:"icon" validate:"required,max=100"`
	TrainerID   string `json:"trainerId"`
}

// courseDateLayouts are tried in order. The second matches the value of an
// HTML datetime-local input.
var courseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseCourseDate(s string) (time.Time, bool) {
	for _, layout := range courseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GetCourses returns a single course when id is given, otherwise the
// course list ordered by date, optionally for one trainer
//
// @Summary List or get courses
// @Param id query int false "Course ID"
// @Param trainerId query string false "Trainer ID"
// @Produce json
// @Success 200 {array} models.Course
// @Failure 404 {object} ErrorResponse
// @Router /api/courses [get]
func (h *CourseHandler) GetCourses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	id, present, ok := parseIDParam(query.Get("id"))
	if !ok {
		pkghttp.WriteBadRequest(w, "Invalid course ID")
		return
	}

	if present {
		course, err := h.service.GetCourse(r.Context(), id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				pkghttp.WriteNotFound(w, "Course not found")
				return
			}
			pkghttp.WriteInternalError(w, "Failed to fetch courses")
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, course)
		return
	}

	courses, err := h.service.ListCourses(r.Context(), models.CourseFilter{
		TrainerID: strings.TrimSpace(query.Get("trainerId")),
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch courses")
		return
	}
	if courses == nil {
		courses = []*models.Course{}
	}
	pkghttp.WriteJSON(w, http.StatusOK, courses)
}

// CreateCourse schedules a new course for the signed-in trainer
//
// @Summary Create course
// @Accept json
// @Param request body CreateCourseRequest true "Course"
// @Produce json
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/courses [post]
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Date = strings.TrimSpace(req.Date)
	req.Icon = strings.TrimSpace(req.Icon)

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	date, ok := parseCourseDate(req.Date)
	if !ok {
		pkghttp.WriteBadRequest(w, "date must be a valid date")
		return
	}

	course, err := h.service.CreateCourse(r.Context(), auth.GetSessionFromContext(r), services.CreateCourseInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Icon:        req.Icon,
		TrainerID:   req.TrainerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Unauthorized")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Only trainers can create courses for themselves")
		default:
			pkghttp.WriteInternalError(w, "Failed to create course")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, course)
}
