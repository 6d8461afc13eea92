package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/training-tracker/internal/models"
	pkglogger "github.com/BradenHooton/training-tracker/pkg/logger"
)

// CourseRepository defines the interface for course data access
type CourseRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error)
	Create(ctx context.Context, course *models.Course) (*models.Course, error)
}

// CreateCourseInput carries the fields of a new course
type CreateCourseInput struct {
	Title       string
	Description string
	Date        time.Time
	Icon        string
	TrainerID   string
}

// CourseService handles course business logic
type CourseService struct {
	courses     CourseRepository
	enrollments EnrollmentRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewCourseService creates a new CourseService
func NewCourseService(courses CourseRepository, enrollments EnrollmentRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *CourseService {
	return &CourseService{
		courses:     courses,
		enrollments: enrollments,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// GetCourse returns the course with its trainer and enrollments. Contact
// details are stripped since the endpoint is public.
func (s *CourseService) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get course", slog.Int64("course_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	enrollments, err := s.enrollments.List(ctx, models.EnrollmentFilter{CourseID: id})
	if err != nil {
		s.logger.Error("failed to list course enrollments", slog.Int64("course_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	for _, e := range enrollments {
		// The course is already the parent object
		e.Course = nil
		if e.User != nil {
			e.User.Email = ""
		}
	}
	course.Enrollments = enrollments

	stripTrainerContact(course)
	return course, nil
}

// ListCourses returns courses ordered by date, optionally for one trainer
func (s *CourseService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list courses", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	for _, c := range courses {
		stripTrainerContact(c)
	}
	return courses, nil
}

// CreateCourse schedules a course. The acting user must be the trainer the
// course is created for.
func (s *CourseService) CreateCourse(ctx context.Context, actor *models.SessionClaims, in CreateCourseInput) (*models.Course, error) {
	if actor == nil {
		return nil, models.ErrUnauthorized
	}
	if actor.Role != models.RoleTrainer {
		return nil, models.ErrForbidden
	}

	trainerID := strings.TrimSpace(in.TrainerID)
	if trainerID == "" {
		trainerID = actor.UserID
	}
	if trainerID != actor.UserID {
		s.logger.Warn("course creation for another trainer rejected",
			slog.String("user_id", actor.UserID))
		return nil, models.ErrForbidden
	}

	course, err := s.courses.Create(ctx, &models.Course{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		Icon:        strings.TrimSpace(in.Icon),
		TrainerID:   trainerID,
	})
	if err != nil {
		s.logger.Error("failed to create course", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventCourseCreated,
		UserID:    actor.UserID,
		Success:   true,
	})

	stripTrainerContact(course)
	return course, nil
}

func stripTrainerContact(c *models.Course) {
	if c != nil && c.Trainer != nil {
		c.Trainer.Email = ""
	}
}
