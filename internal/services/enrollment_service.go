package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/BradenHooton/training-tracker/internal/models"
	pkglogger "github.com/BradenHooton/training-tracker/pkg/logger"
)

// EnrollmentRepository defines the interface for enrollment data access
type EnrollmentRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	List(ctx context.Context, filter models.EnrollmentFilter) ([]*models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) (*models.Enrollment, error)
	Delete(ctx context.Context, id int64) error
}

// EnrollmentService handles booking business logic
type EnrollmentService struct {
	enrollments EnrollmentRepository
	courses     CourseRepository
	notifier    Notifier
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewEnrollmentService creates a new EnrollmentService
func NewEnrollmentService(
	enrollments EnrollmentRepository,
	courses CourseRepository,
	notifier Notifier,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		courses:     courses,
		notifier:    notifier,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// GetEnrollment returns one enrollment with its course and user
func (s *EnrollmentService) GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	e, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get enrollment", slog.Int64("enrollment_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return e, nil
}

// ListEnrollments returns enrollments matching the filter
func (s *EnrollmentService) ListEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]*models.Enrollment, error) {
	list, err := s.enrollments.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list enrollments", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return list, nil
}

// Enroll books the acting user onto a course. userID may be empty, in which
// case the acting user is booked; any other user is rejected.
func (s *EnrollmentService) Enroll(ctx context.Context, actor *models.SessionClaims, userID string, courseID int64) (*models.Enrollment, error) {
	if actor == nil {
		return nil, models.ErrUnauthorized
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = actor.UserID
	}
	if userID != actor.UserID {
		s.logger.Warn("enrollment on behalf of another user rejected", slog.String("user_id", actor.UserID))
		return nil, models.ErrForbidden
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get course", slog.Int64("course_id", courseID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	e, err := s.enrollments.Create(ctx, &models.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   models.EnrollmentStatusBooked,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyEnrolled):
			return nil, models.ErrAlreadyEnrolled
		case errors.Is(err, models.ErrNotFound):
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to create enrollment", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventEnrollmentCreated,
		UserID:    actor.UserID,
		Success:   true,
		Metadata:  map[string]string{"course_id": strconv.FormatInt(courseID, 10)},
	})

	if err := s.notifier.SendBookingConfirmation(ctx, e); err != nil {
		s.logger.Warn("failed to send booking confirmation",
			slog.Int64("enrollment_id", e.ID), slog.Any("error", err))
	}

	return e, nil
}

// Cancel deletes an enrollment. Only the booked user or the course's
// trainer may cancel it.
func (s *EnrollmentService) Cancel(ctx context.Context, actor *models.SessionClaims, id int64) error {
	if actor == nil {
		return models.ErrUnauthorized
	}

	e, err := s.GetEnrollment(ctx, id)
	if err != nil {
		return err
	}

	isOwner := e.UserID == actor.UserID
	isTrainer := e.Course != nil && e.Course.TrainerID == actor.UserID
	if !isOwner && !isTrainer {
		s.logger.Warn("enrollment cancellation rejected",
			slog.String("user_id", actor.UserID), slog.Int64("enrollment_id", id))
		return models.ErrForbidden
	}

	if err := s.enrollments.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete enrollment", slog.Int64("enrollment_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.Log(ctx, pkglogger.AuditEvent{
		EventType: pkglogger.EventEnrollmentCancelled,
		UserID:    actor.UserID,
		Success:   true,
		Metadata:  map[string]string{"enrollment_id": strconv.FormatInt(id, 10)},
	})

	if err := s.notifier.SendBookingCancellation(ctx, e); err != nil {
		s.logger.Warn("failed to send cancellation notice",
			slog.Int64("enrollment_id", id), slog.Any("error", err))
	}

	return nil
}
