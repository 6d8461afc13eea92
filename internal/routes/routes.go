package routes

import (
	"log/slog"

	"github.com/BradenHooton/training-tracker/internal/auth"
	"github.com/BradenHooton/training-tracker/internal/handlers"
	"github.com/BradenHooton/training-tracker/internal/middleware"
	"github.com/BradenHooton/training-tracker/internal/models"
	pkglogger "github.com/BradenHooton/training-tracker/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	CSRF        *handlers.CSRFHandler
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	Courses     *handlers.CourseHandler
	Enrollments *handlers.EnrollmentHandler
	Health      *handlers.HealthHandler
}

// Config holds per-route limits. Zero values fall back to defaults.
type Config struct {
	LoginRateLimit   int // requests per minute per IP on POST /api/auth
	SignupRateLimit  int // requests per minute per IP on POST /api/users
	BookingRateLimit int // requests per minute per user on enrollment changes
}

func (c Config) withDefaults() Config {
	if c.LoginRateLimit <= 0 {
		c.LoginRateLimit = 10
	}
	if c.SignupRateLimit <= 0 {
		c.SignupRateLimit = middleware.DefaultAuthRateLimit().RequestsPerMinute
	}
	if c.BookingRateLimit <= 0 {
		c.BookingRateLimit = 30
	}
	return c
}

// RegisterRoutes registers all application routes. Every state-changing
// route sits behind CSRF protection, so a rejected token never reaches a
// handler or a service.
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	sessions *auth.SessionManager,
	cfg Config,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) {
	cfg = cfg.withDefaults()

	router.Get("/health", h.Health.Health)

	router.Route("/api", func(r chi.Router) {
		r.Use(auth.SessionMiddleware(sessions))

		// Public reads
		r.Get("/csrf", h.CSRF.GetToken)
		r.Get("/courses", h.Courses.GetCourses)

		// Signed-in reads
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Get("/users/me", h.Auth.Me)
			r.Get("/users", h.Users.ListUsers)
			r.Get("/enrollments", h.Enrollments.GetEnrollments)
		})

		// State-changing routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.CSRFProtection(logger, auditLogger))

			r.With(middleware.RateLimitByIP(middleware.RateLimitConfig{RequestsPerMinute: cfg.LoginRateLimit})).
				Post("/auth", h.Auth.Login)
			r.Post("/auth/logout", h.Auth.Logout)
			r.With(middleware.RateLimitByIP(middleware.RateLimitConfig{RequestsPerMinute: cfg.SignupRateLimit})).
				Post("/users", h.Users.Signup)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireSession)

				r.With(auth.RequireRole(models.RoleTrainer)).Post("/courses", h.Courses.CreateCourse)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RateLimitBySession(middleware.RateLimitConfig{RequestsPerMinute: cfg.BookingRateLimit}))
					r.Post("/enrollments", h.Enrollments.CreateEnrollment)
					r.Delete("/enrollments", h.Enrollments.DeleteEnrollment)
				})
			})
		})
	})
}
