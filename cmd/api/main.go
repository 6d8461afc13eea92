package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/training-tracker/internal/auth"
	"github.com/BradenHooton/training-tracker/internal/background"
	"github.com/BradenHooton/training-tracker/internal/config"
	"github.com/BradenHooton/training-tracker/internal/database"
	"github.com/BradenHooton/training-tracker/internal/handlers"
	middlewareCustom "github.com/BradenHooton/training-tracker/internal/middleware"
	"github.com/BradenHooton/training-tracker/internal/repositories"
	"github.com/BradenHooton/training-tracker/internal/routes"
	"github.com/BradenHooton/training-tracker/internal/services"
	pkgauth "github.com/BradenHooton/training-tracker/pkg/auth"
	pkghttp "github.com/BradenHooton/training-tracker/pkg/http"
	pkglogger "github.com/BradenHooton/training-tracker/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Server.RunMigrations {
		migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(migrateCtx)
		cancel()
		if err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Login throttle: in-process by default, Redis when several instances
	// must share attempt counts
	var (
		throttle       services.LoginThrottle
		cleanupManager *background.CleanupManager
	)
	switch cfg.Auth.ThrottleBackend {
	case config.ThrottleBackendRedis:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("addr", cfg.Redis.Addr), slog.Any("error", err))
			os.Exit(1)
		}
		throttle = auth.NewRedisLoginThrottle(redisClient, cfg.Auth.MaxLoginAttempts, cfg.Auth.LoginAttemptWindow)
	default:
		memoryThrottle := auth.NewMemoryLoginThrottle(cfg.Auth.MaxLoginAttempts, cfg.Auth.LoginAttemptWindow)
		cleanupManager = background.NewCleanupManager(memoryThrottle, logger, cfg.Auth.CleanupInterval)
		throttle = memoryThrottle
	}
	logger.Info("login throttle ready", slog.String("backend", cfg.Auth.ThrottleBackend))

	// Booking notifications
	var notifier services.Notifier = services.NewLogNotifier(logger)
	if cfg.Email.Enabled {
		initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sesNotifier, err := services.NewSESNotifier(initCtx, cfg.Email.AWSRegion, cfg.Email.FromEmail, cfg.Email.AppBaseURL, logger)
		cancel()
		if err != nil {
			logger.Error("failed to initialize email notifier", slog.Any("error", err))
			os.Exit(1)
		}
		notifier = sesNotifier
	}

	sessions := auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionExpiry)
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingBaseDelayMs,
		RandomDelayMs: cfg.Auth.TimingRandomMs,
	})
	cookieConfig := auth.CookieConfig{
		Domain:   cfg.Auth.CookieDomain,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
	}
	csrfManager := auth.NewCSRFTokenManager(cookieConfig, cfg.Auth.CSRFMaxAge)

	ipConfig, err := pkghttp.NewIPConfig(cfg.Server.TrustedProxies)
	if err != nil {
		logger.Error("invalid trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, pkgauth.BcryptVerifier{}, throttle, sessions, timingDelay, logger, auditLogger)
	userService := services.NewUserService(userRepo, cfg.Auth.AllowTrainerSignup, logger, auditLogger)
	courseService := services.NewCourseService(courseRepo, enrollmentRepo, logger, auditLogger)
	enrollmentService := services.NewEnrollmentService(enrollmentRepo, courseRepo, notifier, logger, auditLogger)

	// Bootstrap the first trainer if configured
	if cfg.Bootstrap.TrainerEmail != "" && cfg.Bootstrap.TrainerPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := userService.EnsureTrainer(ctx, cfg.Bootstrap.TrainerEmail, cfg.Bootstrap.TrainerPassword)
		cancel()
		switch {
		case err != nil:
			logger.Error("failed to ensure trainer account", slog.Any("error", err))
		case created:
			logger.Info("trainer account created", pkglogger.RedactedAttr("email", cfg.Bootstrap.TrainerEmail, cfg.Server.Env))
		default:
			logger.Info("trainer account already exists")
		}
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.TrustedProxies(ipConfig))
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.NewCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, routes.Handlers{
		CSRF:        handlers.NewCSRFHandler(csrfManager, logger),
		Auth:        handlers.NewAuthHandler(authService, ipConfig, cookieConfig, logger),
		Users:       handlers.NewUserHandler(userService, logger),
		Courses:     handlers.NewCourseHandler(courseService, logger),
		Enrollments: handlers.NewEnrollmentHandler(enrollmentService, logger),
		Health:      handlers.NewHealthHandler(db, logger),
	}, sessions, routes.Config{
		LoginRateLimit:   cfg.Auth.LoginRateLimit,
		SignupRateLimit:  cfg.Auth.SignupRateLimit,
		BookingRateLimit: cfg.Auth.BookingRateLimit,
	}, logger, auditLogger)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	if cleanupManager != nil {
		go cleanupManager.Start(cleanupCtx)
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	if cleanupManager != nil {
		cleanupManager.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
