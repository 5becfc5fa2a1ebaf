package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuslab/elective-api/internal/audit"
	"github.com/campuslab/elective-api/internal/config"
	"github.com/campuslab/elective-api/internal/metrics"
	"github.com/campuslab/elective-api/internal/platform/postgres"
	"github.com/campuslab/elective-api/internal/service"
	"github.com/campuslab/elective-api/internal/service/auth"
	"github.com/campuslab/elective-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// appStores groups the persistence layer so tests can swap in the
// in-memory implementation.
type appStores struct {
	enrollments store.EnrollmentStore
	capacities  store.CapacityStore
	courses     store.CourseStore
	grades      store.GradeStore
	usageLogs   store.UsageLogStore
}

func postgresStores(db *sql.DB, logger *slog.Logger) appStores {
	return appStores{
		enrollments: postgres.NewPostgresEnrollmentStore(db, logger),
		capacities:  postgres.NewPostgresCapacityStore(db, logger),
		courses:     postgres.NewPostgresCourseStore(db, logger),
		grades:      postgres.NewPostgresGradeStore(db, logger),
		usageLogs:   postgres.NewPostgresUsageLogStore(db, logger),
	}
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	stores appStores

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	recorder *audit.AsyncRecorder

	jwtService      auth.JWTService
	admin           *auth.AdminAuthenticator
	enrollments     service.EnrollmentService
	recommendations service.RecommendationService
	imports         service.ImportService
}

// newApplication wires the application on top of PostgreSQL.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	return newApplicationWithStores(cfg, logger, db, postgresStores(db, logger))
}

// newApplicationWithStores creates the services and starts the audit
// workers. The caller must call cleanup when done.
func newApplicationWithStores(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	stores appStores,
) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		stores:   stores,
		registry: prometheus.NewRegistry(),
	}

	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.admin = auth.NewAdminAuthenticator(cfg.Auth, auth.BcryptVerifier{})
	logger.Info("authentication initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes),
		slog.String("admin_username", cfg.Auth.AdminUsername))

	app.recorder = audit.NewAsyncRecorder(stores.usageLogs, audit.Config{
		QueueSize:   cfg.Audit.QueueSize,
		WorkerCount: cfg.Audit.WorkerCount,
	}, app.metrics, logger)
	app.recorder.Start()

	app.enrollments, err = service.NewEnrollmentService(
		stores.enrollments,
		stores.capacities,
		stores.courses,
		app.recorder,
		app.metrics,
		cfg.Enrollment,
		logger,
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create enrollment service: %w", err)
	}

	app.recommendations, err = service.NewRecommendationService(
		stores.grades,
		stores.courses,
		stores.enrollments,
		stores.capacities,
		app.metrics,
		cfg.Recommendation,
		cfg.Enrollment,
		logger,
	)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create recommendation service: %w", err)
	}

	app.imports, err = service.NewImportService(db, stores.grades, stores.courses, app.recorder, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create import service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// shutdownTimeout bounds the drain of the HTTP server and the audit queue.
func (app *application) shutdownTimeout() time.Duration {
	if app.config.Server.ShutdownTimeoutSeconds < 1 {
		return 10 * time.Second
	}
	return time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
}

// cleanup flushes pending audit entries and closes the database.
func (app *application) cleanup() {
	if app.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout())
		if err := app.recorder.Stop(ctx); err != nil {
			app.logger.Error("audit recorder did not drain", slog.String("error", err.Error()))
		}
		cancel()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
}
