package main

import (
	"net/http"
	"time"

	"github.com/campuslab/elective-api/internal/api"
	apiMiddleware "github.com/campuslab/elective-api/internal/api/middleware"
	"github.com/campuslab/elective-api/internal/api/shared"
	"github.com/campuslab/elective-api/internal/service/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// enrollmentRateKey limits each student separately, falling back to the
// client IP before authentication has run.
func enrollmentRateKey(r *http.Request) (string, error) {
	if p, ok := shared.PrincipalFromContext(r.Context()); ok {
		return "student:" + p.Subject, nil
	}
	return httprate.KeyByIP(r)
}

func rateLimited(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many enrollment attempts, slow down")
}

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(app.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{apiMiddleware.TraceHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authHandler := api.NewAuthHandler(
		app.jwtService,
		app.admin,
		app.recorder,
		time.Duration(app.config.Auth.TokenLifetimeMinutes)*time.Minute,
	)
	enrollmentHandler := api.NewEnrollmentHandler(app.enrollments)
	recommendationHandler := api.NewRecommendationHandler(app.recommendations)
	adminHandler := api.NewAdminHandler(app.enrollments, app.imports, app.stores.usageLogs)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	enrollLimit := httprate.Limit(
		app.config.Enrollment.RateLimitPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(enrollmentRateKey),
		httprate.WithLimitHandler(rateLimited),
	)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/student", authHandler.StudentLogin)
		r.Post("/auth/admin", authHandler.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireRole(auth.RoleStudent))
				r.Get("/recommendations", recommendationHandler.Recommend)
				r.With(enrollLimit).Post("/enrollments", enrollmentHandler.Enroll)
				r.Get("/enrollments/me", enrollmentHandler.ListMine)
				r.Get("/courses/{code}/capacity", enrollmentHandler.Capacity)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(apiMiddleware.RequireRole(auth.RoleHOD))
				r.Get("/enrollments", adminHandler.ListEnrollments)
				r.Delete("/enrollments/{course}/{student}", adminHandler.DeleteEnrollment)
				r.Delete("/enrollments/{course}", adminHandler.DeleteCourseEnrollments)
				r.Get("/capacities", adminHandler.ListCapacities)
				r.Put("/capacities/{course}", adminHandler.SetCapacity)
				r.Get("/occupancy", adminHandler.Occupancy)
				r.Post("/grades", adminHandler.ImportGrades)
				r.Post("/courses", adminHandler.ImportCourses)
				r.Get("/usage-logs", adminHandler.UsageLogs)
				r.Get("/evaluation", recommendationHandler.Evaluation)
			})
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
