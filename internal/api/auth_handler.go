package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/campuslab/elective-api/internal/api/shared"
	"github.com/campuslab/elective-api/internal/audit"
	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/platform/logger"
	"github.com/campuslab/elective-api/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	jwtService    auth.JWTService
	admin         *auth.AdminAuthenticator
	recorder      audit.Recorder
	tokenLifetime time.Duration
	timeFunc      func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	jwtService auth.JWTService,
	admin *auth.AdminAuthenticator,
	recorder audit.Recorder,
	tokenLifetime time.Duration,
) *AuthHandler {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &AuthHandler{
		jwtService:    jwtService,
		admin:         admin,
		recorder:      recorder,
		tokenLifetime: tokenLifetime,
		timeFunc:      time.Now,
	}
}

// StudentLogin handles the /api/auth/student endpoint. Students identify
// themselves by student ID only.
func (h *AuthHandler) StudentLogin(w http.ResponseWriter, r *http.Request) {
	var req StudentLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		HandleAPIError(w, r, domain.ErrEmptyStudentID, "")
		return
	}

	h.issue(w, r, studentID, auth.RoleStudent, domain.UserTypeStudent)
}

// AdminLogin handles the /api/auth/admin endpoint.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.admin.Authenticate(req.Username, req.Password); err != nil {
		log := logger.FromContext(r.Context())
		if errors.Is(err, auth.ErrAdminLoginDisabled) {
			log.Warn("administrator login attempted while disabled")
		} else {
			log.Info("administrator login rejected")
		}
		HandleAPIError(w, r, err, "")
		return
	}

	h.issue(w, r, h.admin.Username(), auth.RoleHOD, domain.UserTypeHOD)
}

func (h *AuthHandler) issue(
	w http.ResponseWriter,
	r *http.Request,
	subject string,
	role auth.Role,
	userType domain.UserType,
) {
	ctx := r.Context()
	token, err := h.jwtService.GenerateToken(ctx, subject, role)
	if err != nil {
		logger.FromContext(ctx).Error("failed to generate token",
			slog.String("role", string(role)),
			slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token")
		return
	}

	if err := h.recorder.Record(ctx, userType, subject, "login"); err != nil {
		logger.FromContext(ctx).Warn("failed to record login", slog.String("error", err.Error()))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Subject:   subject,
		Role:      string(role),
		Token:     token,
		ExpiresAt: h.timeFunc().Add(h.tokenLifetime).UTC().Format(time.RFC3339),
	})
}
