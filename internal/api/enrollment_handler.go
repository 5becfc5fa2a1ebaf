package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/campuslab/elective-api/internal/api/shared"
	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/platform/logger"
	"github.com/campuslab/elective-api/internal/service"
)

// EnrollmentHandler serves the student-facing enrollment and capacity endpoints.
type EnrollmentHandler struct {
	enrollments service.EnrollmentService
	timeFunc    func() time.Time
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollments service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		timeFunc:    time.Now,
	}
}

// Enroll handles POST /api/enrollments. A committed enrollment answers 201;
// a rejection answers 409 with the outcome as the reason.
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req EnrollRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.enrollments.Enroll(r.Context(), p.Subject, req.CourseCode, h.timeFunc())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to enroll")
		return
	}

	log := logger.FromContext(r.Context())
	switch result.Outcome {
	case domain.EnrollOutcomeCommitted:
		log.Info("enrollment committed", slog.String("course_code", req.CourseCode))
		shared.RespondWithJSON(w, r, http.StatusCreated, EnrollResponse{
			Outcome:    result.Outcome,
			Enrollment: result.Enrollment,
		})
	case domain.EnrollOutcomeAlreadyEnrolled:
		shared.RespondWithError(w, r, http.StatusConflict,
			"You are already enrolled in this course", shared.WithReason(string(result.Outcome)))
	case domain.EnrollOutcomeCourseFull:
		shared.RespondWithError(w, r, http.StatusConflict,
			"This course is full", shared.WithReason(string(result.Outcome)))
	default:
		log.Error("unknown enrollment outcome", slog.String("outcome", string(result.Outcome)))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to enroll")
	}
}

// ListMine handles GET /api/enrollments/me.
func (h *EnrollmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	list, err := h.enrollments.ListStudentEnrollments(r.Context(), p.Subject)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list enrollments")
		return
	}
	if list == nil {
		list = []*domain.Enrollment{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// Capacity handles GET /api/courses/{code}/capacity.
func (h *EnrollmentHandler) Capacity(w http.ResponseWriter, r *http.Request) {
	code, ok := pathParam(w, r, "code")
	if !ok {
		return
	}

	occ, err := h.enrollments.Occupancy(r.Context(), code)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get capacity")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, occupancyToResponse(*occ))
}
