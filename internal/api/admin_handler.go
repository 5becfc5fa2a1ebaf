package api

import (
	"net/http"

	"github.com/campuslab/elective-api/internal/api/shared"
	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/service"
	"github.com/campuslab/elective-api/internal/store"
)

const (
	defaultUsageLogLimit = 100
	maxUsageLogLimit     = 1000
)

// AdminHandler serves the head of department's administrative endpoints.
type AdminHandler struct {
	enrollments service.EnrollmentService
	imports     service.ImportService
	usageLogs   store.UsageLogStore
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	enrollments service.EnrollmentService,
	imports service.ImportService,
	usageLogs store.UsageLogStore,
) *AdminHandler {
	return &AdminHandler{
		enrollments: enrollments,
		imports:     imports,
		usageLogs:   usageLogs,
	}
}

// ListEnrollments handles GET /api/admin/enrollments.
func (h *AdminHandler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	list, err := h.enrollments.ListEnrollments(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list enrollments")
		return
	}
	if list == nil {
		list = []*domain.Enrollment{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// DeleteEnrollment handles DELETE /api/admin/enrollments/{course}/{student}.
func (h *AdminHandler) DeleteEnrollment(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	course, ok := pathParam(w, r, "course")
	if !ok {
		return
	}
	student, ok := pathParam(w, r, "student")
	if !ok {
		return
	}

	if err := h.enrollments.DeleteEnrollment(r.Context(), student, course, p.Subject); err != nil {
		HandleAPIError(w, r, err, "Failed to delete enrollment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCourseEnrollments handles DELETE /api/admin/enrollments/{course}.
func (h *AdminHandler) DeleteCourseEnrollments(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	course, ok := pathParam(w, r, "course")
	if !ok {
		return
	}

	n, err := h.enrollments.DeleteCourseEnrollments(r.Context(), course, p.Subject)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete enrollments")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteResponse{Removed: n})
}

// ListCapacities handles GET /api/admin/capacities. Only courses with an
// explicit capacity row are listed.
func (h *AdminHandler) ListCapacities(w http.ResponseWriter, r *http.Request) {
	list, err := h.enrollments.ListCapacities(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list capacities")
		return
	}
	if list == nil {
		list = []*domain.CapacityRecord{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, list)
}

// SetCapacity handles PUT /api/admin/capacities/{course}.
func (h *AdminHandler) SetCapacity(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}
	course, ok := pathParam(w, r, "course")
	if !ok {
		return
	}

	var req SetCapacityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.enrollments.SetCapacity(r.Context(), course, req.TotalSeats, p.Subject); err != nil {
		HandleAPIError(w, r, err, "Failed to set capacity")
		return
	}

	occ, err := h.enrollments.Occupancy(r.Context(), course)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get capacity")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, occupancyToResponse(*occ))
}

// Occupancy handles GET /api/admin/occupancy.
func (h *AdminHandler) Occupancy(w http.ResponseWriter, r *http.Request) {
	list, err := h.enrollments.ListOccupancy(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list occupancy")
		return
	}
	out := make([]OccupancyResponse, 0, len(list))
	for _, o := range list {
		out = append(out, occupancyToResponse(o))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// ImportGrades handles POST /api/admin/grades.
func (h *AdminHandler) ImportGrades(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req ImportGradesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	n, err := h.imports.ImportGrades(r.Context(), req.Records, p.Subject)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import grades")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, ImportResponse{Imported: n})
}

// ImportCourses handles POST /api/admin/courses.
func (h *AdminHandler) ImportCourses(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromRequest(w, r)
	if !ok {
		return
	}

	var req ImportCoursesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	n, err := h.imports.ImportCourses(r.Context(), req.Courses, p.Subject)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import courses")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, ImportResponse{Imported: n})
}

// UsageLogs handles GET /api/admin/usage-logs?user_id=&limit=.
func (h *AdminHandler) UsageLogs(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	limit := queryLimit(r, defaultUsageLogLimit, maxUsageLogLimit)

	entries, err := h.usageLogs.List(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list usage logs")
		return
	}

	out := make([]UsageLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, UsageLogResponse{
			Timestamp: e.Timestamp,
			UserType:  string(e.UserType),
			UserID:    e.UserID,
			Action:    e.Action,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}
