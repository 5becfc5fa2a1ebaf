package api

import (
	"time"

	"github.com/campuslab/elective-api/internal/domain"
)

// StudentLoginRequest defines the payload of the student login endpoint.
type StudentLoginRequest struct {
	StudentID string `json:"student_id" validate:"required,max=64"`
}

// AdminLoginRequest defines the payload of the administrator login endpoint.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,max=72"`
}

// AuthResponse defines the successful response of the login endpoints.
type AuthResponse struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
	Token   string `json:"token"`
	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`
}

// EnrollRequest defines the payload of the enrollment endpoint.
type EnrollRequest struct {
	CourseCode string `json:"course_code" validate:"required,max=32"`
}

// EnrollResponse is returned for a committed enrollment.
type EnrollResponse struct {
	Outcome    domain.EnrollOutcome `json:"outcome"`
	Enrollment *domain.Enrollment   `json:"enrollment"`
}

// SetCapacityRequest defines the payload of the capacity update endpoint.
type SetCapacityRequest struct {
	TotalSeats int `json:"total_seats" validate:"required,min=1"`
}

// OccupancyResponse is the seat usage of one course.
type OccupancyResponse struct {
	CourseCode         string  `json:"course_code"`
	TotalSeats         int     `json:"total_seats"`
	Enrolled           int     `json:"enrolled"`
	Available          int     `json:"available"`
	Full               bool    `json:"full"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

func occupancyToResponse(o domain.CourseOccupancy) OccupancyResponse {
	return OccupancyResponse{
		CourseCode:         o.CourseCode,
		TotalSeats:         o.TotalSeats,
		Enrolled:           o.Enrolled,
		Available:          o.Available(),
		Full:               o.Full(),
		UtilizationPercent: o.UtilizationPercent(),
	}
}

// DeleteResponse reports how many rows an administrative delete removed.
type DeleteResponse struct {
	Removed int `json:"removed"`
}

// ImportGradesRequest defines the payload of the grade import endpoint.
type ImportGradesRequest struct {
	Records []domain.GradeRecord `json:"records" validate:"required,min=1"`
}

// ImportCoursesRequest defines the payload of the catalog import endpoint.
type ImportCoursesRequest struct {
	Courses []*domain.Course `json:"courses" validate:"required,min=1"`
}

// ImportResponse reports how many records an import stored.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// UsageLogResponse is one audit entry.
type UsageLogResponse struct {
	Timestamp time.Time `json:"timestamp"`
	UserType  string    `json:"user_type"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
}
