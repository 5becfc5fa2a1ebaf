package domain

import (
	"strings"
	"time"
)

// EnrollmentPolicy describes how many enrollments a student may hold.
type EnrollmentPolicy string

const (
	// EnrollmentPolicyRelaxed allows one enrollment per (student, course)
	// pair and any number of courses per student.
	EnrollmentPolicyRelaxed EnrollmentPolicy = "relaxed"
)

// ActiveEnrollmentPolicy is the policy enforced by the enrollment store:
// the (student_id, course_code) primary key is the only uniqueness rule.
const ActiveEnrollmentPolicy = EnrollmentPolicyRelaxed

// Enrollment records that a student holds a seat in a course.
// Enrollments are created by the enrollment transaction and never updated.
type Enrollment struct {
	StudentID      string    `json:"student_id"`
	CourseCode     string    `json:"course_code"`
	EnrollmentDate time.Time `json:"enrollment_date"`
}

// NewEnrollment creates a validated enrollment. The date is truncated to
// the calendar day in UTC.
func NewEnrollment(studentID, courseCode string, date time.Time) (*Enrollment, error) {
	e := &Enrollment{
		StudentID:      strings.TrimSpace(studentID),
		CourseCode:     strings.TrimSpace(courseCode),
		EnrollmentDate: TruncateToDay(date),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks that all fields are present.
func (e *Enrollment) Validate() error {
	if e.StudentID == "" {
		return ErrEmptyStudentID
	}
	if e.CourseCode == "" {
		return ErrEmptyCourseCode
	}
	if e.EnrollmentDate.IsZero() {
		return ErrInvalidEnrollmentDate
	}
	return nil
}

// TruncateToDay returns midnight UTC of t's calendar day.
func TruncateToDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EnrollOutcome is the result of an enrollment attempt. Rejections are
// ordinary outcomes, not errors.
type EnrollOutcome string

// Possible enrollment outcomes.
const (
	EnrollOutcomeCommitted       EnrollOutcome = "committed"
	EnrollOutcomeAlreadyEnrolled EnrollOutcome = "already_enrolled"
	EnrollOutcomeCourseFull      EnrollOutcome = "course_full"
)

// Rejected reports whether the outcome denied the enrollment.
func (o EnrollOutcome) Rejected() bool {
	return o != EnrollOutcomeCommitted
}

// EnrollResult is what the enrollment transaction returns to its caller.
type EnrollResult struct {
	Outcome    EnrollOutcome `json:"outcome"`
	Enrollment *Enrollment   `json:"enrollment,omitempty"`
}
