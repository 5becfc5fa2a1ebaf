package store

import (
	"context"

	"github.com/campuslab/elective-api/internal/domain"
)

// EnrollmentStore is the authoritative store of enrollments and the home of
// the enrollment transaction.
type EnrollmentStore interface {
	// Enroll runs the enrollment transaction for e. In one atomic unit with
	// respect to other Enroll calls for the same course it:
	//
	//   1. returns EnrollOutcomeAlreadyEnrolled when the pair exists,
	//   2. returns EnrollOutcomeCourseFull when occupancy >= capacity, where
	//      capacity is the course's configured seats or defaultSeats,
	//   3. otherwise inserts e and returns EnrollOutcomeCommitted.
	//
	// The inserted row is committed before Enroll returns. Rejections are
	// outcomes with a nil error; errors mean the attempt did not apply and
	// may be retried with identical inputs.
	Enroll(ctx context.Context, e *domain.Enrollment, defaultSeats int) (domain.EnrollOutcome, error)

	// Exists reports whether the (student, course) pair is enrolled.
	Exists(ctx context.Context, studentID, courseCode string) (bool, error)

	// CountByCourse returns the live occupancy of a course. It is always
	// read from the store, never cached.
	CountByCourse(ctx context.Context, courseCode string) (int, error)

	// CountAllByCourse returns occupancy for every course with at least one enrollment.
	CountAllByCourse(ctx context.Context) (map[string]int, error)

	// ListByStudent returns a student's enrollments ordered by course code.
	ListByStudent(ctx context.Context, studentID string) ([]*domain.Enrollment, error)

	// ListAll returns every enrollment ordered by course code, then student id.
	ListAll(ctx context.Context) ([]*domain.Enrollment, error)

	// Delete removes one enrollment.
	// Returns ErrEnrollmentNotFound if the pair does not exist.
	Delete(ctx context.Context, studentID, courseCode string) error

	// DeleteByCourse removes every enrollment of a course and returns how
	// many rows were removed. Removing zero rows is not an error.
	DeleteByCourse(ctx context.Context, courseCode string) (int, error)
}
