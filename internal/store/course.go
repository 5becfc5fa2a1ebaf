package store

import (
	"context"
	"database/sql"

	"github.com/campuslab/elective-api/internal/domain"
)

// CourseStore holds the course catalog.
type CourseStore interface {
	// Get returns one course. Returns ErrCourseNotFound if it is not in the catalog.
	Get(ctx context.Context, code string) (*domain.Course, error)

	// List returns the catalog ordered by course code.
	List(ctx context.Context) ([]*domain.Course, error)

	// UpsertMultiple creates or replaces catalog entries.
	// IMPORTANT: run it through WithTx inside store.RunInTransaction.
	UpsertMultiple(ctx context.Context, courses []*domain.Course) error

	// WithTx returns a CourseStore bound to tx.
	WithTx(tx *sql.Tx) CourseStore
}
