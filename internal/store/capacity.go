package store

import (
	"context"

	"github.com/campuslab/elective-api/internal/domain"
)

// CapacityStore persists configured seat counts.
type CapacityStore interface {
	// Get returns the capacity record of a course.
	// Returns ErrCapacityNotFound when the course has no record.
	Get(ctx context.Context, courseCode string) (*domain.CapacityRecord, error)

	// Upsert creates or replaces the capacity record of a course.
	// Returns ErrInvalidEntity (wrapping the validation error) before any
	// write if the record is invalid.
	Upsert(ctx context.Context, rec *domain.CapacityRecord) error

	// List returns every capacity record ordered by course code.
	List(ctx context.Context) ([]*domain.CapacityRecord, error)
}
