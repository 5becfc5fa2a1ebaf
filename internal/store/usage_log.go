package store

import (
	"context"

	"github.com/campuslab/elective-api/internal/domain"
)

// UsageLogStore persists audit entries.
type UsageLogStore interface {
	// Create appends an entry.
	Create(ctx context.Context, entry *domain.UsageLog) error

	// List returns the newest entries first, at most limit of them. A blank
	// userID returns entries of every user.
	List(ctx context.Context, userID string, limit int) ([]*domain.UsageLog, error)
}
