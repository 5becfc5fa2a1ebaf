package store

import (
	"context"
	"database/sql"

	"github.com/campuslab/elective-api/internal/domain"
)

// GradeStore holds the historical grade snapshot read by recommendation
// sessions. Records are written only by bulk imports.
type GradeStore interface {
	// ListAll returns every grade record in insertion order, so that the
	// matrix builder's last-wins rule follows import order.
	ListAll(ctx context.Context) ([]domain.GradeRecord, error)

	// CreateMultiple appends grade records.
	// IMPORTANT: run it through WithTx inside store.RunInTransaction so a
	// failed import leaves no partial rows.
	CreateMultiple(ctx context.Context, records []domain.GradeRecord) error

	// WithTx returns a GradeStore bound to tx.
	WithTx(tx *sql.Tx) GradeStore
}
