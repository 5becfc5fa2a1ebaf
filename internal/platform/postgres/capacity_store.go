package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/platform/logger"
	"github.com/campuslab/elective-api/internal/store"
)

// PostgresCapacityStore implements the store.CapacityStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCapacityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCapacityStore creates a new PostgreSQL implementation of the CapacityStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCapacityStore(db store.DBTX, logger *slog.Logger) *PostgresCapacityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCapacityStore{
		db:     db,
		logger: logger.With(slog.String("component", "capacity_store")),
	}
}

var _ store.CapacityStore = (*PostgresCapacityStore)(nil)

// Get implements store.CapacityStore.Get.
func (s *PostgresCapacityStore) Get(ctx context.Context, courseCode string) (*domain.CapacityRecord, error) {
	var rec domain.CapacityRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT course_code, total_seats, last_modified
		FROM course_capacity
		WHERE course_code = $1
	`, courseCode).Scan(&rec.CourseCode, &rec.TotalSeats, &rec.LastModified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCapacityNotFound
		}
		return nil, store.NewStoreError("course_capacity", "get", "query failed", MapError(err))
	}
	rec.LastModified = rec.LastModified.UTC()
	return &rec, nil
}

// Upsert implements store.CapacityStore.Upsert.
func (s *PostgresCapacityStore) Upsert(ctx context.Context, rec *domain.CapacityRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rec.Validate(); err != nil {
		log.Warn("capacity validation failed",
			slog.String("course_code", rec.CourseCode),
			slog.Int("total_seats", rec.TotalSeats),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO course_capacity (course_code, total_seats, last_modified)
		VALUES ($1, $2, $3)
		ON CONFLICT (course_code) DO UPDATE
		SET total_seats = EXCLUDED.total_seats,
		    last_modified = EXCLUDED.last_modified
	`, rec.CourseCode, rec.TotalSeats, rec.LastModified)
	if err != nil {
		log.Error("failed to upsert capacity",
			slog.String("course_code", rec.CourseCode),
			slog.String("error", err.Error()))
		return store.NewStoreError("course_capacity", "upsert", "write failed", MapError(err))
	}

	log.Info("course capacity updated",
		slog.String("course_code", rec.CourseCode),
		slog.Int("total_seats", rec.TotalSeats))
	return nil
}

// List implements store.CapacityStore.List.
func (s *PostgresCapacityStore) List(ctx context.Context) ([]*domain.CapacityRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT course_code, total_seats, last_modified
		FROM course_capacity
		ORDER BY course_code
	`)
	if err != nil {
		return nil, store.NewStoreError("course_capacity", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.CapacityRecord
	for rows.Next() {
		var rec domain.CapacityRecord
		if err := rows.Scan(&rec.CourseCode, &rec.TotalSeats, &rec.LastModified); err != nil {
			return nil, store.NewStoreError("course_capacity", "list", "scan failed", err)
		}
		rec.LastModified = rec.LastModified.UTC()
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("course_capacity", "list", "iteration failed", err)
	}
	return out, nil
}
