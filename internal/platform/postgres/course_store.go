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

// PostgresCourseStore implements store.CourseStore.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCourseStore creates a new PostgreSQL implementation of the CourseStore interface.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCourseStore{
		db:     db,
		logger: logger.With(slog.String("component", "course_store")),
	}
}

var _ store.CourseStore = (*PostgresCourseStore)(nil)

// WithTx implements store.CourseStore.WithTx.
func (s *PostgresCourseStore) WithTx(tx *sql.Tx) store.CourseStore {
	return &PostgresCourseStore{db: tx, logger: s.logger}
}

const courseColumns = `code, name, description, objective, instructors, feedback`

func scanCourse(row interface{ Scan(dest ...any) error }) (*domain.Course, error) {
	var c domain.Course
	err := row.Scan(&c.Code, &c.Name, &c.Description, &c.Objective, &c.Instructors, &c.Feedback)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Get implements store.CourseStore.Get.
func (s *PostgresCourseStore) Get(ctx context.Context, code string) (*domain.Course, error) {
	c, err := scanCourse(s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCourseNotFound
		}
		return nil, store.NewStoreError("course", "get", "query failed", MapError(err))
	}
	return c, nil
}

// List implements store.CourseStore.List.
func (s *PostgresCourseStore) List(ctx context.Context) ([]*domain.Course, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY code`)
	if err != nil {
		return nil, store.NewStoreError("course", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, store.NewStoreError("course", "list", "scan failed", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("course", "list", "iteration failed", err)
	}
	return out, nil
}

// UpsertMultiple implements store.CourseStore.UpsertMultiple.
func (s *PostgresCourseStore) UpsertMultiple(ctx context.Context, courses []*domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, c := range courses {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
	}

	for _, c := range courses {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO courses (`+courseColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (code) DO UPDATE
			SET name = EXCLUDED.name,
			    description = EXCLUDED.description,
			    objective = EXCLUDED.objective,
			    instructors = EXCLUDED.instructors,
			    feedback = EXCLUDED.feedback
		`, c.Code, c.Name, c.Description, c.Objective, c.Instructors, c.Feedback)
		if err != nil {
			log.Error("failed to upsert course",
				slog.String("course_code", c.Code),
				slog.String("error", err.Error()))
			return store.NewStoreError("course", "upsert", "write failed", MapError(err))
		}
	}

	log.Debug("courses upserted", slog.Int("count", len(courses)))
	return nil
}
