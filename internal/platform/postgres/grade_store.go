package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/platform/logger"
	"github.com/campuslab/elective-api/internal/store"
)

// PostgresGradeStore implements store.GradeStore.
type PostgresGradeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGradeStore creates a new PostgreSQL implementation of the GradeStore interface.
func NewPostgresGradeStore(db store.DBTX, logger *slog.Logger) *PostgresGradeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGradeStore{
		db:     db,
		logger: logger.With(slog.String("component", "grade_store")),
	}
}

var _ store.GradeStore = (*PostgresGradeStore)(nil)

// WithTx implements store.GradeStore.WithTx.
func (s *PostgresGradeStore) WithTx(tx *sql.Tx) store.GradeStore {
	return &PostgresGradeStore{db: tx, logger: s.logger}
}

// ListAll implements store.GradeStore.ListAll.
func (s *PostgresGradeStore) ListAll(ctx context.Context) ([]domain.GradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT student_id, course_code, score, letter_grade
		FROM grade_records
		ORDER BY id
	`)
	if err != nil {
		return nil, store.NewStoreError("grade_record", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var out []domain.GradeRecord
	for rows.Next() {
		var r domain.GradeRecord
		if err := rows.Scan(&r.StudentID, &r.CourseCode, &r.Score, &r.LetterGrade); err != nil {
			return nil, store.NewStoreError("grade_record", "list", "scan failed", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("grade_record", "list", "iteration failed", err)
	}
	return out, nil
}

// CreateMultiple implements store.GradeStore.CreateMultiple.
func (s *PostgresGradeStore) CreateMultiple(ctx context.Context, records []domain.GradeRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if len(records) == 0 {
		return nil
	}

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO grade_records (student_id, course_code, score, letter_grade)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return store.NewStoreError("grade_record", "create", "prepare failed", MapError(err))
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.StudentID, r.CourseCode, r.Score, r.LetterGrade); err != nil {
			log.Error("failed to insert grade record",
				slog.String("student_id", r.StudentID),
				slog.String("course_code", r.CourseCode),
				slog.String("error", err.Error()))
			return store.NewStoreError("grade_record", "create", "insert failed", MapError(err))
		}
	}

	log.Debug("grade records inserted", slog.Int("count", len(records)))
	return nil
}
