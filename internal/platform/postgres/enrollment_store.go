package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/platform/logger"
	"github.com/campuslab/elective-api/internal/store"
)

// enrollmentLockClass namespaces the advisory locks taken by Enroll so they
// cannot collide with locks taken for other purposes.
const enrollmentLockClass = 7301

// PostgresEnrollmentStore implements the store.EnrollmentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresEnrollmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresEnrollmentStore creates a new PostgreSQL implementation of the EnrollmentStore interface.
// When db is a *sql.DB every Enroll call runs in its own transaction; when it
// is a *sql.Tx the caller owns the transaction and Enroll runs inside it.
// If logger is nil, a default logger will be used.
func NewPostgresEnrollmentStore(db store.DBTX, logger *slog.Logger) *PostgresEnrollmentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEnrollmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "enrollment_store")),
	}
}

// Ensure PostgresEnrollmentStore implements store.EnrollmentStore interface
var _ store.EnrollmentStore = (*PostgresEnrollmentStore)(nil)

// inTx runs fn in a read-committed transaction, or directly against the
// caller's transaction when the store was built on one.
func (s *PostgresEnrollmentStore) inTx(ctx context.Context, fn func(ctx context.Context, q store.DBTX) error) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		return fn(ctx, s.db)
	}
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return store.RunInTransactionWithOptions(ctx, db, opts, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, tx)
	})
}

// Enroll implements store.EnrollmentStore.Enroll.
//
// All attempts on one course serialize on a transaction-scoped advisory lock
// keyed by the course code. Under the lock the existence check, the
// occupancy count and the insert see every enrollment committed before the
// lock was granted, so occupancy can never pass capacity. The insert uses
// ON CONFLICT against the (student_id, course_code) primary key, which keeps
// the pair unique even for writers that bypass the lock.
func (s *PostgresEnrollmentStore) Enroll(
	ctx context.Context,
	e *domain.Enrollment,
	defaultSeats int,
) (domain.EnrollOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if defaultSeats < 1 {
		return "", fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidCapacity)
	}

	var outcome domain.EnrollOutcome
	err := s.inTx(ctx, func(ctx context.Context, q store.DBTX) error {
		if _, err := q.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock($1, hashtext($2))`,
			enrollmentLockClass, e.CourseCode,
		); err != nil {
			return fmt.Errorf("acquire course lock: %w", err)
		}

		var exists bool
		if err := q.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_code = $2)`,
			e.StudentID, e.CourseCode,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check existing enrollment: %w", err)
		}
		if exists {
			outcome = domain.EnrollOutcomeAlreadyEnrolled
			return nil
		}

		var occupancy, capacity int
		if err := q.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM enrollments WHERE course_code = $1),
				COALESCE((SELECT total_seats FROM course_capacity WHERE course_code = $1), $2::INTEGER)
		`, e.CourseCode, defaultSeats).Scan(&occupancy, &capacity); err != nil {
			return fmt.Errorf("read course occupancy: %w", err)
		}
		if occupancy >= capacity {
			outcome = domain.EnrollOutcomeCourseFull
			return nil
		}

		result, err := q.ExecContext(ctx, `
			INSERT INTO enrollments (student_id, course_code, enrollment_date)
			VALUES ($1, $2, $3)
			ON CONFLICT (student_id, course_code) DO NOTHING
		`, e.StudentID, e.CourseCode, e.EnrollmentDate)
		if err != nil {
			return fmt.Errorf("insert enrollment: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			outcome = domain.EnrollOutcomeAlreadyEnrolled
			return nil
		}

		outcome = domain.EnrollOutcomeCommitted
		return nil
	})
	if err != nil {
		log.Error("enrollment transaction failed",
			slog.String("error", err.Error()),
			slog.String("student_id", e.StudentID),
			slog.String("course_code", e.CourseCode))
		return "", store.NewStoreError("enrollment", "enroll", "transaction failed", MapError(err))
	}

	log.Info("enrollment transaction finished",
		slog.String("student_id", e.StudentID),
		slog.String("course_code", e.CourseCode),
		slog.String("outcome", string(outcome)))
	return outcome, nil
}

// Exists implements store.EnrollmentStore.Exists.
func (s *PostgresEnrollmentStore) Exists(ctx context.Context, studentID, courseCode string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_code = $2)`,
		studentID, courseCode,
	).Scan(&exists)
	if err != nil {
		return false, store.NewStoreError("enrollment", "exists", "query failed", MapError(err))
	}
	return exists, nil
}

// CountByCourse implements store.EnrollmentStore.CountByCourse.
func (s *PostgresEnrollmentStore) CountByCourse(ctx context.Context, courseCode string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE course_code = $1`, courseCode,
	).Scan(&n)
	if err != nil {
		return 0, store.NewStoreError("enrollment", "count", "query failed", MapError(err))
	}
	return n, nil
}

// CountAllByCourse implements store.EnrollmentStore.CountAllByCourse.
func (s *PostgresEnrollmentStore) CountAllByCourse(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT course_code, COUNT(*) FROM enrollments GROUP BY course_code`)
	if err != nil {
		return nil, store.NewStoreError("enrollment", "count_all", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var code string
		var n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, store.NewStoreError("enrollment", "count_all", "scan failed", err)
		}
		counts[code] = n
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("enrollment", "count_all", "iteration failed", err)
	}
	return counts, nil
}

// ListByStudent implements store.EnrollmentStore.ListByStudent.
func (s *PostgresEnrollmentStore) ListByStudent(ctx context.Context, studentID string) ([]*domain.Enrollment, error) {
	return s.list(ctx, "list_by_student", `
		SELECT student_id, course_code, enrollment_date
		FROM enrollments
		WHERE student_id = $1
		ORDER BY course_code
	`, studentID)
}

// ListAll implements store.EnrollmentStore.ListAll.
func (s *PostgresEnrollmentStore) ListAll(ctx context.Context) ([]*domain.Enrollment, error) {
	return s.list(ctx, "list_all", `
		SELECT student_id, course_code, enrollment_date
		FROM enrollments
		ORDER BY course_code, student_id
	`)
}

func (s *PostgresEnrollmentStore) list(ctx context.Context, op, query string, args ...any) ([]*domain.Enrollment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("enrollment", op, "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Enrollment
	for rows.Next() {
		var e domain.Enrollment
		if err := rows.Scan(&e.StudentID, &e.CourseCode, &e.EnrollmentDate); err != nil {
			return nil, store.NewStoreError("enrollment", op, "scan failed", err)
		}
		e.EnrollmentDate = domain.TruncateToDay(e.EnrollmentDate)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("enrollment", op, "iteration failed", err)
	}
	return out, nil
}

// Delete implements store.EnrollmentStore.Delete.
func (s *PostgresEnrollmentStore) Delete(ctx context.Context, studentID, courseCode string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM enrollments WHERE student_id = $1 AND course_code = $2`,
		studentID, courseCode,
	)
	if err != nil {
		return store.NewStoreError("enrollment", "delete", "delete failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrEnrollmentNotFound); err != nil {
		return err
	}

	log.Info("enrollment deleted",
		slog.String("student_id", studentID),
		slog.String("course_code", courseCode))
	return nil
}

// DeleteByCourse implements store.EnrollmentStore.DeleteByCourse.
func (s *PostgresEnrollmentStore) DeleteByCourse(ctx context.Context, courseCode string) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM enrollments WHERE course_code = $1`, courseCode)
	if err != nil {
		return 0, store.NewStoreError("enrollment", "delete_by_course", "delete failed", MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("enrollment", "delete_by_course", "rows affected unavailable", err)
	}

	log.Info("course enrollments deleted",
		slog.String("course_code", courseCode),
		slog.Int64("deleted", n))
	return int(n), nil
}
