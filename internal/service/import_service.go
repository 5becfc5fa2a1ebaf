package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/campuslab/elective-api/internal/audit"
	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/platform/logger"
	"github.com/campuslab/elective-api/internal/recommend"
	"github.com/campuslab/elective-api/internal/store"
)

// ImportService loads data owned by external collaborators: historical
// grades and the course catalog. Each import is all-or-nothing.
type ImportService interface {
	// ImportGrades validates and appends grade records in one transaction
	// and returns how many were stored. Malformed records fail the whole
	// import with an error wrapping recommend.ErrDataFormat.
	ImportGrades(ctx context.Context, records []domain.GradeRecord, actor string) (int, error)

	// ImportCourses creates or replaces catalog entries in one transaction.
	ImportCourses(ctx context.Context, courses []*domain.Course, actor string) (int, error)
}

// importServiceImpl implements the ImportService interface
type importServiceImpl struct {
	db       *sql.DB
	grades   store.GradeStore
	courses  store.CourseStore
	recorder audit.Recorder
	logger   *slog.Logger
}

// NewImportService creates a new ImportService.
// It returns an error if any of the required dependencies are nil.
func NewImportService(
	db *sql.DB,
	grades store.GradeStore,
	courses store.CourseStore,
	recorder audit.Recorder,
	logger *slog.Logger,
) (ImportService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if grades == nil {
		return nil, domain.NewValidationError("grades", "cannot be nil", domain.ErrValidation)
	}
	if courses == nil {
		return nil, domain.NewValidationError("courses", "cannot be nil", domain.ErrValidation)
	}
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &importServiceImpl{
		db:       db,
		grades:   grades,
		courses:  courses,
		recorder: recorder,
		logger:   logger.With(slog.String("component", "import_service")),
	}, nil
}

// ImportGrades implements ImportService.ImportGrades
func (s *importServiceImpl) ImportGrades(ctx context.Context, records []domain.GradeRecord, actor string) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(records) == 0 {
		return 0, ErrEmptyImport
	}

	clean := make([]domain.GradeRecord, len(records))
	for i, r := range records {
		r.StudentID = strings.TrimSpace(r.StudentID)
		r.CourseCode = strings.TrimSpace(r.CourseCode)
		clean[i] = r
	}
	// The matrix builder applies the same field rules the recommendation
	// session will, so a stored snapshot always builds.
	if _, err := recommend.BuildGradeMatrix(clean); err != nil {
		log.Warn("rejected malformed grade import",
			slog.String("error", err.Error()),
			slog.Int("record_count", len(clean)))
		return 0, err
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.grades.WithTx(tx).CreateMultiple(ctx, clean)
	})
	if err != nil {
		log.Error("failed to import grade records",
			slog.String("error", err.Error()),
			slog.Int("record_count", len(clean)))
		return 0, fmt.Errorf("import grades: %w", err)
	}

	log.Info("grade records imported", slog.Int("record_count", len(clean)))
	s.record(ctx, actor, fmt.Sprintf("import_grades:%d", len(clean)))
	return len(clean), nil
}

// ImportCourses implements ImportService.ImportCourses
func (s *importServiceImpl) ImportCourses(ctx context.Context, courses []*domain.Course, actor string) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(courses) == 0 {
		return 0, ErrEmptyImport
	}
	for i, c := range courses {
		if c == nil {
			return 0, domain.NewValidationError(fmt.Sprintf("courses[%d]", i), "cannot be null", domain.ErrValidation)
		}
		c.Code = strings.TrimSpace(c.Code)
		if err := c.Validate(); err != nil {
			return 0, domain.NewValidationError(fmt.Sprintf("courses[%d].code", i), "is required", err)
		}
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.courses.WithTx(tx).UpsertMultiple(ctx, courses)
	})
	if err != nil {
		log.Error("failed to import courses",
			slog.String("error", err.Error()),
			slog.Int("course_count", len(courses)))
		return 0, fmt.Errorf("import courses: %w", err)
	}

	log.Info("courses imported", slog.Int("course_count", len(courses)))
	s.record(ctx, actor, fmt.Sprintf("import_courses:%d", len(courses)))
	return len(courses), nil
}

func (s *importServiceImpl) record(ctx context.Context, actor, action string) {
	if err := s.recorder.Record(ctx, domain.UserTypeHOD, actor, action); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to record usage log",
			slog.String("error", err.Error()),
			slog.String("action", action))
	}
}
