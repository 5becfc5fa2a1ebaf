package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/campuslab/elective-api/internal/audit"
	"github.com/campuslab/elective-api/internal/config"
	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/metrics"
	"github.com/campuslab/elective-api/internal/platform/logger"
	"github.com/campuslab/elective-api/internal/store"
	"github.com/sethvargo/go-retry"
)

// defaultRetryBase is the first backoff delay of a retried enrollment.
const defaultRetryBase = 10 * time.Millisecond

// EnrollmentService provides the capacity ledger and the enrollment transaction.
type EnrollmentService interface {
	// Enroll attempts to enroll studentID in courseCode on date.
	// Rejections (already enrolled, course full) are reported in the result
	// with a nil error. Transient transaction failures are retried with
	// identical inputs before an error is returned.
	Enroll(ctx context.Context, studentID, courseCode string, date time.Time) (*domain.EnrollResult, error)

	// GetCapacity returns the configured seats of a course, or the default
	// when the course has no capacity record.
	GetCapacity(ctx context.Context, courseCode string) (int, error)

	// SetCapacity creates or replaces the capacity of a course.
	// Returns an error wrapping domain.ErrInvalidCapacity before any write
	// when totalSeats < 1.
	SetCapacity(ctx context.Context, courseCode string, totalSeats int, actor string) error

	// CurrentOccupancy returns the live number of enrollments in a course.
	CurrentOccupancy(ctx context.Context, courseCode string) (int, error)

	// Occupancy returns seats, enrollments and free seats of one course.
	Occupancy(ctx context.Context, courseCode string) (*domain.CourseOccupancy, error)

	// ListOccupancy returns the occupancy of every known course ordered by
	// course code. A course is known when it is in the catalog, has a
	// capacity record or has enrollments.
	ListOccupancy(ctx context.Context) ([]domain.CourseOccupancy, error)

	// ListCapacities returns every capacity record.
	ListCapacities(ctx context.Context) ([]*domain.CapacityRecord, error)

	// ListEnrollments returns every enrollment.
	ListEnrollments(ctx context.Context) ([]*domain.Enrollment, error)

	// ListStudentEnrollments returns the enrollments of one student.
	ListStudentEnrollments(ctx context.Context, studentID string) ([]*domain.Enrollment, error)

	// DeleteEnrollment removes one enrollment. The error wraps
	// store.ErrNotFound when the pair is not enrolled.
	DeleteEnrollment(ctx context.Context, studentID, courseCode, actor string) error

	// DeleteCourseEnrollments removes every enrollment of a course and
	// returns how many were removed.
	DeleteCourseEnrollments(ctx context.Context, courseCode, actor string) (int, error)
}

// enrollmentServiceImpl implements the EnrollmentService interface
type enrollmentServiceImpl struct {
	enrollments  store.EnrollmentStore
	capacities   store.CapacityStore
	courses      store.CourseStore
	recorder     audit.Recorder
	metrics      *metrics.Metrics
	defaultSeats int
	maxRetries   int
	retryBase    time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
// It returns an error if any of the required stores are nil or cfg carries
// an invalid default seat count. A nil recorder discards audit entries and
// nil metrics record nothing.
func NewEnrollmentService(
	enrollments store.EnrollmentStore,
	capacities store.CapacityStore,
	courses store.CourseStore,
	recorder audit.Recorder,
	m *metrics.Metrics,
	cfg config.EnrollmentConfig,
	logger *slog.Logger,
) (EnrollmentService, error) {
	if enrollments == nil {
		return nil, domain.NewValidationError("enrollments", "cannot be nil", domain.ErrValidation)
	}
	if capacities == nil {
		return nil, domain.NewValidationError("capacities", "cannot be nil", domain.ErrValidation)
	}
	if courses == nil {
		return nil, domain.NewValidationError("courses", "cannot be nil", domain.ErrValidation)
	}
	if cfg.DefaultSeats < 1 {
		return nil, domain.NewValidationError("default_seats", "must be at least 1", domain.ErrInvalidCapacity)
	}
	if cfg.MaxRetries < 0 {
		return nil, domain.NewValidationError("max_retries", "cannot be negative", domain.ErrValidation)
	}
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &enrollmentServiceImpl{
		enrollments:  enrollments,
		capacities:   capacities,
		courses:      courses,
		recorder:     recorder,
		metrics:      m,
		defaultSeats: cfg.DefaultSeats,
		maxRetries:   cfg.MaxRetries,
		retryBase:    defaultRetryBase,
		now:          time.Now,
		logger:       logger.With(slog.String("component", "enrollment_service")),
	}, nil
}

// Enroll implements EnrollmentService.Enroll
func (s *enrollmentServiceImpl) Enroll(
	ctx context.Context,
	studentID, courseCode string,
	date time.Time,
) (*domain.EnrollResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	e, err := domain.NewEnrollment(studentID, courseCode, date)
	if err != nil {
		return nil, NewEnrollmentServiceError("enroll", "invalid enrollment", err)
	}

	backoff := retry.WithMaxRetries(
		uint64(s.maxRetries),
		retry.WithJitterPercent(20, retry.NewExponential(s.retryBase)),
	)

	var outcome domain.EnrollOutcome
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			s.metrics.EnrollRetry()
			log.Warn("retrying enrollment transaction",
				slog.Int("attempt", attempt),
				slog.String("student_id", e.StudentID),
				slog.String("course_code", e.CourseCode))
		}

		o, err := s.enrollments.Enroll(ctx, e, s.defaultSeats)
		if err != nil {
			if errors.Is(err, store.ErrTransactionFailed) {
				return retry.RetryableError(err)
			}
			return err
		}
		outcome = o
		return nil
	})
	if err != nil {
		s.metrics.EnrollAttempt("error")
		log.Error("enrollment failed",
			slog.String("error", err.Error()),
			slog.Int("attempts", attempt),
			slog.String("student_id", e.StudentID),
			slog.String("course_code", e.CourseCode))
		return nil, NewEnrollmentServiceError("enroll", "enrollment transaction failed", err)
	}

	s.metrics.EnrollAttempt(string(outcome))

	result := &domain.EnrollResult{Outcome: outcome}
	if outcome == domain.EnrollOutcomeCommitted {
		result.Enrollment = e
		s.record(ctx, domain.UserTypeStudent, e.StudentID, "enroll:"+e.CourseCode)
	} else {
		s.record(ctx, domain.UserTypeStudent, e.StudentID,
			fmt.Sprintf("enroll_rejected:%s:%s", e.CourseCode, outcome))
	}

	log.Info("enrollment attempt finished",
		slog.String("student_id", e.StudentID),
		slog.String("course_code", e.CourseCode),
		slog.String("outcome", string(outcome)))
	return result, nil
}

// record queues an audit entry. Audit failures never fail the operation.
func (s *enrollmentServiceImpl) record(ctx context.Context, userType domain.UserType, userID, action string) {
	if err := s.recorder.Record(ctx, userType, userID, action); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to record usage log",
			slog.String("error", err.Error()),
			slog.String("action", action))
	}
}

// GetCapacity implements EnrollmentService.GetCapacity
func (s *enrollmentServiceImpl) GetCapacity(ctx context.Context, courseCode string) (int, error) {
	rec, err := s.capacities.Get(ctx, strings.TrimSpace(courseCode))
	if err != nil {
		if store.IsNotFoundError(err) {
			return s.defaultSeats, nil
		}
		return 0, NewEnrollmentServiceError("get_capacity", "failed to read capacity", err)
	}
	return rec.TotalSeats, nil
}

// SetCapacity implements EnrollmentService.SetCapacity
func (s *enrollmentServiceImpl) SetCapacity(ctx context.Context, courseCode string, totalSeats int, actor string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rec, err := domain.NewCapacityRecord(strings.TrimSpace(courseCode), totalSeats, s.now())
	if err != nil {
		return NewEnrollmentServiceError("set_capacity", "invalid capacity", err)
	}
	if err := s.capacities.Upsert(ctx, rec); err != nil {
		log.Error("failed to save capacity",
			slog.String("error", err.Error()),
			slog.String("course_code", rec.CourseCode))
		return NewEnrollmentServiceError("set_capacity", "failed to save capacity", err)
	}

	log.Info("course capacity set",
		slog.String("course_code", rec.CourseCode),
		slog.Int("total_seats", rec.TotalSeats))
	s.record(ctx, domain.UserTypeHOD, actor, fmt.Sprintf("set_capacity:%s:%d", rec.CourseCode, rec.TotalSeats))
	return nil
}

// CurrentOccupancy implements EnrollmentService.CurrentOccupancy
func (s *enrollmentServiceImpl) CurrentOccupancy(ctx context.Context, courseCode string) (int, error) {
	n, err := s.enrollments.CountByCourse(ctx, strings.TrimSpace(courseCode))
	if err != nil {
		return 0, NewEnrollmentServiceError("current_occupancy", "failed to count enrollments", err)
	}
	return n, nil
}

// Occupancy implements EnrollmentService.Occupancy
func (s *enrollmentServiceImpl) Occupancy(ctx context.Context, courseCode string) (*domain.CourseOccupancy, error) {
	courseCode = strings.TrimSpace(courseCode)
	if courseCode == "" {
		return nil, NewEnrollmentServiceError("occupancy", "invalid course", domain.ErrEmptyCourseCode)
	}
	seats, err := s.GetCapacity(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.CurrentOccupancy(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	return &domain.CourseOccupancy{CourseCode: courseCode, TotalSeats: seats, Enrolled: enrolled}, nil
}

// ListOccupancy implements EnrollmentService.ListOccupancy
func (s *enrollmentServiceImpl) ListOccupancy(ctx context.Context) ([]domain.CourseOccupancy, error) {
	seats, err := s.seatMap(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.enrollments.CountAllByCourse(ctx)
	if err != nil {
		return nil, NewEnrollmentServiceError("list_occupancy", "failed to count enrollments", err)
	}
	catalog, err := s.courses.List(ctx)
	if err != nil {
		return nil, NewEnrollmentServiceError("list_occupancy", "failed to list courses", err)
	}

	known := make(map[string]struct{}, len(catalog)+len(seats)+len(counts))
	for _, c := range catalog {
		known[c.Code] = struct{}{}
	}
	for code := range seats {
		known[code] = struct{}{}
	}
	for code := range counts {
		known[code] = struct{}{}
	}

	out := make([]domain.CourseOccupancy, 0, len(known))
	for code := range known {
		total, ok := seats[code]
		if !ok {
			total = s.defaultSeats
		}
		out = append(out, domain.CourseOccupancy{CourseCode: code, TotalSeats: total, Enrolled: counts[code]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseCode < out[j].CourseCode })
	return out, nil
}

// seatMap returns configured seats keyed by course code.
func (s *enrollmentServiceImpl) seatMap(ctx context.Context) (map[string]int, error) {
	recs, err := s.capacities.List(ctx)
	if err != nil {
		return nil, NewEnrollmentServiceError("list_capacities", "failed to list capacities", err)
	}
	seats := make(map[string]int, len(recs))
	for _, r := range recs {
		seats[r.CourseCode] = r.TotalSeats
	}
	return seats, nil
}

// ListCapacities implements EnrollmentService.ListCapacities
func (s *enrollmentServiceImpl) ListCapacities(ctx context.Context) ([]*domain.CapacityRecord, error) {
	recs, err := s.capacities.List(ctx)
	if err != nil {
		return nil, NewEnrollmentServiceError("list_capacities", "failed to list capacities", err)
	}
	return recs, nil
}

// ListEnrollments implements EnrollmentService.ListEnrollments
func (s *enrollmentServiceImpl) ListEnrollments(ctx context.Context) ([]*domain.Enrollment, error) {
	all, err := s.enrollments.ListAll(ctx)
	if err != nil {
		return nil, NewEnrollmentServiceError("list_enrollments", "failed to list enrollments", err)
	}
	return all, nil
}

// ListStudentEnrollments implements EnrollmentService.ListStudentEnrollments
func (s *enrollmentServiceImpl) ListStudentEnrollments(ctx context.Context, studentID string) ([]*domain.Enrollment, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, NewEnrollmentServiceError("list_student_enrollments", "invalid student", domain.ErrEmptyStudentID)
	}
	list, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, NewEnrollmentServiceError("list_student_enrollments", "failed to list enrollments", err)
	}
	return list, nil
}

// DeleteEnrollment implements EnrollmentService.DeleteEnrollment
func (s *enrollmentServiceImpl) DeleteEnrollment(ctx context.Context, studentID, courseCode, actor string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	studentID, courseCode = strings.TrimSpace(studentID), strings.TrimSpace(courseCode)
	if err := s.enrollments.Delete(ctx, studentID, courseCode); err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("enrollment to delete not found",
				slog.String("student_id", studentID),
				slog.String("course_code", courseCode))
			return NewEnrollmentServiceError("delete_enrollment", "enrollment not found", err)
		}
		log.Error("failed to delete enrollment",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID),
			slog.String("course_code", courseCode))
		return NewEnrollmentServiceError("delete_enrollment", "failed to delete enrollment", err)
	}

	s.record(ctx, domain.UserTypeHOD, actor, fmt.Sprintf("delete_enrollment:%s:%s", courseCode, studentID))
	return nil
}

// DeleteCourseEnrollments implements EnrollmentService.DeleteCourseEnrollments
func (s *enrollmentServiceImpl) DeleteCourseEnrollments(ctx context.Context, courseCode, actor string) (int, error) {
	courseCode = strings.TrimSpace(courseCode)
	if courseCode == "" {
		return 0, NewEnrollmentServiceError("delete_course_enrollments", "invalid course", domain.ErrEmptyCourseCode)
	}
	n, err := s.enrollments.DeleteByCourse(ctx, courseCode)
	if err != nil {
		return 0, NewEnrollmentServiceError("delete_course_enrollments", "failed to delete enrollments", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("course enrollments deleted",
		slog.String("course_code", courseCode),
		slog.Int("removed", n))
	s.record(ctx, domain.UserTypeHOD, actor, fmt.Sprintf("delete_course_enrollments:%s:%d", courseCode, n))
	return n, nil
}
