// Package memstore provides in-memory implementations of the store
// interfaces. It backs unit tests and local runs without PostgreSQL and
// keeps the same invariants as the PostgreSQL stores.
package memstore

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/store"
)

type enrollmentKey struct {
	studentID  string
	courseCode string
}

// Store holds every entity in process memory. The zero value is not usable;
// call New.
type Store struct {
	mu          sync.RWMutex
	enrollments map[enrollmentKey]domain.Enrollment
	capacities  map[string]domain.CapacityRecord
	courses     map[string]domain.Course
	grades      []domain.GradeRecord
	usageLogs   []domain.UsageLog

	locksMu     sync.Mutex
	courseLocks map[string]*sync.Mutex
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		enrollments: make(map[enrollmentKey]domain.Enrollment),
		capacities:  make(map[string]domain.CapacityRecord),
		courses:     make(map[string]domain.Course),
		courseLocks: make(map[string]*sync.Mutex),
	}
}

var (
	_ store.EnrollmentStore = (*Store)(nil)
	_ store.CapacityStore   = (*CapacityStore)(nil)
	_ store.GradeStore      = (*GradeStore)(nil)
	_ store.CourseStore     = (*CourseStore)(nil)
	_ store.UsageLogStore   = (*UsageLogStore)(nil)
)

func (s *Store) courseLock(courseCode string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.courseLocks[courseCode]
	if !ok {
		l = &sync.Mutex{}
		s.courseLocks[courseCode] = l
	}
	return l
}

// Enroll implements store.EnrollmentStore.Enroll. Attempts on the same
// course serialize on a per-course mutex.
func (s *Store) Enroll(ctx context.Context, e *domain.Enrollment, defaultSeats int) (domain.EnrollOutcome, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := e.Validate(); err != nil {
		return "", store.NewStoreError("enrollment", "enroll", "invalid enrollment", errorsJoin(store.ErrInvalidEntity, err))
	}
	if defaultSeats < 1 {
		return "", store.NewStoreError("enrollment", "enroll", "invalid default seats", errorsJoin(store.ErrInvalidEntity, domain.ErrInvalidCapacity))
	}

	l := s.courseLock(e.CourseCode)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := enrollmentKey{e.StudentID, e.CourseCode}
	if _, ok := s.enrollments[key]; ok {
		return domain.EnrollOutcomeAlreadyEnrolled, nil
	}

	capacity := defaultSeats
	if rec, ok := s.capacities[e.CourseCode]; ok {
		capacity = rec.TotalSeats
	}
	if s.countLocked(e.CourseCode) >= capacity {
		return domain.EnrollOutcomeCourseFull, nil
	}

	s.enrollments[key] = *e
	return domain.EnrollOutcomeCommitted, nil
}

func (s *Store) countLocked(courseCode string) int {
	n := 0
	for k := range s.enrollments {
		if k.courseCode == courseCode {
			n++
		}
	}
	return n
}

// Exists implements store.EnrollmentStore.Exists.
func (s *Store) Exists(_ context.Context, studentID, courseCode string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.enrollments[enrollmentKey{studentID, courseCode}]
	return ok, nil
}

// CountByCourse implements store.EnrollmentStore.CountByCourse.
func (s *Store) CountByCourse(_ context.Context, courseCode string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked(courseCode), nil
}

// CountAllByCourse implements store.EnrollmentStore.CountAllByCourse.
func (s *Store) CountAllByCourse(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for k := range s.enrollments {
		counts[k.courseCode]++
	}
	return counts, nil
}

// ListByStudent implements store.EnrollmentStore.ListByStudent.
func (s *Store) ListByStudent(_ context.Context, studentID string) ([]*domain.Enrollment, error) {
	return s.listEnrollments(func(k enrollmentKey) bool { return k.studentID == studentID }), nil
}

// ListAll implements store.EnrollmentStore.ListAll.
func (s *Store) ListAll(_ context.Context) ([]*domain.Enrollment, error) {
	return s.listEnrollments(func(enrollmentKey) bool { return true }), nil
}

func (s *Store) listEnrollments(keep func(enrollmentKey) bool) []*domain.Enrollment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Enrollment
	for k, e := range s.enrollments {
		if keep(k) {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CourseCode != out[j].CourseCode {
			return out[i].CourseCode < out[j].CourseCode
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}

// Delete implements store.EnrollmentStore.Delete.
func (s *Store) Delete(_ context.Context, studentID, courseCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := enrollmentKey{studentID, courseCode}
	if _, ok := s.enrollments[key]; !ok {
		return store.ErrEnrollmentNotFound
	}
	delete(s.enrollments, key)
	return nil
}

// DeleteByCourse implements store.EnrollmentStore.DeleteByCourse.
func (s *Store) DeleteByCourse(_ context.Context, courseCode string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.enrollments {
		if k.courseCode == courseCode {
			delete(s.enrollments, k)
			n++
		}
	}
	return n, nil
}

// Capacities returns a store.CapacityStore view of s.
func (s *Store) Capacities() *CapacityStore { return &CapacityStore{s: s} }

// Grades returns a store.GradeStore view of s.
func (s *Store) Grades() *GradeStore { return &GradeStore{s: s} }

// Courses returns a store.CourseStore view of s.
func (s *Store) Courses() *CourseStore { return &CourseStore{s: s} }

// UsageLogs returns a store.UsageLogStore view of s.
func (s *Store) UsageLogs() *UsageLogStore { return &UsageLogStore{s: s} }

// CapacityStore is the capacity view of a Store.
type CapacityStore struct{ s *Store }

// Get implements store.CapacityStore.Get.
func (c *CapacityStore) Get(_ context.Context, courseCode string) (*domain.CapacityRecord, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	rec, ok := c.s.capacities[courseCode]
	if !ok {
		return nil, store.ErrCapacityNotFound
	}
	return &rec, nil
}

// Upsert implements store.CapacityStore.Upsert.
func (c *CapacityStore) Upsert(_ context.Context, rec *domain.CapacityRecord) error {
	if err := rec.Validate(); err != nil {
		return errorsJoin(store.ErrInvalidEntity, err)
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.capacities[rec.CourseCode] = *rec
	return nil
}

// List implements store.CapacityStore.List.
func (c *CapacityStore) List(_ context.Context) ([]*domain.CapacityRecord, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	out := make([]*domain.CapacityRecord, 0, len(c.s.capacities))
	for _, rec := range c.s.capacities {
		rec := rec
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseCode < out[j].CourseCode })
	return out, nil
}

// GradeStore is the grade view of a Store.
type GradeStore struct{ s *Store }

// ListAll implements store.GradeStore.ListAll.
func (g *GradeStore) ListAll(_ context.Context) ([]domain.GradeRecord, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()
	return append([]domain.GradeRecord(nil), g.s.grades...), nil
}

// CreateMultiple implements store.GradeStore.CreateMultiple.
func (g *GradeStore) CreateMultiple(_ context.Context, records []domain.GradeRecord) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	g.s.grades = append(g.s.grades, records...)
	return nil
}

// WithTx implements store.GradeStore.WithTx. Memory writes are not
// transactional; the returned store is g itself.
func (g *GradeStore) WithTx(*sql.Tx) store.GradeStore { return g }

// CourseStore is the catalog view of a Store.
type CourseStore struct{ s *Store }

// Get implements store.CourseStore.Get.
func (c *CourseStore) Get(_ context.Context, code string) (*domain.Course, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	course, ok := c.s.courses[code]
	if !ok {
		return nil, store.ErrCourseNotFound
	}
	return &course, nil
}

// List implements store.CourseStore.List.
func (c *CourseStore) List(_ context.Context) ([]*domain.Course, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	out := make([]*domain.Course, 0, len(c.s.courses))
	for _, course := range c.s.courses {
		course := course
		out = append(out, &course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// UpsertMultiple implements store.CourseStore.UpsertMultiple.
func (c *CourseStore) UpsertMultiple(_ context.Context, courses []*domain.Course) error {
	for _, course := range courses {
		if err := course.Validate(); err != nil {
			return errorsJoin(store.ErrInvalidEntity, err)
		}
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, course := range courses {
		c.s.courses[course.Code] = *course
	}
	return nil
}

// WithTx implements store.CourseStore.WithTx.
func (c *CourseStore) WithTx(*sql.Tx) store.CourseStore { return c }

// UsageLogStore is the audit view of a Store.
type UsageLogStore struct{ s *Store }

// Create implements store.UsageLogStore.Create.
func (u *UsageLogStore) Create(_ context.Context, entry *domain.UsageLog) error {
	if err := entry.Validate(); err != nil {
		return errorsJoin(store.ErrInvalidEntity, err)
	}
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.usageLogs = append(u.s.usageLogs, *entry)
	return nil
}

// List implements store.UsageLogStore.List.
func (u *UsageLogStore) List(_ context.Context, userID string, limit int) ([]*domain.UsageLog, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	var out []*domain.UsageLog
	for i := len(u.s.usageLogs) - 1; i >= 0 && len(out) < limit; i-- {
		entry := u.s.usageLogs[i]
		if userID == "" || entry.UserID == userID {
			out = append(out, &entry)
		}
	}
	return out, nil
}
