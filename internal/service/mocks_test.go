package service

import (
	"context"
	"sync"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockEnrollmentStore mocks the store.EnrollmentStore interface
type MockEnrollmentStore struct {
	mock.Mock
}

func (m *MockEnrollmentStore) Enroll(ctx context.Context, e *domain.Enrollment, defaultSeats int) (domain.EnrollOutcome, error) {
	args := m.Called(ctx, e, defaultSeats)
	return args.Get(0).(domain.EnrollOutcome), args.Error(1)
}

func (m *MockEnrollmentStore) Exists(ctx context.Context, studentID, courseCode string) (bool, error) {
	args := m.Called(ctx, studentID, courseCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockEnrollmentStore) CountByCourse(ctx context.Context, courseCode string) (int, error) {
	args := m.Called(ctx, courseCode)
	return args.Int(0), args.Error(1)
}

func (m *MockEnrollmentStore) CountAllByCourse(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockEnrollmentStore) ListByStudent(ctx context.Context, studentID string) ([]*domain.Enrollment, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Enrollment), args.Error(1)
}

func (m *MockEnrollmentStore) ListAll(ctx context.Context) ([]*domain.Enrollment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Enrollment), args.Error(1)
}

func (m *MockEnrollmentStore) Delete(ctx context.Context, studentID, courseCode string) error {
	args := m.Called(ctx, studentID, courseCode)
	return args.Error(0)
}

func (m *MockEnrollmentStore) DeleteByCourse(ctx context.Context, courseCode string) (int, error) {
	args := m.Called(ctx, courseCode)
	return args.Int(0), args.Error(1)
}

// recordingRecorder keeps every audit action it receives.
type recordingRecorder struct {
	mu      sync.Mutex
	entries []recordedEntry
}

type recordedEntry struct {
	UserType domain.UserType
	UserID   string
	Action   string
}

func (r *recordingRecorder) Record(_ context.Context, userType domain.UserType, userID, action string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recordedEntry{userType, userID, action})
	return nil
}

func (r *recordingRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}
