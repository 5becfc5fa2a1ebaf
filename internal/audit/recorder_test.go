package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/platform/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingStore blocks every Create until release is closed.
type blockingStore struct {
	release chan struct{}
	mu      sync.Mutex
	written []*domain.UsageLog
}

func (b *blockingStore) Create(_ context.Context, entry *domain.UsageLog) error {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.written = append(b.written, entry)
	return nil
}

func (b *blockingStore) List(context.Context, string, int) ([]*domain.UsageLog, error) {
	return nil, errors.New("not implemented")
}

func TestAsyncRecorder_DeliversOnStop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	logs := memstore.New().UsageLogs()

	r := NewAsyncRecorder(logs, Config{QueueSize: 16, WorkerCount: 2}, nil, nil)
	r.Start()

	require.NoError(t, r.Record(ctx, domain.UserTypeStudent, "S001", "enroll:MAT1002"))
	require.NoError(t, r.Record(ctx, domain.UserTypeHOD, "hod", "set_capacity:MAT1002:40"))

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, r.Stop(stopCtx))

	got, err := logs.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	assert.ErrorIs(t, r.Record(ctx, domain.UserTypeStudent, "S001", "late"), ErrRecorderClosed)
}

func TestAsyncRecorder_DropsWhenFull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	bs := &blockingStore{release: make(chan struct{})}

	// Without Start nothing drains the queue.
	r := NewAsyncRecorder(bs, Config{QueueSize: 1, WorkerCount: 1}, nil, nil)
	require.NoError(t, r.Record(ctx, domain.UserTypeStudent, "S001", "a"))
	assert.ErrorIs(t, r.Record(ctx, domain.UserTypeStudent, "S001", "b"), ErrQueueFull)

	r.Start()
	close(bs.release)
	require.NoError(t, r.Stop(ctx))
	assert.Len(t, bs.written, 1)
}

func TestAsyncRecorder_RejectsInvalidEntry(t *testing.T) {
	t.Parallel()
	r := NewAsyncRecorder(memstore.New().UsageLogs(), Config{QueueSize: 1, WorkerCount: 1}, nil, nil)
	err := r.Record(context.Background(), domain.UserType("guest"), "x", "y")
	assert.ErrorIs(t, err, domain.ErrInvalidUserType)
}

func TestAsyncRecorder_StopHonorsContext(t *testing.T) {
	t.Parallel()
	bs := &blockingStore{release: make(chan struct{})}
	defer close(bs.release)

	r := NewAsyncRecorder(bs, Config{QueueSize: 4, WorkerCount: 1}, nil, nil)
	r.Start()
	require.NoError(t, r.Record(context.Background(), domain.UserTypeStudent, "S001", "a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Stop(ctx), context.DeadlineExceeded)
}

func TestNewAsyncRecorder_Defaults(t *testing.T) {
	t.Parallel()
	r := NewAsyncRecorder(memstore.New().UsageLogs(), Config{}, nil, nil)
	assert.Equal(t, 1, cap(r.entries))
	assert.Equal(t, 1, r.workerCount)
}
