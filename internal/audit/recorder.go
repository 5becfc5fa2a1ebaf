// Package audit delivers usage log entries to the usage log store
// asynchronously, so that request handlers never wait on audit writes.
package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/metrics"
	"github.com/campuslab/elective-api/internal/store"
)

// Common errors returned by the recorder
var (
	ErrRecorderClosed = errors.New("audit recorder is closed")
	ErrQueueFull      = errors.New("audit queue is full")
)

// writeTimeout bounds a single store write made by a worker.
const writeTimeout = 5 * time.Second

// Recorder accepts audit entries.
type Recorder interface {
	// Record queues an entry. It never blocks; a full queue drops the entry.
	Record(ctx context.Context, userType domain.UserType, userID, action string) error
}

// Config sizes the recorder.
type Config struct {
	// QueueSize is the number of entries buffered ahead of the workers.
	// If zero or negative, defaults to 1.
	QueueSize int
	// WorkerCount is the number of goroutines writing to the store.
	// If zero or negative, defaults to 1.
	WorkerCount int
}

// AsyncRecorder is a bounded queue drained by a fixed pool of workers.
type AsyncRecorder struct {
	entries     chan *domain.UsageLog
	store       store.UsageLogStore
	workerCount int
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time

	// mu guards closed and the send on entries against a concurrent Stop.
	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

var _ Recorder = (*AsyncRecorder)(nil)

// NewAsyncRecorder creates a recorder writing to s. Call Start before
// recording and Stop on shutdown.
func NewAsyncRecorder(s store.UsageLogStore, cfg Config, m *metrics.Metrics, logger *slog.Logger) *AsyncRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "audit_recorder"))

	if cfg.QueueSize <= 0 {
		logger.Warn("invalid audit queue size specified, using default",
			"specified_size", cfg.QueueSize,
			"default_size", 1)
		cfg.QueueSize = 1
	}
	if cfg.WorkerCount <= 0 {
		logger.Warn("invalid audit worker count specified, using default",
			"specified_count", cfg.WorkerCount,
			"default_count", 1)
		cfg.WorkerCount = 1
	}

	return &AsyncRecorder{
		entries:     make(chan *domain.UsageLog, cfg.QueueSize),
		store:       s,
		workerCount: cfg.WorkerCount,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (r *AsyncRecorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true

	r.logger.Info("starting audit workers", "worker_count", r.workerCount)
	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

func (r *AsyncRecorder) worker(id int) {
	defer r.wg.Done()
	log := r.logger.With("worker_id", id)

	for entry := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := r.store.Create(ctx, entry)
		cancel()
		if err != nil {
			r.metrics.AuditEntry("failed")
			log.Error("failed to write usage log",
				"error", err,
				"user_id", entry.UserID,
				"action", entry.Action)
			continue
		}
		r.metrics.AuditEntry("written")
	}
	log.Debug("audit worker stopped")
}

// Record implements Recorder.
func (r *AsyncRecorder) Record(ctx context.Context, userType domain.UserType, userID, action string) error {
	entry, err := domain.NewUsageLog(userType, userID, action, r.now())
	if err != nil {
		return fmt.Errorf("invalid usage log: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrRecorderClosed
	}

	select {
	case r.entries <- entry:
		return nil
	default:
		r.metrics.AuditEntry("dropped")
		r.logger.WarnContext(ctx, "audit queue full, dropping entry",
			"user_id", entry.UserID,
			"action", entry.Action,
			"queue_cap", cap(r.entries))
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(r.entries))
	}
}

// Stop stops accepting entries and waits for queued entries to be written,
// or for ctx to end.
func (r *AsyncRecorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.entries)
	}
	started := r.started
	r.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("audit recorder stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("audit recorder stop timed out", "pending", len(r.entries))
		return ctx.Err()
	}
}

// NopRecorder discards every entry.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, domain.UserType, string, string) error { return nil }
