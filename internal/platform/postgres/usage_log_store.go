package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campuslab/elective-api/internal/domain"
	"github.com/campuslab/elective-api/internal/store"
)

// PostgresUsageLogStore implements store.UsageLogStore.
type PostgresUsageLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUsageLogStore creates a new PostgreSQL implementation of the UsageLogStore interface.
func NewPostgresUsageLogStore(db store.DBTX, logger *slog.Logger) *PostgresUsageLogStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUsageLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "usage_log_store")),
	}
}

var _ store.UsageLogStore = (*PostgresUsageLogStore)(nil)

// Create implements store.UsageLogStore.Create.
func (s *PostgresUsageLogStore) Create(ctx context.Context, entry *domain.UsageLog) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_logs (logged_at, user_type, user_id, action)
		VALUES ($1, $2, $3, $4)
	`, entry.Timestamp, string(entry.UserType), entry.UserID, entry.Action)
	if err != nil {
		return store.NewStoreError("usage_log", "create", "insert failed", MapError(err))
	}
	return nil
}

// List implements store.UsageLogStore.List.
func (s *PostgresUsageLogStore) List(ctx context.Context, userID string, limit int) ([]*domain.UsageLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT logged_at, user_type, user_id, action
		FROM usage_logs
		WHERE $1 = '' OR user_id = $1
		ORDER BY logged_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, store.NewStoreError("usage_log", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.UsageLog
	for rows.Next() {
		var entry domain.UsageLog
		var userType string
		if err := rows.Scan(&entry.Timestamp, &userType, &entry.UserID, &entry.Action); err != nil {
			return nil, store.NewStoreError("usage_log", "list", "scan failed", err)
		}
		entry.UserType = domain.UserType(userType)
		entry.Timestamp = entry.Timestamp.UTC()
		out = append(out, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("usage_log", "list", "iteration failed", err)
	}
	return out, nil
}
