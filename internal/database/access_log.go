package database

import (
	"context"
	"fmt"
	"time"
)

// AccessLogRepository records dashboard visits. Writes happen off the
// request path, in the notification worker.
type AccessLogRepository struct {
	db *DB
}

// NewAccessLogRepository creates a new access log repository
func NewAccessLogRepository(db *DB) *AccessLogRepository {
	return &AccessLogRepository{db: db}
}

// Insert records one visit.
func (r *AccessLogRepository) Insert(ctx context.Context, userID, path string, visitedAt time.Time) error {
	query := `INSERT INTO access_logs (user_id, path, visited_at) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, userID, path, visitedAt); err != nil {
		return fmt.Errorf("failed to insert access log: %w", err)
	}

	return nil
}
