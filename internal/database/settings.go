package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tasuku-app/tasuku/internal/models"
)

// SettingsRepository handles per-user dashboard settings.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the user's settings, or the defaults when none are stored.
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*models.UserSettings, error) {
	settings := &models.UserSettings{}
	query := `
		SELECT user_id, column_label1, column_label2, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.ColumnLabel1,
		&settings.ColumnLabel2,
		&settings.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

// Upsert writes the user's settings, creating the row on first save.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, column_label1, column_label2, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET column_label1 = EXCLUDED.column_label1,
		    column_label2 = EXCLUDED.column_label2,
		    updated_at = EXCLUDED.updated_at
	`

	settings.UpdatedAt = time.Now()
	if _, err := r.db.ExecContext(ctx, query,
		settings.UserID,
		settings.ColumnLabel1,
		settings.ColumnLabel2,
		settings.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	return nil
}
