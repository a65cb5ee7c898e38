package models

import "time"

// Default labels for the two customizable dashboard columns.
const (
	DefaultColumnLabel1 = "開発"
	DefaultColumnLabel2 = "アイデア"
)

// UserSettings holds per-user dashboard customization: two freeform column
// labels. Reads return defaults when no row exists; writes upsert.
type UserSettings struct {
	UserID       string    `json:"user_id"`
	ColumnLabel1 string    `json:"column_label1"`
	ColumnLabel2 string    `json:"column_label2"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings used when a user has never saved any.
func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:       userID,
		ColumnLabel1: DefaultColumnLabel1,
		ColumnLabel2: DefaultColumnLabel2,
	}
}
