package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tasuku-app/tasuku/internal/models"
)

// TaskRepositoryInterface defines the task store operations the command
// executor and handlers depend on, enabling in-memory fakes in tests.
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	CreateBatch(ctx context.Context, tasks []*models.Task) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.Task, error)
	ListActive(ctx context.Context, userID string) ([]*models.Task, error)
	ListByUser(ctx context.Context, userID string, status *models.Status) ([]*models.Task, error)
	ListActiveAllUsers(ctx context.Context) ([]*models.Task, error)
	UpdateTitle(ctx context.Context, userID string, id uuid.UUID, title string) error
	UpdatePriority(ctx context.Context, userID string, id uuid.UUID, priority models.Priority) error
	UpdateStatus(ctx context.Context, userID string, id uuid.UUID, status models.Status) error
	UpdateSortOrder(ctx context.Context, userID string, id uuid.UUID, sortOrder int) error
	HardDelete(ctx context.Context, userID string, id uuid.UUID) error
}

// SettingsRepositoryInterface defines the settings store operations.
type SettingsRepositoryInterface interface {
	Get(ctx context.Context, userID string) (*models.UserSettings, error)
	Upsert(ctx context.Context, settings *models.UserSettings) error
}

// AccessLogRepositoryInterface defines the access log store operations.
type AccessLogRepositoryInterface interface {
	Insert(ctx context.Context, userID, path string, visitedAt time.Time) error
}

// Ensure concrete types implement the interfaces
var (
	_ TaskRepositoryInterface      = (*TaskRepository)(nil)
	_ SettingsRepositoryInterface  = (*SettingsRepository)(nil)
	_ AccessLogRepositoryInterface = (*AccessLogRepository)(nil)
)
