package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tasuku-app/tasuku/internal/models"
)

// ErrTaskNotFound is returned when a task does not exist for the given user.
var ErrTaskNotFound = errors.New("task not found")

// taskColumns is the canonical column list scanned into a models.Task.
const taskColumns = "id, user_id, title, category, priority, status, sort_order, created_at, updated_at"

// activeStatusFilter excludes statuses outside the default inbox view.
const activeStatusFilter = "status NOT IN ('done', 'deleted', 'on_hold', 'watching')"

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, title, category, priority, status, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Category,
		task.Priority,
		task.Status,
		task.SortOrder,
		now,
		now,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// CreateBatch inserts the given tasks one row at a time. The core logic uses
// no multi-row transactions; a failure leaves earlier rows in place.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []*models.Task) error {
	for _, task := range tasks {
		if err := r.Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a single task scoped to its owning user.
func (r *TaskRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND id = $2`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// ListActive retrieves the user's active tasks (the default inbox view).
// Ordering is left to the renderer; rows come back in creation order.
func (r *TaskRepository) ListActive(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND ` + activeStatusFilter + ` ORDER BY created_at ASC`

	return r.queryTasks(ctx, query, userID)
}

// ListByUser retrieves all tasks for a user, optionally filtered by status.
func (r *TaskRepository) ListByUser(ctx context.Context, userID string, status *models.Status) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []any{userID}

	if status != nil {
		query += " AND status = $2"
		args = append(args, string(*status))
	}

	query += " ORDER BY created_at ASC"

	return r.queryTasks(ctx, query, args...)
}

// ListActiveAllUsers retrieves active tasks across every user, for the admin
// aggregate view. This is the only query not scoped to a single user.
func (r *TaskRepository) ListActiveAllUsers(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + activeStatusFilter + ` ORDER BY user_id, created_at ASC`

	return r.queryTasks(ctx, query)
}

// UpdateTitle rewrites a task's title. Callers must reject empty titles.
func (r *TaskRepository) UpdateTitle(ctx context.Context, userID string, id uuid.UUID, title string) error {
	query := `UPDATE tasks SET title = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`
	return r.exec(ctx, "update title", query, userID, id, title, time.Now())
}

// UpdatePriority sets a task's priority and resets its status to
// unprocessed. The reset is documented contract behavior for every
// priority-change entry point (chat command and priority-column drop).
func (r *TaskRepository) UpdatePriority(ctx context.Context, userID string, id uuid.UUID, priority models.Priority) error {
	query := `UPDATE tasks SET priority = $3, status = $4, updated_at = $5 WHERE user_id = $1 AND id = $2`
	return r.exec(ctx, "update priority", query, userID, id, priority, models.StatusUnprocessed, time.Now())
}

// UpdateStatus sets a task's status. No transition restrictions apply.
func (r *TaskRepository) UpdateStatus(ctx context.Context, userID string, id uuid.UUID, status models.Status) error {
	query := `UPDATE tasks SET status = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`
	return r.exec(ctx, "update status", query, userID, id, status, time.Now())
}

// UpdateSortOrder sets the manual display order within a column.
func (r *TaskRepository) UpdateSortOrder(ctx context.Context, userID string, id uuid.UUID, sortOrder int) error {
	query := `UPDATE tasks SET sort_order = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`
	return r.exec(ctx, "update sort order", query, userID, id, sortOrder, time.Now())
}

// HardDelete removes the row entirely, as opposed to the deleted status.
func (r *TaskRepository) HardDelete(ctx context.Context, userID string, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE user_id = $1 AND id = $2`
	return r.exec(ctx, "delete task", query, userID, id)
}

// exec runs a single-row mutation and maps zero affected rows to ErrTaskNotFound.
func (r *TaskRepository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var category sql.NullString
	var sortOrder sql.NullInt64

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&category,
		&task.Priority,
		&task.Status,
		&sortOrder,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if category.Valid {
		task.Category = category.String
	}
	if sortOrder.Valid {
		order := int(sortOrder.Int64)
		task.SortOrder = &order
	}

	return task, nil
}
