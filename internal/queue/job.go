package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of notification job.
type JobType string

const (
	// JobTypeAccessLog records a dashboard visit.
	JobTypeAccessLog JobType = "access_log"
	// JobTypeAdminAlert pushes a chat message to the operator.
	JobTypeAdminAlert JobType = "admin_alert"
)

// Job is one fire-and-forget notification. Enqueue failures are swallowed by
// callers; these jobs are never on a request's critical path.
type Job struct {
	ID         uuid.UUID `json:"id"`
	Type       JobType   `json:"type"`
	UserID     string    `json:"user_id"`
	Path       string    `json:"path,omitempty"`
	Message    string    `json:"message,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	RetryCount int       `json:"retry_count"`
	MaxRetries int       `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
