package workers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/database"
	"github.com/tasuku-app/tasuku/internal/queue"
)

// Pusher delivers a chat message to a user. Satisfied by the messaging
// client; faked in tests.
type Pusher interface {
	Push(ctx context.Context, to string, texts []string) error
}

// Notifier processes notification jobs: recording dashboard visits and
// forwarding operator alerts. Failures here never affect the request path
// that enqueued the job.
type Notifier struct {
	accessLogs  database.AccessLogRepositoryInterface
	pusher      Pusher
	adminUserID string
	logger      *zap.Logger
}

// NewNotifier creates a notifier.
func NewNotifier(accessLogs database.AccessLogRepositoryInterface, pusher Pusher, adminUserID string, logger *zap.Logger) *Notifier {
	return &Notifier{
		accessLogs:  accessLogs,
		pusher:      pusher,
		adminUserID: adminUserID,
		logger:      logger,
	}
}

// ProcessJob handles one delivered message, acknowledging on success and
// requeueing on failure while retries remain.
func (n *Notifier) ProcessJob(ctx context.Context, msg *queue.Message) error {
	job := msg.Job()

	var err error
	switch job.Type {
	case queue.JobTypeAccessLog:
		err = n.recordVisit(ctx, job)
	case queue.JobTypeAdminAlert:
		err = n.alertAdmin(ctx, job)
	default:
		n.logger.Warn("unknown_job_type", zap.String("job_type", string(job.Type)))
		return msg.Nack(false)
	}

	if err != nil {
		job.IncrementRetry()
		requeue := job.CanRetry()
		n.logger.Error("job_processing_failed",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("retry_count", job.RetryCount),
			zap.Bool("requeue", requeue),
			zap.Error(err),
		)
		if nackErr := msg.Nack(requeue); nackErr != nil {
			return fmt.Errorf("failed to nack job: %w", nackErr)
		}
		return err
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

func (n *Notifier) recordVisit(ctx context.Context, job *queue.Job) error {
	return n.accessLogs.Insert(ctx, job.UserID, job.Path, job.CreatedAt)
}

func (n *Notifier) alertAdmin(ctx context.Context, job *queue.Job) error {
	if n.adminUserID == "" {
		n.logger.Warn("admin_alert_dropped_no_admin_configured",
			zap.String("job_id", job.ID.String()),
		)
		return nil
	}
	return n.pusher.Push(ctx, n.adminUserID, []string{job.Message})
}
