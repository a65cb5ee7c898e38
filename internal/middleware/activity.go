package middleware

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tasuku-app/tasuku/internal/queue"
)

// AccessLog enqueues a visit-log job for each authenticated dashboard request.
// Queue failures never fail the request.
func AccessLog(jobs queue.JobQueue, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := UserIDFromContext(r); userID != "" {
				job := queue.NewJob(queue.JobTypeAccessLog, userID)
				job.Path = r.URL.Path

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := jobs.Enqueue(ctx, job); err != nil {
					logger.Warn("access_log_enqueue_failed",
						zap.String("user_id", userID),
						zap.Error(err),
					)
				}
				cancel()
			}

			next.ServeHTTP(w, r)
		})
	}
}
