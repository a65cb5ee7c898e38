package queue

import (
	"context"
)

// JobQueue is the transport for notification jobs.
type JobQueue interface {
	// Enqueue adds a job to the queue
	Enqueue(ctx context.Context, job *Job) error

	// Consume returns a channel of messages from the queue.
	// Messages are delivered asynchronously; the caller acknowledges each
	// one. Prefetch controls how many unacknowledged messages a consumer
	// can hold. The channel closes when the context is cancelled.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	// Close closes the queue connection
	Close() error
}

// Noop discards every job. Used when no broker is configured, so handler
// code can enqueue unconditionally.
type Noop struct{}

// Enqueue drops the job.
func (Noop) Enqueue(context.Context, *Job) error { return nil }

// Consume returns closed channels.
func (Noop) Consume(context.Context, int) (<-chan *Message, <-chan error, error) {
	msgChan := make(chan *Message)
	errChan := make(chan error)
	close(msgChan)
	close(errChan)
	return msgChan, errChan, nil
}

// Close is a no-op.
func (Noop) Close() error { return nil }
