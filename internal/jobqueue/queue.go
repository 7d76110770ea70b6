// Package jobqueue carries deletion job ids from the request path to the
// background worker.
package jobqueue

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed queue
var ErrClosed = errors.New("job queue closed")

// ErrFull is returned when an in-memory queue has no room left
var ErrFull = errors.New("job queue full")

// Queue is a FIFO of job ids. Delivery is at-least-once: the database row is
// the source of truth and the worker's resume scan re-enqueues anything lost.
type Queue interface {
	Enqueue(ctx context.Context, jobID string) error
	// Dequeue waits up to wait for a job id. ok is false on timeout.
	Dequeue(ctx context.Context, wait time.Duration) (jobID string, ok bool, err error)
	Len(ctx context.Context) (int64, error)
	Close() error
}
