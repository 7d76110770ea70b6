package jobqueue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is a bounded in-process Queue used when no Redis URL is set
type MemoryQueue struct {
	items  chan string
	done   chan struct{}
	closed sync.Once
}

// NewMemoryQueue creates a queue holding up to size ids
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{
		items: make(chan string, size),
		done:  make(chan struct{}),
	}
}

// Enqueue adds a job id without blocking
func (q *MemoryQueue) Enqueue(ctx context.Context, jobID string) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}
	select {
	case q.items <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrFull
	}
}

// Dequeue waits up to wait for a job id
func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (string, bool, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case jobID := <-q.items:
		return jobID, true, nil
	case <-q.done:
		return "", false, ErrClosed
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-timer.C:
		return "", false, nil
	}
}

// Len reports the number of queued ids
func (q *MemoryQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.items)), nil
}

// Close stops the queue; pending ids are dropped
func (q *MemoryQueue) Close() error {
	q.closed.Do(func() { close(q.done) })
	return nil
}
