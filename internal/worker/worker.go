// Package worker supervises account deletion pipelines: it drains the job
// queue with a bounded number of concurrent runs and periodically re-enqueues
// active jobs so an interrupted run is resumed.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/jobqueue"
	"golang.org/x/sync/errgroup"
)

// Runner executes one deletion job
type Runner interface {
	Run(ctx context.Context, jobID string) error
}

// ActiveLister lists job ids that still hold their user's active slot
type ActiveLister interface {
	ActiveJobIDs(ctx context.Context) ([]string, error)
}

// Config controls concurrency and polling
type Config struct {
	Concurrency    int
	ResumeInterval time.Duration
	PollWait       time.Duration
	ErrorBackoff   time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.PollWait <= 0 {
		c.PollWait = 2 * time.Second
	}
	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = 5 * time.Second
	}
	return c
}

// Worker pulls job ids off a queue and runs them
type Worker struct {
	queue  jobqueue.Queue
	runner Runner
	active ActiveLister
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	inflight map[string]struct{}
}

// New creates a worker. active may be nil to disable the resume scan.
func New(queue jobqueue.Queue, runner Runner, active ActiveLister, cfg Config, logger *slog.Logger) *Worker {
	return &Worker{
		queue:    queue,
		runner:   runner,
		active:   active,
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "deletion-worker"),
		inflight: make(map[string]struct{}),
	}
}

// Start begins background processing.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("worker already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.done = make(chan struct{})

	go w.run(runCtx)
	w.logger.Info("deletion worker started", "concurrency", w.cfg.Concurrency, "resumeInterval", w.cfg.ResumeInterval)
	return nil
}

// Stop terminates background processing and waits for in-flight runs.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	done := w.done
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	<-done
	w.logger.Info("deletion worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	g, gctx := errgroup.WithContext(ctx)
	// The resume loop holds one slot of its own when it runs.
	resume := w.active != nil && w.cfg.ResumeInterval > 0
	limit := w.cfg.Concurrency
	if resume {
		limit++
	}
	g.SetLimit(limit)

	if resume {
		g.Go(func() error {
			w.resumeLoop(gctx)
			return nil
		})
	}

	for {
		select {
		case <-gctx.Done():
			_ = g.Wait()
			return
		default:
		}

		jobID, ok, err := w.queue.Dequeue(gctx, w.cfg.PollWait)
		if err != nil {
			if gctx.Err() != nil || errors.Is(err, jobqueue.ErrClosed) {
				_ = g.Wait()
				return
			}
			w.logger.Error("failed to fetch next deletion job", "error", err)
			w.sleep(gctx, w.cfg.ErrorBackoff)
			continue
		}
		if !ok {
			continue
		}
		if !w.claimSlot(jobID) {
			w.logger.Debug("deletion job already running in this process", "jobId", jobID)
			continue
		}

		// Blocks while every slot is busy.
		g.Go(func() error {
			defer w.releaseSlot(jobID)
			if err := w.runner.Run(gctx, jobID); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("deletion job run failed", "jobId", jobID, "error", err)
			}
			return nil
		})
	}
}

// resumeLoop re-enqueues every active job. Jobs owned by a live runner are
// rejected by the claim and cost one no-op.
func (w *Worker) resumeLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.ResumeInterval)
	defer ticker.Stop()

	w.resume(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.resume(ctx)
		}
	}
}

func (w *Worker) resume(ctx context.Context) {
	ids, err := w.active.ActiveJobIDs(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("resume scan failed; interrupted jobs may wait for the next scan", "error", err)
		}
		return
	}
	requeued := 0
	for _, id := range ids {
		if w.isInflight(id) {
			continue
		}
		if err := w.queue.Enqueue(ctx, id); err != nil {
			w.logger.Warn("resume enqueue failed", "jobId", id, "error", err)
			continue
		}
		requeued++
	}
	if requeued > 0 {
		w.logger.Info("re-enqueued active deletion jobs", "count", requeued)
	}
}

func (w *Worker) claimSlot(jobID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inflight[jobID]; ok {
		return false
	}
	w.inflight[jobID] = struct{}{}
	return true
}

func (w *Worker) releaseSlot(jobID string) {
	w.mu.Lock()
	delete(w.inflight, jobID)
	w.mu.Unlock()
}

func (w *Worker) isInflight(jobID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.inflight[jobID]
	return ok
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
