package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/jobqueue"
	"github.com/rngSwoop/split-sheet-webapp-sub000/internal/logging"
)

type recordingRunner struct {
	mu      sync.Mutex
	runs    map[string]int
	block   chan struct{}
	current atomic.Int32
	peak    atomic.Int32
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{runs: make(map[string]int)}
}

func (r *recordingRunner) Run(ctx context.Context, jobID string) error {
	n := r.current.Add(1)
	defer r.current.Add(-1)
	for {
		peak := r.peak.Load()
		if n <= peak || r.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	r.runs[jobID]++
	r.mu.Unlock()
	return nil
}

func (r *recordingRunner) count(jobID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[jobID]
}

func (r *recordingRunner) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.runs {
		total += n
	}
	return total
}

type staticLister struct {
	ids []string
}

func (s staticLister) ActiveJobIDs(ctx context.Context) ([]string, error) {
	return s.ids, nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWorkerRunsQueuedJobs(t *testing.T) {
	q := jobqueue.NewMemoryQueue(10)
	runner := newRecordingRunner()
	w := New(q, runner, nil, Config{Concurrency: 2, PollWait: 20 * time.Millisecond}, logging.NewNop())

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	for _, id := range []string{"job-1", "job-2", "job-3"} {
		if err := q.Enqueue(context.Background(), id); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	waitFor(t, "three runs", func() bool { return runner.total() == 3 })
	for _, id := range []string{"job-1", "job-2", "job-3"} {
		if got := runner.count(id); got != 1 {
			t.Errorf("expected %s to run once, ran %d times", id, got)
		}
	}
}

func TestWorkerRespectsConcurrency(t *testing.T) {
	q := jobqueue.NewMemoryQueue(10)
	runner := newRecordingRunner()
	runner.block = make(chan struct{})
	w := New(q, runner, nil, Config{Concurrency: 2, PollWait: 20 * time.Millisecond}, logging.NewNop())

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	for _, id := range []string{"a", "b", "c", "d"} {
		q.Enqueue(context.Background(), id)
	}
	waitFor(t, "two concurrent runs", func() bool { return runner.current.Load() == 2 })
	time.Sleep(50 * time.Millisecond)
	if peak := runner.peak.Load(); peak > 2 {
		t.Errorf("expected at most 2 concurrent runs, saw %d", peak)
	}

	close(runner.block)
	waitFor(t, "all runs", func() bool { return runner.total() == 4 })
}

func TestWorkerConcurrencyWithResumeLoop(t *testing.T) {
	q := jobqueue.NewMemoryQueue(10)
	runner := newRecordingRunner()
	runner.block = make(chan struct{})
	w := New(q, runner, staticLister{}, Config{
		Concurrency:    1,
		PollWait:       20 * time.Millisecond,
		ResumeInterval: time.Hour,
	}, logging.NewNop())

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	for _, id := range []string{"a", "b", "c"} {
		q.Enqueue(context.Background(), id)
	}
	waitFor(t, "first run to start", func() bool { return runner.current.Load() == 1 })
	time.Sleep(50 * time.Millisecond)
	if peak := runner.peak.Load(); peak != 1 {
		t.Errorf("expected a single run while the resume loop is active, saw %d", peak)
	}

	close(runner.block)
	waitFor(t, "all runs", func() bool { return runner.total() == 3 })
}

func TestWorkerSkipsDuplicateInflightJob(t *testing.T) {
	q := jobqueue.NewMemoryQueue(10)
	runner := newRecordingRunner()
	runner.block = make(chan struct{})
	w := New(q, runner, nil, Config{Concurrency: 3, PollWait: 20 * time.Millisecond}, logging.NewNop())

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	q.Enqueue(context.Background(), "dup")
	waitFor(t, "first run to start", func() bool { return runner.current.Load() == 1 })
	q.Enqueue(context.Background(), "dup")
	waitFor(t, "duplicate to be dequeued", func() bool {
		n, _ := q.Len(context.Background())
		return n == 0
	})
	time.Sleep(50 * time.Millisecond)

	if got := runner.current.Load(); got != 1 {
		t.Errorf("expected the duplicate to be skipped, %d runs in flight", got)
	}
	close(runner.block)
	waitFor(t, "run to finish", func() bool { return runner.count("dup") == 1 })
}

func TestWorkerResumeScanRequeuesActiveJobs(t *testing.T) {
	q := jobqueue.NewMemoryQueue(10)
	runner := newRecordingRunner()
	lister := staticLister{ids: []string{"stale-1", "stale-2"}}
	w := New(q, runner, lister, Config{
		Concurrency:    1,
		PollWait:       20 * time.Millisecond,
		ResumeInterval: time.Hour,
	}, logging.NewNop())

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	waitFor(t, "resumed jobs to run", func() bool {
		return runner.count("stale-1") == 1 && runner.count("stale-2") == 1
	})
}

func TestWorkerStartTwiceAndStop(t *testing.T) {
	q := jobqueue.NewMemoryQueue(1)
	w := New(q, newRecordingRunner(), nil, Config{PollWait: 10 * time.Millisecond}, logging.NewNop())

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Error("expected error starting a running worker")
	}
	w.Stop()
	// Stop on a stopped worker is a no-op
	w.Stop()
}

func TestWorkerStopCancelsInflightRun(t *testing.T) {
	q := jobqueue.NewMemoryQueue(1)
	runner := newRecordingRunner()
	runner.block = make(chan struct{})
	w := New(q, runner, nil, Config{PollWait: 10 * time.Millisecond}, logging.NewNop())

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	q.Enqueue(context.Background(), "long")
	waitFor(t, "run to start", func() bool { return runner.current.Load() == 1 })

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after cancelling the run")
	}
	if runner.count("long") != 0 {
		t.Error("expected cancelled run not to be recorded")
	}
}
