package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fsort/internal/categorize"
	"fsort/internal/slogutil"
)

var jobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fsort_jobs_total",
		Help: "Finished background jobs by type and final status",
	},
	[]string{"type", "status"},
)

// ErrJobNotFound is returned for an unknown job ID.
var ErrJobNotFound = errors.New("job not found")

// ErrRunnerStopped is returned by Submit after Stop.
var ErrRunnerStopped = errors.New("runner is shutting down")

// ErrQueueFull is returned by Submit when the queue has no room.
var ErrQueueFull = errors.New("job queue is full")

// Func is the work of a job. It should poll token between items and report
// progress through the callback; returning nil after the token fired marks
// the job cancelled.
type Func func(ctx context.Context, token *categorize.CancelToken, progress func(processed, total int)) error

type task struct {
	job   Job
	fn    Func
	token *categorize.CancelToken
	done  chan struct{}
}

// Runner executes jobs one at a time on a single worker goroutine.
type Runner struct {
	logger *slog.Logger
	queue  chan *task

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wg     sync.WaitGroup

	mu    sync.RWMutex
	tasks map[string]*task
	order []string

	processedCount int64
	failedCount    int64
}

// RunnerConfig contains configuration for the job runner.
type RunnerConfig struct {
	QueueSize int
}

// DefaultRunnerConfig returns the default runner configuration.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{QueueSize: 16}
}

// NewRunner creates a runner. Call Start before submitting.
func NewRunner(logger *slog.Logger, config RunnerConfig) *Runner {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		logger: slogutil.OrDiscard(logger),
		queue:  make(chan *task, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		tasks:  make(map[string]*task),
	}
}

// Start begins processing jobs.
func (r *Runner) Start() {
	r.logger.Debug("Starting job runner", "queueSize", cap(r.queue))
	r.wg.Add(1)
	go r.worker()
}

// Stop cancels every unfinished job and waits for the worker to exit.
func (r *Runner) Stop(timeout time.Duration) error {
	r.mu.Lock()
	select {
	case <-r.done:
		r.mu.Unlock()
		return nil
	default:
	}
	close(r.done)
	for _, t := range r.tasks {
		if t.job.CanCancel() {
			t.token.Cancel()
		}
	}
	r.mu.Unlock()
	r.cancel()

	stopped := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		r.logger.Debug("Job runner stopped cleanly")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("job runner shutdown timed out after %v", timeout)
	}
}

// Submit queues fn and returns a snapshot of the new job.
func (r *Runner) Submit(jobType JobType, scope string, fn Func) (Job, error) {
	if fn == nil {
		return Job{}, errors.New("job function is nil")
	}
	t := &task{
		job:   *NewJob(jobType, scope),
		fn:    fn,
		token: categorize.NewCancelToken(),
		done:  make(chan struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.done:
		return Job{}, ErrRunnerStopped
	default:
	}

	// Stop closes done under mu, so a task queued here is always drained.
	select {
	case r.queue <- t:
	default:
		return Job{}, ErrQueueFull
	}
	r.tasks[t.job.ID] = t
	r.order = append(r.order, t.job.ID)
	r.logger.Debug("Job queued", "jobId", t.job.ID, "type", t.job.Type)
	return t.job, nil
}

// Cancel requests cancellation. A queued job never starts; a running job
// sees its token set and stops at its next check. Safe from any goroutine.
func (r *Runner) Cancel(jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if !t.job.CanCancel() {
		return fmt.Errorf("job cannot be cancelled in state: %s", t.job.Status)
	}
	t.token.Cancel()
	r.logger.Info("Job cancellation requested", "jobId", jobID, "status", t.job.Status)
	return nil
}

// Wait blocks until the job reaches a terminal state or ctx is done.
func (r *Runner) Wait(ctx context.Context, jobID string) (Job, error) {
	r.mu.RLock()
	t, ok := r.tasks[jobID]
	r.mu.RUnlock()
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	select {
	case <-t.done:
		job, _ := r.Get(jobID)
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Get returns a snapshot of the job.
func (r *Runner) Get(jobID string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[jobID]
	if !ok {
		return Job{}, false
	}
	return t.job, true
}

// List returns snapshots of matching jobs, newest first.
func (r *Runner) List(opts ListJobsOptions) []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Job
	for i := len(r.order) - 1; i >= 0; i-- {
		t := r.tasks[r.order[i]]
		if !opts.match(&t.job) {
			continue
		}
		out = append(out, t.job)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out
}

func (r *Runner) worker() {
	defer r.wg.Done()

	for {
		select {
		case t := <-r.queue:
			r.processJob(t)
		case <-r.done:
			// drain so queued jobs reach a terminal state
			for {
				select {
				case t := <-r.queue:
					r.finish(t, nil)
				default:
					return
				}
			}
		}
	}
}

func (r *Runner) processJob(t *task) {
	if t.token.Cancelled() {
		r.finish(t, nil)
		return
	}

	r.mu.Lock()
	t.job.MarkStarted()
	r.mu.Unlock()
	r.logger.Info("Processing job", "jobId", t.job.ID, "type", t.job.Type, "scope", t.job.Scope)

	progress := func(processed, total int) {
		r.mu.Lock()
		t.job.SetProgress(processed, total)
		r.mu.Unlock()
	}

	start := time.Now()
	err := r.run(t, progress)
	r.finish(t, err)
	r.logger.Info("Job finished", "jobId", t.job.ID, "status", t.job.Status, "duration", time.Since(start))
}

func (r *Runner) run(t *task, progress func(int, int)) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return t.fn(r.ctx, t.token, progress)
}

// finish moves t to its terminal state. A cancelled token wins over the
// returned error.
func (r *Runner) finish(t *task, err error) {
	r.mu.Lock()
	switch {
	case t.token.Cancelled():
		t.job.MarkCancelled()
	case err != nil:
		t.job.MarkFailed(err)
		r.failedCount++
		r.logger.Error("Job failed", "jobId", t.job.ID, "error", err)
	default:
		t.job.MarkCompleted()
		r.processedCount++
	}
	status := t.job.Status
	jobType := t.job.Type
	r.mu.Unlock()

	jobsTotal.WithLabelValues(string(jobType), string(status)).Inc()
	close(t.done)
}

// Stats returns runner statistics.
func (r *Runner) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	running := 0
	for _, t := range r.tasks {
		if t.job.Status == JobRunning {
			running++
		}
	}
	return map[string]interface{}{
		"queueLength":    len(r.queue),
		"queueCapacity":  cap(r.queue),
		"runningJobs":    running,
		"processedTotal": r.processedCount,
		"failedTotal":    r.failedCount,
	}
}

// IsRunning returns true if the runner is active.
func (r *Runner) IsRunning() bool {
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}
