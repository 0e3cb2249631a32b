// Package worker runs batch assessment jobs over a bounded pool of goroutines.
// Each input (typically a file path) is handed to a Job with its own deadline;
// failures are retried with back-off and reported per input, never aborting
// the rest of the batch.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ─── JOB INTERFACE ────────────────────────────────────────────────────────────

// Job processes one input. The concrete implementation used by the CLI is
// *ReportJob; in tests any struct with a Run method satisfies it.
type Job interface {
	Run(ctx context.Context, input string) error
}

// JobFunc adapts a plain function to Job.
type JobFunc func(ctx context.Context, input string) error

func (f JobFunc) Run(ctx context.Context, input string) error { return f(ctx, input) }

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. Zero fields take the
// values from DefaultRunnerConfig().
type RunnerConfig struct {
	// Workers is the number of concurrent job goroutines. Default: 3.
	Workers int

	// JobTimeout is the per-attempt context deadline. Default: 5 minutes.
	// Set this longer than the narrative timeout.
	JobTimeout time.Duration

	// MaxRetries is the number of attempts per input. Default: 1.
	MaxRetries int

	// Backoff is the base delay between attempts; attempt n waits
	// Backoff × 2ⁿ. Default: 1s.
	Backoff time.Duration
}

// DefaultRunnerConfig returns safe defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:    3,
		JobTimeout: 5 * time.Minute,
		MaxRetries: 1,
		Backoff:    time.Second,
	}
}

// Result is the outcome for one input.
type Result struct {
	Input    string
	Attempts int
	Duration time.Duration
	Err      error
}

// Runner manages a pool of worker goroutines for one batch at a time.
type Runner struct {
	job    Job
	cfg    RunnerConfig
	logger *slog.Logger
}

// NewRunner constructs a Runner. Call Run to process a batch.
func NewRunner(job Job, cfg RunnerConfig, logger *slog.Logger) *Runner {
	def := DefaultRunnerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = def.Backoff
	}

	return &Runner{job: job, cfg: cfg, logger: logger}
}

// Run processes every input and blocks until all are done or ctx is
// cancelled. Results are returned in input order; inputs not started before
// cancellation carry ctx.Err().
func (r *Runner) Run(ctx context.Context, inputs []string) []Result {
	results := make([]Result, len(inputs))
	queue := make(chan int, len(inputs))
	for i := range inputs {
		queue <- i
	}
	close(queue)

	workers := min(r.cfg.Workers, len(inputs))
	r.logger.Info("worker: starting batch", "inputs", len(inputs), "workers", workers)

	var wg sync.WaitGroup
	for id := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log := r.logger.With("worker_id", id)
			for i := range queue {
				if err := ctx.Err(); err != nil {
					results[i] = Result{Input: inputs[i], Err: err}
					continue
				}
				results[i] = r.runWithRetry(ctx, inputs[i], log)
			}
		}()
	}
	wg.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.logger.Info("worker: batch finished", "inputs", len(inputs), "failed", failed)
	return results
}

// runWithRetry executes the job up to MaxRetries times with exponential
// back-off between attempts.
func (r *Runner) runWithRetry(ctx context.Context, input string, log *slog.Logger) Result {
	start := time.Now()
	res := Result{Input: input}

	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		res.Attempts = attempt
		jobCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
		res.Err = r.run(jobCtx, input)
		cancel()

		if res.Err == nil {
			log.Debug("worker: job completed", "input", input, "attempt", attempt)
			break
		}

		log.Warn("worker: job attempt failed",
			"input", input,
			"attempt", attempt,
			"max", r.cfg.MaxRetries,
			"error", res.Err,
		)

		if attempt < r.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				res.Duration = time.Since(start)
				return res
			case <-time.After(r.cfg.Backoff << attempt):
			}
		}
	}

	if res.Err != nil {
		log.Error("worker: job failed", "input", input, "attempts", res.Attempts, "error", res.Err)
	}
	res.Duration = time.Since(start)
	return res
}

// run calls the job, turning a panic into an error so one bad input cannot
// take down the batch.
func (r *Runner) run(ctx context.Context, input string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("worker: job panic: %v", p)
		}
	}()
	return r.job.Run(ctx, input)
}
