// Package batch implements the bounded-concurrency transfer engine.
//
// The executor fans a list of transfer jobs out to one goroutine each,
// admits them through a counting semaphore, runs the remote operation, and
// tallies outcomes in a shared tracker. A periodic reporter prints progress
// while the batch runs and is stopped before the summary is printed.
package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Job is one unit of transfer work: a single object copy or a single file
// upload. Jobs are immutable once constructed and consumed exactly once.
type Job struct {
	// SourceKey is set for copy jobs: the key to copy from, within the
	// source bucket the operation is bound to.
	SourceKey string

	// LocalPath is set for upload jobs: the local file to read.
	LocalPath string

	// Key is the destination key.
	Key string

	// Metadata is attached to (copy: replaces on) the destination object.
	Metadata map[string]string
}

// IsCopy reports whether the job is an object copy rather than an upload.
func (j Job) IsCopy() bool {
	return j.SourceKey != ""
}

// Ident returns the identifier used in failure logs, chosen so a failed line
// can be retried by hand.
func (j Job) Ident() string {
	if j.IsCopy() {
		return j.SourceKey
	}
	return j.LocalPath
}

// Outcome is what a transfer operation reports on success.
type Outcome struct {
	// ETag is the entity tag of the destination object, when the service
	// returned one.
	ETag string
}

// Operation executes one job against the remote storage client.
type Operation func(ctx context.Context, job Job) (*Outcome, error)

// Config configures an executor.
type Config struct {
	// MaxConcurrent caps in-flight remote operations. Minimum 1.
	MaxConcurrent int

	// RateLimit is the maximum operations per second admitted to the
	// remote service. Zero means unlimited.
	RateLimit float64

	// ReportInterval is the progress print cadence. Zero uses the default.
	ReportInterval time.Duration

	// Out receives progress and summary lines. Nil uses stdout.
	Out io.Writer
}

// DefaultMaxConcurrent is the default concurrency cap.
const DefaultMaxConcurrent = 10

// Result is the final tally of a batch run.
type Result struct {
	Succeeded int64
	Failed    int64
	Elapsed   time.Duration
}

// Rate returns processed jobs per second over the whole run.
func (r *Result) Rate() float64 {
	if secs := r.Elapsed.Seconds(); secs > 0 {
		return float64(r.Succeeded+r.Failed) / secs
	}
	return 0
}

// AggregateError reports that some jobs failed after the batch ran to
// completion. It is returned after the summary is printed, so the caller can
// exit non-zero without losing the tally.
type AggregateError struct {
	Failed int64
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("%d transfer job(s) failed", e.Failed)
}

// Executor runs transfer jobs with bounded concurrency.
type Executor struct {
	cfg     Config
	tracker *Tracker
	limiter *Limiter
	rate    *rate.Limiter
	logger  *zap.Logger
	out     io.Writer
}

// NewExecutor creates an executor recording into tracker.
//
// The tracker may already carry failures for input lines that never became
// jobs; those count toward the final tally.
func NewExecutor(cfg Config, tracker *Tracker, logger *zap.Logger) *Executor {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Executor{
		cfg:     cfg,
		tracker: tracker,
		limiter: NewLimiter(cfg.MaxConcurrent),
		logger:  logger,
		out:     cfg.Out,
	}
	if cfg.RateLimit > 0 {
		e.rate = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return e
}

// Execute runs every job and blocks until all have settled.
//
// Per-job errors are contained: they are logged with the job's identifying
// key, counted as failures, and never abort the batch. The summary is always
// printed; when any job failed the returned error is an *AggregateError.
func (e *Executor) Execute(ctx context.Context, jobs []Job, op Operation) (*Result, error) {
	start := time.Now()

	reporter := NewReporter(e.tracker, e.cfg.ReportInterval, e.out)
	reporter.Start()

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			e.runJob(ctx, job, op)
		}(job)
	}
	wg.Wait()

	// All jobs have settled; cancel the reporter before the summary so no
	// progress line prints after completion.
	reporter.Stop()

	res := &Result{
		Succeeded: e.tracker.Succeeded(),
		Failed:    e.tracker.Failed(),
		Elapsed:   time.Since(start),
	}

	fmt.Fprintf(e.out,
		"Summary: %d/%d files succeeded, %d failed in %.2f seconds (%.2f files/second)\n",
		res.Succeeded, e.tracker.Total(), res.Failed,
		res.Elapsed.Seconds(), res.Rate())

	if res.Failed > 0 {
		return res, &AggregateError{Failed: res.Failed}
	}
	return res, nil
}

// runJob takes one job through admission, execution, and recording.
func (e *Executor) runJob(ctx context.Context, job Job, op Operation) {
	if err := e.limiter.Acquire(ctx); err != nil {
		e.recordFailure(job, err)
		return
	}
	defer e.limiter.Release()

	if e.rate != nil {
		if err := e.rate.Wait(ctx); err != nil {
			e.recordFailure(job, err)
			return
		}
	}

	outcome, err := op(ctx, job)
	if err != nil {
		e.recordFailure(job, err)
		return
	}

	// A successful copy without an ETag in the response is tolerated: the
	// object copied, the service just omitted the tag.
	if job.IsCopy() && (outcome == nil || outcome.ETag == "") {
		e.logger.Warn("Copy succeeded without ETag",
			zap.String("source_key", job.SourceKey),
			zap.String("key", job.Key))
	}

	e.tracker.RecordSuccess()
}

func (e *Executor) recordFailure(job Job, err error) {
	e.logger.Error("Transfer failed",
		zap.String("key", job.Ident()),
		zap.String("destination", job.Key),
		zap.Error(err))
	e.tracker.RecordFailure()
}
