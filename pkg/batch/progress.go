package batch

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Tracker holds the shared progress counters for one batch run.
//
// Every in-flight job records into the same tracker, so the counters use
// atomic increments. The total is fixed at construction; succeeded+failed
// never exceeds it and reaches it exactly once, when the batch completes.
type Tracker struct {
	total     int64
	succeeded atomic.Int64
	failed    atomic.Int64
	startedAt time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewTracker creates a tracker for a batch of total jobs, started now.
func NewTracker(total int) *Tracker {
	return &Tracker{
		total:     int64(total),
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// RecordSuccess counts one succeeded job.
func (t *Tracker) RecordSuccess() {
	t.succeeded.Add(1)
}

// RecordFailure counts one failed job. Parse failures that never become jobs
// are recorded here too, so the final tally covers every input line.
func (t *Tracker) RecordFailure() {
	t.failed.Add(1)
}

// Total returns the fixed job total.
func (t *Tracker) Total() int64 {
	return t.total
}

// Succeeded returns the current success count.
func (t *Tracker) Succeeded() int64 {
	return t.succeeded.Load()
}

// Failed returns the current failure count.
func (t *Tracker) Failed() int64 {
	return t.failed.Load()
}

// Snapshot is a point-in-time read of the counters with derived throughput.
type Snapshot struct {
	Succeeded int64
	Failed    int64
	Total     int64
	Elapsed   time.Duration

	// Rate is processed jobs per second; zero when no time has elapsed.
	Rate float64

	// RemainingSeconds estimates time to completion; zero when the rate is
	// unknown.
	RemainingSeconds float64
}

// Processed returns the number of settled jobs.
func (s Snapshot) Processed() int64 {
	return s.Succeeded + s.Failed
}

// Snapshot reads the counters once and derives rate and ETA.
func (t *Tracker) Snapshot() Snapshot {
	snap := Snapshot{
		Succeeded: t.succeeded.Load(),
		Failed:    t.failed.Load(),
		Total:     t.total,
		Elapsed:   t.now().Sub(t.startedAt),
	}

	processed := snap.Processed()
	if secs := snap.Elapsed.Seconds(); secs > 0 {
		snap.Rate = float64(processed) / secs
	}
	if snap.Rate > 0 {
		snap.RemainingSeconds = float64(snap.Total-processed) / snap.Rate
	}
	return snap
}

// DefaultReportInterval is how often the reporter prints a progress line.
const DefaultReportInterval = 5 * time.Second

// Reporter periodically prints tracker snapshots until stopped.
//
// Stop joins the reporting goroutine: once it returns, no further line is
// written. The executor stops the reporter before printing the summary.
type Reporter struct {
	tracker  *Tracker
	interval time.Duration
	out      io.Writer

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewReporter creates a reporter writing to out every interval.
// A zero interval uses DefaultReportInterval; a nil writer uses stdout.
func NewReporter(tracker *Tracker, interval time.Duration, out io.Writer) *Reporter {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{
		tracker:  tracker,
		interval: interval,
		out:      out,
		done:     make(chan struct{}),
	}
}

// Start launches the reporting goroutine.
func (r *Reporter) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.done:
				return
			case <-ticker.C:
				r.print()
			}
		}
	}()
}

// Stop cancels the reporter and waits for the goroutine to exit.
// Safe to call more than once.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
	r.wg.Wait()
}

func (r *Reporter) print() {
	snap := r.tracker.Snapshot()
	fmt.Fprintf(r.out,
		"Progress: %d/%d files processed, %d failed in %.2f seconds (%.2f files/second) time remaining %.2f seconds\n",
		snap.Processed(), snap.Total, snap.Failed,
		snap.Elapsed.Seconds(), snap.Rate, snap.RemainingSeconds)
}
