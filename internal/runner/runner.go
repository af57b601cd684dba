package runner

import (
	"context"
	"time"

	"github.com/zhangningboo/interface-performance-test/internal/metrics"
)

// Result captures execution summary.
type Result struct {
	Samples   []metrics.Sample
	Requested int
	Duration  time.Duration
}

// Collected reports how many successful samples were gathered.
func (r Result) Collected() int { return len(r.Samples) }

// Runner keeps exactly Concurrency requests in flight until TotalRequests
// successes have been collected.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run executes the benchmark. The calling goroutine acts as the collector:
// it receives samples until the target count is reached, the results channel
// is closed (defensive; workers never exit on their own), or ctx is
// cancelled. Workers are then abandoned: the internal context is cancelled
// so in-flight requests abort, but Run does not wait for them.
func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()
	total := r.opt.TotalRequests

	if total == 0 || r.opt.Sampler == nil {
		return Result{Requested: total, Duration: time.Since(start)}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered to the full target so producers never block once the
	// collector stops reading.
	results := make(chan metrics.Sample, total)

	for i := 0; i < r.opt.Concurrency; i++ {
		go r.worker(ctx, results)
	}

	samples := make([]metrics.Sample, 0, total)
collect:
	for len(samples) < total {
		select {
		case s, ok := <-results:
			if !ok {
				break collect
			}
			samples = append(samples, s)
		case <-ctx.Done():
			break collect
		}
	}

	return Result{
		Samples:   samples,
		Requested: total,
		Duration:  time.Since(start),
	}
}

// worker is the unbounded attempt loop: failures restart it immediately and
// silently, successes are forwarded to the collector. Intentionally no
// backoff and no per-failure reporting; the point is to hold the target
// concurrency against a flaky backend.
func (r *Runner) worker(ctx context.Context, results chan<- metrics.Sample) {
	for {
		if ctx.Err() != nil {
			return
		}
		s, err := r.opt.Sampler.Sample(ctx)
		if err != nil {
			continue
		}
		select {
		case results <- s:
		case <-ctx.Done():
			return
		}
	}
}
