package metrics

import (
	"sort"
	"time"
)

// Distribution holds the aggregate statistics for one latency dimension.
type Distribution struct {
	Mean time.Duration `json:"-"`
	P50  time.Duration `json:"-"`
	P95  time.Duration `json:"-"`
	P99  time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	MeanMs float64 `json:"mean_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Summary is the final benchmark report computed once from the collected
// samples. When Successes is zero the distributions are left zeroed and
// Complete is false; callers must not report them.
type Summary struct {
	RunID          string        `json:"run_id,omitempty"`
	Requested      int           `json:"requested"`
	Successes      int           `json:"successes"`
	Failures       int           `json:"failures"`
	Duration       time.Duration `json:"-"`
	DurationMs     float64       `json:"duration_ms"`
	RequestsPerSec float64       `json:"requests_per_sec"`

	TTFT  Distribution `json:"ttft"`
	Total Distribution `json:"total"`

	Complete bool `json:"complete"`
}

// Percentile returns the nearest-rank percentile of ascending-sorted data:
// index floor(len*q), clamped to len-1. Not interpolated; downstream tooling
// compares output bit for bit, so the indexing rule must not change.
func Percentile(sorted []time.Duration, q float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)) * q)
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// Summarize computes the final statistics over the collected samples.
// requested is the configured target count; failures are derived as
// requested minus collected since individual failures are never counted on
// the hot path.
func Summarize(samples []Sample, requested int, elapsed time.Duration) Summary {
	s := Summary{
		Requested:  requested,
		Successes:  len(samples),
		Duration:   elapsed,
		DurationMs: float64(elapsed) / float64(time.Millisecond),
	}
	if requested > len(samples) {
		s.Failures = requested - len(samples)
	}

	if len(samples) == 0 {
		return s
	}

	ttfts := make([]time.Duration, len(samples))
	totals := make([]time.Duration, len(samples))
	var ttftSum, totalSum time.Duration
	for i, sample := range samples {
		ttfts[i] = sample.TTFT
		totals[i] = sample.Total
		ttftSum += sample.TTFT
		totalSum += sample.Total
	}
	sort.Slice(ttfts, func(i, j int) bool { return ttfts[i] < ttfts[j] })
	sort.Slice(totals, func(i, j int) bool { return totals[i] < totals[j] })

	s.TTFT = summarizeSorted(ttfts, ttftSum)
	s.Total = summarizeSorted(totals, totalSum)

	if elapsed > 0 {
		s.RequestsPerSec = float64(len(samples)) / elapsed.Seconds()
	}
	s.Complete = true
	return s
}

func summarizeSorted(sorted []time.Duration, sum time.Duration) Distribution {
	d := Distribution{
		Mean: time.Duration(int64(sum) / int64(len(sorted))),
		P50:  Percentile(sorted, 0.50),
		P95:  Percentile(sorted, 0.95),
		P99:  Percentile(sorted, 0.99),
	}
	d.MeanMs = float64(d.Mean) / float64(time.Millisecond)
	d.P50Ms = float64(d.P50) / float64(time.Millisecond)
	d.P95Ms = float64(d.P95) / float64(time.Millisecond)
	d.P99Ms = float64(d.P99) / float64(time.Millisecond)
	return d
}
