package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector records in-flight progress in a thread-safe manner. It backs the
// live progress line and dashboard only; the final report is computed from
// the exact samples via Summarize.
type Collector struct {
	mu           sync.Mutex
	ttftHist     *hdrhistogram.Histogram
	totalHist    *hdrhistogram.Histogram
	successes    int64
	failures     int64
	errorsByType map[string]int64
	start        time.Time
}

// LiveStats is a point-in-time snapshot of collector state.
type LiveStats struct {
	Attempts        int64
	Successes       int64
	Failures        int64
	Elapsed         time.Duration
	SuccessesPerSec float64

	// Millisecond views over the live histograms.
	TTFTMeanMs  float64
	TTFTP50Ms   float64
	TTFTP99Ms   float64
	TotalMeanMs float64
	TotalP50Ms  float64
	TotalP99Ms  float64

	Errors map[string]int64
}

func NewCollector() *Collector {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	return &Collector{
		ttftHist:     hdrhistogram.New(1, 60_000_000, 3),
		totalHist:    hdrhistogram.New(1, 60_000_000, 3),
		errorsByType: make(map[string]int64),
		start:        time.Now(),
	}
}

// Start marks the benchmark start instant for elapsed/RPS calculation.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// RecordSuccess records one successful sample.
func (c *Collector) RecordSuccess(s Sample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.successes++
	_ = c.ttftHist.RecordValue(clampMicros(c.ttftHist, s.TTFT.Microseconds()))
	_ = c.totalHist.RecordValue(clampMicros(c.totalHist, s.Total.Microseconds()))
}

// RecordFailure bumps the aggregate failure counter. Failures are never
// reported individually; the counter only feeds the live display.
func (c *Collector) RecordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if err != nil {
		errorType := fmt.Sprintf("%T", err)
		if len(errorType) > 30 {
			errorType = errorType[len(errorType)-30:]
		}
		c.errorsByType[errorType]++
	}
}

// Snapshot returns the current live statistics.
func (c *Collector) Snapshot() LiveStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.start)
	stats := LiveStats{
		Attempts:  c.successes + c.failures,
		Successes: c.successes,
		Failures:  c.failures,
		Elapsed:   elapsed,
	}
	if elapsed > 0 && c.successes > 0 {
		stats.SuccessesPerSec = float64(c.successes) / elapsed.Seconds()
	}
	if c.ttftHist.TotalCount() > 0 {
		stats.TTFTMeanMs = c.ttftHist.Mean() / 1000
		stats.TTFTP50Ms = float64(c.ttftHist.ValueAtQuantile(50)) / 1000
		stats.TTFTP99Ms = float64(c.ttftHist.ValueAtQuantile(99)) / 1000
		stats.TotalMeanMs = c.totalHist.Mean() / 1000
		stats.TotalP50Ms = float64(c.totalHist.ValueAtQuantile(50)) / 1000
		stats.TotalP99Ms = float64(c.totalHist.ValueAtQuantile(99)) / 1000
	}
	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int64, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = v
		}
	}
	return stats
}

func clampMicros(h *hdrhistogram.Histogram, us int64) int64 {
	if us < h.LowestTrackableValue() {
		return h.LowestTrackableValue()
	}
	if us > h.HighestTrackableValue() {
		return h.HighestTrackableValue()
	}
	return us
}
