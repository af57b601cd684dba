package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	c.Start()

	c.RecordSuccess(Sample{TTFT: 10 * time.Millisecond, Total: 50 * time.Millisecond})
	c.RecordSuccess(Sample{TTFT: 20 * time.Millisecond, Total: 60 * time.Millisecond})
	c.RecordFailure(errors.New("boom"))

	stats := c.Snapshot()
	if stats.Successes != 2 {
		t.Errorf("successes = %d, want 2", stats.Successes)
	}
	if stats.Failures != 1 {
		t.Errorf("failures = %d, want 1", stats.Failures)
	}
	if stats.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", stats.Attempts)
	}
	if stats.TTFTMeanMs < 10 || stats.TTFTMeanMs > 25 {
		t.Errorf("ttft mean ms = %g, want ~15", stats.TTFTMeanMs)
	}
}

func TestCollectorErrorsByType(t *testing.T) {
	c := NewCollector()
	c.RecordFailure(&StatusErrorStub{})
	c.RecordFailure(&StatusErrorStub{})
	c.RecordFailure(nil)

	stats := c.Snapshot()
	if stats.Failures != 3 {
		t.Fatalf("failures = %d, want 3", stats.Failures)
	}
	var total int64
	for _, n := range stats.Errors {
		total += n
	}
	if total != 2 {
		t.Fatalf("typed errors = %d, want 2 (nil error carries no type)", total)
	}
}

// StatusErrorStub gives error-type bucketing something distinctive to key on.
type StatusErrorStub struct{}

func (*StatusErrorStub) Error() string { return "stub" }

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	c.Start()

	const workers = 16
	const perWorker = 100

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if j%4 == 0 {
					c.RecordFailure(errors.New("transient"))
				} else {
					c.RecordSuccess(Sample{TTFT: time.Millisecond, Total: 2 * time.Millisecond})
				}
			}
		}()
	}
	wg.Wait()

	stats := c.Snapshot()
	if stats.Attempts != workers*perWorker {
		t.Fatalf("attempts = %d, want %d", stats.Attempts, workers*perWorker)
	}
	if stats.Successes+stats.Failures != stats.Attempts {
		t.Fatalf("successes+failures = %d, attempts = %d",
			stats.Successes+stats.Failures, stats.Attempts)
	}
}

func TestCollectorSnapshotEmpty(t *testing.T) {
	c := NewCollector()
	stats := c.Snapshot()
	if stats.Attempts != 0 || stats.TTFTMeanMs != 0 || stats.Errors != nil {
		t.Fatalf("empty snapshot not zeroed: %+v", stats)
	}
}
