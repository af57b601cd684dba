package metrics

import "time"

// Sample is the latency measurement produced by one successful streaming
// request. TTFT covers request start to the first body chunk; Total covers
// request start to end of stream.
type Sample struct {
	TTFT  time.Duration
	Total time.Duration
}
