package runner

import (
	"context"

	"github.com/zhangningboo/interface-performance-test/internal/metrics"
)

// Sampler abstracts one streaming request attempt. A nil error means the
// attempt succeeded and the sample is valid; any error is uniformly
// retryable.
type Sampler interface {
	Sample(ctx context.Context) (metrics.Sample, error)
}

// Options configure the Runner.
type Options struct {
	Concurrency   int     // number of worker goroutines
	TotalRequests int     // successful samples to collect before returning
	Sampler       Sampler // request executor (required)
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
}
