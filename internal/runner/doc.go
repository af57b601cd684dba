// Package runner provides the concurrent execution engine for streamload.
//
// The runner spawns a fixed pool of worker goroutines, each driving an
// unbounded attempt loop against a [Sampler]. Failed attempts restart
// immediately with no backoff and no logging; successful attempts forward
// their latency sample to the collector over a channel buffered to the
// target count. The Run caller collects until enough successes arrive, then
// abandons the pool.
//
// # Basic Usage
//
//	opts := runner.Options{
//		Concurrency:   10,
//		TotalRequests: 100,
//		Sampler:       myStreamClient,
//	}
//	r := runner.New(opts)
//	result := r.Run(ctx)
//
// # Guarantees
//
//   - at most Concurrency requests are in flight at any instant
//   - exactly TotalRequests samples are returned unless the context is
//     cancelled first
//   - sample order in the result is arrival order and carries no meaning
//
// There is no rate shaping and no graceful pool shutdown: cancellation of
// the internal context aborts in-flight requests, and process exit reclaims
// whatever remains.
package runner
