// Package metrics provides latency sample aggregation for streaming load tests.
//
// Two layers live here. The [Collector] is the live layer: workers record
// successes and failures into HdrHistogram-backed counters that the progress
// line and dashboard poll while the test runs. The final layer is
// [Summarize], which computes the report statistics exactly from the raw
// samples once the run finishes.
//
// # Samples
//
// Each successful streaming request yields one [Sample] with two latency
// dimensions: time to first token (TTFT) and total stream duration.
//
// # Percentiles
//
// The final report uses nearest-rank percentiles over the sorted raw values:
//
//	index = floor(len(data) * q), clamped to len(data)-1
//
// This is deliberately not interpolated so that runs can be compared bit for
// bit against other tooling using the same rule. The live histograms are a
// display approximation only and never feed the final report.
//
// # Thread Safety
//
// The Collector is safe for concurrent use by any number of workers.
// Summarize is a pure function over an already-finalized slice.
package metrics
