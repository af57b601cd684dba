package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zhangningboo/interface-performance-test/internal/config"
	"github.com/zhangningboo/interface-performance-test/internal/metrics"
)

// PrintBanner writes the startup line before the run begins.
func PrintBanner(w io.Writer, cfg *config.Config, runID string) {
	fmt.Fprintf(w, "Starting benchmark: %s (requests=%d, concurrency=%d, run=%s)\n",
		cfg.TargetURL, cfg.Total, cfg.Concurrency, runID)
	if cfg.PrintResponse {
		fmt.Fprintln(w, "The response of the first successful request will be printed below.")
	}
}

// PrintReport outputs a human-readable summary report. Latency distributions
// are omitted entirely when no successes were collected.
func PrintReport(w io.Writer, s metrics.Summary) {
	fmt.Fprintln(w, "\n--- Results ---")
	fmt.Fprintf(w, "Total Requested:   %d\n", s.Requested)
	fmt.Fprintf(w, "Successful:        %d\n", s.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", s.Failures)
	fmt.Fprintf(w, "Duration:          %s\n", s.Duration)

	if !s.Complete {
		return
	}

	fmt.Fprintln(w, "\nTTFT:")
	printDistribution(w, s.TTFT)
	fmt.Fprintln(w, "\nEnd-to-End:")
	printDistribution(w, s.Total)

	fmt.Fprintf(w, "\nRequests/sec:      %.2f\n", s.RequestsPerSec)
}

func printDistribution(w io.Writer, d metrics.Distribution) {
	fmt.Fprintf(w, "  Mean:            %.2f ms\n", d.MeanMs)
	fmt.Fprintf(w, "  P50:             %.2f ms\n", d.P50Ms)
	fmt.Fprintf(w, "  P95:             %.2f ms\n", d.P95Ms)
	fmt.Fprintf(w, "  P99:             %.2f ms\n", d.P99Ms)
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, s metrics.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
