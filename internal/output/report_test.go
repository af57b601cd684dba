package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zhangningboo/interface-performance-test/internal/config"
	"github.com/zhangningboo/interface-performance-test/internal/metrics"
)

func sampleSummary() metrics.Summary {
	samples := []metrics.Sample{
		{TTFT: 10 * time.Millisecond, Total: 100 * time.Millisecond},
		{TTFT: 20 * time.Millisecond, Total: 200 * time.Millisecond},
		{TTFT: 30 * time.Millisecond, Total: 300 * time.Millisecond},
	}
	s := metrics.Summarize(samples, 3, time.Second)
	s.RunID = "01TESTRUN"
	return s
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{TargetURL: "http://localhost:8080/generate", Total: 10, Concurrency: 4}
	PrintBanner(&buf, cfg, "01TESTRUN")

	out := buf.String()
	if !strings.Contains(out, "Starting benchmark: http://localhost:8080/generate") {
		t.Errorf("banner missing target:\n%s", out)
	}
	if !strings.Contains(out, "requests=10, concurrency=4") {
		t.Errorf("banner missing counts:\n%s", out)
	}
	if strings.Contains(out, "printed below") {
		t.Errorf("echo notice present without print-response:\n%s", out)
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, sampleSummary())

	out := buf.String()
	for _, want := range []string{
		"--- Results ---",
		"Total Requested:   3",
		"Successful:        3",
		"Failed:            0",
		"TTFT:",
		"End-to-End:",
		"Requests/sec:      3.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

// TestPrintReportZeroSuccesses verifies latency sections are skipped entirely
// when nothing was collected; printing zeros there would be misleading.
func TestPrintReportZeroSuccesses(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, metrics.Summarize(nil, 5, time.Second))

	out := buf.String()
	if !strings.Contains(out, "Failed:            5") {
		t.Errorf("failure count missing:\n%s", out)
	}
	if strings.Contains(out, "TTFT:") || strings.Contains(out, "Requests/sec") {
		t.Errorf("latency sections must be omitted with zero successes:\n%s", out)
	}
}

func TestPrintJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSONReport(&buf, sampleSummary()); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var decoded metrics.Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if decoded.RunID != "01TESTRUN" || decoded.Successes != 3 || !decoded.Complete {
		t.Fatalf("decoded summary wrong: %+v", decoded)
	}
	if decoded.TTFT.P50Ms != 20 {
		t.Fatalf("ttft p50 = %g, want 20", decoded.TTFT.P50Ms)
	}
}

func TestAppendSummaryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")

	first := sampleSummary()
	second := sampleSummary()
	second.RunID = "01TESTRUN2"

	if err := AppendSummaryFile(path, first); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := AppendSummaryFile(path, second); err != nil {
		t.Fatalf("second append: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var runIDs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var s metrics.Summary
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			t.Fatalf("line not valid JSON: %v", err)
		}
		runIDs = append(runIDs, s.RunID)
	}
	if len(runIDs) != 2 || runIDs[0] != "01TESTRUN" || runIDs[1] != "01TESTRUN2" {
		t.Fatalf("run ids = %v", runIDs)
	}
}
