package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"github.com/zhangningboo/interface-performance-test/internal/metrics"
)

// AppendSummaryFile appends the summary as one JSON line to path. A sibling
// .lock file serializes writers so parallel streamload invocations sharing a
// results file never interleave records.
func AppendSummaryFile(path string, s metrics.Summary) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock report file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}
