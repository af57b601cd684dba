// Package dashboard renders a live terminal UI for an in-flight benchmark.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/zhangningboo/interface-performance-test/internal/metrics"
)

// TestConfig holds load test configuration parameters for display.
type TestConfig struct {
	TargetURL   string        // Full target URL
	Concurrency int           // Number of concurrent workers
	Total       int           // Successful samples to collect
	Timeout     time.Duration // Per-request timeout
	RunID       string        // ULID of this run
}

// Dashboard renders a live terminal UI for load test metrics.
type Dashboard struct {
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	// Widgets
	grid          *ui.Grid
	ttftSparkle   *widgets.SparklineGroup
	latencyPara   *widgets.Paragraph
	progressGauge *widgets.Gauge
	errorList     *widgets.List
	summaryPara   *widgets.Paragraph
	ttftHistory   []float64
	startTime     time.Time
	testConfig    TestConfig
}

// New creates a new Dashboard.
func New(collector *metrics.Collector, cfg TestConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		collector:    collector,
		ctx:          ctx,
		cancel:       cancel,
		shutdownFunc: shutdownFunc,
		ttftHistory:  make([]float64, 0, 100),
		startTime:    time.Now(),
		testConfig:   cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

// initWidgets initializes all dashboard widgets.
func (d *Dashboard) initWidgets() {
	// TTFT Sparkline
	sparkline := widgets.NewSparkline()
	sparkline.Title = "TTFT (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.ttftSparkle = widgets.NewSparklineGroup(sparkline)
	d.ttftSparkle.Title = "Time To First Token"
	d.ttftSparkle.BorderStyle.Fg = ui.ColorCyan

	// Latency Metrics Paragraph
	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency"
	d.latencyPara.Text = "TTFT mean: 0ms\nTTFT P50: 0ms\nTTFT P99: 0ms\nTotal mean: 0ms\nTotal P50: 0ms\nTotal P99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	// Collection Progress Gauge
	d.progressGauge = widgets.NewGauge()
	d.progressGauge.Title = "Samples Collected"
	d.progressGauge.Percent = 0
	d.progressGauge.BarColor = ui.ColorBlue
	d.progressGauge.BorderStyle.Fg = ui.ColorCyan
	d.progressGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	// Failure Breakdown List
	d.errorList = widgets.NewList()
	d.errorList.Title = "Failures"
	d.errorList.Rows = []string{"No failures"}
	d.errorList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.errorList.BorderStyle.Fg = ui.ColorCyan

	// Summary Paragraph
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Benchmark"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan
}

// setupGrid configures the layout grid.
func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.2,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.2,
			ui.NewCol(1.0, d.progressGauge),
		),
		ui.NewRow(0.35,
			ui.NewCol(0.65, d.ttftSparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.25,
			ui.NewCol(1.0, d.errorList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and cleans up.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// run is the main dashboard update loop.
func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			// Drain any remaining events
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			// Check if context is done to avoid blocking
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Do not return here; wait for Stop() to cancel context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the collector.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := d.collector.Snapshot()

	if stats.TTFTMeanMs > 0 {
		d.ttftHistory = append(d.ttftHistory, stats.TTFTMeanMs)
		if len(d.ttftHistory) > 100 {
			d.ttftHistory = d.ttftHistory[1:]
		}
		d.ttftSparkle.Sparklines[0].Data = d.ttftHistory
		d.ttftSparkle.Title = fmt.Sprintf("Time To First Token | Mean: %.2fms", stats.TTFTMeanMs)
	}

	percent := 0
	if d.testConfig.Total > 0 {
		percent = int((float64(stats.Successes) / float64(d.testConfig.Total)) * 100)
	}
	if percent > 100 {
		percent = 100
	}
	d.progressGauge.Percent = percent
	d.progressGauge.Label = fmt.Sprintf("%d / %d (%.1f/s)", stats.Successes, d.testConfig.Total, stats.SuccessesPerSec)

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s\nRun: %s | Workers: %d | Timeout: %s\nElapsed: %s | Attempts: %d | Failures: %d",
		d.testConfig.TargetURL,
		d.testConfig.RunID,
		d.testConfig.Concurrency,
		d.testConfig.Timeout,
		stats.Elapsed.Round(time.Second),
		stats.Attempts,
		stats.Failures,
	)

	d.latencyPara.Text = fmt.Sprintf(
		"TTFT mean:  %.2fms\nTTFT P50:   %.2fms\nTTFT P99:   %.2fms\nTotal mean: %.2fms\nTotal P50:  %.2fms\nTotal P99:  %.2fms",
		stats.TTFTMeanMs,
		stats.TTFTP50Ms,
		stats.TTFTP99Ms,
		stats.TotalMeanMs,
		stats.TotalP50Ms,
		stats.TotalP99Ms,
	)

	d.errorList.Rows = formatErrorRows(stats.Errors)
}

// render draws all widgets to the screen.
func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func formatErrorRows(errs map[string]int64) []string {
	if len(errs) == 0 {
		return []string{"No failures"}
	}
	types := make([]string, 0, len(errs))
	for t := range errs {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if errs[types[i]] == errs[types[j]] {
			return types[i] < types[j]
		}
		return errs[types[i]] > errs[types[j]]
	})
	rows := make([]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, fmt.Sprintf("%s: %d", t, errs[t]))
	}
	return rows
}
