package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/zhangningboo/interface-performance-test/internal/config"
	"github.com/zhangningboo/interface-performance-test/internal/dashboard"
	"github.com/zhangningboo/interface-performance-test/internal/httpclient"
	"github.com/zhangningboo/interface-performance-test/internal/metrics"
	"github.com/zhangningboo/interface-performance-test/internal/output"
	"github.com/zhangningboo/interface-performance-test/internal/runner"
	"github.com/zhangningboo/interface-performance-test/internal/stream"
	"github.com/zhangningboo/interface-performance-test/internal/tracing"
)

const progressInterval = time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		return err
	}

	client := httpclient.NewClient(cfg.Timeout, cfg.Concurrency)
	collector := metrics.NewCollector()
	runID := ulid.Make().String()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tracer, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = tracer.Shutdown(shutdownCtx)
	}()

	var echo *output.Echo
	if cfg.PrintResponse {
		echo = output.NewEcho(os.Stdout)
	}

	sampler := stream.NewClient(stream.Options{
		Client:    client,
		Builder:   builder,
		Collector: collector,
		Echo:      echo,
		Timeout:   cfg.Timeout,
		Tracing:   tracer,
	})

	r := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.Total,
		Sampler:       sampler,
	})

	if !cfg.JSONOutput && !cfg.Dashboard {
		output.PrintBanner(os.Stdout, cfg, runID)
	}

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboard.TestConfig{
			TargetURL:   cfg.TargetURL,
			Concurrency: cfg.Concurrency,
			Total:       cfg.Total,
			Timeout:     cfg.Timeout,
			RunID:       runID,
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
	}

	// The progress line rewrites itself with \r, which would garble an
	// echoed response body, so it stays off under --print-response.
	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard && !cfg.PrintResponse {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
	}

	// Mark the actual start time in the collector for accurate RPS
	// calculation in the live views.
	collector.Start()
	result := r.Run(ctx)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(os.Stdout)
	}
	if dash != nil {
		dash.Stop()
	}

	summary := metrics.Summarize(result.Samples, result.Requested, result.Duration)
	summary.RunID = runID

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, summary); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, summary)
	}

	if cfg.ReportFile != "" {
		if err := output.AppendSummaryFile(cfg.ReportFile, summary); err != nil {
			return err
		}
	}

	if result.Collected() < result.Requested {
		return fmt.Errorf("collected %d of %d samples", result.Collected(), result.Requested)
	}
	return nil
}
