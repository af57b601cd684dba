// Package stream executes single streaming POST attempts and measures their
// time-to-first-token and end-to-end latency.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zhangningboo/interface-performance-test/internal/httpclient"
	"github.com/zhangningboo/interface-performance-test/internal/metrics"
	"github.com/zhangningboo/interface-performance-test/internal/output"
	"github.com/zhangningboo/interface-performance-test/internal/tracing"
)

const (
	// quiescenceWindow is the fixed inter-chunk wait after which the stream
	// is treated as complete. It is a heuristic for "the server is done
	// talking", far shorter than the first-chunk timeout, and deliberately
	// not configurable: comparing runs requires the same end-of-stream
	// policy everywhere.
	quiescenceWindow = 100 * time.Millisecond

	maxDrainBytes = 1024
)

// StatusError is returned when the endpoint responds with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

var (
	// ErrEmptyStream means the response body ended before any chunk arrived.
	ErrEmptyStream = errors.New("stream ended before the first chunk")
	// ErrFirstChunkTimeout means no chunk arrived within the request timeout.
	ErrFirstChunkTimeout = errors.New("timed out waiting for the first chunk")
)

// Options configure the streaming executor.
type Options struct {
	Client    *http.Client
	Builder   *httpclient.RequestBuilder
	Collector *metrics.Collector // live counters; may be nil
	Echo      *output.Echo       // first-response echo; nil disables
	Timeout   time.Duration      // bounds the wait for the first chunk
	Tracing   *tracing.Provider  // optional span export; nil disables
}

// Client issues one streaming request per Sample call. It is safe for
// concurrent use; all mutable cross-request state lives in the Collector and
// the Echo, which synchronize themselves.
type Client struct {
	httpClient *http.Client
	builder    *httpclient.RequestBuilder
	collector  *metrics.Collector
	echo       *output.Echo
	timeout    time.Duration
	tracing    *tracing.Provider
}

func NewClient(opt Options) *Client {
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: opt.Client,
		builder:    opt.Builder,
		collector:  opt.Collector,
		echo:       opt.Echo,
		timeout:    timeout,
		tracing:    opt.Tracing,
	}
}

// Sample performs one attempt. Every failure class (transport error, non-2xx
// status, first-chunk timeout, stream truncation) comes back as a plain
// error; the caller retries. Exactly one sample is produced per success and
// none otherwise.
func (c *Client) Sample(ctx context.Context) (metrics.Sample, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	sample, err := c.attempt(ctx)
	if c.collector != nil {
		if err != nil {
			c.collector.RecordFailure(err)
		} else {
			c.collector.RecordSuccess(sample)
		}
	}
	return sample, err
}

func (c *Client) attempt(ctx context.Context) (metrics.Sample, error) {
	ctx, span := tracing.StartAttemptSpan(ctx, c.tracing.Tracer())

	start := time.Now()
	req, err := c.builder.Build(ctx)
	if err != nil {
		tracing.EndSpan(span, err)
		return metrics.Sample{}, err
	}
	if c.tracing.ShouldPropagate() {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.EndSpan(span, err)
		return metrics.Sample{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		_ = resp.Body.Close()
		statusErr := &StatusError{Code: resp.StatusCode}
		tracing.EndSpan(span, statusErr, attribute.Int("http.status_code", resp.StatusCode))
		return metrics.Sample{}, statusErr
	}

	sample, err := c.consume(ctx, start, resp.Body)
	tracing.EndSpan(span, err,
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Float64("streamload.ttft_ms", float64(sample.TTFT)/float64(time.Millisecond)),
		attribute.Float64("streamload.total_ms", float64(sample.Total)/float64(time.Millisecond)),
	)
	return sample, err
}

// consume drains a successful response under the TTFT/quiescence protocol.
func (c *Client) consume(ctx context.Context, start time.Time, body io.ReadCloser) (metrics.Sample, error) {
	defer body.Close()

	pump := newChunkPump(body)
	defer pump.Stop()

	var sample metrics.Sample
	echoing := false

	firstTimer := time.NewTimer(c.timeout)
	defer firstTimer.Stop()

	select {
	case chunk, ok := <-pump.Chunks():
		if !ok {
			if err := pump.Err(); err != nil {
				return metrics.Sample{}, err
			}
			return metrics.Sample{}, ErrEmptyStream
		}
		sample.TTFT = time.Since(start)
		if c.echo.Claim() {
			echoing = true
			c.echo.Chunk(chunk)
		}
	case <-firstTimer.C:
		return metrics.Sample{}, ErrFirstChunkTimeout
	case <-ctx.Done():
		return metrics.Sample{}, ctx.Err()
	}

drain:
	for {
		select {
		case chunk, ok := <-pump.Chunks():
			if !ok {
				if err := pump.Err(); err != nil {
					// The echo claim is permanent; close the frame so a
					// truncated first response doesn't leave the console
					// dangling.
					if echoing {
						c.echo.Finish()
					}
					return metrics.Sample{}, err
				}
				break drain
			}
			if echoing {
				c.echo.Chunk(chunk)
			}
		case <-time.After(quiescenceWindow):
			break drain
		case <-ctx.Done():
			if echoing {
				c.echo.Finish()
			}
			return metrics.Sample{}, ctx.Err()
		}
	}

	if echoing {
		c.echo.Finish()
	}
	sample.Total = time.Since(start)
	return sample, nil
}
