package httpclient

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zhangningboo/interface-performance-test/internal/config"
)

func TestBuildRequest(t *testing.T) {
	builder, err := NewRequestBuilder(&config.Config{
		TargetURL: "http://localhost:8080/generate",
		Body:      `{"prompt":"hi"}`,
	})
	if err != nil {
		t.Fatalf("builder: %v", err)
	}

	req, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("content-type = %q", got)
	}
	if _, present := req.Header["Accept"]; present {
		t.Error("Accept header must never be set")
	}
	if req.ContentLength != int64(len(`{"prompt":"hi"}`)) {
		t.Errorf("content length = %d", req.ContentLength)
	}

	body, _ := io.ReadAll(req.Body)
	if string(body) != `{"prompt":"hi"}` {
		t.Errorf("body = %q", body)
	}

	// GetBody must yield the same payload again for transparent retries.
	rc, err := req.GetBody()
	if err != nil {
		t.Fatalf("get body: %v", err)
	}
	again, _ := io.ReadAll(rc)
	if string(again) != `{"prompt":"hi"}` {
		t.Errorf("replayed body = %q", again)
	}
}

func TestBuildRequestEmptyBody(t *testing.T) {
	builder, err := NewRequestBuilder(&config.Config{TargetURL: "http://x"})
	if err != nil {
		t.Fatalf("builder: %v", err)
	}
	req, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.ContentLength != 0 {
		t.Errorf("content length = %d, want 0", req.ContentLength)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("content-type = %q even with empty body", got)
	}
}

func TestNewRequestBuilderRequiresTarget(t *testing.T) {
	if _, err := NewRequestBuilder(&config.Config{}); err == nil {
		t.Fatal("expected error for empty target")
	}
	if _, err := NewRequestBuilder(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestBodySourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	payload := `{"prompt":"from file"}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src, err := NewBodySource(&config.Config{TargetURL: "http://x", BodyFile: path})
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	if length, ok := src.ContentLength(); !ok || length != int64(len(payload)) {
		t.Errorf("length = %d,%v", length, ok)
	}

	// Two readers from the same source must be independent.
	for i := 0; i < 2; i++ {
		rc, err := src.NewReader()
		if err != nil {
			t.Fatalf("reader %d: %v", i, err)
		}
		data, _ := io.ReadAll(rc)
		_ = rc.Close()
		if string(data) != payload {
			t.Errorf("reader %d = %q", i, data)
		}
	}
}

func TestBodySourceMissingFile(t *testing.T) {
	_, err := NewBodySource(&config.Config{TargetURL: "http://x", BodyFile: "/nonexistent/body.json"})
	if err == nil {
		t.Fatal("expected error for missing body file")
	}
}

func TestBodySourceConflict(t *testing.T) {
	_, err := NewBodySource(&config.Config{TargetURL: "http://x", Body: `{}`, BodyFile: "f.json"})
	if err == nil {
		t.Fatal("expected error for body and body file together")
	}
}

func TestNewClientTransport(t *testing.T) {
	c := NewClient(30*time.Second, 128)
	if c.Timeout != 30*time.Second {
		t.Errorf("timeout = %s", c.Timeout)
	}
	transport, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport type %T", c.Transport)
	}
	if transport.MaxIdleConnsPerHost < 128 {
		t.Errorf("per-host idle conns = %d, want >= worker count", transport.MaxIdleConnsPerHost)
	}
}
