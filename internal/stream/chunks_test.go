package stream

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func collectChunks(t *testing.T, p *chunkPump) []byte {
	t.Helper()
	var out []byte
	for {
		select {
		case chunk, ok := <-p.Chunks():
			if !ok {
				return out
			}
			out = append(out, chunk...)
		case <-time.After(time.Second):
			t.Fatal("pump stalled")
		}
	}
}

func TestChunkPumpCleanEOF(t *testing.T) {
	p := newChunkPump(strings.NewReader("hello world"))
	defer p.Stop()

	got := collectChunks(t, p)
	if string(got) != "hello world" {
		t.Fatalf("chunks = %q", got)
	}
	if err := p.Err(); err != nil {
		t.Fatalf("clean EOF reported as error: %v", err)
	}
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) > 0 {
		n := copy(p, r.data)
		r.data = r.data[n:]
		return n, nil
	}
	return 0, r.err
}

func TestChunkPumpTruncation(t *testing.T) {
	truncated := errors.New("connection reset")
	p := newChunkPump(&failingReader{data: []byte("partial"), err: truncated})
	defer p.Stop()

	got := collectChunks(t, p)
	if string(got) != "partial" {
		t.Fatalf("chunks = %q", got)
	}
	if !errors.Is(p.Err(), truncated) {
		t.Fatalf("err = %v, want the read error", p.Err())
	}
}

func TestChunkPumpStopReleasesGoroutine(t *testing.T) {
	pr, pw := io.Pipe()
	p := newChunkPump(pr)
	p.Stop()

	// With the consumer gone the pump must drop the chunk instead of
	// blocking forever on the send.
	go func() {
		_, _ = pw.Write([]byte("late"))
		_ = pw.Close()
	}()

	select {
	case _, ok := <-p.Chunks():
		if ok {
			// A chunk may still slip through before stop is observed.
			<-p.Chunks()
		}
	case <-time.After(time.Second):
		t.Fatal("pump did not release after Stop")
	}
}
