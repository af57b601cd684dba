package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// Echo mirrors the body of exactly one successful response to the console.
// All workers share a single Echo; the first Claim wins via atomic
// test-and-set, so the body is printed at most once no matter how many
// workers succeed simultaneously.
type Echo struct {
	w       io.Writer
	mu      sync.Mutex
	claimed atomic.Bool
}

func NewEcho(w io.Writer) *Echo {
	if w == nil {
		w = io.Discard
	}
	return &Echo{w: w}
}

// Claim performs the one-time test-and-set. Only the winner may call Chunk
// and Finish. A nil Echo never claims, so callers can pass nil when echoing
// is disabled.
func (e *Echo) Claim() bool {
	if e == nil {
		return false
	}
	if !e.claimed.CompareAndSwap(false, true) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.w, "--- RESPONSE START ---")
	return true
}

// Chunk writes one decoded chunk as it arrives. Invalid UTF-8 bytes are
// replaced rather than dropped.
func (e *Echo) Chunk(p []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprint(e.w, strings.ToValidUTF8(string(p), "�"))
}

// Finish closes out the echoed response.
func (e *Echo) Finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprint(e.w, "\n--- RESPONSE END ---\n\n")
}

// Claimed reports whether a response has been echoed.
func (e *Echo) Claimed() bool {
	if e == nil {
		return false
	}
	return e.claimed.Load()
}
