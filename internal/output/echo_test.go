package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

// TestEchoClaimOnce runs many goroutines through Claim and verifies exactly
// one wins, the property that keeps concurrent workers from interleaving
// echoed bodies.
func TestEchoClaimOnce(t *testing.T) {
	var buf lockedBuffer
	e := NewEcho(&buf)

	const workers = 32
	var wg sync.WaitGroup
	var winners sync.Map
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if e.Claim() {
				winners.Store(id, true)
				e.Chunk([]byte("body"))
				e.Finish()
			}
		}(i)
	}
	wg.Wait()

	count := 0
	winners.Range(func(_, _ any) bool { count++; return true })
	if count != 1 {
		t.Fatalf("claim won by %d goroutines, want 1", count)
	}

	out := buf.String()
	if n := strings.Count(out, "--- RESPONSE START ---"); n != 1 {
		t.Fatalf("start marker appears %d times:\n%s", n, out)
	}
	if n := strings.Count(out, "body"); n != 1 {
		t.Fatalf("body appears %d times:\n%s", n, out)
	}
}

func TestEchoNilSafe(t *testing.T) {
	var e *Echo
	if e.Claim() {
		t.Fatal("nil echo must never claim")
	}
	if e.Claimed() {
		t.Fatal("nil echo must never report claimed")
	}
}

func TestEchoReplacesInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	e := NewEcho(&buf)
	e.Claim()
	e.Chunk([]byte{'o', 'k', 0xff, 0xfe})
	e.Finish()

	out := buf.String()
	if !strings.Contains(out, "ok") {
		t.Fatalf("valid prefix lost: %q", out)
	}
	if strings.ContainsRune(out, 0xff) {
		t.Fatalf("raw invalid byte leaked: %q", out)
	}
	if !strings.Contains(out, "�") {
		t.Fatalf("replacement rune missing: %q", out)
	}
}

// lockedBuffer lets concurrent echo calls share one buffer safely.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
