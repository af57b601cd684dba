package stream

import (
	"io"
	"sync"
)

const readBufferSize = 32 * 1024

// chunkPump reads a response body in the background and hands chunks over a
// channel, so the consumer can race reads against timers. The channel closes
// on end of stream; Err distinguishes clean EOF from truncation.
type chunkPump struct {
	chunks  chan []byte
	done    chan struct{}
	stop    sync.Once
	readErr error // written before chunks closes, read after
}

func newChunkPump(body io.Reader) *chunkPump {
	p := &chunkPump{
		chunks: make(chan []byte),
		done:   make(chan struct{}),
	}
	go p.run(body)
	return p
}

func (p *chunkPump) run(body io.Reader) {
	defer close(p.chunks)
	buf := make([]byte, readBufferSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case p.chunks <- chunk:
			case <-p.done:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				p.readErr = err
			}
			return
		}
	}
}

// Chunks is closed when the stream ends for any reason.
func (p *chunkPump) Chunks() <-chan []byte { return p.chunks }

// Err reports the terminal read error. Only meaningful after Chunks closes;
// nil means the stream ended with a clean EOF.
func (p *chunkPump) Err() error { return p.readErr }

// Stop releases the pump goroutine. The caller must also close the response
// body to unblock an in-flight Read.
func (p *chunkPump) Stop() { p.stop.Do(func() { close(p.done) }) }
