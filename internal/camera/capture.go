package camera

import (
	"context"
	"errors"
	"log"
	"time"
)

const (
	// retryBase is the first pause after a failed read; each consecutive
	// failure doubles it up to retryMax. A successful read resets it.
	retryBase = 250 * time.Millisecond
	retryMax  = 5 * time.Second
)

// CaptureLoop continuously reads frames from a source and publishes them
// into a FrameBuffer. A missing or failing device never stops the loop:
// readers simply keep seeing the last good frame (or none), and the loop
// retries with bounded backoff instead of spinning.
type CaptureLoop struct {
	source FrameSource
	buffer *FrameBuffer
}

// NewCaptureLoop wires a source to a buffer.
func NewCaptureLoop(source FrameSource, buffer *FrameBuffer) *CaptureLoop {
	return &CaptureLoop{source: source, buffer: buffer}
}

// Run blocks until ctx is cancelled. Intended to be started as the single
// background capture goroutine.
func (l *CaptureLoop) Run(ctx context.Context) {
	defer l.source.Close()

	backoff := retryBase
	for {
		if ctx.Err() != nil {
			log.Println("📷 Capture loop stopped")
			return
		}

		data, err := l.source.ReadFrame(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Println("📷 Capture loop stopped")
				return
			}
			if !errors.Is(err, ErrNoFrame) {
				log.Printf("⚠️  Camera read failed: %v (retrying in %v)", err, backoff)
			}
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > retryMax {
				backoff = retryMax
			}
			continue
		}

		backoff = retryBase
		l.buffer.Publish(&Frame{Data: data, CapturedAt: time.Now()})
	}
}
