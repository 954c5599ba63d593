package camera

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSnapshotEmptyBeforeFirstPublish(t *testing.T) {
	buf := NewFrameBuffer()

	frame, ok := buf.Snapshot()
	if ok || frame != nil {
		t.Errorf("Snapshot on empty buffer = (%v, %v), want (nil, false)", frame, ok)
	}
}

func TestPublishOverwrites(t *testing.T) {
	buf := NewFrameBuffer()

	first := &Frame{Data: []byte("frame-1"), CapturedAt: time.Now()}
	buf.Publish(first)

	frame, ok := buf.Snapshot()
	if !ok || string(frame.Data) != "frame-1" {
		t.Fatalf("Snapshot after first publish = %q, want frame-1", frame.Data)
	}

	// Repeated snapshots without a publish keep returning the same frame.
	frame, _ = buf.Snapshot()
	if string(frame.Data) != "frame-1" {
		t.Errorf("second snapshot = %q, want frame-1 again", frame.Data)
	}

	buf.Publish(&Frame{Data: []byte("frame-2"), CapturedAt: time.Now()})
	frame, _ = buf.Snapshot()
	if string(frame.Data) != "frame-2" {
		t.Errorf("snapshot after overwrite = %q, want frame-2", frame.Data)
	}
}

// A slow reader must never block the producer; intermediate frames are
// silently dropped.
func TestConcurrentPublishAndSnapshot(t *testing.T) {
	buf := NewFrameBuffer()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			buf.Publish(&Frame{Data: []byte{byte(i)}, CapturedAt: time.Now()})
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					buf.Snapshot()
				}
			}
		}()
	}
	wg.Wait()

	frame, ok := buf.Snapshot()
	if !ok || frame.Data[0] != byte(999%256) {
		t.Errorf("final frame = %v, want last published", frame)
	}
}

// stubSource fails a fixed number of reads before producing frames,
// simulating an unavailable device that comes back.
type stubSource struct {
	failures int
	reads    int
	closed   bool
}

func (s *stubSource) ReadFrame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.reads++
	if s.reads <= s.failures {
		return nil, errors.New("device unavailable")
	}
	return []byte("frame"), nil
}

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

func TestCaptureLoopRecoversFromFailedReads(t *testing.T) {
	buf := NewFrameBuffer()
	source := &stubSource{failures: 2}
	loop := NewCaptureLoop(source, buf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	// Two failed reads back off 250ms + 500ms before the first frame.
	deadline := time.After(5 * time.Second)
	for {
		if _, ok := buf.Snapshot(); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no frame published after device recovery")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("capture loop did not stop on cancel")
	}
	if !source.closed {
		t.Error("capture loop did not close its source")
	}
}
