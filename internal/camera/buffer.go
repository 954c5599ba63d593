package camera

import (
	"sync"
	"time"
)

// Frame is one captured JPEG image. Data must not be modified after
// publishing; the buffer hands the same slice to every reader.
type Frame struct {
	Data       []byte
	CapturedAt time.Time
}

// FrameBuffer is a single-slot register holding the most recent frame.
// A publish unconditionally replaces the previous frame whether or not
// anyone read it; readers only ever see "latest so far". It is a
// broadcast slot, not a queue: slow consumers silently miss frames.
type FrameBuffer struct {
	mu    sync.RWMutex
	frame *Frame
}

// NewFrameBuffer creates an empty buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Publish stores a frame, overwriting the previous one. Never blocks
// beyond the slot's own lock.
func (b *FrameBuffer) Publish(frame *Frame) {
	b.mu.Lock()
	b.frame = frame
	b.mu.Unlock()
}

// Snapshot returns the most recently published frame, or (nil, false) if
// nothing has ever been published. Never waits for a next frame.
func (b *FrameBuffer) Snapshot() (*Frame, bool) {
	b.mu.RLock()
	frame := b.frame
	b.mu.RUnlock()
	if frame == nil {
		return nil, false
	}
	return frame, true
}
