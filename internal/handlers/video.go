package handlers

import (
	"fmt"
	"net/http"
	"time"

	"trashnet-backend/internal/camera"
)

// streamInterval paces the outbound MJPEG stream; the capture loop may
// publish faster, in which case viewers just skip frames.
const streamInterval = 100 * time.Millisecond

// GetVideoFeed streams the latest captured frame as a multipart MJPEG
// feed. If no frame has been captured yet the stream stays open but
// silent until one exists. Staleness is not an error: a dead camera
// leaves viewers watching the last good frame.
func GetVideoFeed(buffer *camera.FrameBuffer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
		w.Header().Set("Cache-Control", "no-cache")
		// Open the stream right away; parts follow once frames exist.
		flusher.Flush()

		ticker := time.NewTicker(streamInterval)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
			}

			frame, ok := buffer.Snapshot()
			if !ok {
				continue
			}

			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\n\r\n"); err != nil {
				return
			}
			if _, err := w.Write(frame.Data); err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "\r\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
