package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoFrame signals a read cycle that produced nothing. The capture loop
// treats it as "try again" rather than a device failure.
var ErrNoFrame = errors.New("no frame available")

// FrameSource reads single frames from a capture device. ReadFrame blocks
// until a frame is available, the context is cancelled, or the device
// fails. Implementations own their reconnect state; the capture loop owns
// retry pacing.
type FrameSource interface {
	ReadFrame(ctx context.Context) ([]byte, error)
	Close() error
}

// MJPEGSource pulls frames from an IP camera's multipart MJPEG stream
// (multipart/x-mixed-replace). The stream is dialed lazily on the first
// read and redialed after any stream error.
type MJPEGSource struct {
	url    string
	client *http.Client

	body   io.ReadCloser
	reader *multipart.Reader
}

// NewMJPEGSource creates a source for the given camera URL.
func NewMJPEGSource(url string) *MJPEGSource {
	return &MJPEGSource{
		url: url,
		client: &http.Client{
			// No overall timeout: the response body is a live stream.
			Timeout: 0,
		},
	}
}

func (s *MJPEGSource) connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("build camera request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("dial camera stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("camera stream returned %s", resp.Status)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		resp.Body.Close()
		return fmt.Errorf("camera stream is not multipart (got %q)", resp.Header.Get("Content-Type"))
	}

	s.body = resp.Body
	s.reader = multipart.NewReader(resp.Body, params["boundary"])
	return nil
}

// ReadFrame returns the next JPEG part from the stream.
func (s *MJPEGSource) ReadFrame(ctx context.Context) ([]byte, error) {
	if s.reader == nil {
		if err := s.connect(ctx); err != nil {
			return nil, err
		}
	}

	part, err := s.reader.NextPart()
	if err != nil {
		// Stream broke; drop the connection so the next read redials.
		s.teardown()
		return nil, fmt.Errorf("read camera stream part: %w", err)
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		s.teardown()
		return nil, fmt.Errorf("read camera frame body: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoFrame
	}
	return data, nil
}

func (s *MJPEGSource) teardown() {
	if s.body != nil {
		s.body.Close()
	}
	s.body = nil
	s.reader = nil
}

// Close tears down the stream connection.
func (s *MJPEGSource) Close() error {
	s.teardown()
	return nil
}

// DirectorySource replays JPEG files from a directory in name order,
// wrapping around at the end. Used for development without a camera.
type DirectorySource struct {
	dir      string
	interval time.Duration
	files    []string
	next     int
}

// NewDirectorySource creates a replay source that emits one frame per
// interval.
func NewDirectorySource(dir string, interval time.Duration) *DirectorySource {
	if interval <= 0 {
		interval = time.Second
	}
	return &DirectorySource{dir: dir, interval: interval}
}

func (s *DirectorySource) scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read frame directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".jpg" || ext == ".jpeg" {
			files = append(files, filepath.Join(s.dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return ErrNoFrame
	}
	sort.Strings(files)
	s.files = files
	return nil
}

// ReadFrame returns the next file's contents after the replay interval.
func (s *DirectorySource) ReadFrame(ctx context.Context) ([]byte, error) {
	if len(s.files) == 0 {
		if err := s.scan(); err != nil {
			return nil, err
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.interval):
	}

	path := s.files[s.next]
	s.next = (s.next + 1) % len(s.files)

	data, err := os.ReadFile(path)
	if err != nil {
		// File may have been removed since the scan; rescan next time.
		s.files = nil
		s.next = 0
		return nil, fmt.Errorf("read frame file %s: %w", path, err)
	}
	return data, nil
}

// Close is a no-op for directory replay.
func (s *DirectorySource) Close() error { return nil }
