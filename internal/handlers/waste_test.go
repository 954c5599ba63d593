package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trashnet-backend/internal/camera"
	"trashnet-backend/internal/classify"
)

type stubClassifier struct {
	result classify.Result
	err    error
	calls  int
}

func (s *stubClassifier) ClassifyImage(ctx context.Context, jpeg []byte) (classify.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestDetectWasteNoFrame(t *testing.T) {
	buffer := camera.NewFrameBuffer()
	stub := &stubClassifier{}
	handler := DetectWaste(buffer, stub, nil)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/detect-waste", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (no frame is not an error)", w.Code)
	}
	var result classify.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Category != "unknown" || result.SpecificItem != "no image" || result.CreditsValue != 0 {
		t.Errorf("result = %+v, want unknown/no image/0", result)
	}
	if stub.calls != 0 {
		t.Error("classifier called with no frame available")
	}
}

func TestDetectWasteClassifierFailureDegrades(t *testing.T) {
	buffer := camera.NewFrameBuffer()
	buffer.Publish(&camera.Frame{Data: []byte("jpeg"), CapturedAt: time.Now()})
	stub := &stubClassifier{err: errors.New("model unreachable")}
	handler := DetectWaste(buffer, stub, nil)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/detect-waste", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (upstream failure substitutes unknown)", w.Code)
	}
	var result classify.Result
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Category != "unknown" || result.CreditsValue != 0 {
		t.Errorf("result = %+v, want unknown/0 on classifier failure", result)
	}
}

func TestDetectWasteSuccess(t *testing.T) {
	buffer := camera.NewFrameBuffer()
	buffer.Publish(&camera.Frame{Data: []byte("jpeg"), CapturedAt: time.Now()})
	stub := &stubClassifier{result: classify.Result{
		Category: "metal", SpecificItem: "aluminum can", CreditsValue: 40,
	}}
	handler := DetectWaste(buffer, stub, nil)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/detect-waste", nil))

	var result classify.Result
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Category != "metal" || result.CreditsValue != 40 {
		t.Errorf("result = %+v, want metal/40", result)
	}
}

func TestVideoFeedStreamsLatestFrame(t *testing.T) {
	buffer := camera.NewFrameBuffer()
	buffer.Publish(&camera.Frame{Data: []byte("fake-jpeg-bytes"), CapturedAt: time.Now()})

	server := httptest.NewServer(GetVideoFeed(buffer))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get video feed: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("content type = %q", got)
	}

	reader := bufio.NewReader(resp.Body)
	boundary, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read boundary: %v", err)
	}
	if strings.TrimSpace(boundary) != "--frame" {
		t.Errorf("boundary line = %q, want --frame", boundary)
	}

	partType, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read part header: %v", err)
	}
	if strings.TrimSpace(partType) != "Content-Type: image/jpeg" {
		t.Errorf("part header = %q, want image/jpeg", partType)
	}
}

// A feed with no frames stays open but sends nothing.
func TestVideoFeedWithholdsOutputUntilFirstFrame(t *testing.T) {
	buffer := camera.NewFrameBuffer()

	server := httptest.NewServer(GetVideoFeed(buffer))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get video feed: %v", err)
	}
	defer resp.Body.Close()

	buf := make([]byte, 1)
	_, err = resp.Body.Read(buf)
	if err == nil {
		t.Error("stream produced output before any frame was published")
	}
}
