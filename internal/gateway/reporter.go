package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// StatusUpdate is the payload for POST /bin-status-update.
type StatusUpdate struct {
	BinID          string `json:"bin_id"`
	DistanceCM     int    `json:"distance_cm"`
	FillPercentage int    `json:"fill_percentage"`
	StatusText     string `json:"status_text"`
	Timestamp      int64  `json:"timestamp"`
}

// Heartbeat is the payload for POST /bin-heartbeat.
type Heartbeat struct {
	BinID     string `json:"bin_id"`
	Timestamp int64  `json:"timestamp"`
}

// Reporter delivers gateway evidence to the fleet service. Sends are
// fire-and-forget by policy: a failed delivery is logged by the caller
// and retried on the next scheduled report, never fatal.
type Reporter struct {
	baseURL string
	client  *http.Client
}

// NewReporter creates a reporter for the fleet service at baseURL.
func NewReporter(baseURL string) *Reporter {
	return &Reporter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (r *Reporter) post(path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", path, err)
	}

	resp, err := r.client.Post(r.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("post %s: server returned %s", path, resp.Status)
	}
	return nil
}

// SendStatus reports a fill reading.
func (r *Reporter) SendStatus(binID string, reading Reading, fillPercentage int) error {
	return r.post("/bin-status-update", StatusUpdate{
		BinID:          binID,
		DistanceCM:     reading.DistanceCM,
		FillPercentage: fillPercentage,
		StatusText:     reading.StatusText,
		Timestamp:      time.Now().Unix(),
	})
}

// SendHeartbeat reports liveness only.
func (r *Reporter) SendHeartbeat(binID string) error {
	return r.post("/bin-heartbeat", Heartbeat{
		BinID:     binID,
		Timestamp: time.Now().Unix(),
	})
}
