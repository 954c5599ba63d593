package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trashnet-backend/internal/fleet"

	"github.com/go-chi/chi/v5"
)

func newTestRouter() (*chi.Mux, *fleet.Service) {
	svc := fleet.NewService(fleet.NewRegistry(), fleet.NewLivenessEvaluator(30*time.Second))

	r := chi.NewRouter()
	r.Post("/bin-status-update", PostBinStatusUpdate(svc))
	r.Post("/bin-heartbeat", PostBinHeartbeat(svc))
	r.Get("/admin/bins-data", GetAdminBinsData(svc))
	return r, svc
}

func postJSON(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatusUpdateCreatesBinAndAcknowledges(t *testing.T) {
	router, _ := newTestRouter()

	ts := time.Now().Unix()
	w := postJSON(t, router, "/bin-status-update",
		`{"bin_id":"A01","distance_cm":3,"fill_percentage":95,"status_text":"Full","timestamp":`+
			jsonInt(ts)+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/bins-data", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var view map[string]fleet.AdminBinData
	if err := json.Unmarshal(resp.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode admin view: %v", err)
	}

	bin, ok := view["A01"]
	if !ok {
		t.Fatal("A01 missing from admin view")
	}
	if bin.Status != "full" {
		t.Errorf("status = %q, want full", bin.Status)
	}
	if bin.FillLevel != 95 {
		t.Errorf("fillLevel = %d, want 95", bin.FillLevel)
	}
	if bin.ConnectionStatus != "online" {
		t.Errorf("connection_status = %q, want online right after the report", bin.ConnectionStatus)
	}
	if bin.Name != "New Bin A01" || bin.Location != "Unknown Location" {
		t.Errorf("placeholder metadata missing: name=%q location=%q", bin.Name, bin.Location)
	}
	if bin.LastSeenTimestamp != ts {
		t.Errorf("last_seen_timestamp = %d, want %d", bin.LastSeenTimestamp, ts)
	}
}

func TestStatusUpdateAlwaysAcknowledgesOutOfRangeContent(t *testing.T) {
	router, svc := newTestRouter()

	w := postJSON(t, router, "/bin-status-update",
		`{"bin_id":"A01","distance_cm":-40,"fill_percentage":250,"status_text":"??","timestamp":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (content problems are recovered, not surfaced)", w.Code)
	}

	bin := svc.AdminView()["A01"]
	if bin.FillLevel != 100 {
		t.Errorf("fillLevel = %d, want clamped 100", bin.FillLevel)
	}
}

func TestStatusUpdateRejectsMalformedBody(t *testing.T) {
	router, _ := newTestRouter()

	w := postJSON(t, router, "/bin-status-update", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for malformed JSON", w.Code)
	}

	w = postJSON(t, router, "/bin-status-update", `{"fill_percentage":50,"timestamp":1}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing bin_id", w.Code)
	}
}

func TestHeartbeatUnknownBinReturns404(t *testing.T) {
	router, svc := newTestRouter()

	w := postJSON(t, router, "/bin-heartbeat", `{"bin_id":"Z99","timestamp":1700000000}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for unknown bin", w.Code)
	}
	if len(svc.AdminView()) != 0 {
		t.Error("heartbeat created a record; registry must stay unchanged")
	}
}

func TestHeartbeatKnownBin(t *testing.T) {
	router, _ := newTestRouter()

	postJSON(t, router, "/bin-status-update",
		`{"bin_id":"A01","distance_cm":30,"fill_percentage":50,"status_text":"Half","timestamp":100}`)

	w := postJSON(t, router, "/bin-heartbeat", `{"bin_id":"A01","timestamp":200}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAdminViewEmptyFleet(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/admin/bins-data", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even with no bins", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "{}" {
		t.Errorf("body = %q, want empty object", w.Body.String())
	}
}

func jsonInt(v int64) string {
	data, _ := json.Marshal(v)
	return string(data)
}
