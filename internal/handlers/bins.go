package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"trashnet-backend/internal/fleet"
	"trashnet-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// BinStatusUpdateRequest is the gateway's status report payload.
type BinStatusUpdateRequest struct {
	BinID          string `json:"bin_id"`
	DistanceCM     int    `json:"distance_cm"`
	FillPercentage int    `json:"fill_percentage"`
	StatusText     string `json:"status_text"`
	Timestamp      int64  `json:"timestamp"`
}

// BinHeartbeatRequest is the gateway's liveness-only payload.
type BinHeartbeatRequest struct {
	BinID     string `json:"bin_id"`
	Timestamp int64  `json:"timestamp"`
}

// PostBinStatusUpdate ingests a status report. Content problems (unknown
// bin, out-of-range fill) are recovered, never surfaced: the gateway
// always gets an acknowledgement for a well-formed request.
func PostBinStatusUpdate(svc *fleet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BinStatusUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.BinID == "" {
			utils.Error(w, http.StatusBadRequest, "bin_id is required")
			return
		}

		svc.RecordStatusReport(req.BinID, req.FillPercentage, req.Timestamp)
		utils.Success(w, map[string]string{"message": "Bin status updated successfully"})
	}
}

// PostBinHeartbeat ingests a heartbeat. Heartbeats never create bins; an
// unknown id is the one content failure this surface reports (404).
func PostBinHeartbeat(svc *fleet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BinHeartbeatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.BinID == "" {
			utils.Error(w, http.StatusBadRequest, "bin_id is required")
			return
		}

		if err := svc.RecordHeartbeat(req.BinID, req.Timestamp); err != nil {
			if errors.Is(err, fleet.ErrUnknownBin) {
				utils.Error(w, http.StatusNotFound, "Bin ID not found")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "Failed to record heartbeat")
			return
		}

		utils.Success(w, map[string]string{"message": "Bin heartbeat received"})
	}
}

// GetAdminBinsData serves the point-in-time fleet view, keyed by bin id,
// with connection status derived at read time.
func GetAdminBinsData(svc *fleet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.Success(w, svc.AdminView())
	}
}

// PostBinMaintenance is the manual out-of-band maintenance override.
func PostBinMaintenance(svc *fleet.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		binID := chi.URLParam(r, "id")
		if binID == "" {
			utils.Error(w, http.StatusBadRequest, "Bad Request")
			return
		}

		data, err := svc.MarkMaintenance(binID)
		if err != nil {
			if errors.Is(err, fleet.ErrUnknownBin) {
				utils.Error(w, http.StatusNotFound, "Bin ID not found")
				return
			}
			utils.Error(w, http.StatusInternalServerError, "Failed to update bin")
			return
		}

		utils.Success(w, data)
	}
}
