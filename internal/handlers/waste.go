package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"trashnet-backend/internal/camera"
	"trashnet-backend/internal/classify"
	"trashnet-backend/internal/ledger"
	"trashnet-backend/internal/storage"
	"trashnet-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

// maxUploadBytes bounds classify-image uploads.
const maxUploadBytes = 10 << 20

// SubmitWasteRequest credits a user for a classified drop-off.
type SubmitWasteRequest struct {
	UserID       string `json:"user_id"`
	BinID        string `json:"bin_id"`
	Category     string `json:"category"`
	SpecificItem string `json:"specific_item"`
	CreditsValue int    `json:"credits_value"`
}

// DetectWaste classifies whatever the camera is currently looking at.
// An empty frame buffer or an unreachable classifier degrades to an
// unknown/zero-credit result; the caller's request never fails over it.
func DetectWaste(buffer *camera.FrameBuffer, classifier classify.Classifier, archiver *storage.Archiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frame, ok := buffer.Snapshot()
		if !ok {
			log.Println("⚠️  No frame available for detect-waste")
			utils.Success(w, classify.Unknown("no image"))
			return
		}

		result, err := classifier.ClassifyImage(r.Context(), frame.Data)
		if err != nil {
			log.Printf("⚠️  Classification failed: %v", err)
			utils.Success(w, classify.Unknown("error"))
			return
		}

		log.Printf("♻️  Detected: category=%s item=%q credits=%d", result.Category, result.SpecificItem, result.CreditsValue)
		go archiver.ArchiveFrame(result.Category, result.SpecificItem, frame.Data)
		utils.Success(w, result)
	}
}

// ClassifyImage classifies an uploaded image instead of the live frame.
func ClassifyImage(classifier classify.Classifier, archiver *storage.Archiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Missing file field")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Failed to read upload")
			return
		}

		result, err := classifier.ClassifyImage(r.Context(), data)
		if err != nil {
			log.Printf("⚠️  Classification failed: %v", err)
			utils.Success(w, classify.Unknown("error"))
			return
		}

		go archiver.ArchiveFrame(result.Category, result.SpecificItem, data)
		utils.Success(w, result)
	}
}

// SubmitWaste credits the user and appends the submission record.
func SubmitWaste(store *ledger.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitWasteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.Error(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.UserID == "" {
			utils.Error(w, http.StatusBadRequest, "user_id is required")
			return
		}
		if req.SpecificItem == "" {
			req.SpecificItem = "unknown"
		}

		account, err := store.RecordSubmission(req.UserID, req.BinID, req.Category, req.SpecificItem, req.CreditsValue)
		if err != nil {
			log.Printf("❌ Failed to record submission: %v", err)
			utils.Error(w, http.StatusInternalServerError, "Failed to record submission")
			return
		}

		log.Printf("♻️  Submitted waste: user=%s category=%s item=%q bin=%s credits=%d",
			req.UserID, req.Category, req.SpecificItem, req.BinID, req.CreditsValue)
		utils.Success(w, account)
	}
}

// GetUserCredits returns a user's balance and submission history, creating
// the account on first contact.
func GetUserCredits(store *ledger.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "user_id")
		if userID == "" {
			utils.Error(w, http.StatusBadRequest, "Bad Request")
			return
		}

		account, err := store.GetAccount(userID)
		if err != nil {
			log.Printf("❌ Failed to fetch credits for %s: %v", userID, err)
			utils.Error(w, http.StatusInternalServerError, "Failed to fetch credits")
			return
		}

		utils.Success(w, account)
	}
}
