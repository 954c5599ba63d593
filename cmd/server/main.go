package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"trashnet-backend/internal/camera"
	"trashnet-backend/internal/classify"
	"trashnet-backend/internal/database"
	"trashnet-backend/internal/fleet"
	"trashnet-backend/internal/handlers"
	"trashnet-backend/internal/ledger"
	"trashnet-backend/internal/middleware"
	"trashnet-backend/internal/services"
	"trashnet-backend/internal/storage"
	"trashnet-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 TRASHNET BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Connect the ledger database
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}
	if err := database.SeedUsers(db); err != nil {
		log.Fatal(err)
	}
	ledgerStore := ledger.NewStore(db)

	// Fleet registry: in-memory for the lifetime of the process
	registry := fleet.NewRegistry()
	fleet.SeedBins(registry)

	threshold := fleet.DefaultLivenessThreshold
	if raw := os.Getenv("LIVENESS_THRESHOLD_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			threshold = time.Duration(secs) * time.Second
		} else {
			log.Printf("⚠️  Ignoring invalid LIVENESS_THRESHOLD_SECONDS=%q", raw)
		}
	}
	liveness := fleet.NewLivenessEvaluator(threshold)
	log.Printf("✅ Liveness threshold: %v", liveness.Threshold())

	// WebSocket hub for live admin dashboards
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	// Firebase Cloud Messaging for bin-full alerts (optional)
	// Supports both file path and base64-encoded credentials
	var fcmService *services.FCMService
	if fcmCredsBase64 := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); fcmCredsBase64 != "" {
		fcmService, err = services.NewFCMServiceFromBase64(fcmCredsBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else if fcmCredentialsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE"); fcmCredentialsFile != "" {
		fcmService, err = services.NewFCMService(fcmCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	} else {
		log.Println("⚠️  FCM credentials not configured, push notifications disabled")
	}

	fleetService := fleet.NewService(registry, liveness, wsHub, fcmService)

	// Camera capture loop feeding the live frame buffer
	frameBuffer := camera.NewFrameBuffer()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if source := buildFrameSource(); source != nil {
		captureLoop := camera.NewCaptureLoop(source, frameBuffer)
		go captureLoop.Run(ctx)
		log.Println("✅ Camera capture loop started")
	} else {
		log.Println("⚠️  No camera configured (set CAMERA_URL or CAMERA_DIR); video feed will stay empty")
	}

	// Gemini classifier (optional; degrades to unknown results)
	var classifier classify.Classifier
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		geminiClassifier, err := classify.NewGeminiClassifier(ctx, apiKey)
		if err != nil {
			log.Printf("⚠️  Failed to initialize Gemini: %v (classification disabled)", err)
			classifier = unavailableClassifier{}
		} else {
			defer geminiClassifier.Close()
			classifier = geminiClassifier
			log.Println("✅ Gemini classifier initialized")
		}
	} else {
		log.Println("⚠️  GEMINI_API_KEY not set, classification disabled")
		classifier = unavailableClassifier{}
	}

	// MinIO frame archiver (optional)
	var archiver *storage.Archiver
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		archiver, err = storage.NewArchiver(storage.Config{
			Endpoint:  endpoint,
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		})
		if err != nil {
			log.Printf("⚠️  Failed to connect frame archiver: %v (archiving disabled)", err)
			archiver = nil
		}
	}

	// Create router
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Gateway ingestion endpoints (no auth: gateways are trusted LAN peers)
	r.Post("/bin-status-update", handlers.PostBinStatusUpdate(fleetService))
	r.Post("/bin-heartbeat", handlers.PostBinHeartbeat(fleetService))

	// Admin fleet snapshot and live camera feed
	r.Get("/admin/bins-data", handlers.GetAdminBinsData(fleetService))
	r.Get("/video-feed", handlers.GetVideoFeed(frameBuffer))

	// Classification and credit ledger
	r.Get("/detect-waste", handlers.DetectWaste(frameBuffer, classifier, archiver))
	r.Post("/classify-image", handlers.ClassifyImage(classifier, archiver))
	r.Post("/submit-waste", handlers.SubmitWaste(ledgerStore))
	r.Get("/user-credits/{user_id}", handlers.GetUserCredits(ledgerStore))

	// Authentication
	r.Post("/api/auth/login", handlers.Login(db))

	// WebSocket endpoint (token validated in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(wsHub))

	// Manager endpoints (require authentication + admin role)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth)
		r.Use(middleware.RequireRole("admin"))

		r.Post("/api/admin/bins/{id}/maintenance", handlers.PostBinMaintenance(fleetService))
	})

	// Get port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
		log.Printf("⚠️  PORT not set, using default: %s", port)
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("✅ ALL INITIALIZATION COMPLETE")
	log.Printf("🚀 Server starting on http://localhost:%s", port)
	log.Println("═══════════════════════════════════════════════════════════════════")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

// buildFrameSource picks the capture device from the environment.
func buildFrameSource() camera.FrameSource {
	if url := os.Getenv("CAMERA_URL"); url != "" {
		log.Printf("📷 Using MJPEG camera at %s", url)
		return camera.NewMJPEGSource(url)
	}
	if dir := os.Getenv("CAMERA_DIR"); dir != "" {
		log.Printf("📷 Replaying frames from %s", dir)
		return camera.NewDirectorySource(dir, time.Second)
	}
	return nil
}

// unavailableClassifier stands in when Gemini is not configured; handlers
// turn its error into the unknown/zero-credit result.
type unavailableClassifier struct{}

func (unavailableClassifier) ClassifyImage(context.Context, []byte) (classify.Result, error) {
	return classify.Result{}, errNotConfigured("classifier not configured")
}

type errNotConfigured string

func (e errNotConfigured) Error() string { return string(e) }
