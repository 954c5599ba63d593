package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"trashnet-backend/internal/gateway"

	"github.com/joho/godotenv"
)

func main() {
	binID := flag.String("bin-id", "", "Unique ID of the bin this gateway reports for (e.g. A01, B03)")
	port := flag.String("port", "", "Serial port of the sensor board (overrides SENSOR_PORT)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	}

	if *binID == "" {
		log.Fatal("--bin-id is required")
	}

	serialPort := *port
	if serialPort == "" {
		serialPort = os.Getenv("SENSOR_PORT")
	}
	if serialPort == "" {
		serialPort = "/dev/ttyUSB0"
	}

	baudRate := 9600
	if raw := os.Getenv("SENSOR_BAUD_RATE"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			baudRate = parsed
		}
	}

	binHeight := 62 // cm, sensor to bin floor when empty
	if raw := os.Getenv("BIN_HEIGHT_CM"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			binHeight = parsed
		}
	}

	apiBaseURL := os.Getenv("API_BASE_URL")
	if apiBaseURL == "" {
		apiBaseURL = "http://localhost:8000"
	}

	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Printf("🚀 TRASHNET GATEWAY STARTING for bin %s", *binID)
	log.Printf("   Serial: %s @ %d baud, bin height %d cm", serialPort, baudRate, binHeight)
	log.Printf("   Fleet service: %s", apiBaseURL)
	log.Println("═══════════════════════════════════════════════════════════════════")

	runner := gateway.NewRunner(gateway.Config{
		BinID:       *binID,
		Port:        serialPort,
		BaudRate:    baudRate,
		BinHeightCM: binHeight,
	}, gateway.NewReporter(apiBaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner.Run(ctx)
}
