package gateway

import (
	"bufio"
	"context"
	"log"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	// heartbeatInterval is the liveness cadence, independent of whether a
	// status update also went out.
	heartbeatInterval = 10 * time.Second

	// reconnectPause between attempts to reopen a lost serial port.
	reconnectPause = 5 * time.Second
)

// Config wires one gateway process to one physical bin.
type Config struct {
	BinID       string
	Port        string // e.g. /dev/ttyUSB0
	BaudRate    int
	BinHeightCM int
}

// Runner bridges a sensor board's serial line to the fleet service.
// Serial failures trigger reconnects; transport failures toward the fleet
// service are logged and the report dropped for that cycle.
type Runner struct {
	cfg      Config
	reporter *Reporter
}

// NewRunner creates a gateway runner.
func NewRunner(cfg Config, reporter *Reporter) *Runner {
	return &Runner{cfg: cfg, reporter: reporter}
}

func (r *Runner) openPort() (serial.Port, error) {
	port, err := serial.Open(r.cfg.Port, &serial.Mode{BaudRate: r.cfg.BaudRate})
	if err != nil {
		return nil, err
	}
	// Give the board a moment to settle after the port toggles DTR.
	time.Sleep(2 * time.Second)
	log.Printf("✅ Connected to sensor on %s for bin %s", r.cfg.Port, r.cfg.BinID)
	return port, nil
}

// readLines pumps trimmed serial lines into a channel until the port
// fails, then closes the channel so the main loop reconnects.
func readLines(port serial.Port, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines <- line
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("⚠️  Serial read failed: %v", err)
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		if ctx.Err() != nil {
			log.Println("👋 Gateway stopped")
			return
		}

		port, err := r.openPort()
		if err != nil {
			log.Printf("⚠️  Could not open %s: %v (retrying in %v)", r.cfg.Port, err, reconnectPause)
			select {
			case <-ctx.Done():
			case <-heartbeat.C:
				// Keep heartbeating while the sensor is unplugged: the
				// gateway itself is still alive.
				r.sendHeartbeat()
			case <-time.After(reconnectPause):
			}
			continue
		}

		lines := make(chan string)
		go readLines(port, lines)

	connected:
		for {
			select {
			case <-ctx.Done():
				port.Close()
				log.Println("👋 Gateway stopped")
				return

			case line, ok := <-lines:
				if !ok {
					log.Println("⚠️  Sensor connection lost, reconnecting...")
					port.Close()
					break connected
				}
				r.handleLine(line)

			case <-heartbeat.C:
				r.sendHeartbeat()
			}
		}
	}
}

func (r *Runner) sendHeartbeat() {
	if err := r.reporter.SendHeartbeat(r.cfg.BinID); err != nil {
		// Fire-and-forget by policy, but the failure stays visible.
		log.Printf("⚠️  Heartbeat send failed: %v", err)
	}
}

func (r *Runner) handleLine(line string) {
	log.Printf("📟 Sensor says: %s", line)

	reading, ok := ParseLine(line)
	if !ok {
		log.Printf("⚠️  Could not parse sensor line: %q, discarding", line)
		return
	}

	fill, err := FillPercentage(reading.DistanceCM, r.cfg.BinHeightCM)
	if err != nil {
		log.Printf("⚠️  Bad gateway configuration: %v", err)
		return
	}

	if err := r.reporter.SendStatus(r.cfg.BinID, reading, fill); err != nil {
		log.Printf("⚠️  Status send failed: %v (will retry next reading)", err)
	}
}
