package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"trashnet-backend/internal/fleet"
)

// Hub maintains the admin dashboard connections and fans fleet events out
// to them. It also satisfies fleet.Notifier, so the fleet service pushes
// every bin change through here.
type Hub struct {
	// Registered clients (connection id -> Client)
	clients map[string]*Client

	// Outbound events to broadcast
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex
}

// Event is the wire envelope pushed to dashboards.
type Event struct {
	Type string             `json:"type"`
	Bin  fleet.AdminBinData `json:"bin"`
}

// NewHub creates a hub. Run must be started in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister/broadcast events until the process
// exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Dashboard connected (%s), %d total", client.ID, h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("🔴 [WEBSOCKET] Dashboard disconnected (%s), %d remaining", client.ID, h.ClientCount())

		case data := <-h.broadcast:
			h.mu.RLock()
			for id, client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Client buffer full; it will be dropped by its pumps.
					log.Printf("⚠️  Dashboard %s is not keeping up, skipping event", id)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) publish(eventType string, bin fleet.AdminBinData) {
	data, err := json.Marshal(Event{Type: eventType, Bin: bin})
	if err != nil {
		log.Printf("❌ Failed to marshal %s event: %v", eventType, err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		// Broadcast queue full; dashboards get the next event instead.
	}
}

// BinUpdated implements fleet.Notifier.
func (h *Hub) BinUpdated(bin fleet.AdminBinData) {
	h.publish("bin_update", bin)
}

// BinBecameFull implements fleet.Notifier.
func (h *Hub) BinBecameFull(bin fleet.AdminBinData) {
	h.publish("bin_full", bin)
}

// ClientCount returns the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
