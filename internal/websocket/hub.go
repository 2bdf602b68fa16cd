package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	DesktopID() int32
	IsOwner() bool
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by desktop
// It is safe for concurrent use
type Hub struct {
	// desktops maps desktop ID to a map of client ID to client
	desktops map[int32]map[string]ClientInterface
	mu       sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		desktops: make(map[int32]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its desktop
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	desktopID := client.DesktopID()
	if h.desktops[desktopID] == nil {
		h.desktops[desktopID] = make(map[string]ClientInterface)
	}
	h.desktops[desktopID][client.ID()] = client

	log.Debug().
		Int32("desktop_id", desktopID).
		Str("client_id", client.ID()).
		Bool("owner", client.IsOwner()).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.remove(client.DesktopID(), client.ID()) {
		log.Debug().
			Int32("desktop_id", client.DesktopID()).
			Str("client_id", client.ID()).
			Msg("WebSocket client unregistered")
	}
}

// remove deletes a client and drops empty desktop maps. Caller holds h.mu.
func (h *Hub) remove(desktopID int32, clientID string) bool {
	clients, ok := h.desktops[desktopID]
	if !ok {
		return false
	}
	if _, exists := clients[clientID]; !exists {
		return false
	}
	delete(clients, clientID)
	if len(clients) == 0 {
		delete(h.desktops, desktopID)
	}
	return true
}

// Broadcast sends an event to all clients watching a specific desktop
func (h *Hub) Broadcast(desktopID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("desktop_id", desktopID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.desktops[desktopID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	for _, client := range clientsCopy {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int32("desktop_id", desktopID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Int32("desktop_id", desktopID).
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event")
}

// CloseViewers unregisters and closes every client of the desktop that is
// not its owner. It returns how many connections were closed.
func (h *Hub) CloseViewers(desktopID int32) int {
	h.mu.Lock()
	var viewers []ClientInterface
	for id, client := range h.desktops[desktopID] {
		if client.IsOwner() {
			continue
		}
		viewers = append(viewers, client)
		h.remove(desktopID, id)
	}
	h.mu.Unlock()

	for _, client := range viewers {
		if err := client.Close(); err != nil {
			log.Debug().Err(err).Str("client_id", client.ID()).Msg("Error closing viewer connection")
		}
	}

	if len(viewers) > 0 {
		log.Info().
			Int32("desktop_id", desktopID).
			Int("viewer_count", len(viewers)).
			Msg("Disconnected viewers of private desktop")
	}
	return len(viewers)
}

// ClientCount returns the number of clients connected to a desktop
func (h *Hub) ClientCount(desktopID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.desktops[desktopID])
}

// TotalClientCount returns the total number of connected clients across all desktops
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.desktops {
		total += len(clients)
	}
	return total
}
