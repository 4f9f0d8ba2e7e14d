package websocket

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	GroupID() uuid.UUID
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by group.
// It is safe for concurrent use.
type Hub struct {
	// groups maps group ID to a map of client ID to client
	groups map[uuid.UUID]map[string]ClientInterface
	mu     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		groups: make(map[uuid.UUID]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its group
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	groupID := client.GroupID()
	clientID := client.ID()

	if h.groups[groupID] == nil {
		h.groups[groupID] = make(map[string]ClientInterface)
	}

	h.groups[groupID][clientID] = client

	log.Debug().
		Str("group_id", groupID.String()).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	groupID := client.GroupID()
	clientID := client.ID()

	if clients, ok := h.groups[groupID]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			if len(clients) == 0 {
				delete(h.groups, groupID)
			}

			log.Debug().
				Str("group_id", groupID.String()).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to all clients watching a group
func (h *Hub) Broadcast(groupID uuid.UUID, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("group_id", groupID.String()).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	clients := h.snapshot(groupID)
	if len(clients) == 0 {
		return
	}

	// Send to each client asynchronously
	for _, client := range clients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("group_id", groupID.String()).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("group_id", groupID.String()).
		Str("event_type", event.Type).
		Int("client_count", len(clients)).
		Msg("Broadcast event")
}

// CloseGroup disconnects every client watching a group, used once the group is gone
func (h *Hub) CloseGroup(groupID uuid.UUID) {
	h.mu.Lock()
	clients := h.groups[groupID]
	delete(h.groups, groupID)
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.Close(); err != nil {
			log.Debug().Err(err).Str("client_id", c.ID()).Msg("Error closing client")
		}
	}
}

// ClientCount returns the number of clients watching a group
func (h *Hub) ClientCount(groupID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.groups[groupID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all groups
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.groups {
		total += len(clients)
	}
	return total
}

// snapshot copies a group's clients so sends happen without holding the lock
func (h *Hub) snapshot(groupID uuid.UUID) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.groups[groupID]
	out := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		out = append(out, client)
	}
	return out
}
