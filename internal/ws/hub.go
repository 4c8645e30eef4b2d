package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"AtendeBot/entity"
)

// ClientMessageHandler handles incoming WebSocket messages from dashboard
// clients.
type ClientMessageHandler interface {
	HandleMarkRead(username, sessionID string) error
}

// Event represents a WebSocket event sent to dashboard clients.
type Event struct {
	Type string      `json:"type"` // "new_message", "session_update"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active WebSocket clients and broadcasts events.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	handler    ClientMessageHandler
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// SetHandler sets the handler for incoming client messages.
func (h *Hub) SetHandler(handler ClientMessageHandler) {
	h.handler = handler
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// MessageSaved sends a new_message event to all connected dashboard clients.
// Satisfies the engine's listener interface.
func (h *Hub) MessageSaved(msg entity.Message) {
	h.broadcast <- &Event{
		Type: "new_message",
		Data: msg,
	}
}

// BroadcastSessionUpdate notifies dashboards that a session changed (takeover,
// release, read state).
func (h *Hub) BroadcastSessionUpdate(sessionID string) {
	h.broadcast <- &Event{
		Type: "session_update",
		Data: map[string]string{
			"session_id": sessionID,
		},
	}
}

// clientEvent represents an incoming WebSocket message from a dashboard
// client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an incoming message from a client.
func (h *Hub) HandleClientMessage(username string, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		if h.log != nil {
			h.log.Warn("failed to parse client ws message", slog.String("error", err.Error()))
		}
		return
	}

	switch event.Type {
	case "mark_read":
		var data struct {
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			if h.log != nil {
				h.log.Warn("failed to parse mark_read data", slog.String("error", err.Error()))
			}
			return
		}
		if data.SessionID == "" {
			return
		}
		if err := h.handler.HandleMarkRead(username, data.SessionID); err != nil {
			if h.log != nil {
				h.log.Error("failed to handle mark_read",
					slog.String("username", username),
					slog.String("session_id", data.SessionID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
