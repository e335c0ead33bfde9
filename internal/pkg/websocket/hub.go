package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event types pushed to chat subscribers
const (
	EventMessageCreated = "message.created"
	EventMessageStatus  = "message.status"
	EventError          = "error"
)

// Event is a server to client frame
type Event struct {
	Type      string    `json:"type"`
	ChatID    string    `json:"chatId"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Observer is notified as clients come and go
type Observer interface {
	ClientConnected()
	ClientDisconnected()
}

// ErrHubStopped is returned by Serve once Run has returned
var ErrHubStopped = errors.New("websocket hub stopped")

// Hub maintains the set of active clients and broadcasts events to the clients of a chat
type Hub struct {
	// Registered clients organized by chat ID
	clients map[string]map[*Client]struct{}

	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client

	// Closed when Run returns
	done     chan struct{}
	doneOnce sync.Once

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	inboundMu sync.RWMutex
	inbound   InboundHandler

	upgrader websocket.Upgrader
	observer Observer
	logger   zerolog.Logger
}

// NewHub creates a new Hub instance. Empty allowedOrigins accepts any origin.
func NewHub(logger zerolog.Logger, allowedOrigins []string, observer Observer) *Hub {
	h := &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		observer:   observer,
		logger:     logger.With().Str("component", "chat_hub").Logger(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(allowedOrigins) == 0 || slices.ContainsFunc(allowedOrigins, func(o string) bool {
				return o == "*" || strings.EqualFold(o, origin)
			})
		},
	}
	return h
}

// SetInboundHandler wires the handler for frames sent by clients
func (h *Hub) SetInboundHandler(handler InboundHandler) {
	h.inboundMu.Lock()
	defer h.inboundMu.Unlock()
	h.inbound = handler
}

func (h *Hub) inboundHandler() InboundHandler {
	h.inboundMu.RLock()
	defer h.inboundMu.RUnlock()
	return h.inbound
}

// Run handles registrations and broadcasts until ctx is cancelled, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	defer h.doneOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

// handOff hands client to the Run loop over ch, giving up once the loop has stopped
func (h *Hub) handOff(ch chan<- *Client, client *Client) bool {
	select {
	case ch <- client:
		return true
	case <-h.done:
		return false
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.chatID]; !ok {
		h.clients[client.chatID] = make(map[*Client]struct{})
	}
	h.clients[client.chatID][client] = struct{}{}
	if h.observer != nil {
		h.observer.ClientConnected()
	}

	h.logger.Info().
		Str("chatID", client.chatID).
		Str("userID", client.userID).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.chatID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.chatID)
	}
	if h.observer != nil {
		h.observer.ClientDisconnected()
	}

	h.logger.Info().
		Str("chatID", client.chatID).
		Str("userID", client.userID).
		Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// broadcastEvent sends an event to all clients subscribed to its chat
func (h *Hub) broadcastEvent(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("chatID", event.ChatID).Msg("Failed to marshal event for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[event.ChatID]
	if !ok {
		return
	}
	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Slow consumer, drop it
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("chatID", event.ChatID).
		Str("type", event.Type).
		Int("clientCount", len(clients)).
		Msg("Event broadcasted to chat")
}

// Publish queues an event for the subscribers of chatID. It never blocks;
// events are dropped when the queue is full.
func (h *Hub) Publish(chatID, eventType string, data any) {
	event := &Event{Type: eventType, ChatID: chatID, Data: data, Timestamp: time.Now().UTC()}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Str("chatID", chatID).Str("type", eventType).Msg("Broadcast queue full, event dropped")
	}
}

// ClientsCount returns the number of connected clients for a chat
func (h *Hub) ClientsCount(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[chatID])
}
