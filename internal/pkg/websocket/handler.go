package websocket

import (
	"fmt"
	"net/http"
)

// Serve upgrades the request and subscribes the connection to chatID on behalf of userID.
// Callers authorize the user for the chat first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID, chatID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("chatID", chatID).
			Str("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID,
		chatID: chatID,
		logger: h.logger.With().Str("chatID", chatID).Str("userID", userID).Logger(),
	}
	if !h.handOff(h.register, client) {
		conn.Close()
		return ErrHubStopped
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("chatID", chatID).
		Str("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
	return nil
}
