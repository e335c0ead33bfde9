package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer
	maxMessageSize = 16 * 1024

	// Time allowed to handle one inbound frame
	inboundTimeout = 10 * time.Second
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub *Hub

	// The WebSocket connection
	conn *websocket.Conn

	// Buffered channel of outbound frames
	send chan []byte

	userID string
	chatID string

	logger zerolog.Logger
}

// readPump pumps frames from the websocket connection to the inbound handler
func (c *Client) readPump() {
	defer func() {
		c.hub.handOff(c.hub.unregister, c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("Unexpected WebSocket close")
			} else {
				c.logger.Debug().Err(err).Msg("WebSocket closed")
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.reply(EventError, map[string]string{"message": "malformed frame"})
			continue
		}

		handler := c.hub.inboundHandler()
		if handler == nil {
			c.reply(EventError, map[string]string{"message": "read-only connection"})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), inboundTimeout)
		err = handler.HandleFrame(ctx, c.userID, c.chatID, frame)
		cancel()
		if err != nil {
			c.logger.Debug().Err(err).Str("frameType", frame.Type).Msg("Inbound frame rejected")
			c.reply(EventError, map[string]string{"message": err.Error()})
		}
	}
}

// reply sends an event to this client only, dropping it if the buffer is full
func (c *Client) reply(eventType string, data any) {
	payload, err := json.Marshal(&Event{Type: eventType, ChatID: c.chatID, Data: data, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.chatID][c]; !ok {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// writePump pumps frames from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One event per frame so clients can parse each as JSON
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
