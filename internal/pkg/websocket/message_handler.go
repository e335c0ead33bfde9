package websocket

import (
	"context"
	"fmt"

	"github.com/edvios/backend/internal/app/models"
)

// Inbound frame types
const (
	FrameSendMessage  = "message"
	FrameUpdateStatus = "status"
)

// InboundFrame is a client to server frame
type InboundFrame struct {
	Type       string   `json:"type"`
	Content    string   `json:"content,omitempty"`
	MessageIDs []string `json:"messageIds,omitempty"`
	Status     string   `json:"status,omitempty"`
}

// InboundHandler processes frames sent by a subscribed client
type InboundHandler interface {
	HandleFrame(ctx context.Context, userID, chatID string, frame InboundFrame) error
}

// ChatActions is the chat behavior reachable over the socket. Implementations
// persist and publish, so the handler itself never broadcasts.
type ChatActions interface {
	SendMessage(ctx context.Context, userID, chatID, content string) (*models.ChatMessage, error)
	UpdateMessageStatus(ctx context.Context, userID string, messageIDs []string, status models.MessageStatus) (int, error)
}

// MessageHandler turns inbound frames into chat actions
type MessageHandler struct {
	chat ChatActions
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(chat ChatActions) *MessageHandler {
	return &MessageHandler{chat: chat}
}

// HandleFrame dispatches one frame
func (h *MessageHandler) HandleFrame(ctx context.Context, userID, chatID string, frame InboundFrame) error {
	switch frame.Type {
	case FrameSendMessage:
		if frame.Content == "" {
			return fmt.Errorf("content is required")
		}
		_, err := h.chat.SendMessage(ctx, userID, chatID, frame.Content)
		return err

	case FrameUpdateStatus:
		status := models.MessageStatus(frame.Status)
		if status != models.MessageDelivered && status != models.MessageRead {
			return fmt.Errorf("status must be DELIVERED or READ")
		}
		if len(frame.MessageIDs) == 0 {
			return fmt.Errorf("messageIds is required")
		}
		_, err := h.chat.UpdateMessageStatus(ctx, userID, frame.MessageIDs, status)
		return err
	}
	return fmt.Errorf("unknown frame type %q", frame.Type)
}
