package dto

import (
	"time"

	"github.com/edvios/backend/internal/app/models"
)

// CreateChatRequest opens a chat between a student and an agent
type CreateChatRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	AgentID   string `json:"agentId" binding:"required"`
}

// SendMessageRequest posts a message to a chat
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// UpdateMessageStatusRequest advances delivery state of received messages
type UpdateMessageStatusRequest struct {
	MessageIDs []string             `json:"messageIds" binding:"required,min=1,max=500,dive,required"`
	Status     models.MessageStatus `json:"status" binding:"required,oneof=DELIVERED READ"`
}

// GetMessagesQuery pages backwards through a chat
type GetMessagesQuery struct {
	Page   int        `form:"page,default=1" binding:"min=1"`
	Size   int        `form:"size,default=50" binding:"min=1,max=100"`
	Before *time.Time `form:"before" time_format:"2006-01-02T15:04:05Z07:00"`
}

// MessagesResponse is a page of messages, oldest first
type MessagesResponse struct {
	Messages []models.ChatMessage `json:"messages"`
	HasMore  bool                 `json:"hasMore"`
}

// UpdatedCountResponse reports how many rows an operation changed
type UpdatedCountResponse struct {
	Updated int `json:"updated"`
}
