package models

import "time"

// MessageStatus is the delivery state of a chat message
type MessageStatus string

const (
	MessageSent      MessageStatus = "SENT"
	MessageDelivered MessageStatus = "DELIVERED"
	MessageRead      MessageStatus = "READ"
)

// Rank orders statuses; updates may only increase it
func (s MessageStatus) Rank() int {
	switch s {
	case MessageSent:
		return 1
	case MessageDelivered:
		return 2
	case MessageRead:
		return 3
	}
	return 0
}

// Chat is a conversation keyed by (student, agent)
type Chat struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"studentId" db:"student_id"`
	AgentID   string    `json:"agentId" db:"agent_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Student *User `json:"student,omitempty"`
	Agent   *User `json:"agent,omitempty"`
}

// HasParticipant reports whether userID is the student or the agent of the chat
func (c *Chat) HasParticipant(userID string) bool {
	return c.StudentID == userID || c.AgentID == userID
}

// ChatMessage is a single message in a chat
type ChatMessage struct {
	ID         string        `json:"id" db:"id"`
	ChatID     string        `json:"chatId" db:"chat_id"`
	SenderID   string        `json:"senderId" db:"sender_id"`
	SenderRole RoleType      `json:"senderRole" db:"sender_role"`
	Content    string        `json:"content" db:"content"`
	Status     MessageStatus `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time     `json:"updatedAt" db:"updated_at"`
}

// ChatSummary is a chat with its latest message and the caller's unread count
type ChatSummary struct {
	Chat
	LastMessage *ChatMessage `json:"lastMessage,omitempty"`
	UnreadCount int64        `json:"unreadCount"`
}
