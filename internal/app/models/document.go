package models

import "time"

// Document is a file a student shared with the agency
type Document struct {
	ID         string    `json:"id" db:"id"`
	StudentID  string    `json:"studentId" db:"student_id"`
	Name       string    `json:"name" db:"name"`
	Type       string    `json:"type" db:"type"`
	URL        string    `json:"url" db:"url"`
	StorageKey *string   `json:"-" db:"storage_key"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// NotificationAudience selects who sees a notification
type NotificationAudience string

const (
	AudienceStudents NotificationAudience = "STUDENT"
	AudienceAgents   NotificationAudience = "AGENT"
)

// Notification is a broadcast message for one audience
type Notification struct {
	ID        string               `json:"id" db:"id"`
	Audience  NotificationAudience `json:"audience" db:"audience"`
	Title     string               `json:"title" db:"title"`
	Message   string               `json:"message" db:"message"`
	CreatedAt time.Time            `json:"createdAt" db:"created_at"`
}
