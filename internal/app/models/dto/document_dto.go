package dto

import "github.com/edvios/backend/internal/app/models"

// CreateDocumentRequest registers an already hosted document
type CreateDocumentRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Type string `json:"type" binding:"required,max=100"`
	URL  string `json:"url" binding:"required,url"`
}

// CreateNotificationRequest broadcasts a notification
type CreateNotificationRequest struct {
	Title    string                      `json:"title" binding:"required,max=255"`
	Message  string                      `json:"message" binding:"required,max=5000"`
	Audience models.NotificationAudience `json:"audience" binding:"required,oneof=STUDENT AGENT"`
}
