package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
)

// NotificationService broadcasts notifications to students or agents
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repos *repositories.Repositories, logger zerolog.Logger) *NotificationService {
	return &NotificationService{notificationRepo: repos.Notifications, logger: logger}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) (*models.Notification, error) {
	notification := &models.Notification{
		ID:       uuid.NewString(),
		Audience: req.Audience,
		Title:    req.Title,
		Message:  req.Message,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error().Err(err).Str("audience", string(req.Audience)).Msg("Failed to create notification")
		return nil, fmt.Errorf("error creating notification: %w", err)
	}
	return notification, nil
}

// ListForAudience returns the audience's notifications, newest first
func (s *NotificationService) ListForAudience(ctx context.Context, audience models.NotificationAudience) ([]models.Notification, error) {
	return s.notificationRepo.List(ctx, audience)
}
