package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
	"github.com/edvios/backend/internal/pkg/identity"
)

// UserService defines the interface for administrative user operations
type UserService interface {
	GetUsersCount(ctx context.Context) (int64, error)
	GetNewUsersCount(ctx context.Context) (int64, error)
	ChangeUserRole(ctx context.Context, userID string, role models.RoleType) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	transactor   repositories.Transactor
	userRepo     repositories.UserRepository
	agentRepo    repositories.AgentRepository
	settingsRepo repositories.SettingsRepository
	provider     identity.Provider
	now          func() time.Time
	logger       zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repos *repositories.Repositories, provider identity.Provider, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		transactor:   repos.Transactor,
		userRepo:     repos.Users,
		agentRepo:    repos.Agents,
		settingsRepo: repos.Settings,
		provider:     provider,
		now:          func() time.Time { return time.Now().UTC() },
		logger:       logger,
	}
}

// GetUsersCount counts every user
func (s *userServiceImpl) GetUsersCount(ctx context.Context) (int64, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return count, nil
}

// GetNewUsersCount counts users created in the last 24 hours
func (s *userServiceImpl) GetNewUsersCount(ctx context.Context) (int64, error) {
	count, err := s.userRepo.CountCreatedSince(ctx, s.now().Add(-24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("error counting new users: %w", err)
	}
	return count, nil
}

// ChangeUserRole sets a user's role. The settings row is locked first so promotions to
// SELECTED_AGENT are serialized; the identity provider is updated before commit and a
// failure there rolls the whole change back.
func (s *userServiceImpl) ChangeUserRole(ctx context.Context, userID string, role models.RoleType) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Unknown role %q", role))
	}

	var updated *models.User
	err := s.transactor.WithinSerializableTransaction(ctx, func(ctx context.Context) error {
		settings, err := s.settingsRepo.GetForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("error locking settings: %w", err)
		}

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewResourceNotFoundError("User not found")
			}
			return fmt.Errorf("error getting user: %w", err)
		}

		if role.IsAgentTrack() {
			if _, err := s.agentRepo.GetByID(ctx, userID); err != nil {
				if errors.Is(err, apperrors.ErrResourceNotFound) {
					return apperrors.NewBadRequestError("User has no agent profile")
				}
				return fmt.Errorf("error getting agent profile: %w", err)
			}
		}

		holder := settings.SelectedAgentID
		if role == models.RoleSelectedAgent && holder != nil && *holder != userID {
			s.logger.Warn().
				Str("userID", userID).
				Str("selectedAgentID", *holder).
				Msg("Rejected promotion: another user already holds SELECTED_AGENT")
			return apperrors.NewConflictError("Another user already holds the SELECTED_AGENT role")
		}

		if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
			return err
		}

		switch {
		case role == models.RoleSelectedAgent:
			if err := s.settingsRepo.SetSelectedAgent(ctx, &userID); err != nil {
				return fmt.Errorf("error updating selected agent: %w", err)
			}
		case holder != nil && *holder == userID:
			if err := s.settingsRepo.SetSelectedAgent(ctx, nil); err != nil {
				return fmt.Errorf("error clearing selected agent: %w", err)
			}
		}

		if err := s.provider.UpdateUserRole(ctx, userID, string(role)); err != nil {
			s.logger.Error().Err(err).
				Str("userID", userID).
				Str("role", string(role)).
				Msg("Identity provider role sync failed, rolling back role change")
			return err
		}

		user.Role = role
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", userID).Str("role", string(role)).Msg("User role changed")
	return updated, nil
}

// DeleteUser removes the account from the identity provider, then deletes the user and
// everything owned by it
func (s *userServiceImpl) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewResourceNotFoundError("User not found")
		}
		return fmt.Errorf("error getting user: %w", err)
	}

	if err := s.provider.DeleteUser(ctx, userID); err != nil {
		// Already gone upstream; the local row still has to go
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Error().Err(err).Str("userID", userID).Msg("Identity provider delete failed")
			return err
		}
		s.logger.Warn().Str("userID", userID).Msg("User missing in identity provider, deleting locally")
	}

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		settings, err := s.settingsRepo.GetForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("error locking settings: %w", err)
		}
		if settings.SelectedAgentID != nil && *settings.SelectedAgentID == userID {
			if err := s.settingsRepo.SetSelectedAgent(ctx, nil); err != nil {
				return fmt.Errorf("error clearing selected agent: %w", err)
			}
		}
		return s.userRepo.Delete(ctx, userID)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("userID", userID).Msg("Failed to delete user")
		return err
	}

	s.logger.Info().Str("userID", userID).Msg("User deleted")
	return nil
}
