package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvios/backend/internal/app/auth"
	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
	"github.com/edvios/backend/internal/pkg/identity"
)

// AgentService handles agent registration, profiles and admin agent views
type AgentService struct {
	transactor      repositories.Transactor
	userRepo        repositories.UserRepository
	agentRepo       repositories.AgentRepository
	settingsRepo    repositories.SettingsRepository
	assignmentRepo  repositories.AssignmentRepository
	applicationRepo repositories.ApplicationRepository
	chatRepo        repositories.ChatRepository
	provider        identity.Provider
	logger          zerolog.Logger
}

// NewAgentService creates a new AgentService
func NewAgentService(repos *repositories.Repositories, provider identity.Provider, logger zerolog.Logger) *AgentService {
	return &AgentService{
		transactor:      repos.Transactor,
		userRepo:        repos.Users,
		agentRepo:       repos.Agents,
		settingsRepo:    repos.Settings,
		assignmentRepo:  repos.Assignments,
		applicationRepo: repos.Applications,
		chatRepo:        repos.Chats,
		provider:        provider,
		logger:          logger,
	}
}

// CreateAgent submits the agent registration form. The profile row and the move to
// PENDING_AGENT commit together; the identity provider is updated afterwards, best-effort.
func (s *AgentService) CreateAgent(ctx context.Context, userID string, req *dto.CreateAgentRequest) (*models.Agent, error) {
	agent := req.ToModel()
	agent.ID = userID

	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewResourceNotFoundError("User not found")
			}
			return fmt.Errorf("error getting user: %w", err)
		}

		switch {
		case user.Role.IsAgentTrack():
			return apperrors.NewConflictError("Agent profile already exists")
		case user.Role == models.RoleAdmin:
			return apperrors.NewBadRequestError("Administrators cannot register as agents")
		}

		if err := s.agentRepo.Create(ctx, agent); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return apperrors.NewConflictError("Agent profile already exists")
			}
			return fmt.Errorf("error creating agent profile: %w", err)
		}
		return s.userRepo.UpdateRole(ctx, userID, models.RolePendingAgent)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("userID", userID).Msg("Agent registration failed")
		return nil, err
	}

	if err := s.provider.UpdateUserRole(ctx, userID, string(models.RolePendingAgent)); err != nil {
		s.logger.Warn().Err(err).Str("userID", userID).Msg("Identity provider role sync failed after agent registration")
	}

	s.logger.Info().Str("agentID", userID).Msg("Agent registered, awaiting approval")
	return agent, nil
}

// GetAllAgents lists agent-track users, newest first
func (s *AgentService) GetAllAgents(ctx context.Context, filter repositories.AgentFilter) (*Paged[models.AgentListItem], error) {
	return listAndCount(ctx, filter.Page,
		func(ctx context.Context) ([]models.AgentListItem, error) { return s.userRepo.ListAgents(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.userRepo.CountAgents(ctx, filter) },
	)
}

// GetPendingAgents lists agents awaiting approval
func (s *AgentService) GetPendingAgents(ctx context.Context, page repositories.Page, search string) (*Paged[models.AgentListItem], error) {
	return s.GetAllAgents(ctx, repositories.AgentFilter{Page: page, Role: repositories.AgentFilterPending, Search: search})
}

// GetAgentCount counts approved agents, SELECTED_AGENT included
func (s *AgentService) GetAgentCount(ctx context.Context) (int64, error) {
	return s.userRepo.CountByRoles(ctx, repositories.AgentFilterAgent.Roles()...)
}

// GetPendingAgentCount counts agents awaiting approval
func (s *AgentService) GetPendingAgentCount(ctx context.Context) (int64, error) {
	return s.userRepo.CountByRoles(ctx, models.RolePendingAgent)
}

// GetDashboardStats gathers the admin dashboard counters concurrently
func (s *AgentService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.userRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalStudents, err = s.userRepo.CountByRoles(gctx, models.RoleStudent)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalAgents, err = s.userRepo.CountByRoles(gctx, repositories.AgentFilterAgent.Roles()...)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingAgents, err = s.userRepo.CountByRoles(gctx, models.RolePendingAgent)
		return err
	})
	g.Go(func() (err error) {
		stats.ApplicationsByStatus, err = s.applicationRepo.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalChats, err = s.chatRepo.Count(gctx)
		return err
	})
	g.Go(func() error {
		settings, err := s.settingsRepo.Get(gctx)
		if err != nil {
			return err
		}
		stats.SelectedAgentID = settings.SelectedAgentID
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to gather dashboard stats")
		return nil, fmt.Errorf("error gathering dashboard stats: %w", err)
	}

	for _, n := range stats.ApplicationsByStatus {
		stats.TotalApplications += n
	}
	return stats, nil
}

// GetAgentByID returns an agent profile with its user. Admins may read any agent, agents only themselves.
func (s *AgentService) GetAgentByID(ctx context.Context, actor auth.Actor, agentID string) (*models.Agent, error) {
	if !actor.IsAdmin() && actor.UserID != agentID {
		return nil, apperrors.NewForbiddenError("You can only view your own agent profile")
	}
	return s.loadAgent(ctx, agentID)
}

// loadAgent reads the profile and attaches its user
func (s *AgentService) loadAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Agent not found")
		}
		return nil, fmt.Errorf("error getting agent: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("error getting agent user: %w", err)
	}
	agent.User = user
	return agent, nil
}

// UpdateAgent patches the caller's own agent profile
func (s *AgentService) UpdateAgent(ctx context.Context, agentID string, req *dto.UpdateAgentRequest) (*models.Agent, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Agent not found")
		}
		return nil, fmt.Errorf("error getting agent: %w", err)
	}

	req.Apply(agent)
	if err := s.agentRepo.Update(ctx, agent); err != nil {
		s.logger.Error().Err(err).Str("agentID", agentID).Msg("Failed to update agent profile")
		return nil, fmt.Errorf("error updating agent: %w", err)
	}
	return agent, nil
}

// GetCalendlyLink returns the caller's own booking link
func (s *AgentService) GetCalendlyLink(ctx context.Context, agentID string) (*dto.CalendlyLinkResponse, error) {
	agent, err := s.agentRepo.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Agent not found")
		}
		return nil, fmt.Errorf("error getting agent: %w", err)
	}
	return &dto.CalendlyLinkResponse{AgentID: agent.ID, CalendlyLink: agent.CalendlyLink}, nil
}

// GetCalendlyLinkForStudent returns the booking link of the student's assigned agent
func (s *AgentService) GetCalendlyLinkForStudent(ctx context.Context, studentID string) (*dto.CalendlyLinkResponse, error) {
	assignment, err := s.assignmentRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("No agent is assigned to you yet")
		}
		return nil, fmt.Errorf("error getting assignment: %w", err)
	}

	agentUser, err := s.userRepo.GetByID(ctx, assignment.AgentID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, fmt.Errorf("error getting agent user: %w", err)
	}
	if err != nil || !agentUser.Role.IsApprovedAgent() {
		return nil, apperrors.NewResourceNotFoundError("No agent is assigned to you yet")
	}
	return s.GetCalendlyLink(ctx, assignment.AgentID)
}

// GetSelectedAgent returns the agent new students are assigned to
func (s *AgentService) GetSelectedAgent(ctx context.Context) (*models.Agent, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting settings: %w", err)
	}
	if settings.SelectedAgentID == nil {
		return nil, apperrors.NewResourceNotFoundError("No selected agent")
	}
	return s.loadAgent(ctx, *settings.SelectedAgentID)
}
