package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

// AssignmentService manages the student -> agent ledger
type AssignmentService struct {
	transactor     repositories.Transactor
	assignmentRepo repositories.AssignmentRepository
	userRepo       repositories.UserRepository
	agentRepo      repositories.AgentRepository
	logger         zerolog.Logger
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(repos *repositories.Repositories, logger zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		transactor:     repos.Transactor,
		assignmentRepo: repos.Assignments,
		userRepo:       repos.Users,
		agentRepo:      repos.Agents,
		logger:         logger,
	}
}

// AssignAgentToStudent points the student's ledger row at agentID. Repeating the call
// for the current pair leaves a single unchanged row.
func (s *AssignmentService) AssignAgentToStudent(ctx context.Context, studentID, agentID string) (*models.AgentAssignment, error) {
	assignment, err := s.assignmentRepo.Upsert(ctx, studentID, agentID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("studentID", studentID).
			Str("agentID", agentID).
			Msg("Failed to assign agent to student")
		return nil, err
	}
	return assignment, nil
}

// ChangeAgentAssignment repoints one ledger row at another approved agent
func (s *AssignmentService) ChangeAgentAssignment(ctx context.Context, assignmentID, agentID string) (*models.AgentAssignment, error) {
	var updated *models.AgentAssignment
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.assignmentRepo.GetByID(ctx, assignmentID); err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewResourceNotFoundError("Assignment not found")
			}
			return fmt.Errorf("error getting assignment: %w", err)
		}

		if err := s.requireApprovedAgent(ctx, agentID); err != nil {
			return err
		}

		var err error
		updated, err = s.assignmentRepo.UpdateAgent(ctx, assignmentID, agentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("assignmentID", assignmentID).
		Str("studentID", updated.StudentID).
		Str("agentID", agentID).
		Msg("Agent assignment changed")
	return updated, nil
}

// requireApprovedAgent checks that the user exists, holds AGENT or SELECTED_AGENT and has a profile
func (s *AssignmentService) requireApprovedAgent(ctx context.Context, agentID string) error {
	user, err := s.userRepo.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewResourceNotFoundError("Agent not found")
		}
		return fmt.Errorf("error getting agent user: %w", err)
	}
	if !user.Role.IsApprovedAgent() {
		return apperrors.NewBadRequestError(fmt.Sprintf("User with role %s cannot be assigned students", user.Role))
	}
	if _, err := s.agentRepo.GetByID(ctx, agentID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewBadRequestError("User has no agent profile")
		}
		return fmt.Errorf("error getting agent profile: %w", err)
	}
	return nil
}

// GetAgentAssignments lists ledger rows joined with both parties
func (s *AssignmentService) GetAgentAssignments(ctx context.Context, filter repositories.AssignmentFilter) (*Paged[models.AssignmentView], error) {
	return listAndCount(ctx, filter.Page,
		func(ctx context.Context) ([]models.AssignmentView, error) { return s.assignmentRepo.List(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.assignmentRepo.Count(ctx, filter) },
	)
}
