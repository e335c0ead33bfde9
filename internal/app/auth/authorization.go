package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

// Actor is the authenticated caller as resolved from the user store
type Actor struct {
	UserID string
	Role   models.RoleType
}

// IsAdmin reports whether the actor is an administrator
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// IsAgent reports approved agents, SELECTED_AGENT included
func (a Actor) IsAgent() bool {
	return a.Role.IsApprovedAgent()
}

// IsStudent reports whether the actor is a student
func (a Actor) IsStudent() bool {
	return a.Role == models.RoleStudent
}

// AuthorizationService handles resource-level authorization
type AuthorizationService struct {
	assignments repositories.AssignmentRepository
	logger      zerolog.Logger
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(assignments repositories.AssignmentRepository, logger zerolog.Logger) *AuthorizationService {
	return &AuthorizationService{
		assignments: assignments,
		logger:      logger,
	}
}

// IsAssignedAgent checks the ledger for a student -> agent mapping
func (s *AuthorizationService) IsAssignedAgent(ctx context.Context, agentID, studentID string) (bool, error) {
	ok, err := s.assignments.Exists(ctx, studentID, agentID)
	if err != nil {
		s.logger.Error().Err(err).
			Str("agentID", agentID).
			Str("studentID", studentID).
			Msg("Error checking agent assignment")
		return false, fmt.Errorf("failed to check agent assignment: %w", err)
	}
	return ok, nil
}

// CanAccessStudent checks if the actor may read the student's records.
// Admins may read everything, students their own records, agents their assigned students.
func (s *AuthorizationService) CanAccessStudent(ctx context.Context, actor Actor, studentID string) (bool, error) {
	switch {
	case actor.IsAdmin():
		return true, nil
	case actor.UserID == studentID:
		return true, nil
	case actor.IsAgent():
		return s.IsAssignedAgent(ctx, actor.UserID, studentID)
	}
	return false, nil
}

// ValidateStudentAccess returns a forbidden error when CanAccessStudent denies access
func (s *AuthorizationService) ValidateStudentAccess(ctx context.Context, actor Actor, studentID string) error {
	allowed, err := s.CanAccessStudent(ctx, actor, studentID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewForbiddenError("You don't have access to this student's records")
	}
	return nil
}

// ValidateAssignedAgent requires the actor to be an approved agent assigned to the student
func (s *AuthorizationService) ValidateAssignedAgent(ctx context.Context, actor Actor, studentID string) error {
	if !actor.IsAgent() {
		return apperrors.NewForbiddenError("Only agents can perform this action")
	}
	assigned, err := s.IsAssignedAgent(ctx, actor.UserID, studentID)
	if err != nil {
		return err
	}
	if !assigned {
		return apperrors.NewForbiddenError("Student is not assigned to you")
	}
	return nil
}
