package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/auth"
	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

// StudentService handles student profiles
type StudentService struct {
	transactor     repositories.Transactor
	studentRepo    repositories.StudentRepository
	userRepo       repositories.UserRepository
	settingsRepo   repositories.SettingsRepository
	assignmentRepo repositories.AssignmentRepository
	authz          *auth.AuthorizationService
	logger         zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(repos *repositories.Repositories, authz *auth.AuthorizationService, logger zerolog.Logger) *StudentService {
	return &StudentService{
		transactor:     repos.Transactor,
		studentRepo:    repos.Students,
		userRepo:       repos.Users,
		settingsRepo:   repos.Settings,
		assignmentRepo: repos.Assignments,
		authz:          authz,
		logger:         logger,
	}
}

// CreateStudent stores the caller's student profile and assigns the current selected
// agent in the same transaction. Without a selected agent nothing is stored.
func (s *StudentService) CreateStudent(ctx context.Context, userID string, req *dto.CreateStudentRequest) (*models.Student, error) {
	student, err := req.ToModel()
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	student.ID = userID

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		settings, err := s.settingsRepo.Get(ctx)
		if err != nil {
			return fmt.Errorf("error getting settings: %w", err)
		}
		if settings.SelectedAgentID == nil {
			return apperrors.NewConflictError("No selected agent is available to take new students; try again later")
		}

		if err := s.studentRepo.Create(ctx, student); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return apperrors.NewConflictError("Student profile already exists")
			}
			return fmt.Errorf("error creating student: %w", err)
		}

		assignment, err := s.assignmentRepo.Upsert(ctx, student.ID, *settings.SelectedAgentID)
		if err != nil {
			return fmt.Errorf("error assigning selected agent: %w", err)
		}
		student.Assignment = assignment
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("userID", userID).Msg("Student onboarding failed")
		return nil, err
	}

	s.logger.Info().
		Str("studentID", student.ID).
		Str("agentID", student.Assignment.AgentID).
		Msg("Student created and assigned")
	return student, nil
}

// GetStudents lists students visible to the actor: every student for admins, the
// assigned ones for agents
func (s *StudentService) GetStudents(ctx context.Context, actor auth.Actor, filter repositories.StudentFilter) (*Paged[models.Student], error) {
	switch {
	case actor.IsAdmin():
		filter.AgentID = nil
	case actor.IsAgent():
		filter.AgentID = &actor.UserID
	default:
		return nil, apperrors.NewForbiddenError("Only admins and agents can list students")
	}

	return listAndCount(ctx, filter.Page,
		func(ctx context.Context) ([]models.Student, error) { return s.studentRepo.List(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.studentRepo.Count(ctx, filter) },
	)
}

// GetStudentByID returns a student with its user and assignment
func (s *StudentService) GetStudentByID(ctx context.Context, actor auth.Actor, studentID string) (*models.Student, error) {
	if err := s.authz.ValidateStudentAccess(ctx, actor, studentID); err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Student not found")
		}
		return nil, fmt.Errorf("error getting student: %w", err)
	}

	if user, err := s.userRepo.GetByID(ctx, studentID); err == nil {
		student.User = user
	}
	assignment, err := s.assignmentRepo.GetByStudentID(ctx, studentID)
	switch {
	case err == nil:
		student.Assignment = assignment
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		return nil, fmt.Errorf("error getting assignment: %w", err)
	}
	return student, nil
}

// UpdateStudent patches the caller's own profile
func (s *StudentService) UpdateStudent(ctx context.Context, studentID string, req *dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Student not found")
		}
		return nil, fmt.Errorf("error getting student: %w", err)
	}

	if err := req.Apply(student); err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	if err := s.studentRepo.Update(ctx, student); err != nil {
		s.logger.Error().Err(err).Str("studentID", studentID).Msg("Failed to update student")
		return nil, fmt.Errorf("error updating student: %w", err)
	}
	return student, nil
}

// DeleteStudent removes a student profile together with its ledger row, applications and documents
func (s *StudentService) DeleteStudent(ctx context.Context, studentID string) error {
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.studentRepo.Delete(ctx, studentID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewResourceNotFoundError("Student not found")
		}
		return fmt.Errorf("error deleting student: %w", err)
	}
	s.logger.Info().Str("studentID", studentID).Msg("Student deleted")
	return nil
}

// GetStudentsCount counts student profiles
func (s *StudentService) GetStudentsCount(ctx context.Context) (int64, error) {
	return s.studentRepo.Count(ctx, repositories.StudentFilter{})
}
