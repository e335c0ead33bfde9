package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/auth"
	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

// ApplicationService handles program applications
type ApplicationService struct {
	transactor      repositories.Transactor
	applicationRepo repositories.ApplicationRepository
	studentRepo     repositories.StudentRepository
	programRepo     repositories.ProgramRepository
	intakeRepo      repositories.IntakeRepository
	authz           *auth.AuthorizationService
	logger          zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(repos *repositories.Repositories, authz *auth.AuthorizationService, logger zerolog.Logger) *ApplicationService {
	return &ApplicationService{
		transactor:      repos.Transactor,
		applicationRepo: repos.Applications,
		studentRepo:     repos.Students,
		programRepo:     repos.Programs,
		intakeRepo:      repos.Intakes,
		authz:           authz,
		logger:          logger,
	}
}

// CreateApplication starts a DRAFT application for the calling student
func (s *ApplicationService) CreateApplication(ctx context.Context, studentID string, req *dto.CreateApplicationRequest) (*models.Application, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewBadRequestError("Complete your student profile before applying")
		}
		return nil, fmt.Errorf("error getting student: %w", err)
	}

	program, err := s.programRepo.GetByID(ctx, req.ProgramID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Program not found")
		}
		return nil, fmt.Errorf("error getting program: %w", err)
	}

	if req.PreferredIntakeID != nil {
		if _, err := s.intakeRepo.GetByID(ctx, *req.PreferredIntakeID); err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return nil, apperrors.NewResourceNotFoundError("Intake not found")
			}
			return nil, fmt.Errorf("error getting intake: %w", err)
		}
	}

	application := &models.Application{
		ID:                uuid.NewString(),
		StudentID:         studentID,
		ProgramID:         program.ID,
		PreferredIntakeID: req.PreferredIntakeID,
		AcademicYear:      req.AcademicYear,
		AdditionalNotes:   req.AdditionalNotes,
		Status:            models.ApplicationDraft,
	}
	if err := s.applicationRepo.Create(ctx, application); err != nil {
		s.logger.Error().Err(err).Str("studentID", studentID).Msg("Failed to create application")
		return nil, fmt.Errorf("error creating application: %w", err)
	}
	application.Program = program

	s.logger.Info().
		Str("applicationID", application.ID).
		Str("studentID", studentID).
		Str("programID", program.ID).
		Msg("Application created")
	return application, nil
}

// GetMyApplications lists the caller's own applications
func (s *ApplicationService) GetMyApplications(ctx context.Context, studentID string, filter repositories.ApplicationFilter) (*Paged[models.Application], error) {
	filter.StudentID = &studentID
	filter.AgentID = nil
	return s.list(ctx, filter)
}

// GetAllApplications lists every application
func (s *ApplicationService) GetAllApplications(ctx context.Context, filter repositories.ApplicationFilter) (*Paged[models.Application], error) {
	return s.list(ctx, filter)
}

// GetAgentApplications lists the applications of students assigned to the agent
func (s *ApplicationService) GetAgentApplications(ctx context.Context, agentID string, filter repositories.ApplicationFilter) (*Paged[models.Application], error) {
	filter.AgentID = &agentID
	return s.list(ctx, filter)
}

func (s *ApplicationService) list(ctx context.Context, filter repositories.ApplicationFilter) (*Paged[models.Application], error) {
	return listAndCount(ctx, filter.Page,
		func(ctx context.Context) ([]models.Application, error) { return s.applicationRepo.List(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.applicationRepo.Count(ctx, filter) },
	)
}

// GetApplicationsCount counts every application
func (s *ApplicationService) GetApplicationsCount(ctx context.Context) (int64, error) {
	return s.applicationRepo.Count(ctx, repositories.ApplicationFilter{})
}

// GetApplicationByID returns one application the actor may read
func (s *ApplicationService) GetApplicationByID(ctx context.Context, actor auth.Actor, id string) (*models.Application, error) {
	application, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateStudentAccess(ctx, actor, application.StudentID); err != nil {
		return nil, err
	}

	if program, err := s.programRepo.GetByID(ctx, application.ProgramID); err == nil {
		application.Program = program
	}
	return application, nil
}

func (s *ApplicationService) get(ctx context.Context, id string) (*models.Application, error) {
	application, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("Application not found")
		}
		return nil, fmt.Errorf("error getting application: %w", err)
	}
	return application, nil
}

// UpdateApplicationStatus moves an application along its lifecycle. Admins may move any
// application, agents those of their assigned students, and students may only submit or
// withdraw their own.
func (s *ApplicationService) UpdateApplicationStatus(ctx context.Context, actor auth.Actor, id string, status models.ApplicationStatus) (*models.Application, error) {
	var application *models.Application
	err := s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		application, err = s.get(ctx, id)
		if err != nil {
			return err
		}

		switch {
		case actor.IsAdmin():
		case actor.IsAgent():
			if err := s.authz.ValidateAssignedAgent(ctx, actor, application.StudentID); err != nil {
				return err
			}
		case actor.IsStudent() && actor.UserID == application.StudentID:
			if status != models.ApplicationSubmitted && status != models.ApplicationWithdrawn {
				return apperrors.NewForbiddenError("Students can only submit or withdraw their applications")
			}
		default:
			return apperrors.NewForbiddenError("You cannot change this application")
		}

		if !application.Status.CanTransitionTo(status) {
			return apperrors.NewBadRequestError(fmt.Sprintf("Cannot move application from %s to %s", application.Status, status))
		}

		if err := s.applicationRepo.UpdateStatus(ctx, id, application.Status, status); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return apperrors.NewConflictError("Application status was changed by someone else, reload and retry")
			}
			return fmt.Errorf("error updating application status: %w", err)
		}
		application.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("applicationID", id).
		Str("status", string(status)).
		Str("actorID", actor.UserID).
		Msg("Application status changed")
	return application, nil
}
