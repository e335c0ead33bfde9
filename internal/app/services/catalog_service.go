package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

// CatalogService defines the interface for institution, program, intake and subject operations
type CatalogService interface {
	CreateInstitution(ctx context.Context, institution *models.Institution) error
	GetInstitutionByID(ctx context.Context, id string) (*models.Institution, error)
	GetInstitutions(ctx context.Context, filter repositories.InstitutionFilter) (*Paged[models.Institution], error)
	UpdateInstitution(ctx context.Context, institution *models.Institution) error
	DeleteInstitution(ctx context.Context, id string) error

	CreateProgram(ctx context.Context, program *models.Program) error
	GetProgramByID(ctx context.Context, id string) (*models.Program, error)
	GetPrograms(ctx context.Context, filter repositories.ProgramFilter) (*Paged[models.Program], error)
	GetProgramsCount(ctx context.Context, filter repositories.ProgramFilter) (int64, error)
	UpdateProgram(ctx context.Context, program *models.Program) error
	DeleteProgram(ctx context.Context, id string) error

	CreateIntake(ctx context.Context, name string) (*models.Intake, error)
	GetIntakes(ctx context.Context) ([]models.Intake, error)
	DeleteIntake(ctx context.Context, id string) error

	CreateSubject(ctx context.Context, name string) (*models.Subject, error)
	GetSubjects(ctx context.Context) ([]models.Subject, error)
	DeleteSubject(ctx context.Context, id string) error
}

// catalogServiceImpl implements the CatalogService interface
type catalogServiceImpl struct {
	institutionRepo repositories.InstitutionRepository
	programRepo     repositories.ProgramRepository
	intakeRepo      repositories.IntakeRepository
	subjectRepo     repositories.SubjectRepository
	logger          zerolog.Logger
}

// NewCatalogService creates a new catalog service instance
func NewCatalogService(repos *repositories.Repositories, logger zerolog.Logger) CatalogService {
	return &catalogServiceImpl{
		institutionRepo: repos.Institutions,
		programRepo:     repos.Programs,
		intakeRepo:      repos.Intakes,
		subjectRepo:     repos.Subjects,
		logger:          logger,
	}
}

// notFound rewrites a repository NotFound into a user facing message and wraps anything else
func notFound(err error, message, action string) error {
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return apperrors.NewResourceNotFoundError(message)
	}
	return fmt.Errorf("error %s: %w", action, err)
}

// validateInstitution validates institution data before database operations
func (s *catalogServiceImpl) validateInstitution(institution *models.Institution) error {
	if strings.TrimSpace(institution.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
	}
	if institution.InternationalStudents > institution.TotalStudents && institution.TotalStudents > 0 {
		return fmt.Errorf("%w: internationalStudents cannot exceed totalStudents", apperrors.ErrValidationFailed)
	}
	return nil
}

// CreateInstitution creates a new institution
func (s *catalogServiceImpl) CreateInstitution(ctx context.Context, institution *models.Institution) error {
	if err := s.validateInstitution(institution); err != nil {
		return err
	}

	institution.ID = uuid.NewString()
	if err := s.institutionRepo.Create(ctx, institution); err != nil {
		s.logger.Error().Err(err).Str("name", institution.Name).Msg("Failed to create institution")
		return fmt.Errorf("error creating institution: %w", err)
	}
	return nil
}

// GetInstitutionByID retrieves an institution by ID
func (s *catalogServiceImpl) GetInstitutionByID(ctx context.Context, id string) (*models.Institution, error) {
	institution, err := s.institutionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Institution not found", "getting institution")
	}
	return institution, nil
}

// GetInstitutions lists institutions matching the filter
func (s *catalogServiceImpl) GetInstitutions(ctx context.Context, filter repositories.InstitutionFilter) (*Paged[models.Institution], error) {
	return listAndCount(ctx, filter.Page,
		func(ctx context.Context) ([]models.Institution, error) { return s.institutionRepo.List(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.institutionRepo.Count(ctx, filter) },
	)
}

// UpdateInstitution replaces an institution
func (s *catalogServiceImpl) UpdateInstitution(ctx context.Context, institution *models.Institution) error {
	if err := s.validateInstitution(institution); err != nil {
		return err
	}
	if err := s.institutionRepo.Update(ctx, institution); err != nil {
		return notFound(err, "Institution not found", "updating institution")
	}
	return nil
}

// DeleteInstitution deletes an institution and its programs
func (s *catalogServiceImpl) DeleteInstitution(ctx context.Context, id string) error {
	if err := s.institutionRepo.Delete(ctx, id); err != nil {
		return notFound(err, "Institution not found", "deleting institution")
	}
	s.logger.Info().Str("institutionID", id).Msg("Institution deleted")
	return nil
}

// checkProgramReferences validates the institution, intake and subject a program points at
func (s *catalogServiceImpl) checkProgramReferences(ctx context.Context, program *models.Program) error {
	if strings.TrimSpace(program.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidationFailed)
	}
	if program.TuitionFee.IsNegative() || program.ApplicationFee.IsNegative() {
		return fmt.Errorf("%w: fees cannot be negative", apperrors.ErrValidationFailed)
	}

	if _, err := s.institutionRepo.GetByID(ctx, program.InstitutionID); err != nil {
		return notFound(err, "Institution not found", "getting institution")
	}
	if program.IntakeID != nil {
		if _, err := s.intakeRepo.GetByID(ctx, *program.IntakeID); err != nil {
			return notFound(err, "Intake not found", "getting intake")
		}
	}
	if program.SubjectID != nil {
		if _, err := s.subjectRepo.GetByID(ctx, *program.SubjectID); err != nil {
			return notFound(err, "Subject not found", "getting subject")
		}
	}
	return nil
}

// CreateProgram creates a new program
func (s *catalogServiceImpl) CreateProgram(ctx context.Context, program *models.Program) error {
	if err := s.checkProgramReferences(ctx, program); err != nil {
		return err
	}

	program.ID = uuid.NewString()
	if err := s.programRepo.Create(ctx, program); err != nil {
		s.logger.Error().Err(err).Str("title", program.Title).Msg("Failed to create program")
		return fmt.Errorf("error creating program: %w", err)
	}
	return nil
}

// GetProgramByID retrieves a program with its institution, intake and subject
func (s *catalogServiceImpl) GetProgramByID(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Program not found", "getting program")
	}

	if institution, err := s.institutionRepo.GetByID(ctx, program.InstitutionID); err == nil {
		program.Institution = institution
	}
	if program.IntakeID != nil {
		if intake, err := s.intakeRepo.GetByID(ctx, *program.IntakeID); err == nil {
			program.Intake = intake
		}
	}
	if program.SubjectID != nil {
		if subject, err := s.subjectRepo.GetByID(ctx, *program.SubjectID); err == nil {
			program.Subject = subject
		}
	}
	return program, nil
}

// GetPrograms lists programs matching the filter, most popular first
func (s *catalogServiceImpl) GetPrograms(ctx context.Context, filter repositories.ProgramFilter) (*Paged[models.Program], error) {
	return listAndCount(ctx, filter.Page,
		func(ctx context.Context) ([]models.Program, error) { return s.programRepo.List(ctx, filter) },
		func(ctx context.Context) (int64, error) { return s.programRepo.Count(ctx, filter) },
	)
}

// GetProgramsCount counts programs matching the filter
func (s *catalogServiceImpl) GetProgramsCount(ctx context.Context, filter repositories.ProgramFilter) (int64, error) {
	return s.programRepo.Count(ctx, filter)
}

// UpdateProgram replaces a program
func (s *catalogServiceImpl) UpdateProgram(ctx context.Context, program *models.Program) error {
	if err := s.checkProgramReferences(ctx, program); err != nil {
		return err
	}
	if err := s.programRepo.Update(ctx, program); err != nil {
		return notFound(err, "Program not found", "updating program")
	}
	return nil
}

// DeleteProgram deletes a program
func (s *catalogServiceImpl) DeleteProgram(ctx context.Context, id string) error {
	if err := s.programRepo.Delete(ctx, id); err != nil {
		return notFound(err, "Program not found", "deleting program")
	}
	return nil
}

// CreateIntake creates a new intake
func (s *catalogServiceImpl) CreateIntake(ctx context.Context, name string) (*models.Intake, error) {
	intake := &models.Intake{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if err := s.intakeRepo.Create(ctx, intake); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflictError("Intake already exists")
		}
		return nil, fmt.Errorf("error creating intake: %w", err)
	}
	return intake, nil
}

func (s *catalogServiceImpl) GetIntakes(ctx context.Context) ([]models.Intake, error) {
	return s.intakeRepo.List(ctx)
}

// DeleteIntake deletes an intake; programs and applications referencing it keep a null intake
func (s *catalogServiceImpl) DeleteIntake(ctx context.Context, id string) error {
	if err := s.intakeRepo.Delete(ctx, id); err != nil {
		return notFound(err, "Intake not found", "deleting intake")
	}
	return nil
}

// CreateSubject creates a new subject
func (s *catalogServiceImpl) CreateSubject(ctx context.Context, name string) (*models.Subject, error) {
	subject := &models.Subject{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflictError("Subject already exists")
		}
		return nil, fmt.Errorf("error creating subject: %w", err)
	}
	return subject, nil
}

func (s *catalogServiceImpl) GetSubjects(ctx context.Context) ([]models.Subject, error) {
	return s.subjectRepo.List(ctx)
}

// DeleteSubject deletes a subject
func (s *catalogServiceImpl) DeleteSubject(ctx context.Context, id string) error {
	if err := s.subjectRepo.Delete(ctx, id); err != nil {
		return notFound(err, "Subject not found", "deleting subject")
	}
	return nil
}
