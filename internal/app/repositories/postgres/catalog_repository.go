package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
)

var institutionColumns = []string{
	"id", "name", "type", "country", "city", "ranking", "established_year", "total_students",
	"international_students", "tuition_range", "status", "partnership", "contact_email", "website",
	"logo", "description", "specialties", "accreditations", "created_at", "updated_at",
}

var programColumns = []string{
	"id", "title", "level", "intake_id", "subject_id", "institution_id", "duration", "tuition_fee",
	"application_fee", "english_test_score", "scholarship", "english_waiver", "application_deadline",
	"ucas_code", "popularity_rank", "created_at", "updated_at",
}

const programsCountColumn = "(SELECT COUNT(*) FROM programs p WHERE p.institution_id = i.id) AS programs_count"

// InstitutionRepository handles institution database operations
type InstitutionRepository struct {
	store
}

// NewInstitutionRepository creates a new InstitutionRepository
func NewInstitutionRepository(pool *pgxpool.Pool) *InstitutionRepository {
	return &InstitutionRepository{store: newStore(pool)}
}

func institutionValues(i *models.Institution) []any {
	return []any{
		i.ID, i.Name, i.Type, i.Country, i.City, i.Ranking, i.EstablishedYear, i.TotalStudents,
		i.InternationalStudents, i.TuitionRange, i.Status, i.Partnership, i.ContactEmail, i.Website,
		i.Logo, i.Description, i.Specialties, i.Accreditations, i.CreatedAt, i.UpdatedAt,
	}
}

// Create inserts an institution
func (r *InstitutionRepository) Create(ctx context.Context, institution *models.Institution) error {
	now := time.Now().UTC()
	institution.CreatedAt, institution.UpdatedAt = now, now

	query := r.sb.Insert("institutions").Columns(institutionColumns...).Values(institutionValues(institution)...)
	return exec(ctx, r.store, query, "institution", false)
}

func (r *InstitutionRepository) selectInstitutions() squirrel.SelectBuilder {
	return r.sb.Select(append(prefixed("i", institutionColumns), programsCountColumn)...).From("institutions i")
}

// GetByID retrieves an institution with its program count
func (r *InstitutionRepository) GetByID(ctx context.Context, id string) (*models.Institution, error) {
	query := r.selectInstitutions().Where(squirrel.Eq{"i.id": id})
	return selectOne[models.Institution](ctx, r.store, query, "institution")
}

// Update rewrites the institution
func (r *InstitutionRepository) Update(ctx context.Context, institution *models.Institution) error {
	institution.UpdatedAt = time.Now().UTC()

	values := institutionValues(institution)
	query := r.sb.Update("institutions").Where(squirrel.Eq{"id": institution.ID})
	for i, column := range institutionColumns {
		if column == "id" || column == "created_at" {
			continue
		}
		query = query.Set(column, values[i])
	}
	return exec(ctx, r.store, query, "institution", true)
}

// Delete removes the institution and its programs
func (r *InstitutionRepository) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.store, r.sb.Delete("institutions").Where(squirrel.Eq{"id": id}), "institution", true)
}

func (r *InstitutionRepository) where(query squirrel.SelectBuilder, filter repositories.InstitutionFilter) squirrel.SelectBuilder {
	if filter.Country != "" {
		query = query.Where(squirrel.Expr("lower(i.country) = lower(?)", filter.Country))
	}
	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"i.name": containsPattern(filter.Name)})
	}
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"i.status": *filter.Status})
	}
	if filter.Type != nil {
		query = query.Where(squirrel.Eq{"i.type": *filter.Type})
	}
	return query
}

// List returns institutions matching filter by name
func (r *InstitutionRepository) List(ctx context.Context, filter repositories.InstitutionFilter) ([]models.Institution, error) {
	query := paginate(r.where(r.selectInstitutions(), filter).OrderBy("i.name", "i.id"), filter.Page)
	return selectMany[models.Institution](ctx, r.store, query, "institutions")
}

// Count counts institutions matching filter
func (r *InstitutionRepository) Count(ctx context.Context, filter repositories.InstitutionFilter) (int64, error) {
	return count(ctx, r.store, r.where(r.sb.Select("COUNT(*)").From("institutions i"), filter), "institutions")
}

// ProgramRepository handles program database operations
type ProgramRepository struct {
	store
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(pool *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{store: newStore(pool)}
}

func programValues(p *models.Program) []any {
	return []any{
		p.ID, p.Title, p.Level, p.IntakeID, p.SubjectID, p.InstitutionID, p.Duration, p.TuitionFee,
		p.ApplicationFee, p.EnglishTestScore, p.Scholarship, p.EnglishWaiver, p.ApplicationDeadline,
		p.UCASCode, p.PopularityRank, p.CreatedAt, p.UpdatedAt,
	}
}

// Create inserts a program
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	now := time.Now().UTC()
	program.CreatedAt, program.UpdatedAt = now, now

	query := r.sb.Insert("programs").Columns(programColumns...).Values(programValues(program)...)
	return exec(ctx, r.store, query, "program", false)
}

// GetByID retrieves a program
func (r *ProgramRepository) GetByID(ctx context.Context, id string) (*models.Program, error) {
	query := r.sb.Select(programColumns...).From("programs").Where(squirrel.Eq{"id": id})
	return selectOne[models.Program](ctx, r.store, query, "program")
}

// Update rewrites the program
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program) error {
	program.UpdatedAt = time.Now().UTC()

	values := programValues(program)
	query := r.sb.Update("programs").Where(squirrel.Eq{"id": program.ID})
	for i, column := range programColumns {
		if column == "id" || column == "created_at" {
			continue
		}
		query = query.Set(column, values[i])
	}
	return exec(ctx, r.store, query, "program", true)
}

// Delete removes a program
func (r *ProgramRepository) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.store, r.sb.Delete("programs").Where(squirrel.Eq{"id": id}), "program", true)
}

func (r *ProgramRepository) where(query squirrel.SelectBuilder, filter repositories.ProgramFilter) squirrel.SelectBuilder {
	query = query.Join("institutions i ON i.id = p.institution_id")
	if filter.Search != "" {
		query = query.Where(searchAny(filter.Search, "p.title", "i.name"))
	}
	if filter.InstitutionID != nil {
		query = query.Where(squirrel.Eq{"p.institution_id": *filter.InstitutionID})
	}
	if filter.Country != "" {
		query = query.Where(squirrel.Expr("lower(i.country) = lower(?)", filter.Country))
	}
	if filter.Level != "" {
		query = query.Where(squirrel.Expr("lower(p.level) = lower(?)", filter.Level))
	}
	if filter.IntakeID != nil {
		query = query.Where(squirrel.Eq{"p.intake_id": *filter.IntakeID})
	}
	if filter.SubjectID != nil {
		query = query.Where(squirrel.Eq{"p.subject_id": *filter.SubjectID})
	}
	if filter.ScholarshipAvailable != nil {
		query = query.Where(squirrel.Eq{"p.scholarship": *filter.ScholarshipAvailable})
	}
	if filter.EnglishWaiver != nil {
		query = query.Where(squirrel.Eq{"p.english_waiver": *filter.EnglishWaiver})
	}
	return query
}

// List returns programs matching filter, most popular first
func (r *ProgramRepository) List(ctx context.Context, filter repositories.ProgramFilter) ([]models.Program, error) {
	query := r.sb.Select(prefixed("p", programColumns)...).From("programs p").
		OrderBy("p.popularity_rank DESC", "p.title", "p.id")
	query = paginate(r.where(query, filter), filter.Page)
	return selectMany[models.Program](ctx, r.store, query, "programs")
}

// Count counts programs matching filter
func (r *ProgramRepository) Count(ctx context.Context, filter repositories.ProgramFilter) (int64, error) {
	return count(ctx, r.store, r.where(r.sb.Select("COUNT(*)").From("programs p"), filter), "programs")
}

// IntakeRepository handles intake database operations
type IntakeRepository struct {
	store
}

// NewIntakeRepository creates a new IntakeRepository
func NewIntakeRepository(pool *pgxpool.Pool) *IntakeRepository {
	return &IntakeRepository{store: newStore(pool)}
}

func (r *IntakeRepository) Create(ctx context.Context, intake *models.Intake) error {
	intake.CreatedAt = time.Now().UTC()
	query := r.sb.Insert("intakes").Columns("id", "name", "created_at").Values(intake.ID, intake.Name, intake.CreatedAt)
	return exec(ctx, r.store, query, "intake", false)
}

func (r *IntakeRepository) GetByID(ctx context.Context, id string) (*models.Intake, error) {
	query := r.sb.Select("id", "name", "created_at").From("intakes").Where(squirrel.Eq{"id": id})
	return selectOne[models.Intake](ctx, r.store, query, "intake")
}

func (r *IntakeRepository) List(ctx context.Context) ([]models.Intake, error) {
	query := r.sb.Select("id", "name", "created_at").From("intakes").OrderBy("name")
	return selectMany[models.Intake](ctx, r.store, query, "intakes")
}

func (r *IntakeRepository) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.store, r.sb.Delete("intakes").Where(squirrel.Eq{"id": id}), "intake", true)
}

// SubjectRepository handles subject database operations
type SubjectRepository struct {
	store
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{store: newStore(pool)}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	subject.CreatedAt = time.Now().UTC()
	query := r.sb.Insert("subjects").Columns("id", "name", "created_at").Values(subject.ID, subject.Name, subject.CreatedAt)
	return exec(ctx, r.store, query, "subject", false)
}

func (r *SubjectRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	query := r.sb.Select("id", "name", "created_at").From("subjects").Where(squirrel.Eq{"id": id})
	return selectOne[models.Subject](ctx, r.store, query, "subject")
}

func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	query := r.sb.Select("id", "name", "created_at").From("subjects").OrderBy("name")
	return selectMany[models.Subject](ctx, r.store, query, "subjects")
}

func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	return exec(ctx, r.store, r.sb.Delete("subjects").Where(squirrel.Eq{"id": id}), "subject", true)
}
