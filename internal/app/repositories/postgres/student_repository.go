package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
)

var studentColumns = []string{
	"id", "dob", "gender", "nationality", "passport_number", "passport_expiry_date", "country_of_residence",
	"email", "phone", "emergency_contact", "highest_qualification", "year_of_completion", "institution_name",
	"medium_of_instruction", "grades_summary", "academic_certificates", "english_test_taken", "overall_score",
	"test_expiry_date", "intended_intake_month", "intended_intake_year", "preferred_countries",
	"preferred_study_level", "preferred_field_of_study", "estimated_budget", "funding_source",
	"previous_visa_refusal", "visa_refusal_details", "travel_history", "ongoing_immigration_apps",
	"academic_fit", "visa_risk_band", "notes", "created_at", "updated_at",
}

func studentValues(s *models.Student) []any {
	return []any{
		s.ID, s.DateOfBirth, s.Gender, s.Nationality, s.PassportNumber, s.PassportExpiryDate, s.CountryOfResidence,
		s.Email, s.Phone, s.EmergencyContact, s.HighestQualification, s.YearOfCompletion, s.InstitutionName,
		s.MediumOfInstruction, s.GradesSummary, s.AcademicCertificates, s.EnglishTestTaken, s.OverallScore,
		s.TestExpiryDate, s.IntendedIntakeMonth, s.IntendedIntakeYear, s.PreferredCountries,
		s.PreferredStudyLevel, s.PreferredFieldOfStudy, s.EstimatedBudget, s.FundingSource,
		s.PreviousVisaRefusal, s.VisaRefusalDetails, s.TravelHistory, s.OngoingImmigrationApps,
		s.AcademicFit, s.VisaRiskBand, s.Notes, s.CreatedAt, s.UpdatedAt,
	}
}

func prefixed(alias string, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = alias + "." + c
	}
	return out
}

// StudentRepository handles student profile database operations
type StudentRepository struct {
	store
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{store: newStore(pool)}
}

// Create inserts a profile; a duplicate profile is a conflict
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	student.CreatedAt, student.UpdatedAt = now, now

	query := r.sb.Insert("students").Columns(studentColumns...).Values(studentValues(student)...)
	return exec(ctx, r.store, query, "student profile", false)
}

// GetByID retrieves a profile by its user id
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	query := r.sb.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": id})
	return selectOne[models.Student](ctx, r.store, query, "student")
}

// Update rewrites every mutable column of the profile
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()

	values := studentValues(student)
	query := r.sb.Update("students").Where(squirrel.Eq{"id": student.ID})
	for i, column := range studentColumns {
		if column == "id" || column == "created_at" {
			continue
		}
		query = query.Set(column, values[i])
	}
	return exec(ctx, r.store, query, "student", true)
}

// studentOwnedTables reference users(id), so removing only the profile row cascades nothing
var studentOwnedTables = []string{"documents", "applications", "agent_assignments"}

func (r *StudentRepository) deleteStatements(id string) []squirrel.DeleteBuilder {
	statements := make([]squirrel.DeleteBuilder, 0, len(studentOwnedTables)+1)
	for _, table := range studentOwnedTables {
		statements = append(statements, r.sb.Delete(table).Where(squirrel.Eq{"student_id": id}))
	}
	return append(statements, r.sb.Delete("students").Where(squirrel.Eq{"id": id}))
}

// Delete removes the profile with its documents, applications and ledger row.
// Callers run it inside a transaction; the last statement reports NotFound.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	statements := r.deleteStatements(id)
	for i, statement := range statements {
		last := i == len(statements)-1
		what := "student"
		if !last {
			what = studentOwnedTables[i]
		}
		if err := exec(ctx, r.store, statement, what, last); err != nil {
			return err
		}
	}
	return nil
}

func (r *StudentRepository) where(query squirrel.SelectBuilder, filter repositories.StudentFilter) squirrel.SelectBuilder {
	query = query.Join("users u ON u.id = s.id")
	if filter.AgentID != nil {
		query = query.Join("agent_assignments aa ON aa.student_id = s.id").
			Where(squirrel.Eq{"aa.agent_id": *filter.AgentID})
	}
	if filter.Search != "" {
		query = query.Where(searchAny(filter.Search, "u.first_name", "u.last_name", "u.email", "s.nationality"))
	}
	return query
}

// List returns profiles matching filter, newest first
func (r *StudentRepository) List(ctx context.Context, filter repositories.StudentFilter) ([]models.Student, error) {
	query := r.sb.Select(prefixed("s", studentColumns)...).From("students s").OrderBy("s.created_at DESC", "s.id")
	query = paginate(r.where(query, filter), filter.Page)
	return selectMany[models.Student](ctx, r.store, query, "students")
}

// Count counts profiles matching filter
func (r *StudentRepository) Count(ctx context.Context, filter repositories.StudentFilter) (int64, error) {
	return count(ctx, r.store, r.where(r.sb.Select("COUNT(*)").From("students s"), filter), "students")
}
