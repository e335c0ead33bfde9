package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

var applicationColumns = []string{
	"id", "student_id", "program_id", "preferred_intake_id", "academic_year", "additional_notes",
	"status", "created_at", "updated_at",
}

// ApplicationRepository handles application database operations
type ApplicationRepository struct {
	store
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{store: newStore(pool)}
}

// Create inserts an application
func (r *ApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now

	query := r.sb.Insert("applications").Columns(applicationColumns...).
		Values(a.ID, a.StudentID, a.ProgramID, a.PreferredIntakeID, a.AcademicYear, a.AdditionalNotes,
			a.Status, a.CreatedAt, a.UpdatedAt)
	return exec(ctx, r.store, query, "application", false)
}

// GetByID retrieves an application
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query := r.sb.Select(applicationColumns...).From("applications").Where(squirrel.Eq{"id": id})
	return selectOne[models.Application](ctx, r.store, query, "application")
}

func (r *ApplicationRepository) updateStatusQuery(id string, from, to models.ApplicationStatus) squirrel.UpdateBuilder {
	return r.sb.Update("applications").
		Set("status", to).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "status": from})
}

// UpdateStatus compares and sets the application status
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) error {
	err := exec(ctx, r.store, r.updateStatusQuery(id, from, to), "application", true)
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		// The row was read before; losing the race leaves a different status in place
		return apperrors.NewConflictError("application status changed concurrently")
	}
	return err
}

func (r *ApplicationRepository) where(query squirrel.SelectBuilder, filter repositories.ApplicationFilter) squirrel.SelectBuilder {
	if filter.StudentID != nil {
		query = query.Where(squirrel.Eq{"ap.student_id": *filter.StudentID})
	}
	if filter.AgentID != nil {
		query = query.Join("agent_assignments aa ON aa.student_id = ap.student_id").
			Where(squirrel.Eq{"aa.agent_id": *filter.AgentID})
	}
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"ap.status": *filter.Status})
	}
	if filter.Search != "" {
		query = query.Join("programs p ON p.id = ap.program_id").
			Where(searchAny(filter.Search, "p.title", "ap.academic_year"))
	}
	return query
}

// List returns applications matching filter, newest first
func (r *ApplicationRepository) List(ctx context.Context, filter repositories.ApplicationFilter) ([]models.Application, error) {
	query := r.sb.Select(prefixed("ap", applicationColumns)...).From("applications ap").
		OrderBy("ap.created_at DESC", "ap.id")
	query = paginate(r.where(query, filter), filter.Page)
	return selectMany[models.Application](ctx, r.store, query, "applications")
}

// Count counts applications matching filter
func (r *ApplicationRepository) Count(ctx context.Context, filter repositories.ApplicationFilter) (int64, error) {
	return count(ctx, r.store, r.where(r.sb.Select("COUNT(*)").From("applications ap"), filter), "applications")
}

// CountByStatus groups every application by status
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	type statusCount struct {
		Status models.ApplicationStatus `db:"status"`
		Total  int64                    `db:"total"`
	}

	query := r.sb.Select("status", "COUNT(*) AS total").From("applications").GroupBy("status")
	rows, err := selectMany[statusCount](ctx, r.store, query, "application statuses")
	if err != nil {
		return nil, err
	}

	out := make(map[models.ApplicationStatus]int64, len(models.AllApplicationStatuses))
	for _, s := range models.AllApplicationStatuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}
