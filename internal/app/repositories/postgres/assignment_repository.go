package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

var assignmentColumns = []string{"id", "student_id", "agent_id", "created_at", "updated_at"}

// AssignmentRepository handles the agent assignment ledger
type AssignmentRepository struct {
	store
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{store: newStore(pool)}
}

// Upsert creates the student's ledger row or repoints it at agentID
func (r *AssignmentRepository) Upsert(ctx context.Context, studentID, agentID string) (*models.AgentAssignment, error) {
	now := time.Now().UTC()
	query := r.sb.Insert("agent_assignments").
		Columns(assignmentColumns...).
		Values(uuid.NewString(), studentID, agentID, now, now).
		Suffix("ON CONFLICT (student_id) DO UPDATE SET agent_id = EXCLUDED.agent_id, updated_at = EXCLUDED.updated_at").
		Suffix("RETURNING id, student_id, agent_id, created_at, updated_at")
	return r.returning(ctx, query)
}

func (r *AssignmentRepository) returning(ctx context.Context, query squirrel.Sqlizer) (*models.AgentAssignment, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build assignment statement: %w", err)
	}

	var a models.AgentAssignment
	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&a.ID, &a.StudentID, &a.AgentID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("assignment not found")
		}
		return nil, translateWriteError(err, "assignment")
	}
	return &a, nil
}

// GetByID retrieves a ledger row by id
func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*models.AgentAssignment, error) {
	query := r.sb.Select(assignmentColumns...).From("agent_assignments").Where(squirrel.Eq{"id": id})
	return selectOne[models.AgentAssignment](ctx, r.store, query, "assignment")
}

// GetByStudentID retrieves the student's ledger row
func (r *AssignmentRepository) GetByStudentID(ctx context.Context, studentID string) (*models.AgentAssignment, error) {
	query := r.sb.Select(assignmentColumns...).From("agent_assignments").Where(squirrel.Eq{"student_id": studentID})
	return selectOne[models.AgentAssignment](ctx, r.store, query, "assignment")
}

// UpdateAgent repoints an existing ledger row
func (r *AssignmentRepository) UpdateAgent(ctx context.Context, id, agentID string) (*models.AgentAssignment, error) {
	query := r.sb.Update("agent_assignments").
		Set("agent_id", agentID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, student_id, agent_id, created_at, updated_at")
	return r.returning(ctx, query)
}

// Exists reports whether the ledger maps studentID to agentID
func (r *AssignmentRepository) Exists(ctx context.Context, studentID, agentID string) (bool, error) {
	query := r.sb.Select("COUNT(*)").From("agent_assignments").
		Where(squirrel.Eq{"student_id": studentID, "agent_id": agentID})
	n, err := count(ctx, r.store, query, "assignments")
	return n > 0, err
}

func (r *AssignmentRepository) where(query squirrel.SelectBuilder, filter repositories.AssignmentFilter) squirrel.SelectBuilder {
	query = query.
		Join("users su ON su.id = aa.student_id").
		Join("users au ON au.id = aa.agent_id")
	if filter.AgentRole != "" {
		query = query.Where(squirrel.Eq{"au.role": rolesToStrings(filter.AgentRole.Roles())})
	}
	if filter.AgentID != nil {
		query = query.Where(squirrel.Eq{"aa.agent_id": *filter.AgentID})
	}
	if filter.Search != "" {
		query = query.Where(searchAny(filter.Search,
			"su.first_name", "su.last_name", "su.email", "au.first_name", "au.last_name", "au.email"))
	}
	return query
}

// List returns ledger rows joined with both parties, most recently changed first
func (r *AssignmentRepository) List(ctx context.Context, filter repositories.AssignmentFilter) ([]models.AssignmentView, error) {
	query := r.sb.Select(
		"aa.id", "aa.student_id", "aa.agent_id", "aa.created_at", "aa.updated_at",
		"su.first_name", "su.last_name", "su.email", "su.role",
		"au.first_name", "au.last_name", "au.email", "au.role",
	).From("agent_assignments aa").OrderBy("aa.updated_at DESC", "aa.id")
	query = paginate(r.where(query, filter), filter.Page)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build assignments query: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying assignments: %w", err)
	}
	defer rows.Close()

	views := []models.AssignmentView{}
	for rows.Next() {
		var v models.AssignmentView
		if err := rows.Scan(
			&v.ID, &v.StudentID, &v.AgentID, &v.CreatedAt, &v.UpdatedAt,
			&v.Student.FirstName, &v.Student.LastName, &v.Student.Email, &v.Student.Role,
			&v.Agent.FirstName, &v.Agent.LastName, &v.Agent.Email, &v.Agent.Role,
		); err != nil {
			return nil, fmt.Errorf("error scanning assignment: %w", err)
		}
		v.Student.ID, v.Agent.ID = v.StudentID, v.AgentID
		views = append(views, v)
	}
	return views, rows.Err()
}

// Count counts ledger rows matching filter
func (r *AssignmentRepository) Count(ctx context.Context, filter repositories.AssignmentFilter) (int64, error) {
	query := r.where(r.sb.Select("COUNT(*)").From("agent_assignments aa"), filter)
	return count(ctx, r.store, query, "assignments")
}
