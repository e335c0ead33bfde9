package inmem

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

type AssignmentRepository struct{ s *Store }

func (r *AssignmentRepository) Upsert(_ context.Context, studentID, agentID string) (*models.AgentAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.students[studentID]; !ok {
		return nil, apperrors.NewBadRequestError("assignment references a missing record")
	}
	if _, ok := r.s.users[agentID]; !ok {
		return nil, apperrors.NewBadRequestError("assignment references a missing record")
	}

	now := r.s.now()
	for id, a := range r.s.assignments {
		if a.StudentID == studentID {
			a.AgentID, a.UpdatedAt = agentID, now
			r.s.assignments[id] = a
			return &a, nil
		}
	}

	a := models.AgentAssignment{
		ID:        uuid.NewString(),
		StudentID: studentID,
		AgentID:   agentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.assignments[a.ID] = a
	return &a, nil
}

func (r *AssignmentRepository) GetByID(_ context.Context, id string) (*models.AgentAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.assignments[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("assignment not found")
	}
	return &a, nil
}

func (r *AssignmentRepository) GetByStudentID(_ context.Context, studentID string) (*models.AgentAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.assignments {
		if a.StudentID == studentID {
			return &a, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("assignment not found")
}

func (r *AssignmentRepository) UpdateAgent(_ context.Context, id, agentID string) (*models.AgentAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.assignments[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("assignment not found")
	}
	if _, ok := r.s.users[agentID]; !ok {
		return nil, apperrors.NewBadRequestError("assignment references a missing record")
	}
	a.AgentID, a.UpdatedAt = agentID, r.s.now()
	r.s.assignments[id] = a
	return &a, nil
}

func (r *AssignmentRepository) Exists(_ context.Context, studentID, agentID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.assignedLocked(studentID, agentID), nil
}

func party(u models.User) models.AssignmentParty {
	return models.AssignmentParty{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Role: u.Role}
}

func (r *AssignmentRepository) filterLocked(filter repositories.AssignmentFilter) []models.AssignmentView {
	var roles []models.RoleType
	if filter.AgentRole != "" {
		roles = filter.AgentRole.Roles()
	}

	out := []models.AssignmentView{}
	for _, a := range r.s.assignments {
		student, agent := r.s.users[a.StudentID], r.s.users[a.AgentID]
		if roles != nil && !slices.Contains(roles, agent.Role) {
			continue
		}
		if filter.AgentID != nil && a.AgentID != *filter.AgentID {
			continue
		}
		if !matches(filter.Search, student.FirstName, student.LastName, student.Email,
			agent.FirstName, agent.LastName, agent.Email) {
			continue
		}
		out = append(out, models.AssignmentView{AgentAssignment: a, Student: party(student), Agent: party(agent)})
	}
	slices.SortFunc(out, func(a, b models.AssignmentView) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (r *AssignmentRepository) List(_ context.Context, filter repositories.AssignmentFilter) ([]models.AssignmentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.filterLocked(filter), filter.Page), nil
}

func (r *AssignmentRepository) Count(_ context.Context, filter repositories.AssignmentFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filterLocked(filter))), nil
}
