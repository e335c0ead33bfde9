package inmem

import (
	"context"
	"time"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

type StudentRepository struct{ s *Store }

func (r *StudentRepository) Create(_ context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[student.ID]; !ok {
		return apperrors.NewBadRequestError("student profile references a missing record")
	}
	if _, ok := r.s.students[student.ID]; ok {
		return apperrors.NewConflictError("student profile already exists")
	}
	now := r.s.now()
	student.CreatedAt, student.UpdatedAt = now, now
	stored := *student
	stored.User, stored.Assignment = nil, nil
	r.s.students[student.ID] = stored
	return nil
}

func (r *StudentRepository) GetByID(_ context.Context, id string) (*models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.students[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("student not found")
	}
	return &st, nil
}

func (r *StudentRepository) Update(_ context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.students[student.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("student not found")
	}
	student.CreatedAt = current.CreatedAt
	student.UpdatedAt = r.s.now()
	stored := *student
	stored.User, stored.Assignment = nil, nil
	r.s.students[student.ID] = stored
	return nil
}

func (r *StudentRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.students[id]; !ok {
		return apperrors.NewResourceNotFoundError("student not found")
	}
	r.s.deleteStudentLocked(id)
	return nil
}

func (r *StudentRepository) filterLocked(filter repositories.StudentFilter) []models.Student {
	out := []models.Student{}
	for _, st := range r.s.students {
		if filter.AgentID != nil && !r.s.assignedLocked(st.ID, *filter.AgentID) {
			continue
		}
		u := r.s.users[st.ID]
		if !matches(filter.Search, u.FirstName, u.LastName, u.Email, st.Nationality) {
			continue
		}
		out = append(out, st)
	}
	newestFirst(out,
		func(s models.Student) time.Time { return s.CreatedAt },
		func(s models.Student) string { return s.ID })
	return out
}

func (s *Store) assignedLocked(studentID, agentID string) bool {
	for _, a := range s.assignments {
		if a.StudentID == studentID && a.AgentID == agentID {
			return true
		}
	}
	return false
}

func (r *StudentRepository) List(_ context.Context, filter repositories.StudentFilter) ([]models.Student, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.filterLocked(filter), filter.Page), nil
}

func (r *StudentRepository) Count(_ context.Context, filter repositories.StudentFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filterLocked(filter))), nil
}
