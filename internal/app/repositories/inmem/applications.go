package inmem

import (
	"context"
	"time"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

type ApplicationRepository struct{ s *Store }

func (r *ApplicationRepository) Create(_ context.Context, a *models.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.students[a.StudentID]; !ok {
		return apperrors.NewBadRequestError("application references a missing record")
	}
	if _, ok := r.s.programs[a.ProgramID]; !ok {
		return apperrors.NewBadRequestError("application references a missing record")
	}
	now := r.s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	stored := *a
	stored.Program, stored.Student = nil, nil
	r.s.applications[a.ID] = stored
	return nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id string) (*models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.applications[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("application not found")
	}
	return &a, nil
}

func (r *ApplicationRepository) UpdateStatus(_ context.Context, id string, from, to models.ApplicationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.applications[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("application not found")
	}
	if a.Status != from {
		return apperrors.NewConflictError("application status changed concurrently")
	}
	a.Status, a.UpdatedAt = to, r.s.now()
	r.s.applications[id] = a
	return nil
}

func (r *ApplicationRepository) filterLocked(filter repositories.ApplicationFilter) []models.Application {
	out := []models.Application{}
	for _, a := range r.s.applications {
		if filter.StudentID != nil && a.StudentID != *filter.StudentID {
			continue
		}
		if filter.AgentID != nil && !r.s.assignedLocked(a.StudentID, *filter.AgentID) {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.Search != "" && !matches(filter.Search, r.s.programs[a.ProgramID].Title, a.AcademicYear) {
			continue
		}
		out = append(out, a)
	}
	newestFirst(out,
		func(a models.Application) time.Time { return a.CreatedAt },
		func(a models.Application) string { return a.ID })
	return out
}

func (r *ApplicationRepository) List(_ context.Context, filter repositories.ApplicationFilter) ([]models.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.filterLocked(filter), filter.Page), nil
}

func (r *ApplicationRepository) Count(_ context.Context, filter repositories.ApplicationFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filterLocked(filter))), nil
}

func (r *ApplicationRepository) CountByStatus(_ context.Context) (map[models.ApplicationStatus]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[models.ApplicationStatus]int64, len(models.AllApplicationStatuses))
	for _, s := range models.AllApplicationStatuses {
		out[s] = 0
	}
	for _, a := range r.s.applications {
		out[a.Status]++
	}
	return out, nil
}
