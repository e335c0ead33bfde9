package inmem

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

type InstitutionRepository struct{ s *Store }

func (r *InstitutionRepository) Create(_ context.Context, institution *models.Institution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.institutions[institution.ID]; ok {
		return apperrors.NewConflictError("institution already exists")
	}
	now := r.s.now()
	institution.CreatedAt, institution.UpdatedAt = now, now
	r.s.institutions[institution.ID] = *institution
	return nil
}

func (r *InstitutionRepository) withCountLocked(i models.Institution) models.Institution {
	i.ProgramsCount = 0
	for _, p := range r.s.programs {
		if p.InstitutionID == i.ID {
			i.ProgramsCount++
		}
	}
	return i
}

func (r *InstitutionRepository) GetByID(_ context.Context, id string) (*models.Institution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.institutions[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("institution not found")
	}
	i = r.withCountLocked(i)
	return &i, nil
}

func (r *InstitutionRepository) Update(_ context.Context, institution *models.Institution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.institutions[institution.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("institution not found")
	}
	institution.CreatedAt = current.CreatedAt
	institution.UpdatedAt = r.s.now()
	r.s.institutions[institution.ID] = *institution
	return nil
}

func (r *InstitutionRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.institutions[id]; !ok {
		return apperrors.NewResourceNotFoundError("institution not found")
	}
	delete(r.s.institutions, id)
	for pid, p := range r.s.programs {
		if p.InstitutionID == id {
			r.s.deleteProgramLocked(pid)
		}
	}
	return nil
}

func (r *InstitutionRepository) filterLocked(filter repositories.InstitutionFilter) []models.Institution {
	out := []models.Institution{}
	for _, i := range r.s.institutions {
		if filter.Country != "" && !strings.EqualFold(i.Country, filter.Country) {
			continue
		}
		if filter.Name != "" && !matches(filter.Name, i.Name) {
			continue
		}
		if filter.Status != nil && i.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && i.Type != *filter.Type {
			continue
		}
		out = append(out, r.withCountLocked(i))
	}
	slices.SortFunc(out, func(a, b models.Institution) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (r *InstitutionRepository) List(_ context.Context, filter repositories.InstitutionFilter) ([]models.Institution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.filterLocked(filter), filter.Page), nil
}

func (r *InstitutionRepository) Count(_ context.Context, filter repositories.InstitutionFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filterLocked(filter))), nil
}

type ProgramRepository struct{ s *Store }

func (r *ProgramRepository) checkRefsLocked(p *models.Program) error {
	if _, ok := r.s.institutions[p.InstitutionID]; !ok {
		return apperrors.NewBadRequestError("program references a missing record")
	}
	if p.IntakeID != nil {
		if _, ok := r.s.intakes[*p.IntakeID]; !ok {
			return apperrors.NewBadRequestError("program references a missing record")
		}
	}
	if p.SubjectID != nil {
		if _, ok := r.s.subjects[*p.SubjectID]; !ok {
			return apperrors.NewBadRequestError("program references a missing record")
		}
	}
	return nil
}

func stripProgram(p models.Program) models.Program {
	p.Institution, p.Intake, p.Subject = nil, nil, nil
	return p
}

func (r *ProgramRepository) Create(_ context.Context, program *models.Program) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkRefsLocked(program); err != nil {
		return err
	}
	now := r.s.now()
	program.CreatedAt, program.UpdatedAt = now, now
	r.s.programs[program.ID] = stripProgram(*program)
	return nil
}

func (r *ProgramRepository) GetByID(_ context.Context, id string) (*models.Program, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.programs[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("program not found")
	}
	return &p, nil
}

func (r *ProgramRepository) Update(_ context.Context, program *models.Program) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.programs[program.ID]
	if !ok {
		return apperrors.NewResourceNotFoundError("program not found")
	}
	if err := r.checkRefsLocked(program); err != nil {
		return err
	}
	program.CreatedAt = current.CreatedAt
	program.UpdatedAt = r.s.now()
	r.s.programs[program.ID] = stripProgram(*program)
	return nil
}

func (r *ProgramRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.programs[id]; !ok {
		return apperrors.NewResourceNotFoundError("program not found")
	}
	r.s.deleteProgramLocked(id)
	return nil
}

func (s *Store) deleteProgramLocked(id string) {
	delete(s.programs, id)
	for aid, a := range s.applications {
		if a.ProgramID == id {
			delete(s.applications, aid)
		}
	}
}

func (r *ProgramRepository) filterLocked(filter repositories.ProgramFilter) []models.Program {
	out := []models.Program{}
	for _, p := range r.s.programs {
		inst := r.s.institutions[p.InstitutionID]
		switch {
		case !matches(filter.Search, p.Title, inst.Name),
			filter.InstitutionID != nil && p.InstitutionID != *filter.InstitutionID,
			filter.Country != "" && !strings.EqualFold(inst.Country, filter.Country),
			filter.Level != "" && !strings.EqualFold(p.Level, filter.Level),
			filter.IntakeID != nil && (p.IntakeID == nil || *p.IntakeID != *filter.IntakeID),
			filter.SubjectID != nil && (p.SubjectID == nil || *p.SubjectID != *filter.SubjectID),
			filter.ScholarshipAvailable != nil && p.Scholarship != *filter.ScholarshipAvailable,
			filter.EnglishWaiver != nil && p.EnglishWaiver != *filter.EnglishWaiver:
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b models.Program) int {
		if a.PopularityRank != b.PopularityRank {
			return b.PopularityRank - a.PopularityRank
		}
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

func (r *ProgramRepository) List(_ context.Context, filter repositories.ProgramFilter) ([]models.Program, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return page(r.filterLocked(filter), filter.Page), nil
}

func (r *ProgramRepository) Count(_ context.Context, filter repositories.ProgramFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filterLocked(filter))), nil
}

type IntakeRepository struct{ s *Store }

func (r *IntakeRepository) Create(_ context.Context, intake *models.Intake) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, i := range r.s.intakes {
		if strings.EqualFold(i.Name, intake.Name) {
			return apperrors.NewConflictError("intake already exists")
		}
	}
	intake.CreatedAt = r.s.now()
	r.s.intakes[intake.ID] = *intake
	return nil
}

func (r *IntakeRepository) GetByID(_ context.Context, id string) (*models.Intake, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i, ok := r.s.intakes[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("intake not found")
	}
	return &i, nil
}

func (r *IntakeRepository) List(_ context.Context) ([]models.Intake, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := slices.Collect(maps.Values(r.s.intakes))
	slices.SortFunc(out, func(a, b models.Intake) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *IntakeRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.intakes[id]; !ok {
		return apperrors.NewResourceNotFoundError("intake not found")
	}
	delete(r.s.intakes, id)
	for pid, p := range r.s.programs {
		if p.IntakeID != nil && *p.IntakeID == id {
			p.IntakeID = nil
			r.s.programs[pid] = p
		}
	}
	for aid, a := range r.s.applications {
		if a.PreferredIntakeID != nil && *a.PreferredIntakeID == id {
			a.PreferredIntakeID = nil
			r.s.applications[aid] = a
		}
	}
	return nil
}

type SubjectRepository struct{ s *Store }

func (r *SubjectRepository) Create(_ context.Context, subject *models.Subject) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, s := range r.s.subjects {
		if strings.EqualFold(s.Name, subject.Name) {
			return apperrors.NewConflictError("subject already exists")
		}
	}
	subject.CreatedAt = r.s.now()
	r.s.subjects[subject.ID] = *subject
	return nil
}

func (r *SubjectRepository) GetByID(_ context.Context, id string) (*models.Subject, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.subjects[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("subject not found")
	}
	return &s, nil
}

func (r *SubjectRepository) List(_ context.Context) ([]models.Subject, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := slices.Collect(maps.Values(r.s.subjects))
	slices.SortFunc(out, func(a, b models.Subject) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *SubjectRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.subjects[id]; !ok {
		return apperrors.NewResourceNotFoundError("subject not found")
	}
	delete(r.s.subjects, id)
	for pid, p := range r.s.programs {
		if p.SubjectID != nil && *p.SubjectID == id {
			p.SubjectID = nil
			r.s.programs[pid] = p
		}
	}
	return nil
}
