package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/auth"
	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/app/repositories/inmem"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

func TestApplicationLifecycle(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	authz := auth.NewAuthorizationService(repos.Assignments, zerolog.Nop())
	svc := NewApplicationService(repos, authz, zerolog.Nop())
	program := seedProgram(t, NewCatalogService(repos, zerolog.Nop()))

	agent := createAgent(t, repos, models.RoleAgent)
	other := createAgent(t, repos, models.RoleAgent)
	student := createStudent(t, repos)
	_, err := repos.Assignments.Upsert(ctx, student.ID, agent.ID)
	require.NoError(t, err)

	admin := auth.Actor{UserID: "admin", Role: models.RoleAdmin}
	owner := auth.Actor{UserID: student.ID, Role: models.RoleStudent}
	assigned := auth.Actor{UserID: agent.ID, Role: models.RoleAgent}
	unassigned := auth.Actor{UserID: other.ID, Role: models.RoleAgent}

	newApplication := func(t *testing.T) *models.Application {
		t.Helper()
		app, err := svc.CreateApplication(ctx, student.ID, &dto.CreateApplicationRequest{ProgramID: program.ID, AcademicYear: "2026/27"})
		require.NoError(t, err)
		assert.Equal(t, models.ApplicationDraft, app.Status)
		return app
	}

	t.Run("create requires profile and program", func(t *testing.T) {
		_, err := svc.CreateApplication(ctx, agent.ID, &dto.CreateApplicationRequest{ProgramID: program.ID, AcademicYear: "2026/27"})
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
		_, err = svc.CreateApplication(ctx, student.ID, &dto.CreateApplicationRequest{ProgramID: "missing", AcademicYear: "2026/27"})
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("full path to acceptance", func(t *testing.T) {
		app := newApplication(t)
		steps := []struct {
			actor  auth.Actor
			status models.ApplicationStatus
		}{
			{owner, models.ApplicationSubmitted},
			{assigned, models.ApplicationUnderReview},
			{admin, models.ApplicationAccepted},
		}
		for _, step := range steps {
			updated, err := svc.UpdateApplicationStatus(ctx, step.actor, app.ID, step.status)
			require.NoError(t, err)
			assert.Equal(t, step.status, updated.Status)
		}

		_, err := svc.UpdateApplicationStatus(ctx, admin, app.ID, models.ApplicationWithdrawn)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	tests := []struct {
		name    string
		actor   auth.Actor
		status  models.ApplicationStatus
		wantErr error
	}{
		{"skip a step", admin, models.ApplicationAccepted, apperrors.ErrBadRequest},
		{"student cannot review", owner, models.ApplicationUnderReview, apperrors.ErrPermissionDenied},
		{"unassigned agent", unassigned, models.ApplicationSubmitted, apperrors.ErrPermissionDenied},
		{"other student", auth.Actor{UserID: "someone", Role: models.RoleStudent}, models.ApplicationSubmitted, apperrors.ErrPermissionDenied},
		{"student withdraws", owner, models.ApplicationWithdrawn, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApplication(t)
			_, err := svc.UpdateApplicationStatus(ctx, tt.actor, app.ID, tt.status)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stored, err := repos.Applications.GetByID(ctx, app.ID)
				require.NoError(t, err)
				assert.Equal(t, models.ApplicationDraft, stored.Status)
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("visibility", func(t *testing.T) {
		page := repositories.ApplicationFilter{Page: repositories.Page{Page: 1, Size: 50}}

		mine, err := svc.GetMyApplications(ctx, student.ID, page)
		require.NoError(t, err)
		forAgent, err := svc.GetAgentApplications(ctx, agent.ID, page)
		require.NoError(t, err)
		assert.Equal(t, mine.Total, forAgent.Total)

		forOther, err := svc.GetAgentApplications(ctx, other.ID, page)
		require.NoError(t, err)
		assert.Zero(t, forOther.Total)

		require.NotEmpty(t, mine.Items)
		_, err = svc.GetApplicationByID(ctx, unassigned, mine.Items[0].ID)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
		got, err := svc.GetApplicationByID(ctx, assigned, mine.Items[0].ID)
		require.NoError(t, err)
		assert.NotNil(t, got.Program)
	})
}

// racingApplications lets a competing status change land between the read and the write
type racingApplications struct {
	repositories.ApplicationRepository
	competing models.ApplicationStatus
}

func (r *racingApplications) UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) error {
	if err := r.ApplicationRepository.UpdateStatus(ctx, id, from, r.competing); err != nil {
		return err
	}
	return r.ApplicationRepository.UpdateStatus(ctx, id, from, to)
}

func TestConcurrentStatusChangeConflicts(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	authz := auth.NewAuthorizationService(repos.Assignments, zerolog.Nop())
	program := seedProgram(t, NewCatalogService(repos, zerolog.Nop()))
	student := createStudent(t, repos)
	admin := auth.Actor{UserID: "admin", Role: models.RoleAdmin}

	app, err := NewApplicationService(repos, authz, zerolog.Nop()).
		CreateApplication(ctx, student.ID, &dto.CreateApplicationRequest{ProgramID: program.ID, AcademicYear: "2026/27"})
	require.NoError(t, err)
	require.NoError(t, repos.Applications.UpdateStatus(ctx, app.ID, models.ApplicationDraft, models.ApplicationSubmitted))
	require.NoError(t, repos.Applications.UpdateStatus(ctx, app.ID, models.ApplicationSubmitted, models.ApplicationUnderReview))

	racing := *repos
	racing.Applications = &racingApplications{ApplicationRepository: repos.Applications, competing: models.ApplicationRejected}
	svc := NewApplicationService(&racing, authz, zerolog.Nop())

	_, err = svc.UpdateApplicationStatus(ctx, admin, app.ID, models.ApplicationAccepted)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	stored, err := repos.Applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.NotEqual(t, models.ApplicationAccepted, stored.Status)

	t.Run("stale previous status", func(t *testing.T) {
		err := repos.Applications.UpdateStatus(ctx, app.ID, models.ApplicationSubmitted, models.ApplicationAccepted)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}
