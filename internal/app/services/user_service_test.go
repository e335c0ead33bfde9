package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories/inmem"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

func TestChangeUserRole(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes to selected agent and points settings at the user", func(t *testing.T) {
		repos, _ := inmem.New()
		provider := newFakeProvider()
		svc := NewUserService(repos, provider, zerolog.Nop())
		agent := createAgent(t, repos, models.RoleAgent)

		updated, err := svc.ChangeUserRole(ctx, agent.ID, models.RoleSelectedAgent)
		require.NoError(t, err)
		assert.Equal(t, models.RoleSelectedAgent, updated.Role)

		settings, err := repos.Settings.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, settings.SelectedAgentID)
		assert.Equal(t, agent.ID, *settings.SelectedAgentID)
		assert.Equal(t, string(models.RoleSelectedAgent), provider.role(agent.ID))
	})

	t.Run("second selected agent conflicts and changes nothing", func(t *testing.T) {
		repos, _ := inmem.New()
		svc := NewUserService(repos, newFakeProvider(), zerolog.Nop())
		first := createAgent(t, repos, models.RoleAgent)
		second := createAgent(t, repos, models.RoleAgent)

		_, err := svc.ChangeUserRole(ctx, first.ID, models.RoleSelectedAgent)
		require.NoError(t, err)

		_, err = svc.ChangeUserRole(ctx, second.ID, models.RoleSelectedAgent)
		assert.ErrorIs(t, err, apperrors.ErrConflict)

		got, err := repos.Users.GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAgent, got.Role)
		settings, err := repos.Settings.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ID, *settings.SelectedAgentID)
	})

	t.Run("demoting the selected agent clears the pointer", func(t *testing.T) {
		repos, _ := inmem.New()
		svc := NewUserService(repos, newFakeProvider(), zerolog.Nop())
		agent := createAgent(t, repos, models.RoleAgent)

		_, err := svc.ChangeUserRole(ctx, agent.ID, models.RoleSelectedAgent)
		require.NoError(t, err)
		_, err = svc.ChangeUserRole(ctx, agent.ID, models.RoleAgent)
		require.NoError(t, err)

		settings, err := repos.Settings.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, settings.SelectedAgentID)
	})

	t.Run("provider failure rolls the change back", func(t *testing.T) {
		repos, _ := inmem.New()
		provider := newFakeProvider()
		provider.roleErr = errProviderDown
		svc := NewUserService(repos, provider, zerolog.Nop())
		agent := createAgent(t, repos, models.RoleAgent)

		_, err := svc.ChangeUserRole(ctx, agent.ID, models.RoleSelectedAgent)
		assert.ErrorIs(t, err, errProviderDown)

		got, err := repos.Users.GetByID(ctx, agent.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAgent, got.Role)
		settings, err := repos.Settings.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, settings.SelectedAgentID)
	})

	tests := []struct {
		name    string
		role    models.RoleType
		profile bool
		wantErr error
	}{
		{"unknown role", models.RoleType("SUPERUSER"), true, apperrors.ErrBadRequest},
		{"agent role without profile", models.RoleAgent, false, apperrors.ErrBadRequest},
		{"student role without profile", models.RoleStudent, false, nil},
		{"approve pending agent", models.RoleAgent, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, _ := inmem.New()
			svc := NewUserService(repos, newFakeProvider(), zerolog.Nop())

			var user models.User
			if tt.profile {
				user = createAgent(t, repos, models.RolePendingAgent)
			} else {
				user = createUser(t, repos, models.RolePendingAgent)
			}

			_, err := svc.ChangeUserRole(ctx, user.ID, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			got, err := repos.Users.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.role, got.Role)
		})
	}

	t.Run("missing user", func(t *testing.T) {
		repos, _ := inmem.New()
		svc := NewUserService(repos, newFakeProvider(), zerolog.Nop())
		_, err := svc.ChangeUserRole(ctx, "nobody", models.RoleAgent)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting the selected agent clears settings", func(t *testing.T) {
		repos, _ := inmem.New()
		provider := newFakeProvider()
		svc := NewUserService(repos, provider, zerolog.Nop())
		agent := createAgent(t, repos, models.RoleAgent)
		_, err := svc.ChangeUserRole(ctx, agent.ID, models.RoleSelectedAgent)
		require.NoError(t, err)

		require.NoError(t, svc.DeleteUser(ctx, agent.ID))

		_, err = repos.Users.GetByID(ctx, agent.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
		settings, err := repos.Settings.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, settings.SelectedAgentID)
		assert.Equal(t, []string{agent.ID}, provider.deleted)
	})

	t.Run("provider failure keeps the user", func(t *testing.T) {
		repos, _ := inmem.New()
		provider := newFakeProvider()
		provider.deleteErr = errProviderDown
		svc := NewUserService(repos, provider, zerolog.Nop())
		student := createStudent(t, repos)

		assert.Error(t, svc.DeleteUser(ctx, student.ID))
		_, err := repos.Users.GetByID(ctx, student.ID)
		assert.NoError(t, err)
	})

	t.Run("provider not found is tolerated", func(t *testing.T) {
		repos, _ := inmem.New()
		provider := newFakeProvider()
		provider.deleteErr = apperrors.NewResourceNotFoundError("user not found")
		svc := NewUserService(repos, provider, zerolog.Nop())
		student := createStudent(t, repos)

		require.NoError(t, svc.DeleteUser(ctx, student.ID))
		_, err := repos.Users.GetByID(ctx, student.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}
