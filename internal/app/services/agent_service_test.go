package services

import (
	"context"
	"errors"
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

func agentRequest() *dto.CreateAgentRequest {
	link := "https://calendly.com/acme/intro"
	return &dto.CreateAgentRequest{
		LegalName:                  "Acme Education Ltd",
		AgentName:                  "Acme",
		CalendlyLink:               &link,
		CountryOfRegistration:      "GB",
		OfficeAddress:              "1 High Street, London",
		ContactPersonName:          "Jane Doe",
		OfficialEmail:              "office@acme.example.com",
		PhoneNumber:                "+44 20 0000 0000",
		BusinessRegistrationNumber: "REG-1",
		NumberOfCounsellors:        3,
	}
}

func TestCreateAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("stores profile and moves user to pending", func(t *testing.T) {
		repos, _ := inmem.New()
		provider := newFakeProvider()
		svc := NewAgentService(repos, provider, zerolog.Nop())
		user := createUser(t, repos, models.RoleStudent)

		agent, err := svc.CreateAgent(ctx, user.ID, agentRequest())
		require.NoError(t, err)
		assert.Equal(t, user.ID, agent.ID)

		got, err := repos.Users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RolePendingAgent, got.Role)
		assert.Equal(t, string(models.RolePendingAgent), provider.role(user.ID))
	})

	t.Run("provider sync failure does not undo registration", func(t *testing.T) {
		repos, _ := inmem.New()
		provider := newFakeProvider()
		provider.roleErr = errProviderDown
		svc := NewAgentService(repos, provider, zerolog.Nop())
		user := createUser(t, repos, models.RoleStudent)

		_, err := svc.CreateAgent(ctx, user.ID, agentRequest())
		require.NoError(t, err)

		got, err := repos.Users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RolePendingAgent, got.Role)
		_, err = repos.Agents.GetByID(ctx, user.ID)
		assert.NoError(t, err)
	})

	tests := []struct {
		name    string
		role    models.RoleType
		wantErr error
	}{
		{"already pending", models.RolePendingAgent, apperrors.ErrConflict},
		{"already approved", models.RoleAgent, apperrors.ErrConflict},
		{"admin", models.RoleAdmin, apperrors.ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, _ := inmem.New()
			svc := NewAgentService(repos, newFakeProvider(), zerolog.Nop())
			user := createUser(t, repos, tt.role)

			_, err := svc.CreateAgent(ctx, user.ID, agentRequest())
			assert.ErrorIs(t, err, tt.wantErr)

			got, err := repos.Users.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.role, got.Role)
		})
	}
}

// failingRoleUsers breaks the role write that closes agent registration
type failingRoleUsers struct {
	repositories.UserRepository
}

func (failingRoleUsers) UpdateRole(context.Context, string, models.RoleType) error {
	return errors.New("role write failed")
}

func TestCreateAgentRollsBackProfileWhenRoleWriteFails(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	user := createUser(t, repos, models.RoleStudent)

	broken := *repos
	broken.Users = failingRoleUsers{UserRepository: repos.Users}
	provider := newFakeProvider()
	svc := NewAgentService(&broken, provider, zerolog.Nop())

	_, err := svc.CreateAgent(ctx, user.ID, agentRequest())
	require.Error(t, err)

	_, err = repos.Agents.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	got, err := repos.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, got.Role)
	assert.Empty(t, provider.role(user.ID))
}

func TestAgentListingsAndStats(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	users := NewUserService(repos, newFakeProvider(), zerolog.Nop())
	svc := NewAgentService(repos, newFakeProvider(), zerolog.Nop())

	selected := createAgent(t, repos, models.RoleAgent)
	_, err := users.ChangeUserRole(ctx, selected.ID, models.RoleSelectedAgent)
	require.NoError(t, err)
	createAgent(t, repos, models.RoleAgent)
	createAgent(t, repos, models.RolePendingAgent)
	student := createStudent(t, repos)
	createUser(t, repos, models.RoleAdmin)

	all, err := svc.GetAllAgents(ctx, repositories.AgentFilter{Page: repositories.Page{Page: 1, Size: 10}, Role: repositories.AgentFilterAll})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)

	approved, err := svc.GetAllAgents(ctx, repositories.AgentFilter{Page: repositories.Page{Page: 1, Size: 10}, Role: repositories.AgentFilterAgent})
	require.NoError(t, err)
	assert.Equal(t, int64(2), approved.Total)

	pending, err := svc.GetPendingAgents(ctx, repositories.Page{Page: 1, Size: 10}, "")
	require.NoError(t, err)
	assert.Len(t, pending.Items, 1)

	count, err := svc.GetAgentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalStudents)
	assert.Equal(t, int64(2), stats.TotalAgents)
	assert.Equal(t, int64(1), stats.PendingAgents)
	require.NotNil(t, stats.SelectedAgentID)
	assert.Equal(t, selected.ID, *stats.SelectedAgentID)

	current, err := svc.GetSelectedAgent(ctx)
	require.NoError(t, err)
	assert.Equal(t, selected.ID, current.ID)
	require.NotNil(t, current.User)

	_, err = svc.GetAgentByID(ctx, auth.Actor{UserID: student.ID, Role: models.RoleStudent}, selected.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	self, err := svc.GetAgentByID(ctx, auth.Actor{UserID: selected.ID, Role: models.RoleSelectedAgent}, selected.ID)
	require.NoError(t, err)
	assert.Equal(t, selected.Email, self.User.Email)
}

func TestCalendlyLinkForStudentFollowsLedger(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	svc := NewAgentService(repos, newFakeProvider(), zerolog.Nop())

	user := createUser(t, repos, models.RoleStudent)
	_, err := svc.CreateAgent(ctx, user.ID, agentRequest())
	require.NoError(t, err)
	require.NoError(t, repos.Users.UpdateRole(ctx, user.ID, models.RoleAgent))

	student := createStudent(t, repos)
	_, err = svc.GetCalendlyLinkForStudent(ctx, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = repos.Assignments.Upsert(ctx, student.ID, user.ID)
	require.NoError(t, err)
	link, err := svc.GetCalendlyLinkForStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, link.AgentID)
	require.NotNil(t, link.CalendlyLink)
	assert.Equal(t, "https://calendly.com/acme/intro", *link.CalendlyLink)

	t.Run("demoted agent is not offered", func(t *testing.T) {
		require.NoError(t, repos.Users.UpdateRole(ctx, user.ID, models.RoleStudent))
		_, err := svc.GetCalendlyLinkForStudent(ctx, student.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}
