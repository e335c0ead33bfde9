package inmem

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

func seedUser(t *testing.T, repos *repositories.Repositories, role models.RoleType) models.User {
	t.Helper()
	id := uuid.NewString()
	u := models.User{ID: id, Email: id + "@example.com", FirstName: "F", LastName: "L", Role: role}
	require.NoError(t, repos.Users.Create(context.Background(), &u))
	return u
}

func TestTransactionRollsBackOnError(t *testing.T) {
	repos, _ := New()
	ctx := context.Background()
	u := seedUser(t, repos, models.RoleStudent)

	boom := errors.New("boom")
	err := repos.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repos.Agents.Create(ctx, &models.Agent{ID: u.ID, AgentName: "Acme"}))
		require.NoError(t, repos.Users.UpdateRole(ctx, u.ID, models.RolePendingAgent))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.Agents.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	got, err := repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, got.Role)
}

func TestSingleSelectedAgentIndex(t *testing.T) {
	repos, _ := New()
	ctx := context.Background()
	a := seedUser(t, repos, models.RoleAgent)
	b := seedUser(t, repos, models.RoleAgent)

	require.NoError(t, repos.Users.UpdateRole(ctx, a.ID, models.RoleSelectedAgent))
	err := repos.Users.UpdateRole(ctx, b.ID, models.RoleSelectedAgent)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestMessagesPageBackwards(t *testing.T) {
	repos, _ := New()
	ctx := context.Background()
	student := seedUser(t, repos, models.RoleStudent)
	agent := seedUser(t, repos, models.RoleAgent)

	chat, err := repos.Chats.Upsert(ctx, student.ID, agent.ID)
	require.NoError(t, err)
	again, err := repos.Chats.Upsert(ctx, student.ID, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, again.ID)

	var contents []string
	for _, c := range []string{"one", "two", "three", "four", "five"} {
		m := models.ChatMessage{ID: uuid.NewString(), ChatID: chat.ID, SenderID: student.ID, SenderRole: models.RoleStudent, Content: c}
		require.NoError(t, repos.Chats.CreateMessage(ctx, &m))
		contents = append(contents, c)
	}

	first, hasMore, err := repos.Chats.ListMessages(ctx, repositories.MessageFilter{ChatID: chat.ID, Page: repositories.Page{Page: 1, Size: 2}})
	require.NoError(t, err)
	assert.True(t, hasMore)
	require.Len(t, first, 2)
	assert.Equal(t, "four", first[0].Content)
	assert.Equal(t, "five", first[1].Content)

	before := first[0].CreatedAt
	older, hasMore, err := repos.Chats.ListMessages(ctx, repositories.MessageFilter{ChatID: chat.ID, Before: &before, Page: repositories.Page{Page: 1, Size: 5}})
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, older, 3)
	assert.Equal(t, contents[:3], []string{older[0].Content, older[1].Content, older[2].Content})
}

func TestAdvanceMessageStatusIsMonotonic(t *testing.T) {
	repos, _ := New()
	ctx := context.Background()
	student := seedUser(t, repos, models.RoleStudent)
	agent := seedUser(t, repos, models.RoleAgent)
	outsider := seedUser(t, repos, models.RoleAgent)

	chat, err := repos.Chats.Upsert(ctx, student.ID, agent.ID)
	require.NoError(t, err)
	m := models.ChatMessage{ID: uuid.NewString(), ChatID: chat.ID, SenderID: student.ID, SenderRole: models.RoleStudent, Content: "hi"}
	require.NoError(t, repos.Chats.CreateMessage(ctx, &m))

	tests := []struct {
		name    string
		userID  string
		status  models.MessageStatus
		updated int
	}{
		{"sender cannot update own message", student.ID, models.MessageRead, 0},
		{"outsider cannot update", outsider.ID, models.MessageRead, 0},
		{"recipient marks read", agent.ID, models.MessageRead, 1},
		{"read never goes back to delivered", agent.ID, models.MessageDelivered, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			updated, err := repos.Chats.AdvanceMessageStatus(ctx, tc.userID, []string{m.ID}, tc.status)
			require.NoError(t, err)
			assert.Len(t, updated, tc.updated)
		})
	}

	unread, err := repos.Chats.CountUnread(ctx, agent.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestDeleteUserCascades(t *testing.T) {
	repos, _ := New()
	ctx := context.Background()
	agent := seedUser(t, repos, models.RoleSelectedAgent)
	student := seedUser(t, repos, models.RoleStudent)

	require.NoError(t, repos.Settings.SetSelectedAgent(ctx, &agent.ID))
	require.NoError(t, repos.Students.Create(ctx, &models.Student{ID: student.ID}))
	_, err := repos.Assignments.Upsert(ctx, student.ID, agent.ID)
	require.NoError(t, err)

	require.NoError(t, repos.Users.Delete(ctx, agent.ID))

	_, err = repos.Assignments.GetByStudentID(ctx, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	settings, err := repos.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings.SelectedAgentID)
}
