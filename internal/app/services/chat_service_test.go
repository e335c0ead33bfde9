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
	"github.com/edvios/backend/internal/app/repositories/inmem"
	"github.com/edvios/backend/internal/pkg/apperrors"
	"github.com/edvios/backend/internal/pkg/websocket"
)

func TestGetAssignedAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("ledger wins over load", func(t *testing.T) {
		repos, _ := inmem.New()
		svc := NewChatService(repos, nil, zerolog.Nop())
		busy := createAgent(t, repos, models.RoleAgent)
		createAgent(t, repos, models.RoleAgent)
		student := createStudent(t, repos)
		_, err := repos.Assignments.Upsert(ctx, student.ID, busy.ID)
		require.NoError(t, err)
		_, err = repos.Chats.Upsert(ctx, createStudent(t, repos).ID, busy.ID)
		require.NoError(t, err)

		agentID, err := svc.GetAssignedAgent(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, busy.ID, agentID)
	})

	t.Run("fallback picks least loaded and persists it", func(t *testing.T) {
		repos, _ := inmem.New()
		svc := NewChatService(repos, nil, zerolog.Nop())
		busy := createAgent(t, repos, models.RoleAgent)
		idle := createAgent(t, repos, models.RoleAgent)
		createAgent(t, repos, models.RolePendingAgent)
		_, err := repos.Chats.Upsert(ctx, createStudent(t, repos).ID, busy.ID)
		require.NoError(t, err)
		student := createStudent(t, repos)

		agentID, err := svc.GetAssignedAgent(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, idle.ID, agentID)

		assignment, err := repos.Assignments.GetByStudentID(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, idle.ID, assignment.AgentID)
	})

	t.Run("no approved agent", func(t *testing.T) {
		repos, _ := inmem.New()
		svc := NewChatService(repos, nil, zerolog.Nop())
		createAgent(t, repos, models.RolePendingAgent)
		student := createStudent(t, repos)

		_, err := svc.GetAssignedAgent(ctx, student.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
		_, err = repos.Assignments.GetByStudentID(ctx, student.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})

	t.Run("demoted ledger agent is replaced", func(t *testing.T) {
		repos, _ := inmem.New()
		svc := NewChatService(repos, nil, zerolog.Nop())
		demoted := createAgent(t, repos, models.RoleAgent)
		student := createStudent(t, repos)
		_, err := repos.Assignments.Upsert(ctx, student.ID, demoted.ID)
		require.NoError(t, err)
		require.NoError(t, repos.Users.UpdateRole(ctx, demoted.ID, models.RoleStudent))
		replacement := createAgent(t, repos, models.RoleSelectedAgent)

		agentID, err := svc.GetAssignedAgent(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, replacement.ID, agentID)

		assignment, err := repos.Assignments.GetByStudentID(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, replacement.ID, assignment.AgentID)

		chat, err := svc.StartChat(ctx, student.ID)
		require.NoError(t, err)
		assert.Equal(t, replacement.ID, chat.AgentID)
	})

	t.Run("demoted ledger agent with nobody to take over", func(t *testing.T) {
		repos, _ := inmem.New()
		svc := NewChatService(repos, nil, zerolog.Nop())
		demoted := createAgent(t, repos, models.RoleAgent)
		student := createStudent(t, repos)
		_, err := repos.Assignments.Upsert(ctx, student.ID, demoted.ID)
		require.NoError(t, err)
		require.NoError(t, repos.Users.UpdateRole(ctx, demoted.ID, models.RolePendingAgent))

		_, err = svc.GetAssignedAgent(ctx, student.ID)
		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestStartChatIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	svc := NewChatService(repos, nil, zerolog.Nop())
	agent := createAgent(t, repos, models.RoleAgent)
	student := createStudent(t, repos)
	_, err := repos.Assignments.Upsert(ctx, student.ID, agent.ID)
	require.NoError(t, err)

	first, err := svc.StartChat(ctx, student.ID)
	require.NoError(t, err)
	second, err := svc.StartChat(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, agent.ID, first.AgentID)
}

func TestCreateChatPermissions(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	svc := NewChatService(repos, nil, zerolog.Nop())
	agent := createAgent(t, repos, models.RoleAgent)
	other := createAgent(t, repos, models.RoleAgent)
	pending := createAgent(t, repos, models.RolePendingAgent)
	student := createStudent(t, repos)
	_, err := repos.Assignments.Upsert(ctx, student.ID, agent.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		actor   auth.Actor
		agentID string
		wantErr error
	}{
		{"assigned agent", auth.Actor{UserID: agent.ID, Role: models.RoleAgent}, agent.ID, nil},
		{"unassigned agent", auth.Actor{UserID: other.ID, Role: models.RoleAgent}, other.ID, apperrors.ErrPermissionDenied},
		{"agent for someone else", auth.Actor{UserID: agent.ID, Role: models.RoleAgent}, other.ID, apperrors.ErrPermissionDenied},
		{"admin any pair", auth.Actor{UserID: "admin", Role: models.RoleAdmin}, other.ID, nil},
		{"admin with pending agent", auth.Actor{UserID: "admin", Role: models.RoleAdmin}, pending.ID, apperrors.ErrBadRequest},
		{"student", auth.Actor{UserID: student.ID, Role: models.RoleStudent}, agent.ID, apperrors.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat, err := svc.CreateChat(ctx, tt.actor, student.ID, tt.agentID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.agentID, chat.AgentID)
		})
	}
}

func TestMessaging(t *testing.T) {
	ctx := context.Background()
	repos, _ := inmem.New()
	publisher := &recordingPublisher{}
	svc := NewChatService(repos, publisher, zerolog.Nop())
	agent := createAgent(t, repos, models.RoleAgent)
	student := createStudent(t, repos)
	outsider := createStudent(t, repos)
	chat, err := svc.CreateChat(ctx, auth.Actor{UserID: "admin", Role: models.RoleAdmin}, student.ID, agent.ID)
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, outsider.ID, chat.ID, "hello?")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	fromStudent, err := svc.SendMessage(ctx, student.ID, chat.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, fromStudent.SenderRole)
	assert.Equal(t, models.MessageSent, fromStudent.Status)
	fromAgent, err := svc.SendMessage(ctx, agent.ID, chat.ID, "welcome")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, fromAgent.SenderRole)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, websocket.EventMessageCreated, publisher.events[0].Type)
	assert.Equal(t, chat.ID, publisher.events[0].ChatID)

	unread, err := svc.GetUnreadCount(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	t.Run("sender cannot mark own message", func(t *testing.T) {
		n, err := svc.UpdateMessageStatus(ctx, student.ID, []string{fromStudent.ID}, models.MessageRead)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("status only moves forward", func(t *testing.T) {
		n, err := svc.UpdateMessageStatus(ctx, agent.ID, []string{fromStudent.ID}, models.MessageRead)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = svc.UpdateMessageStatus(ctx, agent.ID, []string{fromStudent.ID}, models.MessageDelivered)
		require.NoError(t, err)
		assert.Zero(t, n)

		page, err := svc.GetMessages(ctx, agent.ID, chat.ID, &dto.GetMessagesQuery{Page: 1, Size: 50})
		require.NoError(t, err)
		require.Len(t, page.Messages, 2)
		assert.False(t, page.HasMore)
		assert.Equal(t, fromStudent.ID, page.Messages[0].ID)
		assert.Equal(t, models.MessageRead, page.Messages[0].Status)
	})

	t.Run("SENT is not a valid target", func(t *testing.T) {
		_, err := svc.UpdateMessageStatus(ctx, agent.ID, []string{fromStudent.ID}, models.MessageSent)
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})

	t.Run("outsider cannot read", func(t *testing.T) {
		_, err := svc.GetMessages(ctx, outsider.ID, chat.ID, &dto.GetMessagesQuery{Page: 1, Size: 50})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
		n, err := svc.UpdateMessageStatus(ctx, outsider.ID, []string{fromAgent.ID}, models.MessageRead)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	chats, err := svc.GetUserChats(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.NotNil(t, chats[0].LastMessage)
	assert.Equal(t, fromAgent.ID, chats[0].LastMessage.ID)
	assert.Equal(t, int64(1), chats[0].UnreadCount)

	statusEvents := 0
	for _, e := range publisher.events {
		if e.Type == websocket.EventMessageStatus {
			statusEvents++
		}
	}
	assert.Equal(t, 1, statusEvents)
}
