package inmem

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
)

type ChatRepository struct{ s *Store }

func (r *ChatRepository) Upsert(_ context.Context, studentID, agentID string) (*models.Chat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.chats {
		if c.StudentID == studentID && c.AgentID == agentID {
			return &c, nil
		}
	}
	if _, ok := r.s.users[studentID]; !ok {
		return nil, apperrors.NewBadRequestError("chat references a missing record")
	}
	if _, ok := r.s.users[agentID]; !ok {
		return nil, apperrors.NewBadRequestError("chat references a missing record")
	}

	now := r.s.now()
	c := models.Chat{ID: uuid.NewString(), StudentID: studentID, AgentID: agentID, CreatedAt: now, UpdatedAt: now}
	r.s.chats[c.ID] = c
	return &c, nil
}

func (r *ChatRepository) GetByID(_ context.Context, id string) (*models.Chat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.chats[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("chat not found")
	}
	return &c, nil
}

func (r *ChatRepository) ListForUser(_ context.Context, userID string) ([]models.ChatSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []models.ChatSummary{}
	for _, c := range r.s.chats {
		if !c.HasParticipant(userID) {
			continue
		}
		student, agent := r.s.users[c.StudentID], r.s.users[c.AgentID]
		c.Student, c.Agent = &student, &agent
		summary := models.ChatSummary{Chat: c}

		for _, m := range r.s.messages {
			if m.ChatID != c.ID {
				continue
			}
			if summary.LastMessage == nil || newer(m, *summary.LastMessage) {
				last := m
				summary.LastMessage = &last
			}
			if m.SenderID != userID && m.Status != models.MessageRead {
				summary.UnreadCount++
			}
		}
		out = append(out, summary)
	}
	slices.SortFunc(out, func(a, b models.ChatSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func newer(a, b models.ChatMessage) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (r *ChatRepository) Touch(_ context.Context, chatID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.chats[chatID]
	if !ok {
		return apperrors.NewResourceNotFoundError("chat not found")
	}
	c.UpdatedAt = at
	r.s.chats[chatID] = c
	return nil
}

func (r *ChatRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.chats)), nil
}

func (r *ChatRepository) CreateMessage(_ context.Context, m *models.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.chats[m.ChatID]; !ok {
		return apperrors.NewBadRequestError("message references a missing record")
	}
	now := r.s.now()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Status == "" {
		m.Status = models.MessageSent
	}
	r.s.messages[m.ID] = *m
	return nil
}

func (r *ChatRepository) ListMessages(_ context.Context, filter repositories.MessageFilter) ([]models.ChatMessage, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := []models.ChatMessage{}
	for _, m := range r.s.messages {
		if m.ChatID != filter.ChatID {
			continue
		}
		if filter.Before != nil && !m.CreatedAt.Before(*filter.Before) {
			continue
		}
		all = append(all, m)
	}
	slices.SortFunc(all, func(a, b models.ChatMessage) int {
		if newer(a, b) {
			return -1
		}
		return 1
	})

	offset, limit := filter.OffsetLimit()
	if offset >= uint64(len(all)) {
		return []models.ChatMessage{}, false, nil
	}
	rest := all[offset:]
	hasMore := len(rest) > limit
	if hasMore {
		rest = rest[:limit]
	}
	out := slices.Clone(rest)
	slices.Reverse(out)
	return out, hasMore, nil
}

func (r *ChatRepository) AdvanceMessageStatus(_ context.Context, userID string, messageIDs []string, status models.MessageStatus) ([]models.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	updated := []models.ChatMessage{}
	for _, id := range messageIDs {
		m, ok := r.s.messages[id]
		if !ok || m.SenderID == userID || m.Status.Rank() >= status.Rank() {
			continue
		}
		if c, ok := r.s.chats[m.ChatID]; !ok || !c.HasParticipant(userID) {
			continue
		}
		m.Status, m.UpdatedAt = status, r.s.now()
		r.s.messages[id] = m
		updated = append(updated, m)
	}
	return updated, nil
}

func (r *ChatRepository) CountUnread(_ context.Context, userID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, m := range r.s.messages {
		if m.SenderID == userID || m.Status == models.MessageRead {
			continue
		}
		if c, ok := r.s.chats[m.ChatID]; ok && c.HasParticipant(userID) {
			n++
		}
	}
	return n, nil
}
