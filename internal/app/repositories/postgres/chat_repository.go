package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/repositories"
)

var chatColumns = []string{"id", "student_id", "agent_id", "created_at", "updated_at"}

var messageColumns = []string{"id", "chat_id", "sender_id", "sender_role", "content", "status", "created_at", "updated_at"}

const statusRankSQL = "CASE %s WHEN 'SENT' THEN 1 WHEN 'DELIVERED' THEN 2 WHEN 'READ' THEN 3 ELSE 0 END"

// ChatRepository handles chat and message database operations
type ChatRepository struct {
	store
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{store: newStore(pool)}
}

// Upsert returns the chat of the pair, creating it when absent
func (r *ChatRepository) Upsert(ctx context.Context, studentID, agentID string) (*models.Chat, error) {
	now := time.Now().UTC()
	// DO UPDATE is a no-op write so RETURNING yields the existing row
	query := r.sb.Insert("chats").
		Columns(chatColumns...).
		Values(uuid.NewString(), studentID, agentID, now, now).
		Suffix("ON CONFLICT (student_id, agent_id) DO UPDATE SET student_id = EXCLUDED.student_id").
		Suffix("RETURNING id, student_id, agent_id, created_at, updated_at")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build chat upsert: %w", err)
	}

	var chat models.Chat
	err = r.conn(ctx).QueryRow(ctx, sql, args...).
		Scan(&chat.ID, &chat.StudentID, &chat.AgentID, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		return nil, translateWriteError(err, "chat")
	}
	return &chat, nil
}

// GetByID retrieves a chat
func (r *ChatRepository) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	query := r.sb.Select(chatColumns...).From("chats").Where(squirrel.Eq{"id": id})
	return selectOne[models.Chat](ctx, r.store, query, "chat")
}

// ListForUser lists the user's chats with participants, last message and unread count,
// most recently active first
func (r *ChatRepository) ListForUser(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	query := r.sb.Select(
		"c.id", "c.student_id", "c.agent_id", "c.created_at", "c.updated_at",
		"su.first_name", "su.last_name", "su.email", "su.role",
		"au.first_name", "au.last_name", "au.email", "au.role",
		"lm.id", "lm.sender_id", "lm.sender_role", "lm.content", "lm.status", "lm.created_at", "lm.updated_at",
	).
		Column(squirrel.Expr(
			"(SELECT COUNT(*) FROM chat_messages um WHERE um.chat_id = c.id AND um.sender_id <> ? AND um.status <> ?) AS unread_count",
			userID, models.MessageRead)).
		From("chats c").
		Join("users su ON su.id = c.student_id").
		Join("users au ON au.id = c.agent_id").
		LeftJoin("LATERAL (SELECT m.id, m.sender_id, m.sender_role, m.content, m.status, m.created_at, m.updated_at " +
			"FROM chat_messages m WHERE m.chat_id = c.id ORDER BY m.created_at DESC, m.id DESC LIMIT 1) lm ON true").
		Where(squirrel.Or{squirrel.Eq{"c.student_id": userID}, squirrel.Eq{"c.agent_id": userID}}).
		OrderBy("c.updated_at DESC", "c.id")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build chats query: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying chats: %w", err)
	}
	defer rows.Close()

	summaries := []models.ChatSummary{}
	for rows.Next() {
		var (
			s              models.ChatSummary
			student, agent models.User
			last           nullableMessage
		)
		if err := rows.Scan(
			&s.ID, &s.StudentID, &s.AgentID, &s.CreatedAt, &s.UpdatedAt,
			&student.FirstName, &student.LastName, &student.Email, &student.Role,
			&agent.FirstName, &agent.LastName, &agent.Email, &agent.Role,
			&last.ID, &last.SenderID, &last.SenderRole, &last.Content, &last.Status, &last.CreatedAt, &last.UpdatedAt,
			&s.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("error scanning chat: %w", err)
		}
		student.ID, agent.ID = s.StudentID, s.AgentID
		s.Student, s.Agent = &student, &agent
		s.LastMessage = last.message(s.ID)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Touch bumps the chat's activity time
func (r *ChatRepository) Touch(ctx context.Context, chatID string, at time.Time) error {
	query := r.sb.Update("chats").Set("updated_at", at).Where(squirrel.Eq{"id": chatID})
	return exec(ctx, r.store, query, "chat", true)
}

// Count returns the number of chats
func (r *ChatRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.store, r.sb.Select("COUNT(*)").From("chats"), "chats")
}

// CreateMessage inserts a message
func (r *ChatRepository) CreateMessage(ctx context.Context, m *models.ChatMessage) error {
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Status == "" {
		m.Status = models.MessageSent
	}

	query := r.sb.Insert("chat_messages").Columns(messageColumns...).
		Values(m.ID, m.ChatID, m.SenderID, m.SenderRole, m.Content, m.Status, m.CreatedAt, m.UpdatedAt)
	return exec(ctx, r.store, query, "message", false)
}

// ListMessages pages backwards from the newest message
func (r *ChatRepository) ListMessages(ctx context.Context, filter repositories.MessageFilter) ([]models.ChatMessage, bool, error) {
	offset, limit := filter.OffsetLimit()

	query := r.sb.Select(messageColumns...).From("chat_messages").
		Where(squirrel.Eq{"chat_id": filter.ChatID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit) + 1).
		Offset(offset)
	if filter.Before != nil {
		query = query.Where(squirrel.Lt{"created_at": *filter.Before})
	}

	messages, err := selectMany[models.ChatMessage](ctx, r.store, query, "messages")
	if err != nil {
		return nil, false, err
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}
	slices.Reverse(messages)
	return messages, hasMore, nil
}

// AdvanceMessageStatus moves received messages forward; it never lowers a status
func (r *ChatRepository) AdvanceMessageStatus(ctx context.Context, userID string, messageIDs []string, status models.MessageStatus) ([]models.ChatMessage, error) {
	if len(messageIDs) == 0 {
		return []models.ChatMessage{}, nil
	}

	query := r.sb.Update("chat_messages m").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		From("chats c").
		Where("c.id = m.chat_id").
		Where(squirrel.Eq{"m.id": messageIDs}).
		Where(squirrel.Or{squirrel.Eq{"c.student_id": userID}, squirrel.Eq{"c.agent_id": userID}}).
		Where(squirrel.NotEq{"m.sender_id": userID}).
		Where(fmt.Sprintf(statusRankSQL, "m.status")+" < ?", status.Rank()).
		Suffix("RETURNING " + strings.Join(prefixed("m", messageColumns), ", "))

	return selectMany[models.ChatMessage](ctx, r.store, query, "message statuses")
}

// CountUnread counts messages addressed to the user that are not READ
func (r *ChatRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	query := r.sb.Select("COUNT(*)").From("chat_messages m").
		Join("chats c ON c.id = m.chat_id").
		Where(squirrel.Or{squirrel.Eq{"c.student_id": userID}, squirrel.Eq{"c.agent_id": userID}}).
		Where(squirrel.NotEq{"m.sender_id": userID}).
		Where(squirrel.NotEq{"m.status": models.MessageRead})
	return count(ctx, r.store, query, "unread messages")
}

// nullableMessage receives the LEFT JOINed last message of a chat
type nullableMessage struct {
	ID         *string
	SenderID   *string
	SenderRole *string
	Content    *string
	Status     *string
	CreatedAt  *time.Time
	UpdatedAt  *time.Time
}

func (n nullableMessage) message(chatID string) *models.ChatMessage {
	if n.ID == nil {
		return nil
	}
	return &models.ChatMessage{
		ID:         *n.ID,
		ChatID:     chatID,
		SenderID:   *n.SenderID,
		SenderRole: models.RoleType(*n.SenderRole),
		Content:    *n.Content,
		Status:     models.MessageStatus(*n.Status),
		CreatedAt:  *n.CreatedAt,
		UpdatedAt:  *n.UpdatedAt,
	}
}
