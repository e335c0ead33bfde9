package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/auth"
	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/pkg/apperrors"
	"github.com/edvios/backend/internal/pkg/websocket"
)

// ChatService defines the interface for chat operations
type ChatService interface {
	GetAssignedAgent(ctx context.Context, studentID string) (string, error)
	StartChat(ctx context.Context, studentID string) (*models.Chat, error)
	CreateChat(ctx context.Context, actor auth.Actor, studentID, agentID string) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID string) ([]models.ChatSummary, error)
	GetChatByID(ctx context.Context, userID, chatID string) (*models.Chat, error)
	SendMessage(ctx context.Context, userID, chatID, content string) (*models.ChatMessage, error)
	GetMessages(ctx context.Context, userID, chatID string, query *dto.GetMessagesQuery) (*dto.MessagesResponse, error)
	UpdateMessageStatus(ctx context.Context, userID string, messageIDs []string, status models.MessageStatus) (int, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
}

var _ websocket.ChatActions = (ChatService)(nil)

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	transactor     repositories.Transactor
	chatRepo       repositories.ChatRepository
	assignmentRepo repositories.AssignmentRepository
	agentRepo      repositories.AgentRepository
	userRepo       repositories.UserRepository
	publisher      ChatPublisher
	now            func() time.Time
	logger         zerolog.Logger
}

// NewChatService creates a new ChatService. A nil publisher disables realtime fan-out.
func NewChatService(repos *repositories.Repositories, publisher ChatPublisher, logger zerolog.Logger) ChatService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &chatServiceImpl{
		transactor:     repos.Transactor,
		chatRepo:       repos.Chats,
		assignmentRepo: repos.Assignments,
		agentRepo:      repos.Agents,
		userRepo:       repos.Users,
		publisher:      publisher,
		now:            time.Now,
		logger:         logger,
	}
}

// isApprovedAgent reports whether userID still holds AGENT or SELECTED_AGENT
func (s *chatServiceImpl) isApprovedAgent(ctx context.Context, userID string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error getting agent user: %w", err)
	}
	return user.Role.IsApprovedAgent(), nil
}

// GetAssignedAgent resolves the student's agent through the assignment ledger. Students
// without a ledger row, or whose ledger agent was demoted, get the least-loaded approved
// agent, written back to the ledger before returning.
func (s *chatServiceImpl) GetAssignedAgent(ctx context.Context, studentID string) (string, error) {
	assignment, err := s.assignmentRepo.GetByStudentID(ctx, studentID)
	switch {
	case err == nil:
		approved, err := s.isApprovedAgent(ctx, assignment.AgentID)
		if err != nil {
			return "", err
		}
		if approved {
			return assignment.AgentID, nil
		}
		s.logger.Warn().
			Str("studentID", studentID).
			Str("agentID", assignment.AgentID).
			Msg("Ledger agent is no longer approved, reassigning")
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		return "", fmt.Errorf("error getting assignment: %w", err)
	}

	var agentID string
	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		load, err := s.agentRepo.LeastLoaded(ctx)
		if err != nil {
			if errors.Is(err, apperrors.ErrResourceNotFound) {
				return apperrors.NewResourceNotFoundError("No agent is available right now")
			}
			return fmt.Errorf("error finding available agent: %w", err)
		}

		assignment, err := s.assignmentRepo.Upsert(ctx, studentID, load.AgentID)
		if err != nil {
			return fmt.Errorf("error assigning fallback agent: %w", err)
		}
		agentID = assignment.AgentID
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Str("studentID", studentID).
		Str("agentID", agentID).
		Msg("Assigned least-loaded agent to student")
	return agentID, nil
}

// StartChat opens (or reopens) the chat between the student and the ledger agent
func (s *chatServiceImpl) StartChat(ctx context.Context, studentID string) (*models.Chat, error) {
	agentID, err := s.GetAssignedAgent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	chat, err := s.chatRepo.Upsert(ctx, studentID, agentID)
	if err != nil {
		s.logger.Error().Err(err).Str("studentID", studentID).Str("agentID", agentID).Msg("Failed to start chat")
		return nil, fmt.Errorf("error creating chat: %w", err)
	}
	return chat, nil
}

// CreateChat opens a chat for an explicit pair. Admins may pair anyone, agents only
// themselves with a student assigned to them.
func (s *chatServiceImpl) CreateChat(ctx context.Context, actor auth.Actor, studentID, agentID string) (*models.Chat, error) {
	switch {
	case actor.IsAdmin():
	case actor.IsAgent():
		if actor.UserID != agentID {
			return nil, apperrors.NewForbiddenError("Agents can only open chats for themselves")
		}
		assigned, err := s.assignmentRepo.Exists(ctx, studentID, agentID)
		if err != nil {
			return nil, fmt.Errorf("error checking assignment: %w", err)
		}
		if !assigned {
			return nil, apperrors.NewForbiddenError("Student is not assigned to you")
		}
	default:
		return nil, apperrors.NewForbiddenError("You cannot create this chat")
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, notFound(err, "Student not found", "getting student")
	}
	if student.Role != models.RoleStudent {
		return nil, apperrors.NewBadRequestError("Chats can only be opened with students")
	}
	agent, err := s.userRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, notFound(err, "Agent not found", "getting agent")
	}
	if !agent.Role.IsApprovedAgent() {
		return nil, apperrors.NewBadRequestError("Chats can only be opened with approved agents")
	}

	chat, err := s.chatRepo.Upsert(ctx, studentID, agentID)
	if err != nil {
		return nil, fmt.Errorf("error creating chat: %w", err)
	}
	return chat, nil
}

// GetUserChats lists the caller's chats with last message and unread count
func (s *chatServiceImpl) GetUserChats(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	chats, err := s.chatRepo.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", userID).Msg("Failed to list chats")
		return nil, fmt.Errorf("error listing chats: %w", err)
	}
	return chats, nil
}

// GetChatByID returns a chat the caller participates in
func (s *chatServiceImpl) GetChatByID(ctx context.Context, userID, chatID string) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, notFound(err, "Chat not found", "getting chat")
	}
	if !chat.HasParticipant(userID) {
		return nil, apperrors.NewForbiddenError("You are not a participant of this chat")
	}
	return chat, nil
}

// SendMessage stores a message, bumps the chat and pushes it to subscribers
func (s *chatServiceImpl) SendMessage(ctx context.Context, userID, chatID, content string) (*models.ChatMessage, error) {
	chat, err := s.GetChatByID(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	role := models.RoleAgent
	if chat.StudentID == userID {
		role = models.RoleStudent
	}
	message := &models.ChatMessage{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		SenderID:   userID,
		SenderRole: role,
		Content:    content,
		Status:     models.MessageSent,
	}

	err = s.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
			return fmt.Errorf("error creating message: %w", err)
		}
		return s.chatRepo.Touch(ctx, chatID, s.now())
	})
	if err != nil {
		s.logger.Error().Err(err).Str("chatID", chatID).Str("userID", userID).Msg("Failed to send message")
		return nil, err
	}

	s.publisher.Publish(chatID, websocket.EventMessageCreated, message)
	return message, nil
}

// GetMessages returns one page of a chat walking back from the newest message
func (s *chatServiceImpl) GetMessages(ctx context.Context, userID, chatID string, query *dto.GetMessagesQuery) (*dto.MessagesResponse, error) {
	if _, err := s.GetChatByID(ctx, userID, chatID); err != nil {
		return nil, err
	}

	messages, hasMore, err := s.chatRepo.ListMessages(ctx, repositories.MessageFilter{
		ChatID: chatID,
		Before: query.Before,
		Page:   repositories.Page{Page: query.Page, Size: query.Size},
	})
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	return &dto.MessagesResponse{Messages: messages, HasMore: hasMore}, nil
}

// UpdateMessageStatus advances messages the caller received. Messages the caller sent,
// messages outside the caller's chats and messages already at or past status are skipped.
func (s *chatServiceImpl) UpdateMessageStatus(ctx context.Context, userID string, messageIDs []string, status models.MessageStatus) (int, error) {
	if status != models.MessageDelivered && status != models.MessageRead {
		return 0, apperrors.NewBadRequestError("Status must be DELIVERED or READ")
	}
	if len(messageIDs) == 0 {
		return 0, nil
	}

	updated, err := s.chatRepo.AdvanceMessageStatus(ctx, userID, messageIDs, status)
	if err != nil {
		s.logger.Error().Err(err).Str("userID", userID).Msg("Failed to update message status")
		return 0, fmt.Errorf("error updating message status: %w", err)
	}

	byChat := make(map[string][]string)
	for _, m := range updated {
		byChat[m.ChatID] = append(byChat[m.ChatID], m.ID)
	}
	for chatID, ids := range byChat {
		s.publisher.Publish(chatID, websocket.EventMessageStatus, map[string]any{
			"messageIds": ids,
			"status":     status,
			"updatedBy":  userID,
		})
	}
	return len(updated), nil
}

// GetUnreadCount counts messages sent to the caller that are not READ yet
func (s *chatServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.chatRepo.CountUnread(ctx, userID)
}
