package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/services"
	"github.com/edvios/backend/internal/middleware"
)

// ChatStream upgrades a request into a realtime chat subscription
type ChatStream interface {
	Serve(w http.ResponseWriter, r *http.Request, userID, chatID string) error
}

// ChatController handles chat message operations
type ChatController struct {
	chatService services.ChatService
	stream      ChatStream
	logger      zerolog.Logger
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService, stream ChatStream, logger zerolog.Logger) *ChatController {
	return &ChatController{
		chatService: chatService,
		stream:      stream,
		logger:      logger,
	}
}

// StartChat opens the caller's chat with their assigned agent
// @Summary Start chat with assigned agent
// @Description Resolves the caller's agent from the assignment ledger and returns the chat with that agent, creating it when missing
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Chat} "Chat"
// @Failure 404 {object} dto.ErrorResponse "No agent available"
// @Router /chat/start [post]
func (c *ChatController) StartChat(ctx *gin.Context) {
	chat, err := c.chatService.StartChat(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(chat, ""))
}

// CreateChat opens a chat between a student and an agent
// @Summary Create chat
// @Description Agents may open chats with their assigned students; admins with any pair
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateChatRequest true "Participants"
// @Success 200 {object} dto.APIResponse{data=models.Chat} "Chat"
// @Failure 400 {object} dto.ErrorResponse "Invalid participants"
// @Failure 403 {object} dto.ErrorResponse "Student not assigned to caller"
// @Router /chat [post]
func (c *ChatController) CreateChat(ctx *gin.Context) {
	var req dto.CreateChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	chat, err := c.chatService.CreateChat(ctx.Request.Context(), middleware.CurrentActor(ctx), req.StudentID, req.AgentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(chat, ""))
}

// GetUserChats lists the caller's chats
// @Summary List chats
// @Description Lists the caller's chats with the last message and unread count, most recent first
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ChatSummary} "Chats"
// @Router /chat [get]
func (c *ChatController) GetUserChats(ctx *gin.Context) {
	chats, err := c.chatService.GetUserChats(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(chats, ""))
}

// GetUnreadCount returns how many received messages are not read yet
// @Summary Unread message count
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Unread count"
// @Router /chat/unread [get]
func (c *ChatController) GetUnreadCount(ctx *gin.Context) {
	count, err := c.chatService.GetUnreadCount(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCount(ctx, count)
}

// GetChatByID returns one chat
// @Summary Get chat
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param chatId path string true "Chat ID"
// @Success 200 {object} dto.APIResponse{data=models.Chat} "Chat"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chat/{chatId} [get]
func (c *ChatController) GetChatByID(ctx *gin.Context) {
	chat, err := c.chatService.GetChatByID(ctx.Request.Context(), middleware.CurrentUserID(ctx), ctx.Param("chatId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(chat, ""))
}

// SendMessage posts a text message
// @Summary Send message
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chatId path string true "Chat ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=models.ChatMessage} "Message sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chat/{chatId}/messages [post]
func (c *ChatController) SendMessage(ctx *gin.Context) {
	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	message, err := c.chatService.SendMessage(ctx.Request.Context(), middleware.CurrentUserID(ctx), ctx.Param("chatId"), req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message, "Message sent"))
}

// GetMessages pages backwards through a chat
// @Summary Get chat messages
// @Description Returns a page of messages oldest first. before limits to messages older than the given time.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param chatId path string true "Chat ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(50)
// @Param before query string false "RFC 3339 timestamp"
// @Success 200 {object} dto.APIResponse{data=dto.MessagesResponse} "Messages"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chat/{chatId}/messages [get]
func (c *ChatController) GetMessages(ctx *gin.Context) {
	var query dto.GetMessagesQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	messages, err := c.chatService.GetMessages(ctx.Request.Context(), middleware.CurrentUserID(ctx), ctx.Param("chatId"), &query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages, ""))
}

// UpdateMessageStatus marks received messages delivered or read
// @Summary Update message status
// @Description Advances received messages to DELIVERED or READ. Messages already at or past the status, and the caller's own messages, are skipped.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateMessageStatusRequest true "Messages and status"
// @Success 200 {object} dto.APIResponse{data=dto.UpdatedCountResponse} "Messages updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Router /chat/messages/status [patch]
func (c *ChatController) UpdateMessageStatus(ctx *gin.Context) {
	var req dto.UpdateMessageStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	updated, err := c.chatService.UpdateMessageStatus(ctx.Request.Context(), middleware.CurrentUserID(ctx), req.MessageIDs, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UpdatedCountResponse{Updated: updated}, ""))
}

// Subscribe upgrades to a websocket receiving the chat's events
// @Summary Chat websocket
// @Description Upgrades to a websocket that receives message and status events of the chat. The access token may be passed as the token query parameter.
// @Tags chat
// @Security BearerAuth
// @Param chatId path string true "Chat ID"
// @Param token query string false "Access token"
// @Success 101 "Switching protocols"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Chat not found"
// @Router /chat/{chatId}/ws [get]
func (c *ChatController) Subscribe(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	chatID := ctx.Param("chatId")

	if _, err := c.chatService.GetChatByID(ctx.Request.Context(), userID, chatID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.stream.Serve(ctx.Writer, ctx.Request, userID, chatID); err != nil {
		c.logger.Warn().Err(err).Str("userID", userID).Str("chatID", chatID).Msg("Websocket connection not served")
	}
}
