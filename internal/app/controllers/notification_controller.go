package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/services"
	"github.com/edvios/backend/internal/middleware"
)

// NotificationController handles broadcast notifications
type NotificationController struct {
	notificationService *services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService *services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// CreateNotification broadcasts a notification to students or agents
// @Summary Create notification
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateNotificationRequest true "Notification"
// @Success 201 {object} dto.APIResponse{data=models.Notification} "Notification created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Router /notifications [post]
func (c *NotificationController) CreateNotification(ctx *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	notification, err := c.notificationService.Create(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(notification, "Notification created"))
}

// GetStudentNotifications lists notifications addressed to students
// @Summary Student notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Notification} "Notifications"
// @Router /notifications/students [get]
func (c *NotificationController) GetStudentNotifications(ctx *gin.Context) {
	c.listFor(ctx, models.AudienceStudents)
}

// GetAgentNotifications lists notifications addressed to agents
// @Summary Agent notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Notification} "Notifications"
// @Router /notifications/agents [get]
func (c *NotificationController) GetAgentNotifications(ctx *gin.Context) {
	c.listFor(ctx, models.AudienceAgents)
}

func (c *NotificationController) listFor(ctx *gin.Context, audience models.NotificationAudience) {
	notifications, err := c.notificationService.ListForAudience(ctx.Request.Context(), audience)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(notifications, ""))
}
