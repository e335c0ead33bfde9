package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/app/services"
	"github.com/edvios/backend/internal/middleware"
)

// ApplicationController handles program applications
type ApplicationController struct {
	applicationService *services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService *services.ApplicationService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService}
}

func applicationFilter(query *dto.ApplicationListQuery) repositories.ApplicationFilter {
	filter := repositories.ApplicationFilter{
		Page:   pageOf(query.Page, query.Size),
		Search: query.Search,
	}
	if query.Status != "" {
		status := models.ApplicationStatus(query.Status)
		filter.Status = &status
	}
	return filter
}

// CreateApplication starts a draft application for the caller
// @Summary Create application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateApplicationRequest true "Application"
// @Success 201 {object} dto.APIResponse{data=models.Application} "Application created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Router /applications [post]
func (c *ApplicationController) CreateApplication(ctx *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	application, err := c.applicationService.CreateApplication(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(application, "Application created"))
}

// GetMyApplications lists the caller's applications
// @Summary Own applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param status query string false "Application status"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Application}} "Applications"
// @Router /applications/me [get]
func (c *ApplicationController) GetMyApplications(ctx *gin.Context) {
	var query dto.ApplicationListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	page, err := c.applicationService.GetMyApplications(ctx.Request.Context(), middleware.CurrentUserID(ctx), applicationFilter(&query))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, page)
}

// GetAllApplications lists every application
// @Summary List applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Search student name or program title"
// @Param status query string false "Application status"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Application}} "Applications"
// @Router /applications [get]
func (c *ApplicationController) GetAllApplications(ctx *gin.Context) {
	var query dto.ApplicationListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	page, err := c.applicationService.GetAllApplications(ctx.Request.Context(), applicationFilter(&query))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, page)
}

// GetAgentApplications lists applications of the caller's assigned students
// @Summary Assigned students' applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Search student name or program title"
// @Param status query string false "Application status"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Application}} "Applications"
// @Router /applications/agent [get]
func (c *ApplicationController) GetAgentApplications(ctx *gin.Context) {
	var query dto.ApplicationListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	page, err := c.applicationService.GetAgentApplications(ctx.Request.Context(), middleware.CurrentUserID(ctx), applicationFilter(&query))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, page)
}

// GetApplicationsCount returns the number of applications
// @Summary Count applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Application count"
// @Router /applications/count [get]
func (c *ApplicationController) GetApplicationsCount(ctx *gin.Context) {
	count, err := c.applicationService.GetApplicationsCount(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCount(ctx, count)
}

// GetApplicationByID returns one application
// @Summary Get application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Application"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) GetApplicationByID(ctx *gin.Context) {
	application, err := c.applicationService.GetApplicationByID(ctx.Request.Context(), middleware.CurrentActor(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(application, ""))
}

// UpdateApplicationStatus moves an application through its lifecycle
// @Summary Update application status
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Application} "Status updated"
// @Failure 400 {object} dto.ErrorResponse "Transition not allowed"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id}/status [patch]
func (c *ApplicationController) UpdateApplicationStatus(ctx *gin.Context) {
	var req dto.UpdateApplicationStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	application, err := c.applicationService.UpdateApplicationStatus(ctx.Request.Context(), middleware.CurrentActor(ctx), ctx.Param("id"), req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(application, "Status updated"))
}
