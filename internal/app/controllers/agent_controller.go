package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/app/services"
	"github.com/edvios/backend/internal/middleware"
)

// AgentController handles agent registration, approval listings and the assignment ledger
type AgentController struct {
	agentService      *services.AgentService
	assignmentService *services.AssignmentService
}

// NewAgentController creates a new AgentController
func NewAgentController(agentService *services.AgentService, assignmentService *services.AssignmentService) *AgentController {
	return &AgentController{
		agentService:      agentService,
		assignmentService: assignmentService,
	}
}

// CreateAgent submits the agent registration form for the caller
// @Summary Register as agent
// @Description Creates the caller's agent profile and moves the caller to PENDING_AGENT
// @Tags agents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAgentRequest true "Agent profile"
// @Success 201 {object} dto.APIResponse{data=models.Agent} "Agent registration submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Agent profile already exists"
// @Router /agents [post]
func (c *AgentController) CreateAgent(ctx *gin.Context) {
	var req dto.CreateAgentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	agent, err := c.agentService.CreateAgent(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(agent, "Agent registration submitted"))
}

// GetAllAgents lists agent-track users
// @Summary List agents
// @Description Lists agents newest first. filter AGENT includes the selected agent, ALL includes pending agents.
// @Tags agents
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Search by name or email"
// @Param filter query string false "ALL, AGENT or PENDING_AGENT"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.AgentListItem}} "Agents"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Router /agents [get]
func (c *AgentController) GetAllAgents(ctx *gin.Context) {
	var query dto.AgentListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}
	role, _ := repositories.ParseAgentRoleFilter(query.Filter)

	page, err := c.agentService.GetAllAgents(ctx.Request.Context(), repositories.AgentFilter{
		Page:   pageOf(query.Page, query.Size),
		Role:   role,
		Search: query.Search,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, page)
}

// GetPendingAgents lists agents awaiting approval
// @Summary List pending agents
// @Tags agents
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Search by name or email"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.AgentListItem}} "Pending agents"
// @Router /agents/pending [get]
func (c *AgentController) GetPendingAgents(ctx *gin.Context) {
	var query dto.ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	page, err := c.agentService.GetPendingAgents(ctx.Request.Context(), pageOf(query.Page, query.Size), query.Search)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, page)
}

// GetAgentCount returns the number of approved agents
// @Summary Count agents
// @Tags agents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Agent count"
// @Router /agents/count [get]
func (c *AgentController) GetAgentCount(ctx *gin.Context) {
	count, err := c.agentService.GetAgentCount(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCount(ctx, count)
}

// GetPendingAgentCount returns the number of agents awaiting approval
// @Summary Count pending agents
// @Tags agents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "Pending agent count"
// @Router /agents/pending/count [get]
func (c *AgentController) GetPendingAgentCount(ctx *gin.Context) {
	count, err := c.agentService.GetPendingAgentCount(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCount(ctx, count)
}

// GetDashboardStats returns the admin dashboard counters
// @Summary Dashboard statistics
// @Tags agents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.DashboardStats} "Dashboard statistics"
// @Router /agents/dashboard [get]
func (c *AgentController) GetDashboardStats(ctx *gin.Context) {
	stats, err := c.agentService.GetDashboardStats(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, ""))
}

// GetSelectedAgent returns the agent new students are assigned to
// @Summary Selected agent
// @Tags agents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Agent} "Selected agent"
// @Failure 404 {object} dto.ErrorResponse "No selected agent"
// @Router /agents/selected [get]
func (c *AgentController) GetSelectedAgent(ctx *gin.Context) {
	agent, err := c.agentService.GetSelectedAgent(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(agent, ""))
}

// GetAgentByID returns an agent profile
// @Summary Get agent
// @Description Admins may read any agent profile, agents only their own
// @Tags agents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Agent ID"
// @Success 200 {object} dto.APIResponse{data=models.Agent} "Agent"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Agent not found"
// @Router /agents/{id} [get]
func (c *AgentController) GetAgentByID(ctx *gin.Context) {
	agent, err := c.agentService.GetAgentByID(ctx.Request.Context(), middleware.CurrentActor(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(agent, ""))
}

// UpdateAgent patches the caller's agent profile
// @Summary Update own agent profile
// @Tags agents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateAgentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Agent} "Agent updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 404 {object} dto.ErrorResponse "Agent not found"
// @Router /agents/me [patch]
func (c *AgentController) UpdateAgent(ctx *gin.Context) {
	var req dto.UpdateAgentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	agent, err := c.agentService.UpdateAgent(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(agent, "Agent updated"))
}

// GetCalendlyLink returns the caller's booking link
// @Summary Own booking link
// @Tags agents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CalendlyLinkResponse} "Booking link"
// @Router /agents/me/calendly [get]
func (c *AgentController) GetCalendlyLink(ctx *gin.Context) {
	link, err := c.agentService.GetCalendlyLink(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(link, ""))
}

// GetCalendlyLinkForStudent returns the booking link of the caller's assigned agent
// @Summary Assigned agent booking link
// @Tags agents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CalendlyLinkResponse} "Booking link"
// @Failure 404 {object} dto.ErrorResponse "No assigned agent"
// @Router /agents/assigned/calendly [get]
func (c *AgentController) GetCalendlyLinkForStudent(ctx *gin.Context) {
	link, err := c.agentService.GetCalendlyLinkForStudent(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(link, ""))
}

// GetAgentAssignments lists the assignment ledger
// @Summary List agent assignments
// @Description Lists ledger rows with both parties. filter selects by the agent's role; SELECTED_AGENT counts as AGENT.
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Search student and agent names"
// @Param filter query string false "ALL, AGENT, PENDING_AGENT or SELECTED_AGENT"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.AssignmentView}} "Assignments"
// @Router /agents/assignments [get]
func (c *AgentController) GetAgentAssignments(ctx *gin.Context) {
	var query dto.AssignmentListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	filter := repositories.AssignmentFilter{
		Page:   pageOf(query.Page, query.Size),
		Search: query.Search,
	}
	if role, _ := repositories.ParseAgentRoleFilter(query.Filter); role != repositories.AgentFilterAll {
		filter.AgentRole = role
	}

	page, err := c.assignmentService.GetAgentAssignments(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, page)
}

// ChangeAgentAssignment repoints a ledger row to another agent
// @Summary Change agent assignment
// @Description Updates the agent of an existing assignment in place
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param request body dto.ChangeAssignmentRequest true "New agent"
// @Success 200 {object} dto.APIResponse{data=models.AgentAssignment} "Assignment changed"
// @Failure 400 {object} dto.ErrorResponse "Target is not an approved agent"
// @Failure 404 {object} dto.ErrorResponse "Assignment or agent not found"
// @Router /agents/assignments/{id} [patch]
func (c *AgentController) ChangeAgentAssignment(ctx *gin.Context) {
	var req dto.ChangeAssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	assignment, err := c.assignmentService.ChangeAgentAssignment(ctx.Request.Context(), ctx.Param("id"), req.AgentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(assignment, "Assignment changed"))
}
