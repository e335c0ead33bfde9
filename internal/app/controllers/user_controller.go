package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/app/services"
	"github.com/edvios/backend/internal/middleware"
)

// UserController handles admin user management
type UserController struct {
	userService services.UserService
}

// NewUserController creates a new user controller
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// GetUsersCount returns the number of users
// @Summary Count users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "User count"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /users/count [get]
func (c *UserController) GetUsersCount(ctx *gin.Context) {
	count, err := c.userService.GetUsersCount(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCount(ctx, count)
}

// GetNewUsersCount returns the number of users created in the last 24 hours
// @Summary Count new users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CountResponse} "New user count"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /users/count/new [get]
func (c *UserController) GetNewUsersCount(ctx *gin.Context) {
	count, err := c.userService.GetNewUsersCount(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCount(ctx, count)
}

// ChangeUserRole changes a user's role
// @Summary Change user role
// @Description Changes the role of a user. Only one user can hold SELECTED_AGENT at a time.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body dto.ChangeRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse{data=models.User} "Role changed"
// @Failure 400 {object} dto.ErrorResponse "Invalid role"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Another user is already the selected agent"
// @Failure 502 {object} dto.ErrorResponse "Identity provider sync failed"
// @Router /users/{id}/role [patch]
func (c *UserController) ChangeUserRole(ctx *gin.Context) {
	var req dto.ChangeRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	user, err := c.userService.ChangeUserRole(ctx.Request.Context(), ctx.Param("id"), req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "Role changed"))
}

// DeleteUser removes a user from the identity provider and the database
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.APIResponse "User deleted"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 502 {object} dto.ErrorResponse "Identity provider error"
// @Router /users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	if err := c.userService.DeleteUser(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "User deleted"))
}
