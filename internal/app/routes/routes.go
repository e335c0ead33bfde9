package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edvios/backend/internal/app/controllers"
	"github.com/edvios/backend/internal/app/models"
	"github.com/edvios/backend/internal/app/models/dto"
	"github.com/edvios/backend/internal/middleware"
)

// Controllers groups every HTTP handler mounted by SetupRouter
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Agent        *controllers.AgentController
	Student      *controllers.StudentController
	Application  *controllers.ApplicationController
	Catalog      *controllers.CatalogController
	Chat         *controllers.ChatController
	Document     *controllers.DocumentController
	Notification *controllers.NotificationController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c *Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	admin := authMiddleware.RoleRequired(models.RoleAdmin)
	agent := authMiddleware.RoleRequired(models.RoleAgent)
	student := authMiddleware.RoleRequired(models.RoleStudent)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.GET("/verify-email", c.Auth.VerifyEmail)
		auth.POST("/resend-verification", c.Auth.ResendVerificationEmail)

		// The user row does not exist yet, so only the token is checked
		auth.POST("/users", authMiddleware.TokenAuth(), c.Auth.CreateUser)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", c.Auth.Me)

		users := authenticated.Group("/users", admin)
		{
			users.GET("/count", c.User.GetUsersCount)
			users.GET("/count/new", c.User.GetNewUsersCount)
			users.PATCH("/:id/role", c.User.ChangeUserRole)
			users.DELETE("/:id", c.User.DeleteUser)
		}

		agents := authenticated.Group("/agents")
		{
			agents.POST("", c.Agent.CreateAgent)
			agents.GET("/:id", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleAgent, models.RolePendingAgent), c.Agent.GetAgentByID)
			agents.PATCH("/me", authMiddleware.RoleRequired(models.RoleAgent, models.RolePendingAgent), c.Agent.UpdateAgent)
			agents.GET("/me/calendly", agent, c.Agent.GetCalendlyLink)
			agents.GET("/assigned/calendly", student, c.Agent.GetCalendlyLinkForStudent)

			agentsAdmin := agents.Group("", admin)
			{
				agentsAdmin.GET("", c.Agent.GetAllAgents)
				agentsAdmin.GET("/pending", c.Agent.GetPendingAgents)
				agentsAdmin.GET("/count", c.Agent.GetAgentCount)
				agentsAdmin.GET("/pending/count", c.Agent.GetPendingAgentCount)
				agentsAdmin.GET("/dashboard", c.Agent.GetDashboardStats)
				agentsAdmin.GET("/selected", c.Agent.GetSelectedAgent)
				agentsAdmin.GET("/assignments", c.Agent.GetAgentAssignments)
				agentsAdmin.PATCH("/assignments/:id", c.Agent.ChangeAgentAssignment)
			}
		}

		students := authenticated.Group("/students")
		{
			students.POST("", student, c.Student.CreateStudent)
			students.GET("/me", student, c.Student.GetMyProfile)
			students.PATCH("/me", student, c.Student.UpdateStudent)
			students.GET("", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleAgent), c.Student.GetStudents)
			students.GET("/count", admin, c.Student.GetStudentsCount)
			// Access to a single student is checked against the assignment ledger
			students.GET("/:id", c.Student.GetStudentByID)
			students.DELETE("/:id", admin, c.Student.DeleteStudent)
		}

		applications := authenticated.Group("/applications")
		{
			applications.POST("", student, c.Application.CreateApplication)
			applications.GET("/me", student, c.Application.GetMyApplications)
			applications.GET("/agent", agent, c.Application.GetAgentApplications)
			applications.GET("", admin, c.Application.GetAllApplications)
			applications.GET("/count", admin, c.Application.GetApplicationsCount)
			applications.GET("/:id", c.Application.GetApplicationByID)
			applications.PATCH("/:id/status", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleAgent, models.RoleStudent), c.Application.UpdateApplicationStatus)
		}

		institutions := authenticated.Group("/institutions")
		{
			institutions.GET("", c.Catalog.GetInstitutions)
			institutions.GET("/:id", c.Catalog.GetInstitutionByID)
			institutions.POST("", admin, c.Catalog.CreateInstitution)
			institutions.PUT("/:id", admin, c.Catalog.UpdateInstitution)
			institutions.DELETE("/:id", admin, c.Catalog.DeleteInstitution)
		}

		programs := authenticated.Group("/programs")
		{
			programs.GET("", c.Catalog.GetPrograms)
			programs.GET("/count", c.Catalog.GetProgramsCount)
			programs.GET("/:id", c.Catalog.GetProgramByID)
			programs.POST("", admin, c.Catalog.CreateProgram)
			programs.PUT("/:id", admin, c.Catalog.UpdateProgram)
			programs.DELETE("/:id", admin, c.Catalog.DeleteProgram)
		}

		intakes := authenticated.Group("/intakes")
		{
			intakes.GET("", c.Catalog.GetIntakes)
			intakes.POST("", admin, c.Catalog.CreateIntake)
			intakes.DELETE("/:id", admin, c.Catalog.DeleteIntake)
		}

		subjects := authenticated.Group("/subjects")
		{
			subjects.GET("", c.Catalog.GetSubjects)
			subjects.POST("", admin, c.Catalog.CreateSubject)
			subjects.DELETE("/:id", admin, c.Catalog.DeleteSubject)
		}

		// Participation is checked per chat by the service
		chat := authenticated.Group("/chat")
		{
			chat.POST("/start", student, c.Chat.StartChat)
			chat.POST("", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleAgent), c.Chat.CreateChat)
			chat.GET("", c.Chat.GetUserChats)
			chat.GET("/unread", c.Chat.GetUnreadCount)
			chat.PATCH("/messages/status", c.Chat.UpdateMessageStatus)
			chat.GET("/:chatId", c.Chat.GetChatByID)
			chat.GET("/:chatId/messages", c.Chat.GetMessages)
			chat.POST("/:chatId/messages", c.Chat.SendMessage)
			chat.GET("/:chatId/ws", c.Chat.Subscribe)
		}

		documents := authenticated.Group("/documents")
		{
			documents.POST("", student, c.Document.CreateDocument)
			documents.POST("/upload", student, c.Document.UploadDocument)
			documents.GET("/me", student, c.Document.GetMyDocuments)
			documents.DELETE("/:id", student, c.Document.DeleteDocument)
			documents.GET("/student/:studentId", authMiddleware.RoleRequired(models.RoleAdmin, models.RoleAgent), c.Document.GetStudentDocuments)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.POST("", admin, c.Notification.CreateNotification)
			notifications.GET("/students", student, c.Notification.GetStudentNotifications)
			notifications.GET("/agents", agent, c.Notification.GetAgentNotifications)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})
}
