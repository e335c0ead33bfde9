package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/edvios/backend/internal/app/auth"
	appControllers "github.com/edvios/backend/internal/app/controllers"
	appMigrations "github.com/edvios/backend/internal/app/migrations"
	appRepos "github.com/edvios/backend/internal/app/repositories"
	"github.com/edvios/backend/internal/app/repositories/postgres"
	appRoutes "github.com/edvios/backend/internal/app/routes"
	appServices "github.com/edvios/backend/internal/app/services"
	"github.com/edvios/backend/internal/config"
	"github.com/edvios/backend/internal/db"
	appMiddleware "github.com/edvios/backend/internal/middleware"
	pkgAuth "github.com/edvios/backend/internal/pkg/auth"
	"github.com/edvios/backend/internal/pkg/email"
	"github.com/edvios/backend/internal/pkg/filestorage"
	"github.com/edvios/backend/internal/pkg/helpers"
	"github.com/edvios/backend/internal/pkg/identity"
	"github.com/edvios/backend/internal/pkg/logger"
	"github.com/edvios/backend/internal/pkg/metrics"
	"github.com/edvios/backend/internal/pkg/validation"
	"github.com/edvios/backend/internal/pkg/websocket"
	"github.com/edvios/backend/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos        *appRepos.Repositories
	AuthzService *appAuth.AuthorizationService

	AuthService         *appServices.AuthService
	UserService         appServices.UserService
	AgentService        *appServices.AgentService
	AssignmentService   *appServices.AssignmentService
	StudentService      *appServices.StudentService
	ApplicationService  *appServices.ApplicationService
	CatalogService      appServices.CatalogService
	ChatService         appServices.ChatService
	DocumentService     *appServices.DocumentService
	NotificationService *appServices.NotificationService

	Controllers    *appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware

	Identity    identity.Provider
	Verifier    *pkgAuth.TokenVerifier
	FileStorage filestorage.FileStorage
	Hub         *websocket.Hub
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logCfg := logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format)
	logCfg.Service = "edvios-api"
	lgr := logger.Configure(logCfg)

	lgr.Info().Str("logLevel", string(logCfg.Level)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, logger.Component("migrations"))

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return dbPool, nil
}

// newFileStorage picks the document store configured by storage.driver
func newFileStorage(cfg *config.Config) (filestorage.FileStorage, error) {
	if cfg.Storage.Driver == config.StorageDriverSupabase {
		return filestorage.NewSupabaseStorage(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, cfg.Supabase.StorageBucket), nil
	}

	baseURL := cfg.Server.PublicBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Server.Port
	}
	// This must match the static file serving URL path
	return filestorage.NewLocalStorage(cfg.Server.StoragePath, strings.TrimRight(baseURL, "/")+"/uploads")
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	if err := validation.RegisterRules(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	var err error
	deps.FileStorage, err = newFileStorage(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	requestTimeout := helpers.ParseDuration(cfg.Supabase.RequestTimeout, 10*time.Second)

	deps.Identity = identity.NewGoTrue(identity.Config{
		URL:            cfg.Supabase.URL,
		AnonKey:        cfg.Supabase.AnonKey,
		ServiceRoleKey: cfg.Supabase.ServiceRoleKey,
		Timeout:        requestTimeout,
	}, logger.Component("identity"))

	deps.Verifier = pkgAuth.NewTokenVerifier(pkgAuth.VerifierConfig{
		JWKSURL: cfg.JWKSURL(),
		Secret:  cfg.Supabase.JWTSecret,
		Refresh: helpers.ParseDuration(cfg.Auth.JWKSRefresh, time.Hour),
		Timeout: requestTimeout,
	})

	mailer := email.NewSMTPMailer(email.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		From:        cfg.SMTP.From,
		FrontendURL: cfg.SMTP.FrontendURL,
	}, lgr)

	deps.Metrics = metrics.New()
	deps.Hub = websocket.NewHub(logger.Component("chat-hub"), cfg.AllowedOrigins(), deps.Metrics)

	// Initialize services
	deps.AuthzService = appAuth.NewAuthorizationService(repos.Assignments, lgr)

	deps.AuthService = appServices.NewAuthService(
		repos,
		deps.Identity,
		mailer,
		helpers.ParseDuration(cfg.Auth.VerificationTokenTTL, appServices.DefaultVerificationTokenTTL),
		logger.Component("auth"),
	)
	deps.UserService = appServices.NewUserService(repos, deps.Identity, logger.Component("users"))
	deps.AgentService = appServices.NewAgentService(repos, deps.Identity, logger.Component("agents"))
	deps.AssignmentService = appServices.NewAssignmentService(repos, logger.Component("assignments"))
	deps.StudentService = appServices.NewStudentService(repos, deps.AuthzService, logger.Component("students"))
	deps.ApplicationService = appServices.NewApplicationService(repos, deps.AuthzService, logger.Component("applications"))
	deps.CatalogService = appServices.NewCatalogService(repos, logger.Component("catalog"))
	deps.ChatService = appServices.NewChatService(repos, deps.Hub, logger.Component("chat"))
	deps.DocumentService = appServices.NewDocumentService(repos, deps.FileStorage, deps.AuthzService, logger.Component("documents"))
	deps.NotificationService = appServices.NewNotificationService(repos, logger.Component("notifications"))

	// Inbound websocket frames go through the same service as the REST endpoints
	deps.Hub.SetInboundHandler(websocket.NewMessageHandler(deps.ChatService))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Verifier, repos.Users, logger.Component("auth-middleware"))

	deps.Controllers = &appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		User:         appControllers.NewUserController(deps.UserService),
		Agent:        appControllers.NewAgentController(deps.AgentService, deps.AssignmentService),
		Student:      appControllers.NewStudentController(deps.StudentService),
		Application:  appControllers.NewApplicationController(deps.ApplicationService),
		Catalog:      appControllers.NewCatalogController(deps.CatalogService),
		Chat:         appControllers.NewChatController(deps.ChatService, deps.Hub, lgr),
		Document:     appControllers.NewDocumentController(deps.DocumentService),
		Notification: appControllers.NewNotificationController(deps.NotificationService),
	}

	return deps, nil
}

// BuildPostgresDependencies wires the dependency graph on a Postgres pool and seeds default data.
func BuildPostgresDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	repos := postgres.New(dbPool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := seed.CreateDefaultData(ctx, repos, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return BuildDependencies(cfg, repos, lgr)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(lgr),
		deps.Metrics.Middleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins(),
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", appMiddleware.RequestIDKey},
			ExposeHeaders:    []string{"Content-Length", appMiddleware.RequestIDKey},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	appRoutes.SetupSwagger(router)
	router.GET("/metrics", deps.Metrics.Handler())

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
