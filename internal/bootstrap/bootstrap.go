package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/eventsphere/internal/app/auth"
	appControllers "github.com/yigit/eventsphere/internal/app/controllers"
	appMigrations "github.com/yigit/eventsphere/internal/app/migrations"
	appRepos "github.com/yigit/eventsphere/internal/app/repositories"
	memoryRepos "github.com/yigit/eventsphere/internal/app/repositories/memory"
	postgresRepos "github.com/yigit/eventsphere/internal/app/repositories/postgres"
	appRoutes "github.com/yigit/eventsphere/internal/app/routes"
	appServices "github.com/yigit/eventsphere/internal/app/services"
	"github.com/yigit/eventsphere/internal/config"
	"github.com/yigit/eventsphere/internal/db"
	appMiddleware "github.com/yigit/eventsphere/internal/middleware"
	pkgAuth "github.com/yigit/eventsphere/internal/pkg/auth"
	"github.com/yigit/eventsphere/internal/pkg/email"
	"github.com/yigit/eventsphere/internal/pkg/filestorage"
	"github.com/yigit/eventsphere/internal/pkg/helpers"
	"github.com/yigit/eventsphere/internal/pkg/logger"
	"github.com/yigit/eventsphere/internal/seed"
)

// DefaultConfigPath is where the configuration file is looked up
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService             *appServices.AuthService
	UserService             appServices.UserService
	EventService            appServices.EventService
	ChatService             appServices.ChatService
	PresenceService         appServices.PresenceService
	DeleteRequestService    appServices.DeleteRequestService
	AuthController          *appControllers.AuthController
	UserController          *appControllers.UserController
	EventController         *appControllers.EventController
	ChatController          *appControllers.ChatController
	PresenceController      *appControllers.PresenceController
	DeleteRequestController *appControllers.DeleteRequestController
	UploadController        *appControllers.UploadController
	AuthMiddleware          *appMiddleware.AuthMiddleware
	Repos                   *appRepos.Repositories
	JWTService              *pkgAuth.JWTService
	Authorizer              *appAuth.Authorizer
	Notifier                email.Notifier
	FileStorage             filestorage.FileStorage
	Logger                  zerolog.Logger
}

// Storage is the opened persistence backend
type Storage struct {
	Repos *appRepos.Repositories
	close func()
}

// Close releases the backend's resources
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured backend. For postgres it also runs the migrations.
func SetupStorage(cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	if cfg.Database.Driver == "memory" {
		lgr.Warn().Msg("Using in-memory storage, data is lost on restart")
		return &Storage{Repos: memoryRepos.NewStore().Repositories()}, nil
	}

	lgr.Info().Str("host", cfg.Database.Host).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsPath
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return &Storage{
		Repos: postgresRepos.NewRepositories(database),
		close: database.Close,
	}, nil
}

// BuildDependencies initializes application services and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Logger: lgr}

	storage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.BaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.FileStorage = storage

	mailer := email.NewSender(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		AppURL:   cfg.SMTP.AppURL,
	}, logger.Component("email"))
	deps.Notifier = mailer

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.Authorizer = appAuth.NewAuthorizer(lgr)

	deps.AuthService = appServices.NewAuthService(
		repos.Users,
		repos.PasswordResets,
		deps.JWTService,
		pkgAuth.NewPasswordHasher(pkgAuth.DefaultBcryptCost),
		mailer,
		nil,
		logger.Component("auth"),
	)
	deps.UserService = appServices.NewUserService(repos.Users, deps.Authorizer, nil, logger.Component("users"))
	deps.EventService = appServices.NewEventService(
		repos.Events,
		repos.Users,
		deps.Authorizer,
		deps.Notifier,
		deps.FileStorage,
		nil,
		logger.Component("events"),
	)
	deps.PresenceService = appServices.NewPresenceService(repos.Presence, deps.Authorizer, nil, logger.Component("presence"))
	deps.ChatService = appServices.NewChatService(repos.Chats, repos.Users, deps.PresenceService, deps.Authorizer, nil, logger.Component("chat"))
	deps.DeleteRequestService = appServices.NewDeleteRequestService(
		repos.DeleteRequests,
		repos.Users,
		deps.Authorizer,
		nil,
		logger.Component("delete_requests"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.Users, logger.Component("auth_middleware"))

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.UserController = appControllers.NewUserController(deps.UserService, deps.EventService)
	deps.EventController = appControllers.NewEventController(deps.EventService, lgr)
	deps.ChatController = appControllers.NewChatController(deps.ChatService)
	deps.PresenceController = appControllers.NewPresenceController(deps.PresenceService)
	deps.DeleteRequestController = appControllers.NewDeleteRequestController(deps.DeleteRequestService)
	deps.UploadController = appControllers.NewUploadController(deps.FileStorage, lgr)

	return deps, nil
}

// SeedDefaultData runs the startup seed. Failures are logged and do not stop the server.
func SeedDefaultData(cfg *config.Config, deps *Dependencies) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := seed.CreateDefaultData(ctx, deps.AuthService, deps.Repos.Presence, seed.AdminAccount{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		Name:     cfg.Admin.Name,
	}, deps.Logger)
	if err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
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
	router.Use(appMiddleware.RequestLogger(logger.Component("http")), appMiddleware.Recovery(lgr))

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.EventController,
		deps.ChatController,
		deps.PresenceController,
		deps.DeleteRequestController,
		deps.UploadController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
