package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/yukikurage/tasktrack/internal/config"
	"github.com/yukikurage/tasktrack/internal/constants"
	"github.com/yukikurage/tasktrack/internal/database"
	"github.com/yukikurage/tasktrack/internal/handlers"
	"github.com/yukikurage/tasktrack/internal/logging"
	"github.com/yukikurage/tasktrack/internal/middleware"
	"github.com/yukikurage/tasktrack/internal/repository"
	"github.com/yukikurage/tasktrack/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := logging.Setup(cfg)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	refRepo := repository.NewReferenceRepository(db)

	// Authentication backends
	hasher := services.NewBcryptHasher()
	emailBackend, err := services.NewEmailBackend(userRepo, hasher)
	if err != nil {
		logger.Fatalf("Failed to create email backend: %v", err)
	}
	modelBackend, err := services.NewModelBackend(userRepo, hasher)
	if err != nil {
		logger.Fatalf("Failed to create model backend: %v", err)
	}
	registry, err := services.BuildBackendRegistry(cfg.AuthBackends, emailBackend, modelBackend)
	if err != nil {
		logger.Fatalf("Invalid AUTH_BACKENDS: %v", err)
	}
	logger.WithField("backends", registry.Names()).Info("Authentication backends registered")

	// Login throttle
	var throttle services.LoginThrottle = services.NoopThrottle{}
	if cfg.LoginMaxAttempts > 0 {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
		})
		throttle = services.NewRedisLoginThrottle(redisClient, cfg.LoginMaxAttempts, cfg.LoginLockout)
	}

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Services
	manager := services.NewUserManager(userRepo, hasher, registry)
	accountService := services.NewAccountService(services.AccountDeps{
		UserRepo:   userRepo,
		Manager:    manager,
		References: services.NewReferenceGenerator(refRepo),
		Registry:   registry,
		Tokens:     services.NewPasswordResetTokens(cfg.ResetTokenSecret, cfg.ResetTokenTTL),
		Mailer:     services.NewLogMailer(logger),
		Throttle:   throttle,
		BaseURL:    cfg.BaseURL,
	})
	taskService := services.NewTaskService(taskRepo, lookupRepo, userRepo, aiService)
	dashboardService := services.NewDashboardService(taskRepo, time.Local)

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		cfg.RedisAddr(),           // Redis address from config
		cfg.RedisPassword,         // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		logger.Fatalf("Failed to create Redis store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, handlers.Routes{
		Auth:        handlers.NewAuthHandler(accountService),
		Tasks:       handlers.NewTaskHandler(taskService, dashboardService),
		TaskService: taskService,
		UserRepo:    userRepo,
	})

	// Start server
	logger.Infof("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
