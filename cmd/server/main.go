package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"startup-os-backend/internal/cache"
	"startup-os-backend/internal/config"
	"startup-os-backend/internal/database"
	"startup-os-backend/internal/handlers"
	"startup-os-backend/internal/llm"
	"startup-os-backend/internal/logger"
	"startup-os-backend/internal/middleware"
	"startup-os-backend/internal/prompts"
	"startup-os-backend/internal/services"
	"startup-os-backend/internal/supabase"
	"startup-os-backend/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, reading configuration from the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := logger.New(cfg.Environment)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.NewMigrator(db.DB(), appLogger).Run(ctx); err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to create Supabase client")
	}
	authClient := supabase.NewAuthClient(supabaseClient)
	storageClient := supabase.NewStorageClient(cfg.SupabaseURL, cfg.StorageKey(), cfg.SupabaseStorageBucket)

	var pageCache cache.PageCache = cache.Noop{}
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			appLogger.Warn().Err(err).Msg("Redis unavailable, page cache disabled")
		} else {
			defer redisClient.Close()
			pageCache = cache.NewRedisPageCache(redisClient, cfg.PageCacheTTL)
			appLogger.Info().Dur("ttl", cfg.PageCacheTTL).Msg("Page cache enabled")
		}
	}

	library, err := prompts.Load()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to load prompt templates")
	}
	completer := llm.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, cfg.AIRequestTimeout)

	renderer, err := web.NewRenderer()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to parse page templates")
	}

	// Services
	subscriptionService := services.NewSubscriptionService(db, pageCache, appLogger)
	generationService := services.NewGenerationService(db, completer, library, pageCache, subscriptionService, appLogger)
	orchestrationService := services.NewOrchestrationService(generationService, db, pageCache, subscriptionService, appLogger)
	startupService := services.NewStartupService(db, subscriptionService, pageCache, appLogger)
	taskService := services.NewTaskService(db, pageCache, appLogger)
	exportService := services.NewExportService(db, storageClient, subscriptionService, appLogger)

	// Handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authClient, renderer, handlers.AuthConfig{
		SupabaseURL: cfg.SupabaseURL,
		BaseURL:     cfg.BaseURL,
		Provider:    cfg.SupabaseAuthProvider,
		Secure:      cfg.IsProduction(),
	}, appLogger)
	startupsHandler := handlers.NewStartupsHandler(startupService)
	actionsHandler := handlers.NewActionsHandler(orchestrationService, generationService, exportService)
	tasksHandler := handlers.NewTasksHandler(taskService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	pagesHandler := handlers.NewPagesHandler(startupService, subscriptionService, renderer, pageCache, appLogger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Public routes
	router.GET("/health", healthHandler.Health)
	router.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })
	router.GET("/login", authHandler.Login)
	router.GET("/api/auth/callback", authHandler.Callback)
	router.GET("/api/auth/signout", authHandler.SignOut)
	router.POST("/api/auth/signout", authHandler.SignOut)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		api.POST("/startups", startupsHandler.CreateStartup)
		api.GET("/startups", startupsHandler.ListStartups)
		api.GET("/overview", pagesHandler.Overview)

		projects := api.Group("/projects/:projectId")
		{
			projects.GET("", startupsHandler.GetStartup)
			projects.POST("/evaluate", actionsHandler.Evaluate)
			projects.POST("/market-reality", actionsHandler.MarketReality)
			projects.POST("/build-plan", actionsHandler.BuildPlan)
			projects.POST("/launch-plan", actionsHandler.LaunchPlan)
			projects.POST("/generate/:kind", actionsHandler.Generate)
			projects.POST("/status", startupsHandler.UpdateStatus)
			projects.POST("/export", actionsHandler.Export)
			projects.GET("/tasks", tasksHandler.ListTasks)
			projects.PATCH("/tasks/:taskId", tasksHandler.UpdateTask)
		}

		subscription := api.Group("/subscription")
		{
			subscription.GET("", subscriptionHandler.GetSubscription)
			subscription.POST("/upgrade", subscriptionHandler.Upgrade)
			subscription.POST("/downgrade", subscriptionHandler.Downgrade)
		}
	}

	pages := router.Group("/dashboard")
	pages.Use(middleware.PageAuthMiddleware(cfg))
	{
		pages.GET("", pagesHandler.Dashboard)
		pages.GET("/billing", pagesHandler.Billing)
		pages.GET("/:projectId", pagesHandler.Stage)
		pages.GET("/:projectId/:stage", pagesHandler.Stage)
	}

	// Orchestrations run several completions back to back.
	writeTimeout := 4*cfg.AIRequestTimeout + 30*time.Second

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("Server forced to shutdown")
	}
	appLogger.Info().Msg("Server exited")
}
