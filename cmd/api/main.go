package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"quantifi/internal/cache"
	"quantifi/internal/config"
	"quantifi/internal/database"
	"quantifi/internal/gemini"
	"quantifi/internal/handlers"
	"quantifi/internal/logger"
	"quantifi/internal/middleware"
	"quantifi/internal/services"
	"quantifi/internal/validator"

	_ "quantifi/internal/docs" // Import swagger docs
)

// @title           Quantifi API
// @version         1.0
// @description     Quantifi is a personal finance tracker with AI-powered insights, chat, and expense categorization.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	dashboardService := services.NewDashboardService(db)
	advisorService := services.NewAdvisorService(
		db,
		cache.NewInsightCache(nil),
		cache.NewCategoryCache(),
		func(ctx context.Context) (services.TextGenerator, error) {
			return gemini.Shared(ctx)
		},
	)

	// Uploaded profile images live on local disk, served under /uploads.
	if err := os.MkdirAll(appConfig.UploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	uploadHandler := handlers.NewUploadHandler(appConfig.UploadDir)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	advisorHandler := handlers.NewAdvisorHandler(advisorService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		origin := appConfig.ClientURL
		if origin == "" {
			origin = "*"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Uploaded profile images
	router.Static("/uploads", appConfig.UploadDir)

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/auth/me", authHandler.GetProfile)
	protected.PUT("/auth/profile", authHandler.UpdateProfile)
	protected.POST("/auth/upload-image", uploadHandler.Image)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.Create)
	transactions.GET("", transactionHandler.List)
	transactions.GET("/:id", transactionHandler.Get)
	transactions.PUT("/:id", transactionHandler.Update)
	transactions.DELETE("/:id", transactionHandler.Delete)
	transactions.GET("/export/:type", transactionHandler.Export)

	// Dashboard
	protected.GET("/dashboard", dashboardHandler.Get)

	// AI advisory routes
	ai := protected.Group("/ai")
	ai.GET("/insights", advisorHandler.GetInsights)
	ai.POST("/chat", advisorHandler.Chat)
	ai.POST("/suggest-category", advisorHandler.SuggestCategory)

	log.Infof("Starting Quantifi backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
