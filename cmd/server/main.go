package main

import (
	"log"
	"net/http"
	"time"

	config "sales-chat-api/configs"
	"sales-chat-api/pkg/handlers"
	"sales-chat-api/pkg/llm"
	"sales-chat-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.LoadConfig()

	r := gin.Default()

	// Services
	monitoringService := services.NewMonitoringService()
	datasetService := services.NewDatasetService(cfg.FallbackCurrency)
	formatterService := services.NewFormatterService(cfg.NumberLocale, cfg.FallbackCurrency)
	engineService := services.NewQueryEngineService(formatterService)
	contextService := services.NewContextService()

	var assistantClient *llm.Client
	if cfg.AssistantEndpoint != "" {
		assistantClient = llm.NewClient(
			cfg.AssistantEndpoint,
			cfg.AssistantAPIKey,
			cfg.AssistantModel,
			time.Duration(cfg.AssistantTimeoutMS)*time.Millisecond,
		)
	}
	assistantService := services.NewAssistantService(
		assistantClient,
		time.Duration(cfg.AssistantTimeoutMS)*time.Millisecond,
		cfg.ResponseWordCap,
	)

	// Handlers
	chatHandler := handlers.NewChatHandler(datasetService, engineService, contextService, assistantService)
	adminHandler := handlers.NewAdminHandler(cfg)
	datasetHandler := handlers.NewDatasetHandler(datasetService, adminHandler)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// Middleware
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(cors.Default())

	authMiddleware := func(apiKey string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if apiKey == "" || apiKey == "default_secret_key" {
				c.Next()
				return
			}
			providedKey := c.GetHeader("X-API-KEY")
			if providedKey != apiKey {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
		}
	}

	r.GET("/health", handlers.HealthCheck)

	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(cfg.APIKey))
	{
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/dashboard", monitoringHandler.GetDashboard)
		}

		dataset := v1.Group("/dataset")
		{
			dataset.POST("/upload", datasetHandler.Upload)
			dataset.GET("/summary", datasetHandler.Summary)
			dataset.DELETE("", datasetHandler.Clear)
		}

		chat := v1.Group("/chat")
		{
			chat.POST("", chatHandler.Chat)
			chat.GET("/history/:sessionID", chatHandler.GetHistory)
		}
	}

	log.Printf("Starting sales-chat-api server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
