package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/besttime/besttime-api/docs" // Swagger docs
	"github.com/besttime/besttime-api/internal/config"
	"github.com/besttime/besttime-api/internal/database"
	"github.com/besttime/besttime-api/internal/handlers"
	"github.com/besttime/besttime-api/internal/jobs"
	"github.com/besttime/besttime-api/internal/middleware"
	"github.com/besttime/besttime-api/internal/models"
	"github.com/besttime/besttime-api/internal/repository"
	"github.com/besttime/besttime-api/internal/services"
	"github.com/besttime/besttime-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title BestTime API
// @version 1.0
// @description REST API for the BestTime time tracking platform

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger, teeing into the file served by the admin log
	// endpoints
	logger.Setup(cfg.Environment, cfg.LogFilePath)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("Database migrated")

	// Initialize repositories, services and handlers
	repos := repository.NewRepositories(db)
	svcs := services.NewServices(repos, cfg)
	h := handlers.NewHandlers(svcs)

	// Periodic maintenance
	scheduler := jobs.NewScheduler()
	scheduler.Every(12*time.Hour, "purge-expired-refresh-tokens", svcs.Auth.PurgeExpiredTokens)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	scheduler.Shutdown()

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Check)

		// Authentication (login and refresh are public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/auth/me", h.Auth.Me)
			protected.POST("/auth/logout", h.Auth.Logout)

			protected.GET("/dashboard", h.Dashboard.Show)

			// Time tracking
			entries := protected.Group("/time-entries")
			{
				entries.GET("", h.TimeEntry.Index)
				entries.POST("", h.TimeEntry.Store)
				entries.POST("/start", h.TimeEntry.Start)
				entries.POST("/stop", h.TimeEntry.Stop)
				entries.GET("/active", h.TimeEntry.Active)
				entries.GET("/export", h.TimeEntry.Export)
				entries.GET("/:id", h.TimeEntry.Show)
				entries.PUT("/:id", h.TimeEntry.Update)
				entries.DELETE("/:id", h.TimeEntry.Destroy)
			}

			// Projects: everyone may list and view, managers and admins mutate
			protected.GET("/projects", h.Project.Index)
			protected.GET("/projects/:id", h.Project.Show)
			manage := protected.Group("")
			manage.Use(middleware.RequireRole(models.RoleResponsable, models.RoleGestionnaire))
			{
				manage.POST("/projects", h.Project.Store)
				manage.PUT("/projects/:id", h.Project.Update)
				manage.DELETE("/projects/:id", h.Project.Destroy)
				manage.GET("/projects/:id/qr-code", h.Project.QRCode)
				manage.POST("/projects/:id/qr-code/regenerate", h.Project.RegenerateQRCode)

				manage.GET("/clients", h.Client.Index)
				manage.GET("/clients/:id", h.Client.Show)
				manage.POST("/clients", h.Client.Store)
				manage.PUT("/clients/:id", h.Client.Update)
				manage.DELETE("/clients/:id", h.Client.Destroy)
			}

			// QR validation is open to every authenticated user
			protected.POST("/qr-codes/validate", h.Project.ValidateQRCode)

			// Team management
			team := protected.Group("/team")
			team.Use(middleware.RequireRole(models.RoleResponsable, models.RoleTeamLeader))
			{
				team.GET("", h.Team.Index)
				team.POST("/ouvriers", h.Team.AttachOuvrier)
				team.DELETE("/ouvriers/:user_id", h.Team.DetachOuvrier)
				team.GET("/gestionnaires", h.Team.Gestionnaires)
				team.GET("/gestionnaires/available", h.Team.AvailableGestionnaires)
				team.POST("/gestionnaires", h.Team.AttachGestionnaire)
				team.DELETE("/gestionnaires/:user_id", h.Team.DetachGestionnaire)
				team.PATCH("/members/:user_id/toggle-active", h.Team.ToggleMemberActive)
			}

			// Admin-only routes
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/users", h.User.Index)
				admin.POST("/users", h.User.Store)
				admin.GET("/users/:id", h.User.Show)
				admin.PUT("/users/:id", h.User.Update)
				admin.DELETE("/users/:id", h.User.Destroy)
				admin.PATCH("/users/:id/toggle-active", h.User.ToggleActive)
				admin.GET("/users/:id/statistics", h.User.Statistics)

				admin.GET("/statistics", h.Stats.Summary)
				admin.GET("/statistics/export", h.Stats.ExportPDF)

				admin.GET("/activity-logs", h.Audit.Index)
				admin.GET("/activity-logs/stats", h.Audit.Stats)
				admin.GET("/activity-logs/:id", h.Audit.Show)
				admin.DELETE("/activity-logs", h.Audit.Clear)

				admin.GET("/logs", h.Log.Tail)
				admin.DELETE("/logs", h.Log.Clear)
			}
		}
	}

	return router
}
