package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stagelink/backend/config"
	"github.com/stagelink/backend/handler"
	"github.com/stagelink/backend/middleware"
	"github.com/stagelink/backend/pkg/logger"
	"github.com/stagelink/backend/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Pick the store backing
	var store service.Store
	switch cfg.Store.Backend {
	case "postgres":
		pg, err := service.NewPostgresStore(context.Background(), &cfg.Store)
		if err != nil {
			slog.Error("failed to connect postgres store", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
	default:
		store = service.NewMemoryStore(&cfg.Store)
	}

	// Signature image archive (optional)
	var archive *service.SignatureArchive
	if cfg.Archive.Enabled {
		archive, err = service.NewSignatureArchive(&cfg.Archive)
		if err != nil {
			slog.Error("failed to initialize signature archive", "error", err)
			os.Exit(1)
		}
		if err := archive.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
	}

	// Initialize services
	mailer := service.NewAPIMailer(&cfg.Mail)
	contractSvc := service.NewContractService(store)
	signatureSvc := service.NewSignatureService(store, archive, &cfg.Reminders)
	emailSvc := service.NewContractEmailService(mailer, &cfg.Reminders)
	bookingSvc := service.NewBookingEmailService(store, emailSvc, &cfg.Reminders)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	contractHandler := handler.NewContractHandler(contractSvc, emailSvc)
	signatureHandler := handler.NewSignatureHandler(signatureSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/contracts", contractHandler.Create)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.PUT("/contracts/:id", contractHandler.Update)
		protected.PUT("/contracts/:id/status", contractHandler.UpdateStatus)

		protected.POST("/signatures", signatureHandler.Capture)
		protected.POST("/certificates", signatureHandler.Reissue)
		protected.GET("/certificates/:number", signatureHandler.Details)
		protected.GET("/certificates/:number/verify", signatureHandler.Verify)
		protected.GET("/certificates/:number/authenticity", signatureHandler.Authenticity)
		protected.GET("/certificates/:number/audit-trail", signatureHandler.AuditTrail)

		protected.POST("/bookings/created", bookingHandler.Created)
		protected.POST("/bookings/confirmed", bookingHandler.Confirmed)
		protected.POST("/bookings/cancelled", bookingHandler.Cancelled)
		protected.POST("/reminders/run", bookingHandler.RunReminders)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
