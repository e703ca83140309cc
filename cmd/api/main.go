package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mssaude/voucher-service/internal/config"
	"github.com/mssaude/voucher-service/internal/handlers"
	"github.com/mssaude/voucher-service/internal/middleware"
	"github.com/mssaude/voucher-service/internal/models"
	"github.com/mssaude/voucher-service/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Working directories
	if err := setupDirectories(cfg); err != nil {
		log.Fatalf("Failed to create working directories: %v", err)
	}

	// Initialize services
	csvService := services.NewCSVService()
	qrService := services.NewQRService(cfg)
	pdfService := services.NewPDFService(cfg)
	voucherService := services.NewVoucherService(db, cfg, csvService, qrService, pdfService)
	inviteService := services.NewInviteService(cfg, csvService, qrService, pdfService)
	previewService := services.NewPreviewService(cfg)
	templateService := services.NewTemplateService(cfg, previewService)
	cleanupService := services.NewCleanupService(db, cfg)

	// Janitor: sweep stale uploads, QR assets and downloads periodically
	go func() {
		cleanupService.Sweep()
		for {
			time.Sleep(cfg.CleanupInterval)
			cleanupService.Sweep()
		}
	}()

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	// Initialize handlers
	voucherHandler := handlers.NewVoucherHandler(voucherService, cfg)
	inviteHandler := handlers.NewInviteHandler(inviteService, cfg)
	downloadHandler := handlers.NewDownloadHandler(db, cfg)
	templateHandler := handlers.NewTemplateHandler(templateService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Template preview thumbnails
	router.Static("/previews", cfg.PreviewsDir)

	// Setup routes
	api := router.Group("/api/v1")
	{
		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		api.POST("/vouchers", voucherHandler.Generate)
		api.POST("/invites", inviteHandler.Generate)

		api.GET("/templates", templateHandler.ListVoucherTemplates)
		api.GET("/templates/invites", templateHandler.ListInviteTemplates)

		api.GET("/downloads", downloadHandler.List)
		api.GET("/downloads/:filename", downloadHandler.Get)
		api.GET("/downloads/:filename/status", downloadHandler.Status)
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  120 * time.Second, // large CSV uploads
		WriteTimeout: 120 * time.Second, // large PDF/ZIP responses
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		log.Printf("QR assets in: %s", cfg.QRCodeDir)
		log.Printf("Downloads in: %s", cfg.DownloadsDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func setupDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.UploadsDir,
		cfg.QRCodeDir,
		cfg.DownloadsDir,
		cfg.TempOutputDir,
		cfg.PreviewsDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
