package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/docvault-api/internal/analyzer"
	"github.com/BerylCAtieno/docvault-api/internal/config"
	"github.com/BerylCAtieno/docvault-api/internal/db"
	"github.com/BerylCAtieno/docvault-api/internal/pipeline"
	"github.com/BerylCAtieno/docvault-api/internal/repository"
	"github.com/BerylCAtieno/docvault-api/internal/router"
	"github.com/BerylCAtieno/docvault-api/internal/services"
	"github.com/BerylCAtieno/docvault-api/internal/storage"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(database); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Blob storage
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	blobs, err := storage.New(startupCtx, cfg)
	cancelStartup()
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err, "backend", cfg.StorageBackend)
	}

	// Extraction model
	model, err := analyzer.NewModel(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize extraction model", "error", err)
	}
	extractor := analyzer.NewClient(blobs, model, logger)

	// Services
	docRepo := repository.NewRepository(database)
	categoryRepo := repository.NewCategoryRepository(database)
	ingest := pipeline.New(blobs, extractor, docRepo, categoryRepo, logger)
	docService := services.NewDocumentService(docRepo, categoryRepo, blobs, ingest, cfg.SignedURLTTL, logger)
	categoryService := services.NewCategoryService(categoryRepo, logger)

	// Setup HTTP router
	handler := router.NewRouter(router.Config{
		JWTSecret:   []byte(cfg.JWTSecret),
		MaxFileSize: cfg.MaxFileSize,
	}, docService, categoryService, logger)

	// Create HTTP server; extraction can take a while, so writes get the
	// model timeout on top.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30*time.Second + cfg.ExtractionTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"storage", cfg.StorageBackend,
			"provider", cfg.ExtractionProvider,
			"model", model.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
