package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/gostream/gostream/internal/config"
	"github.com/gostream/gostream/internal/logging"
	"github.com/gostream/gostream/internal/metrics"
	"github.com/gostream/gostream/internal/middleware"
	"github.com/gostream/gostream/internal/storage"
	"github.com/gostream/gostream/internal/transcoder"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Scratch space for received raw files
	uploads, err := storage.New(cfg.Worker.UploadsDir, "/uploads")
	if err != nil {
		logger.Fatalf("Failed to initialize uploads dir: %v", err)
	}

	if err := os.MkdirAll(cfg.Worker.EncodedDir, 0o755); err != nil {
		logger.Fatalf("Failed to create encoded dir: %v", err)
	}

	ffmpeg := transcoder.NewFFmpeg(cfg.Worker.FFmpegPath, cfg.Worker.FFmpegTimeout)

	worker := newWorker(ffmpeg, uploads, cfg.Worker.EncodedDir, logger)
	router := setupRouter(worker)

	// Metrics server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.ErrorWithErr("Metrics server failed", err)
			}
		}()
	}

	// Encode requests run ffmpeg synchronously and respond only when it
	// finishes, so read/write deadlines stay off unless configured
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Starting encoder worker on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down encoder worker...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Encoder worker stopped")
}

func setupRouter(worker *Worker) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(worker.log), gin.Recovery())

	router.GET("/health", worker.healthCheck)
	router.POST("/encode", worker.encode)
	router.Static("/encoded", worker.encodedDir)

	return router
}
