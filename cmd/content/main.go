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
	"github.com/gostream/gostream/internal/cache"
	"github.com/gostream/gostream/internal/config"
	"github.com/gostream/gostream/internal/database"
	"github.com/gostream/gostream/internal/encoder"
	"github.com/gostream/gostream/internal/logging"
	"github.com/gostream/gostream/internal/metrics"
	"github.com/gostream/gostream/internal/middleware"
	"github.com/gostream/gostream/internal/storage"
	"github.com/gostream/gostream/internal/tracing"
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

	middleware.SetJWTSecret(cfg.Auth.JWTSecret)

	// Tracing
	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer("gostream-content", cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer closer.Close()
	}

	// Catalog store
	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	repo := database.NewRepository(db)

	// Catalog cache; the service runs without it when disabled
	var videoCache *cache.Cache
	if cfg.Redis.Enabled {
		videoCache, err = cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer videoCache.Close()
	}

	store, err := storage.New(cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	if err != nil {
		logger.Fatalf("Failed to initialize uploads dir: %v", err)
	}

	api := &API{
		repo:    repo,
		cache:   videoCache,
		store:   store,
		encoder: encoder.NewClient(cfg.Encoder, logger),
		log:     logger,
	}

	router := setupRouter(api, cfg.Uploads.Dir)

	// Metrics server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.ErrorWithErr("Metrics server failed", err)
			}
		}()
	}

	// Uploads hold the connection through the whole encode attempt
	// sequence, so read/write deadlines stay off unless configured
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
		logger.Infof("Starting content service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down content service...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Content service stopped")
}

func setupRouter(api *API, uploadsDir string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(api.log), gin.Recovery())

	router.GET("/health", api.healthCheck)
	router.Static("/uploads", uploadsDir)

	videos := router.Group("/api/videos")
	{
		videos.GET("", api.listVideos)
		videos.GET("/:id", api.getVideo)
	}

	// Uploads are heavyweight, so they get their own rate limiter
	uploadLimiter := middleware.NewRateLimiter(1, 3)

	admin := router.Group("/api/videos")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("", middleware.RateLimit(uploadLimiter), api.uploadVideo)
		admin.PUT("/:id", api.updateVideo)
		admin.DELETE("/:id", api.deleteVideo)
	}

	return router
}
