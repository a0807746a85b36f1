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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reqtrail/reqtrail/internal/cache"
	"github.com/reqtrail/reqtrail/internal/config"
	"github.com/reqtrail/reqtrail/internal/handler"
	"github.com/reqtrail/reqtrail/internal/middleware"
	"github.com/reqtrail/reqtrail/internal/pkg/logger"
	"github.com/reqtrail/reqtrail/internal/repository"
	"github.com/reqtrail/reqtrail/internal/service"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.Init(cfg.Server.LogLevel)

	// 3. Initialize Cache (Redis > Memory)
	var cacheSvc cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cfg)
		if err == nil {
			logger.Info("✅ Connected to Redis")
			cacheSvc = redisCache
		} else {
			logger.Error("⚠️ Failed to connect to Redis, falling back to memory cache", "error", err)
		}
	}
	if cacheSvc == nil {
		memCache, err := cache.NewMemoryCache(10000)
		if err != nil {
			log.Fatalf("Failed to initialize memory cache: %v", err)
		}
		cacheSvc = memCache
	}

	// 4. Initialize Log Store (Postgres > Memory)
	var repo service.RequestLogRepo
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err == nil {
			pgRepo, migrateErr := repository.NewPostgresRequestLogRepo(db)
			if migrateErr != nil {
				log.Fatalf("Failed to migrate request log schema: %v", migrateErr)
			}
			logger.Info("✅ Connected to PostgreSQL")
			repo = pgRepo
		} else {
			logger.Error("⚠️ Failed to connect to DB, request logs will be memory-only", "error", err)
		}
	}
	if repo == nil {
		repo = repository.NewMemoryRequestLogRepo(10000)
	}

	// 5. Initialize Core Services
	statsTTL := time.Duration(cfg.Redis.StatsTTLSeconds) * time.Second
	logSvc := service.NewRequestLogService(repo, cacheSvc, cfg.Logging.QueueSize, statsTTL)

	cleanupSvc := service.NewCleanupService(logSvc, cfg.Cleanup.RetentionHours, cfg.Cleanup.Schedule)
	cleanupSvc.Start()

	// 6. Initialize Handlers
	logHandler := handler.NewRequestLogHandler(logSvc, cleanupSvc)

	// 7. Setup Router
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.PrincipalMiddleware(cfg))
	r.Use(middleware.RequestLogger(logSvc, middleware.RequestLoggerConfig{
		TrackedMethods: cfg.Logging.TrackedMethods,
		ExcludedPaths:  cfg.Logging.ExcludedPaths,
	}))

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "reqtrail"})
	})

	// Metrics Endpoint
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// Admin Routes
	admin := r.Group("/admin/request-logs")
	admin.Use(middleware.RateLimitMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware(cfg))
	{
		admin.GET("", logHandler.List)
		admin.GET("/user", logHandler.ListByUser)
		admin.GET("/statistics", logHandler.Statistics)
		admin.GET("/cleanup/stats", logHandler.CleanupStats)
		admin.POST("/cleanup/trigger", logHandler.TriggerCleanup)
	}

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("🚀 ReqTrail started", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop accepting requests before tearing down the sink, so in-flight
	// handlers can still submit their records.
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	cleanupSvc.Stop()
	logSvc.Close()

	logger.Info("Server exiting")
}
