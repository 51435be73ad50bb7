// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/omarhammouda0/task-management-system/internal/api/handlers"
	"github.com/omarhammouda0/task-management-system/internal/api/middleware"
	"github.com/omarhammouda0/task-management-system/internal/blob"
	"github.com/omarhammouda0/task-management-system/internal/config"
	"github.com/omarhammouda0/task-management-system/internal/cron"
	"github.com/omarhammouda0/task-management-system/internal/db"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/service"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Logger
	// ============================================
	var zapLogger *zap.Logger
	var err error
	if cfg.Environment == "production" {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.Fatalw("migration failed", "error", err)
	}

	// ============================================
	// Initialize PostgreSQL
	// ============================================
	pg, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("failed to connect to postgres", "error", err)
	}
	defer pg.Close()

	repos := repository.NewPgRepositories(pg.Pool)

	// ============================================
	// Initialize Redis (optional, rate limiting only)
	// ============================================
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisDB, err := db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			logger.Warnw("redis unavailable, rate limiting disabled", "error", err)
		} else {
			defer redisDB.Close()
			redisClient = redisDB.Client
		}
	}

	// ============================================
	// Initialize object storage
	// ============================================
	ctx := context.Background()
	var store blob.Store
	minioStore, err := blob.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		logger.Warnw("object storage unavailable, using in-memory store", "error", err)
		store = blob.NewMemoryStore()
	} else {
		store = minioStore
		logger.Infow("object storage ready", "bucket", cfg.MinioBucket)
	}

	// ============================================
	// Initialize Services
	// ============================================
	services := service.NewServices(service.ServiceDeps{
		Repos:             repos,
		Blob:              store,
		Logger:            logger,
		JWTSecret:         cfg.JWTSecret,
		JWTExpiryMinutes:  cfg.JWTExpiryMinutes,
		RefreshExpiryDays: cfg.RefreshExpiry,
	})

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	scheduler := cron.NewScheduler(services.Token, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatalw("failed to start scheduler", "error", err)
	}
	defer scheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authMW := middleware.Auth(services.Token, repos.UserRepo, logger)
	rateMW := middleware.RateLimit(
		redisClient,
		cfg.RateLimitRequests,
		time.Duration(cfg.RateLimitWindow)*time.Second,
		logger,
	)

	h := handlers.New(services, logger)
	h.Register(r, authMW, rateMW)

	// ============================================
	// Start server with graceful shutdown
	// ============================================
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infow("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infow("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalw("forced shutdown", "error", err)
	}

	logger.Infow("server exited")
}
