package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/fantasy-edge/internal/api"
	"github.com/jstittsworth/fantasy-edge/internal/api/middleware"
	"github.com/jstittsworth/fantasy-edge/internal/models"
	"github.com/jstittsworth/fantasy-edge/internal/providers"
	"github.com/jstittsworth/fantasy-edge/internal/services"
	"github.com/jstittsworth/fantasy-edge/pkg/config"
	"github.com/jstittsworth/fantasy-edge/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(
		&models.AnalysisRun{},
		&models.PlayerMetricsRecord{},
		&models.PropBatch{},
		&models.PropRecommendationRecord{},
	); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	// Connect to Redis; the cache is optional for local single-user runs
	var cacheService services.Cache
	if opt, err := redis.ParseURL(cfg.RedisURL); err == nil {
		redisClient := redis.NewClient(opt)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logrus.Warnf("Redis unavailable, running without cache: %v", err)
		} else {
			cacheService = services.NewCacheService(redisClient)
			defer redisClient.Close()
		}
	} else {
		logrus.Warnf("Invalid Redis URL, running without cache: %v", err)
	}

	// Initialize the lines source
	var fetcher services.LinesFetcher
	if cfg.UnderdogEnabled && cfg.UnderdogEndpoint != "" {
		var headers map[string]string
		if cfg.UnderdogAPIKey != "" {
			headers = map[string]string{"X-Api-Key": cfg.UnderdogAPIKey}
		}
		fetcher = providers.NewUnderdogClient(cfg.UnderdogEndpoint, headers, logger)
	}
	linesService := services.NewLinesService(fetcher, cacheService, services.LinesOptions{
		FetchEnabled: cfg.UnderdogEnabled,
		CachePath:    cfg.LinesCachePath,
		CacheTTL:     time.Duration(cfg.LinesCacheTTL) * time.Minute,
		OfflinePath:  cfg.OfflineLinesPath,
		Schedule:     cfg.LinesRefreshCron,
	}, logger)
	if cfg.LinesRefreshEnabled {
		if err := linesService.Start(); err != nil {
			logrus.Errorf("Failed to start lines refresh: %v", err)
		}
		defer linesService.Stop()
	}

	// Initialize services
	analysisService := services.NewAnalysisService(db, cacheService, logger)
	propsService := services.NewPropsService(db, cacheService, linesService, logger)

	var exportService *services.ExportService
	if cfg.ESPNLeagueID > 0 {
		espnClient := providers.NewESPNFantasyClient(cfg.ESPNLeagueID, cfg.ESPNSeason, cfg.ESPNS2, cfg.SWID, logger)
		exportService = services.NewExportService(espnClient, cfg.ExportDir, logger)
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, api.Services{
		Analysis: analysisService,
		Props:    propsService,
		Lines:    linesService,
		Export:   exportService,
	}, cfg)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
