package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather-api/cache"
	"weather-api/config"
	"weather-api/database"
	"weather-api/handlers"
	"weather-api/logging"
	"weather-api/metrics"
	"weather-api/middleware"
	"weather-api/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, "weather-api")
	slog.SetDefault(logger)

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// File size is only meaningful for a local sqlite database
	dbPath := ""
	if cfg.DBDriver == "sqlite" && cfg.DBDSN == "" {
		dbPath = cfg.DBPath
	}
	summary := services.NewSummaryService(db, dbPath, cfg.SummaryInterval)
	if err := summary.Start(); err != nil {
		logger.Error("Failed to start summary service", "error", err)
		os.Exit(1)
	}
	defer summary.Stop()

	// Start rate limit cleanup goroutine
	limiter := middleware.NewRateLimiter()
	go limiter.RunCleanup(ctx, time.Minute)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.Services{
		Cities:       services.NewCityDirectory(db),
		Measurements: services.NewMeasurementStore(db),
		Statistics:   services.NewStatisticsAggregator(db),
		Summary:      summary,
	}, handlers.RouterOptions{
		Cache:             cache.Instrumented(cache.NewTTL(cfg.CacheTTL), m),
		Metrics:           m,
		Logger:            logger,
		RateLimiter:       limiter,
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		RateLimitLock:     cfg.RateLimitLock,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
