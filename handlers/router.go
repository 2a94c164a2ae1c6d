package handlers

import (
	"log/slog"
	"time"

	"weather-api/cache"
	"weather-api/metrics"
	"weather-api/middleware"
	"weather-api/services"

	"github.com/gin-gonic/gin"
)

// Services bundles the domain components the API dispatches to
type Services struct {
	Cities       *services.CityDirectory
	Measurements *services.MeasurementStore
	Statistics   *services.StatisticsAggregator
	Summary      *services.SummaryService
}

type RouterOptions struct {
	Cache       cache.Cache
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitLock     time.Duration
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	if opts.Cache == nil {
		opts.Cache = cache.NewNoop()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.RateLimiter == nil {
		opts.RateLimiter = middleware.NewRateLimiter()
	}
	if opts.RateLimitRequests <= 0 {
		opts.RateLimitRequests = 60
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Minute
	}
	if opts.RateLimitLock <= 0 {
		opts.RateLimitLock = 5 * time.Minute
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(opts.Logger, opts.Metrics))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	limit := opts.RateLimiter.Middleware(opts.RateLimitRequests, opts.RateLimitWindow, opts.RateLimitLock)

	cities := NewCityHandler(svc.Cities)
	measurements := NewMeasurementHandler(svc.Cities, svc.Measurements, opts.Cache)
	statistics := NewStatisticsHandler(svc.Cities, svc.Statistics, opts.Cache, opts.Metrics)

	api := router.Group("/api")
	{
		// Cities
		api.GET("/cities", cities.GetCities)
		api.GET("/cities/:id", cities.GetCity)
		api.POST("/cities", limit, cities.CreateCity)
		api.PUT("/cities/:id", limit, cities.UpdateCity)
		api.DELETE("/cities/:id", limit, cities.DeleteCity)

		// Measurements
		api.GET("/measurements", measurements.GetMeasurements)
		api.GET("/measurements/:city/latest", measurements.GetLastMeasurement)
		api.GET("/measurements/:city/history", measurements.GetCityMeasurements)
		api.GET("/measurements/:city/at/:timestamp", measurements.GetMeasurement)
		api.POST("/measurements/:city/at/:timestamp", limit, measurements.CreateMeasurement)
		api.PUT("/measurements/:city/at/:timestamp", limit, measurements.UpdateMeasurement)
		api.DELETE("/measurements/:city/at/:timestamp", limit, measurements.DeleteMeasurement)
		api.PUT("/measurements/:city/archive/:from/:to", limit, measurements.ArchiveMeasurements)

		// Statistics
		api.GET("/statistics", statistics.GetStatistics)
		api.GET("/statistics/:id", statistics.GetStatistic)
		api.POST("/statistics/:city", limit, statistics.CreateStatistic)
		api.POST("/statistics/:city/:from/:to", limit, statistics.CreateStatisticForPeriod)
		api.DELETE("/statistics/:id", limit, statistics.DeleteStatistic)
	}

	if svc.Summary != nil {
		summary := NewSummaryHandler(svc.Summary)
		api.GET("/system/summary", summary.GetSystemSummary)
	}

	return router
}
