package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel slog.Level

	DBDriver       string // sqlite, postgres or mysql
	DBDSN          string // Connection string; overrides DBPath for sqlite
	DBPath         string
	DBMaxOpenConns int
	DBMaxIdleConns int
	SeedData       bool

	CacheTTL        time.Duration
	SummaryInterval time.Duration

	// Write endpoints rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitLock     time.Duration
}

// LoadConfig reads .env (if any) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	rateWindow, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}
	rateLock, err := time.ParseDuration(getEnv("RATE_LIMIT_LOCK", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LOCK: %w", err)
	}

	maxOpen, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "0"))
	maxIdle, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "-1"))
	summaryMinutes, _ := strconv.Atoi(getEnv("SUMMARY_INTERVAL_MINUTES", "60"))
	rateRequests, _ := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "60"))
	seed, _ := strconv.ParseBool(getEnv("SEED_DATA", "true"))

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "dev"),
		LogLevel:          level,
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:             os.Getenv("DB_DSN"),
		DBPath:            getEnv("DB_PATH", "./data/weather.db"),
		DBMaxOpenConns:    maxOpen,
		DBMaxIdleConns:    maxIdle,
		SeedData:          seed,
		CacheTTL:          cacheTTL,
		SummaryInterval:   time.Duration(summaryMinutes) * time.Minute,
		RateLimitRequests: rateRequests,
		RateLimitWindow:   rateWindow,
		RateLimitLock:     rateLock,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

// validate checks the settings that would otherwise fail late at first use
func (c *Config) validate() error {
	switch c.AppEnv {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", c.AppEnv)
	}

	switch c.DBDriver {
	case "sqlite":
	case "postgres", "mysql":
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for DB_DRIVER=%s", c.DBDriver)
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite, postgres, mysql)", c.DBDriver)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL cannot be negative")
	}
	if c.SummaryInterval <= 0 {
		return fmt.Errorf("SUMMARY_INTERVAL_MINUTES must be positive")
	}
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	return nil
}
