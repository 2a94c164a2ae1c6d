package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"weather-api/models"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// SummaryService keeps the single SystemSummary row up to date
type SummaryService struct {
	db        *gorm.DB
	dbPath    string // sqlite file, empty for server databases
	interval  time.Duration
	scheduler *gocron.Scheduler
}

func NewSummaryService(db *gorm.DB, dbPath string, interval time.Duration) *SummaryService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SummaryService{
		db:        db,
		dbPath:    dbPath,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start refreshes immediately, then on every interval
func (s *SummaryService) Start() error {
	slog.Info("Summary service started", "interval", s.interval)

	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.Refresh(ctx); err != nil {
			slog.Error("Summary refresh failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *SummaryService) Stop() {
	s.scheduler.Stop()
	slog.Info("Summary service stopped")
}

// Refresh recounts all tables and upserts the summary row
func (s *SummaryService) Refresh(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	var summary models.SystemSummary
	if err := db.Model(&models.City{}).Count(&summary.TotalCities).Error; err != nil {
		return fmt.Errorf("count cities: %w", err)
	}
	if err := db.Model(&models.Measurement{}).Count(&summary.TotalMeasurements).Error; err != nil {
		return fmt.Errorf("count measurements: %w", err)
	}
	if err := db.Model(&models.Measurement{}).Where("is_archived = ?", true).Count(&summary.ArchivedMeasurements).Error; err != nil {
		return fmt.Errorf("count archived measurements: %w", err)
	}
	if err := db.Model(&models.Statistic{}).Count(&summary.TotalStatistics).Error; err != nil {
		return fmt.Errorf("count statistics: %w", err)
	}

	if s.dbPath != "" {
		if fileInfo, err := os.Stat(s.dbPath); err == nil {
			summary.DatabaseSizeMB = float64(fileInfo.Size()) / (1024 * 1024)
		} else {
			slog.Warn("Cannot stat database file", "path", s.dbPath, "error", err)
		}
	}
	summary.LastUpdatedAt = time.Now().UTC()

	var existing models.SystemSummary
	err := db.First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(&summary).Error; err != nil {
			return fmt.Errorf("create summary: %w", err)
		}
	case err == nil:
		if err := db.Model(&existing).Updates(map[string]interface{}{
			"total_cities":          summary.TotalCities,
			"total_measurements":    summary.TotalMeasurements,
			"archived_measurements": summary.ArchivedMeasurements,
			"total_statistics":      summary.TotalStatistics,
			"database_size_mb":      summary.DatabaseSizeMB,
			"last_updated_at":       summary.LastUpdatedAt,
		}).Error; err != nil {
			return fmt.Errorf("update summary: %w", err)
		}
	default:
		return fmt.Errorf("query summary: %w", err)
	}

	slog.Debug("Summary updated",
		"cities", summary.TotalCities,
		"measurements", summary.TotalMeasurements,
		"archived", summary.ArchivedMeasurements,
		"statistics", summary.TotalStatistics,
	)
	return nil
}

// Current returns the stored summary
func (s *SummaryService) Current(ctx context.Context) (*models.SystemSummary, error) {
	var summary models.SystemSummary
	if err := s.db.WithContext(ctx).First(&summary).Error; err != nil {
		return nil, fmt.Errorf("get summary: %w", notFound(err))
	}
	return &summary, nil
}
