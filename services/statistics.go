package services

import (
	"context"
	"fmt"
	"time"

	"weather-api/models"

	"gorm.io/gorm"
)

// TimeWindow is a closed interval [From, To]
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// StatisticFilter narrows List. Zero values mean "no restriction".
type StatisticFilter struct {
	CityID *uint
	Window *TimeWindow
}

// StatisticsAggregator computes and stores temperature summaries
type StatisticsAggregator struct {
	db *gorm.DB
}

func NewStatisticsAggregator(db *gorm.DB) *StatisticsAggregator {
	return &StatisticsAggregator{db: db}
}

// Compute summarizes the city's non-archived readings and persists the result.
//
// Without a window the statistic spans from the city's earliest reading, archived
// or not, to its latest non-archived reading. Archived readings never enter the
// averages. The read and the insert share one transaction.
func (a *StatisticsAggregator) Compute(ctx context.Context, cityID uint, window *TimeWindow) (*models.Statistic, error) {
	var stat *models.Statistic

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("city_id = ? AND is_archived = ?", cityID, false)
		if window != nil {
			query = query.Where("timestamp >= ? AND timestamp <= ?", window.From.UTC(), window.To.UTC())
		}

		var measurements []models.Measurement
		if err := query.Order("timestamp").Find(&measurements).Error; err != nil {
			return err
		}
		if len(measurements) == 0 {
			return ErrNotFound
		}

		stat = summarize(cityID, measurements)

		if window != nil {
			stat.FromTime = window.From.UTC()
			stat.ToTime = window.To.UTC()
		} else {
			var first models.Measurement
			if err := tx.Where("city_id = ?", cityID).Order("timestamp").First(&first).Error; err != nil {
				return err
			}
			stat.FromTime = first.Timestamp
			stat.ToTime = stat.LastMeasurementTime
		}

		return tx.Create(stat).Error
	})
	if err != nil {
		return nil, fmt.Errorf("compute statistic for city %d: %w", cityID, err)
	}
	return stat, nil
}

// summarize expects at least one measurement
func summarize(cityID uint, measurements []models.Measurement) *models.Statistic {
	last := measurements[0]
	minTemp, maxTemp := last.Temperature, last.Temperature
	sum := 0

	for _, m := range measurements {
		sum += m.Temperature
		if m.Temperature < minTemp {
			minTemp = m.Temperature
		}
		if m.Temperature > maxTemp {
			maxTemp = m.Temperature
		}
		if m.Timestamp.After(last.Timestamp) {
			last = m
		}
	}

	return &models.Statistic{
		CityID:                     cityID,
		AvgTemperature:             float64(sum) / float64(len(measurements)),
		MaxTemperature:             maxTemp,
		MinTemperature:             minTemp,
		LastMeasurementTemperature: last.Temperature,
		LastMeasurementTime:        last.Timestamp.UTC(),
	}
}

func (a *StatisticsAggregator) Get(ctx context.Context, id uint) (*models.Statistic, error) {
	var stat models.Statistic
	if err := a.db.WithContext(ctx).First(&stat, id).Error; err != nil {
		return nil, fmt.Errorf("get statistic %d: %w", id, notFound(err))
	}
	return &stat, nil
}

// List returns statistics ordered by id. With a window, only statistics lying
// fully inside it are kept and an empty result is ErrNotFound.
func (a *StatisticsAggregator) List(ctx context.Context, filter StatisticFilter) ([]models.Statistic, error) {
	query := a.db.WithContext(ctx).Model(&models.Statistic{})
	if filter.CityID != nil {
		query = query.Where("city_id = ?", *filter.CityID)
	}
	if filter.Window != nil {
		query = query.Where("from_time >= ? AND to_time <= ?", filter.Window.From.UTC(), filter.Window.To.UTC())
	}

	stats := []models.Statistic{}
	if err := query.Order("id").Find(&stats).Error; err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	if filter.Window != nil && len(stats) == 0 {
		return nil, fmt.Errorf("list statistics: %w", ErrNotFound)
	}
	return stats, nil
}

func (a *StatisticsAggregator) Delete(ctx context.Context, id uint) error {
	result := a.db.WithContext(ctx).Delete(&models.Statistic{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete statistic %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete statistic %d: %w", id, ErrNotFound)
	}
	return nil
}
