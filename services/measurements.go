package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"weather-api/models"

	"gorm.io/gorm"
)

// MeasurementUpdate holds the writable fields of a measurement.
// Archived can only raise the flag; an archived reading stays archived.
type MeasurementUpdate struct {
	Temperature int
	Archived    bool
}

// MeasurementStore manages temperature readings keyed by (city, timestamp).
// All timestamps are normalized to UTC.
type MeasurementStore struct {
	db *gorm.DB
}

func NewMeasurementStore(db *gorm.DB) *MeasurementStore {
	return &MeasurementStore{db: db}
}

// List returns every measurement ordered by city and time
func (s *MeasurementStore) List(ctx context.Context) ([]models.Measurement, error) {
	measurements := []models.Measurement{}
	if err := s.db.WithContext(ctx).Order("city_id, timestamp").Find(&measurements).Error; err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	return measurements, nil
}

func (s *MeasurementStore) Get(ctx context.Context, cityID uint, ts time.Time) (*models.Measurement, error) {
	var m models.Measurement
	err := s.db.WithContext(ctx).
		Where("city_id = ? AND timestamp = ?", cityID, ts.UTC()).
		First(&m).Error
	if err != nil {
		return nil, fmt.Errorf("get measurement %d@%s: %w", cityID, ts.UTC().Format(time.RFC3339Nano), notFound(err))
	}
	return &m, nil
}

// Latest returns the reading with the greatest timestamp for the city.
// The composite key rules out two readings sharing that timestamp.
func (s *MeasurementStore) Latest(ctx context.Context, cityID uint) (*models.Measurement, error) {
	var m models.Measurement
	err := s.db.WithContext(ctx).
		Where("city_id = ?", cityID).
		Order("timestamp DESC").
		First(&m).Error
	if err != nil {
		return nil, fmt.Errorf("latest measurement for city %d: %w", cityID, notFound(err))
	}
	return &m, nil
}

// History returns the city's readings oldest first
func (s *MeasurementStore) History(ctx context.Context, cityID uint) ([]models.Measurement, error) {
	var measurements []models.Measurement
	err := s.db.WithContext(ctx).
		Where("city_id = ?", cityID).
		Order("timestamp").
		Find(&measurements).Error
	if err != nil {
		return nil, fmt.Errorf("measurement history for city %d: %w", cityID, err)
	}
	if len(measurements) == 0 {
		return nil, fmt.Errorf("measurement history for city %d: %w", cityID, ErrNotFound)
	}
	return measurements, nil
}

// Insert stores a new reading. An existing (city, timestamp) pair is a conflict,
// never an overwrite.
func (s *MeasurementStore) Insert(ctx context.Context, m *models.Measurement) error {
	m.Timestamp = m.Timestamp.UTC()
	m.City = nil

	db := s.db.WithContext(ctx)
	var cities int64
	if err := db.Model(&models.City{}).Where("id = ?", m.CityID).Count(&cities).Error; err != nil {
		return fmt.Errorf("insert measurement: %w", err)
	}
	if cities == 0 {
		return fmt.Errorf("insert measurement: city %d: %w", m.CityID, ErrNotFound)
	}

	if err := db.Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("insert measurement: %w", ErrConflict)
		}
		exists, existsErr := s.exists(db, m.CityID, m.Timestamp)
		if existsErr == nil && exists {
			return fmt.Errorf("insert measurement: %w", ErrConflict)
		}
		return fmt.Errorf("insert measurement: %w", err)
	}
	return nil
}

// Update overwrites the temperature and may archive the reading
func (s *MeasurementStore) Update(ctx context.Context, cityID uint, ts time.Time, fields MeasurementUpdate) error {
	ts = ts.UTC()
	db := s.db.WithContext(ctx)

	result := db.Model(&models.Measurement{}).
		Where("city_id = ? AND timestamp = ?", cityID, ts).
		Updates(map[string]interface{}{
			"temperature": fields.Temperature,
			"is_archived": gorm.Expr("is_archived OR ?", fields.Archived),
		})
	if result.Error != nil {
		return fmt.Errorf("update measurement: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	exists, err := s.exists(db, cityID, ts)
	if err != nil {
		return fmt.Errorf("update measurement: %w", err)
	}
	if !exists {
		return fmt.Errorf("update measurement: %w", ErrNotFound)
	}
	return fmt.Errorf("update measurement: %w", ErrConcurrencyConflict)
}

// Archive flags every reading of the city inside [from, to]. Rows that are already
// archived still count as matched, so repeating the call changes nothing.
func (s *MeasurementStore) Archive(ctx context.Context, cityID uint, from, to time.Time) (int64, error) {
	var matched int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inRange := tx.Model(&models.Measurement{}).
			Where("city_id = ? AND timestamp >= ? AND timestamp <= ?", cityID, from.UTC(), to.UTC())
		if err := inRange.Session(&gorm.Session{}).Count(&matched).Error; err != nil {
			return err
		}
		if matched == 0 {
			return ErrNotFound
		}
		return inRange.Session(&gorm.Session{}).Update("is_archived", true).Error
	})
	if err != nil {
		return 0, fmt.Errorf("archive measurements: %w", err)
	}
	return matched, nil
}

func (s *MeasurementStore) Delete(ctx context.Context, cityID uint, ts time.Time) error {
	result := s.db.WithContext(ctx).
		Where("city_id = ? AND timestamp = ?", cityID, ts.UTC()).
		Delete(&models.Measurement{})
	if result.Error != nil {
		return fmt.Errorf("delete measurement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete measurement: %w", ErrNotFound)
	}
	return nil
}

func (s *MeasurementStore) exists(db *gorm.DB, cityID uint, ts time.Time) (bool, error) {
	var count int64
	err := db.Model(&models.Measurement{}).
		Where("city_id = ? AND timestamp = ?", cityID, ts).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
