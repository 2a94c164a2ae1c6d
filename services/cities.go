package services

import (
	"context"
	"fmt"
	"strings"

	"weather-api/models"

	"gorm.io/gorm"
)

// CityDirectory maps city names to ids and manages city records.
// Name matching is case-insensitive everywhere.
type CityDirectory struct {
	db *gorm.DB
}

func NewCityDirectory(db *gorm.DB) *CityDirectory {
	return &CityDirectory{db: db}
}

// Resolve returns the id of the city called name
func (d *CityDirectory) Resolve(ctx context.Context, name string) (uint, error) {
	var city models.City
	err := d.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Order("id").
		First(&city).Error
	if err != nil {
		return 0, fmt.Errorf("resolve city %q: %w", name, notFound(err))
	}
	return city.ID, nil
}

func (d *CityDirectory) Create(ctx context.Context, name string) (*models.City, error) {
	city := models.City{Name: name}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.City{}).Where("LOWER(name) = ?", strings.ToLower(name)).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConflict
		}
		return tx.Create(&city).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create city %q: %w", name, err)
	}
	return &city, nil
}

func (d *CityDirectory) Get(ctx context.Context, id uint) (*models.City, error) {
	var city models.City
	if err := d.db.WithContext(ctx).First(&city, id).Error; err != nil {
		return nil, fmt.Errorf("get city %d: %w", id, notFound(err))
	}
	return &city, nil
}

func (d *CityDirectory) List(ctx context.Context) ([]models.City, error) {
	cities := []models.City{}
	if err := d.db.WithContext(ctx).Order("id").Find(&cities).Error; err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return cities, nil
}

// Update renames a city. The new name must not belong to another city.
// A write that touches no row is re-checked against the table to tell a
// missing city from a lost concurrent update.
func (d *CityDirectory) Update(ctx context.Context, id uint, name string) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.City{}).
			Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), id).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrConflict
		}

		result := tx.Model(&models.City{}).Where("id = ?", id).Update("name", name)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		exists, err := d.exists(tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConcurrencyConflict
	})
	if err != nil {
		return fmt.Errorf("update city %d: %w", id, err)
	}
	return nil
}

// Delete removes the city together with its measurements and statistics
func (d *CityDirectory) Delete(ctx context.Context, id uint) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var city models.City
		if err := tx.First(&city, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("city_id = ?", id).Delete(&models.Statistic{}).Error; err != nil {
			return err
		}
		if err := tx.Where("city_id = ?", id).Delete(&models.Measurement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&city).Error
	})
	if err != nil {
		return fmt.Errorf("delete city %d: %w", id, err)
	}
	return nil
}

func (d *CityDirectory) exists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.Model(&models.City{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

