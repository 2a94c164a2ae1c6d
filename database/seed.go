package database

import (
	"log/slog"
	"time"

	"weather-api/models"

	"gorm.io/gorm"
)

// Seed inserts the demo cities and readings when both tables are empty
func Seed(db *gorm.DB) error {
	var cityCount, measurementCount int64
	if err := db.Model(&models.City{}).Count(&cityCount).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Measurement{}).Count(&measurementCount).Error; err != nil {
		return err
	}
	if cityCount > 0 || measurementCount > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		cities := []models.City{
			{Name: "Kharkiv"},
			{Name: "Dnipro"},
			{Name: "Poltava"},
		}
		if err := tx.Create(&cities).Error; err != nil {
			return err
		}

		kharkiv, dnipro := cities[0].ID, cities[1].ID
		now := time.Now().UTC()
		measurements := []models.Measurement{
			{CityID: kharkiv, Temperature: 10, Timestamp: now},
			{CityID: kharkiv, Temperature: 1, Timestamp: now.Add(-1 * time.Hour)},
			{CityID: kharkiv, Temperature: 12, Timestamp: now.Add(-2 * time.Hour)},
			{CityID: dnipro, Temperature: 4, Timestamp: now.Add(-15 * time.Hour)},
			{CityID: dnipro, Temperature: 6, Timestamp: now.Add(-8 * time.Hour)},
			{CityID: dnipro, Temperature: -1, Timestamp: now.Add(-12 * time.Hour)},
		}
		if err := tx.Create(&measurements).Error; err != nil {
			return err
		}

		slog.Info("Seeded demo data", "cities", len(cities), "measurements", len(measurements))
		return nil
	})
}
