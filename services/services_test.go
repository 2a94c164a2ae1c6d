package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"weather-api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// t0 is the reference "now" used by the Kharkiv scenario
var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(t.TempDir(), "weather.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// seedKharkiv creates Kharkiv with readings at T0 (10), T0-1h (1) and T0-2h (12)
func seedKharkiv(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	ctx := context.Background()

	city, err := NewCityDirectory(db).Create(ctx, "Kharkiv")
	require.NoError(t, err)

	store := NewMeasurementStore(db)
	for _, m := range []models.Measurement{
		{CityID: city.ID, Timestamp: t0, Temperature: 10},
		{CityID: city.ID, Timestamp: t0.Add(-time.Hour), Temperature: 1},
		{CityID: city.ID, Timestamp: t0.Add(-2 * time.Hour), Temperature: 12},
	} {
		m := m
		require.NoError(t, store.Insert(ctx, &m))
	}
	return city.ID
}
