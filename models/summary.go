package models

import "time"

// SystemSummary holds row counts for the whole service (refreshed periodically, single row)
type SystemSummary struct {
	ID                   uint      `gorm:"primaryKey" json:"-"`
	TotalCities          int64     `gorm:"not null;default:0" json:"total_cities"`
	TotalMeasurements    int64     `gorm:"not null;default:0" json:"total_measurements"`
	ArchivedMeasurements int64     `gorm:"not null;default:0" json:"archived_measurements"`
	TotalStatistics      int64     `gorm:"not null;default:0" json:"total_statistics"`
	DatabaseSizeMB       float64   `gorm:"not null;default:0" json:"database_size_mb"` // Only known for sqlite
	LastUpdatedAt        time.Time `gorm:"not null" json:"last_updated_at"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"-"`
}
