package models

import (
	"time"

	"gorm.io/gorm"
)

// City is a named location that measurements are recorded for
type City struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;index" json:"name"`
}

// Measurement is a single temperature reading. CityID and Timestamp form its identity.
type Measurement struct {
	CityID      uint      `gorm:"primaryKey;autoIncrement:false" json:"city_id"`
	Timestamp   time.Time `gorm:"primaryKey;precision:6" json:"timestamp"`
	Temperature int       `gorm:"not null" json:"temperature"`
	IsArchived  bool      `gorm:"not null;default:false" json:"is_archived"` // Archived rows are excluded from statistics

	City *City `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Statistic is an aggregate over a city's non-archived measurements
type Statistic struct {
	ID                         uint      `gorm:"primaryKey" json:"id"`
	CityID                     uint      `gorm:"not null;index" json:"city_id"`
	FromTime                   time.Time `gorm:"not null;precision:6" json:"from_time"`
	ToTime                     time.Time `gorm:"not null;precision:6" json:"to_time"`
	AvgTemperature             float64   `gorm:"not null" json:"avg_temperature"`
	MaxTemperature             int       `gorm:"not null" json:"max_temperature"`
	MinTemperature             int       `gorm:"not null" json:"min_temperature"`
	LastMeasurementTemperature int       `gorm:"not null" json:"last_measurement_temperature"`
	LastMeasurementTime        time.Time `gorm:"not null;precision:6" json:"last_measurement_time"`

	City *City `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Statistic
func (Statistic) TableName() string {
	return "statistics"
}

// AutoMigrate runs database migrations
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&City{},
		&Measurement{},
		&Statistic{},
		&SystemSummary{},
	)
}
