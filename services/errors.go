package services

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no city, measurement or statistic matches
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert would duplicate an existing identity
	ErrConflict = errors.New("already exists")
	// ErrConcurrencyConflict is returned when a write matched no row although the row still exists
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// notFound maps gorm's record-not-found error onto ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
