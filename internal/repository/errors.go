package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by lookups that match no row or key.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a booking overlaps an active one.
	ErrConflict = errors.New("conflicting record")
)

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
