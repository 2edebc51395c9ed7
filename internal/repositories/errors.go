package repositories

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a versioned write lost a race.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)
