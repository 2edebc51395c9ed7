package services

import (
	"errors"

	"gnsons/internal/repositories"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrTokenInvalid       = errors.New("invalid or expired token")
	ErrSubjectNotFound    = errors.New("token subject not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrTransitionDenied   = errors.New("status transition not allowed")
	ErrTooLarge           = errors.New("payload too large")

	// ErrNotFound and ErrConflict are shared with the storage layer so callers
	// can match either with errors.Is.
	ErrNotFound = repositories.ErrNotFound
	ErrConflict = repositories.ErrVersionConflict
)

// SideEffect records the outcome of a best-effort secondary action. Its
// failure is reported here and never turns the primary operation into an error.
type SideEffect struct {
	Attempted bool  `json:"attempted"`
	Err       error `json:"-"`
}

// OK reports whether the action ran and succeeded.
func (e SideEffect) OK() bool {
	return e.Attempted && e.Err == nil
}

func attempt(fn func() error) SideEffect {
	return SideEffect{Attempted: true, Err: fn()}
}
