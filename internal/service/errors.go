package service

import (
	"errors"
	"fmt"
)

// Kind sentinels. Callers branch on these with errors.Is; the specific
// errors below wrap them so both levels stay distinguishable.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAgentUnavailable  = errors.New("agent unavailable")
)

var (
	ErrCarBrandNotFound  = fmt.Errorf("car brand %w", ErrNotFound)
	ErrCarModelNotFound  = fmt.Errorf("car model %w", ErrNotFound)
	ErrTyreBrandNotFound = fmt.Errorf("tyre brand %w", ErrNotFound)
	ErrTyreNotFound      = fmt.Errorf("tyre %w", ErrNotFound)
	ErrOrderNotFound     = fmt.Errorf("order %w", ErrNotFound)
	ErrSessionNotFound   = fmt.Errorf("chat session %w", ErrNotFound)

	ErrBrandNameTaken = fmt.Errorf("%w: brand name already exists", ErrConflict)
	ErrDuplicateSKU   = fmt.Errorf("%w: tyre with this brand, model and size already exists", ErrConflict)
	ErrBrandHasModels = fmt.Errorf("%w: car brand still has models", ErrConflict)
	ErrBrandHasTyres  = fmt.Errorf("%w: tyre brand still has tyres", ErrConflict)
)

// validationf builds a ValidationError with a caller-facing message.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
