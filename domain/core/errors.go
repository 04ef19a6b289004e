package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrRunNotFound        = fmt.Errorf("%w: run", ErrNotFound)
	ErrProjectionNotFound = fmt.Errorf("%w: projection", ErrNotFound)
	ErrScenarioNotFound   = fmt.Errorf("%w: scenario", ErrNotFound)

	// Fatal input errors - these halt the pipeline
	ErrInsufficientData = errors.New("insufficient data for trend estimation")
	ErrDegenerateSeries = fmt.Errorf("%w: all observations share one time coordinate", ErrInsufficientData)

	// Configuration errors
	ErrInvalidConfig      = errors.New("invalid scenario configuration")
	ErrDuplicateSeverity  = fmt.Errorf("%w: severity ranks must form a total order", ErrInvalidConfig)
	ErrUnrankedCorrection = fmt.Errorf("%w: correction table violates severity ordering", ErrInvalidConfig)

	// Reconciliation errors
	ErrRankingUncorrectable = errors.New("scenario ranking still violated after correction")
	ErrEmptyForecast        = errors.New("mechanistic forecast contains no points for scenario")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsFatalInputError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
