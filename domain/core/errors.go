package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Lookup errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)

	// Ingestion errors
	ErrParseFailure = errors.New("cell could not be coerced to the column type")
	ErrNoHeader     = errors.New("input has no header row")

	// Period resolution errors
	ErrInvalidAnchor = errors.New("anchor column is not temporal")
	ErrInvalidRange  = errors.New("custom period start is after end")
	ErrEmptyTable    = errors.New("no rows in working table")

	// Chart errors
	ErrInvalidAxisSelection = errors.New("axis selection outside candidate set")
	ErrMissingData          = errors.New("no columns satisfy chart requirements")
	ErrUnsupportedChart     = errors.New("unsupported chart type")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewInvalidAnchorError(column string, role string) error {
	return fmt.Errorf("%w: %q has role %s", ErrInvalidAnchor, column, role)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPeriodError reports whether err came from period resolution preconditions.
func IsPeriodError(err error) bool {
	return errors.Is(err, ErrInvalidAnchor) ||
		errors.Is(err, ErrInvalidRange)
}

// IsChartError reports whether err is a chart request rejection.
func IsChartError(err error) bool {
	return errors.Is(err, ErrInvalidAxisSelection) ||
		errors.Is(err, ErrMissingData) ||
		errors.Is(err, ErrUnsupportedChart)
}
