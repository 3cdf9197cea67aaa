package chart

import (
	"fmt"
	"strings"

	"csvdash/domain/core"
)

// MissingDataError reports that no column can fill a required role.
type MissingDataError struct {
	Chart ChartType
	Role  string
	Need  string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("%s chart needs a %s column for %s; none available", e.Chart, e.Need, e.Role)
}

func (e *MissingDataError) Unwrap() error { return core.ErrMissingData }

// AxisSelectionError reports a selected column outside its candidate set.
type AxisSelectionError struct {
	Chart   ChartType
	Field   string
	Column  string
	Allowed []string
}

func (e *AxisSelectionError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s chart: %s not selected (allowed: %s)", e.Chart, e.Field, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("%s chart: %q is not a valid %s (allowed: %s)", e.Chart, e.Column, e.Field, strings.Join(e.Allowed, ", "))
}

func (e *AxisSelectionError) Unwrap() error { return core.ErrInvalidAxisSelection }
