package dataset

import (
	"time"

	"csvdash/domain/core"
	"csvdash/domain/table"
)

// Dataset is one uploaded table together with its classification. It is
// built once per upload and never mutated; every analysis recomputes from
// Typed so repeated filtering cannot drift.
type Dataset struct {
	ID       core.DatasetID `json:"id"`
	Filename string         `json:"filename"`
	FileSize int64          `json:"file_size"`
	LoadedAt time.Time      `json:"loaded_at"`

	// Raw is the table as read, all cells textual or missing.
	Raw *table.Table `json:"-"`
	// Typed holds the same rows with numeric and temporal columns coerced.
	Typed *table.Table `json:"-"`

	Roles         table.Roles    `json:"columns"`
	ParseFailures map[string]int `json:"parse_failures,omitempty"`
}

// RowCount returns the number of rows in the uploaded table.
func (d *Dataset) RowCount() int {
	if d == nil || d.Raw == nil {
		return 0
	}
	return d.Raw.NumRows()
}

// TemporalColumns lists the temporal columns in column order.
func (d *Dataset) TemporalColumns() []string {
	return d.Roles.Columns(table.RoleTemporal)
}
