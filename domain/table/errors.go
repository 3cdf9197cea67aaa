package table

import (
	"fmt"

	"csvdash/domain/core"
)

// ParseFailure records a cell that could not be coerced to its column's role.
// The cell is treated as missing; a ParseFailure is informational, never fatal.
type ParseFailure struct {
	Column string `json:"column"`
	Row    int    `json:"row"`
	Raw    string `json:"raw"`
	Role   Role   `json:"role"`
}

func (p ParseFailure) Error() string {
	return fmt.Sprintf("row %d column %q: %q is not %s", p.Row, p.Column, p.Raw, p.Role)
}

func (p ParseFailure) Unwrap() error { return core.ErrParseFailure }

// CountByColumn aggregates failures per column.
func CountByColumn(failures []ParseFailure) map[string]int {
	counts := make(map[string]int)
	for _, f := range failures {
		counts[f.Column]++
	}
	return counts
}
