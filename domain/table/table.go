// Package table holds the immutable tabular model shared by every stage of
// the dashboard pipeline. Operations that change rows return a new Table;
// rows themselves are never written after construction.
package table

import (
	"fmt"
	"sort"

	"csvdash/domain/core"
)

// Table is an ordered sequence of rows over a fixed, ordered set of named columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// Column is a named view over one column's values.
type Column struct {
	Name   string  `json:"name"`
	Role   Role    `json:"role"`
	Values []Value `json:"values"`
}

// NonMissing returns the count of cells holding a value.
func (c Column) NonMissing() int {
	n := 0
	for _, v := range c.Values {
		if !v.IsMissing() {
			n++
		}
	}
	return n
}

// New builds a table. Column names must be unique; short rows are padded
// with missing cells and long rows are rejected.
func New(columns []string, rows [][]Value) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		index[name] = i
	}

	out := make([][]Value, len(rows))
	for i, row := range rows {
		if len(row) > len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, table has %d columns", i, len(row), len(columns))
		}
		r := make([]Value, len(columns))
		copy(r, row)
		out[i] = r
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, index: index, rows: out}, nil
}

// MustNew is New for fixtures; it panics on error.
func MustNew(columns []string, rows [][]Value) *Table {
	t, err := New(columns, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) NumRows() int    { return len(t.rows) }
func (t *Table) NumColumns() int { return len(t.columns) }

// ColumnIndex returns the position of name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the value at row i of column name.
func (t *Table) Cell(i int, name string) Value {
	j, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.rows) {
		return NewMissingValue()
	}
	return t.rows[i][j]
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.columns))
	copy(out, t.rows[i])
	return out
}

// Column returns the values of column name in row order.
func (t *Table) Column(name string) (Column, error) {
	j, ok := t.index[name]
	if !ok {
		return Column{}, fmt.Errorf("%w: %q", core.ErrColumnNotFound, name)
	}
	values := make([]Value, len(t.rows))
	for i, row := range t.rows {
		values[i] = row[j]
	}
	return Column{Name: name, Role: RoleUnclassified, Values: values}, nil
}

// Head returns up to n leading rows.
func (t *Table) Head(n int) [][]Value {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	out := make([][]Value, n)
	for i := 0; i < n; i++ {
		out[i] = t.Row(i)
	}
	return out
}

// Filter returns a table holding the rows for which keep is true, in order.
func (t *Table) Filter(keep func(row []Value) bool) *Table {
	rows := make([][]Value, 0, len(t.rows))
	for _, row := range t.rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return &Table{columns: t.columns, index: t.index, rows: rows}
}

// SortedBy returns a table stably sorted by the given column using less.
func (t *Table) SortedBy(name string, less func(a, b Value) bool) (*Table, error) {
	j, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrColumnNotFound, name)
	}
	rows := make([][]Value, len(t.rows))
	copy(rows, t.rows)
	sort.SliceStable(rows, func(a, b int) bool {
		return less(rows[a][j], rows[b][j])
	})
	return &Table{columns: t.columns, index: t.index, rows: rows}, nil
}

// MapColumns returns a table whose cells are produced by fn for every column
// listed in fns; other columns are shared unchanged.
func (t *Table) MapColumns(fns map[string]func(row int, v Value) Value) *Table {
	rows := make([][]Value, len(t.rows))
	for i, row := range t.rows {
		r := make([]Value, len(row))
		copy(r, row)
		for name, fn := range fns {
			if j, ok := t.index[name]; ok {
				r[j] = fn(i, row[j])
			}
		}
		rows[i] = r
	}
	return &Table{columns: t.columns, index: t.index, rows: rows}
}
