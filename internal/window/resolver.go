// Package window restricts a classified table to a time window anchored on
// one of its temporal columns.
package window

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"csvdash/domain/core"
	"csvdash/domain/period"
	"csvdash/domain/table"
)

// Resolver computes period windows and filtered views.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger.Named("window")}
}

// Prepare establishes the resolver's precondition for anchor: rows whose
// anchor cell is missing are dropped and the rest are stably sorted
// ascending by anchor. It returns the number of dropped rows.
func (r *Resolver) Prepare(t *table.Table, roles table.Roles, anchor string) (*table.Table, int, error) {
	if err := checkAnchor(t, roles, anchor); err != nil {
		return nil, 0, err
	}
	j, _ := t.ColumnIndex(anchor)

	kept := t.Filter(func(row []table.Value) bool { return row[j].IsTimestamp() })
	dropped := t.NumRows() - kept.NumRows()

	sorted, err := kept.SortedBy(anchor, func(a, b table.Value) bool { return a.Time.Before(b.Time) })
	if err != nil {
		return nil, 0, err
	}
	if dropped > 0 {
		r.logger.Debug("rows without anchor dropped", zap.String("anchor", anchor), zap.Int("rows", dropped))
	}
	return sorted, dropped, nil
}

// Bounds returns the minimum and maximum anchor timestamps. ok is false when
// the anchor has no values.
func Bounds(t *table.Table, anchor string) (lo, hi time.Time, ok bool) {
	col, err := t.Column(anchor)
	if err != nil {
		return lo, hi, false
	}
	for _, v := range col.Values {
		ts, isTime := v.Timestamp()
		if !isTime {
			continue
		}
		if !ok || ts.Before(lo) {
			lo = ts
		}
		if !ok || ts.After(hi) {
			hi = ts
		}
		ok = true
	}
	return lo, hi, ok
}

// Window computes the inclusive window for sel over t's anchor column
// without filtering. t must be prepared for sel.Anchor.
func (r *Resolver) Window(t *table.Table, roles table.Roles, sel period.Selection) (period.Window, error) {
	if err := checkAnchor(t, roles, sel.Anchor); err != nil {
		return period.Window{}, err
	}
	lo, hi, ok := Bounds(t, sel.Anchor)
	if !ok {
		return period.Window{}, fmt.Errorf("%w: anchor %q has no timestamps", core.ErrEmptyTable, sel.Anchor)
	}

	mode := sel.Mode
	if mode == "" {
		mode = period.ModeAll
	}

	switch mode {
	case period.ModeAll:
		return period.Window{Start: lo, End: hi}, nil
	case period.ModeCustom:
		start, end := lo, hi
		if sel.Start != nil {
			start = clamp(*sel.Start, lo, hi)
		}
		if sel.End != nil {
			end = clamp(*sel.End, lo, hi)
		}
		if start.After(end) {
			return period.Window{}, fmt.Errorf("%w: start %s is after end %s",
				core.ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
		}
		return period.Window{Start: start, End: end}, nil
	}

	months, ok := mode.Months()
	if !ok {
		return period.Window{}, fmt.Errorf("%w: unknown period mode %q", core.ErrInvalidRange, mode)
	}
	start := SubtractMonths(hi, months)
	if start.Before(lo) {
		start = lo
	}
	return period.Window{Start: start, End: hi}, nil
}

// Resolve computes the window for sel and the rows of t that fall inside it,
// in t's order. t must be prepared for sel.Anchor; it is never modified.
func (r *Resolver) Resolve(t *table.Table, roles table.Roles, sel period.Selection) (period.Window, *table.Table, error) {
	w, err := r.Window(t, roles, sel)
	if err != nil {
		return period.Window{}, nil, err
	}
	j, _ := t.ColumnIndex(sel.Anchor)
	filtered := t.Filter(func(row []table.Value) bool {
		ts, ok := row[j].Timestamp()
		return ok && w.Contains(ts)
	})
	r.logger.Debug("window resolved",
		zap.String("anchor", sel.Anchor),
		zap.String("mode", string(sel.Mode)),
		zap.Time("start", w.Start),
		zap.Time("end", w.End),
		zap.Int("rows", filtered.NumRows()))
	return w, filtered, nil
}

// SubtractMonths moves t back by n calendar months, clamping the day to the
// last day of the target month (2024-03-31 minus one month is 2024-02-29).
func SubtractMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m-time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clamp(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}

func checkAnchor(t *table.Table, roles table.Roles, anchor string) error {
	if _, ok := t.ColumnIndex(anchor); !ok {
		return core.NewInvalidAnchorError(anchor, "missing")
	}
	if role := roles.Role(anchor); role != table.RoleTemporal {
		return core.NewInvalidAnchorError(anchor, string(role))
	}
	return nil
}
