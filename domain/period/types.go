package period

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how the filtering window is derived.
type Mode string

const (
	ModeAll         Mode = "All"
	ModeOneMonth    Mode = "1M"
	ModeThreeMonths Mode = "3M"
	ModeSixMonths   Mode = "6M"
	ModeOneYear     Mode = "1Y"
	ModeCustom      Mode = "Custom"
)

// Modes lists every mode in presentation order.
var Modes = []Mode{ModeAll, ModeOneMonth, ModeThreeMonths, ModeSixMonths, ModeOneYear, ModeCustom}

var modeAliases = map[string]Mode{
	"":         ModeAll,
	"all":      ModeAll,
	"1m":       ModeOneMonth,
	"1 month":  ModeOneMonth,
	"3m":       ModeThreeMonths,
	"3 months": ModeThreeMonths,
	"6m":       ModeSixMonths,
	"6 months": ModeSixMonths,
	"1y":       ModeOneYear,
	"1 year":   ModeOneYear,
	"custom":   ModeCustom,
}

// ParseMode accepts mode tokens and their UI labels, case-insensitively.
// An empty string selects All.
func ParseMode(s string) (Mode, error) {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown period mode %q", s)
}

// Months returns the calendar offset of a trailing mode.
func (m Mode) Months() (int, bool) {
	switch m {
	case ModeOneMonth:
		return 1, true
	case ModeThreeMonths:
		return 3, true
	case ModeSixMonths:
		return 6, true
	case ModeOneYear:
		return 12, true
	}
	return 0, false
}

// Selection is the user's period choice.
type Selection struct {
	Anchor string     `json:"anchor"`
	Mode   Mode       `json:"mode"`
	Start  *time.Time `json:"start,omitempty"`
	End    *time.Time `json:"end,omitempty"`
}

// Window is an inclusive [Start, End] time range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t lies in the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

var boundLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseBound parses a custom period bound. Date-only values (YYYY-MM-DD)
// are expanded to the start of the day, or to its last instant when end is
// true, so that a custom end date covers the whole day.
func ParseBound(s string, end bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if d, err := time.Parse("2006-01-02", s); err == nil {
		if end {
			d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &d, nil
	}
	for _, layout := range boundLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid period bound %q (use YYYY-MM-DD or RFC3339)", s)
}
