// Package axis computes, from a role assignment alone, which columns may
// fill each axis of each chart type and validates user selections.
package axis

import (
	"fmt"
	"strings"
	"unicode"

	"csvdash/domain/chart"
	"csvdash/domain/core"
	"csvdash/domain/table"
)

// Candidates returns the legal column choices per axis for ct. X axes accept
// temporal and categorical columns; unclassified text columns are excluded
// because unbounded cardinality makes unreadable axes. Y axes accept numeric
// columns. Candlestick X accepts temporal columns only.
func Candidates(roles table.Roles, ct chart.ChartType) (chart.Candidates, error) {
	c := chart.Candidates{Type: ct}
	switch ct {
	case chart.ChartTypeBar, chart.ChartTypeLine, chart.ChartTypeScatter:
		c.X = xColumns(roles)
		c.Y = roles.Columns(table.RoleNumeric)
	case chart.ChartTypePie:
		c.Labels = xColumns(roles)
		c.Values = roles.Columns(table.RoleNumeric)
	case chart.ChartTypeCandlestick:
		c.X = roles.Columns(table.RoleTemporal)
		if ohlc, ok := ResolveOHLC(roles); ok {
			c.OHLC = ohlc
		}
	default:
		return c, fmt.Errorf("%w: %q", core.ErrUnsupportedChart, ct)
	}
	return c, nil
}

func xColumns(roles table.Roles) []string {
	var out []string
	for _, cr := range roles {
		if cr.Role == table.RoleTemporal || cr.Role == table.RoleCategorical {
			out = append(out, cr.Name)
		}
	}
	return out
}

// ResolveOHLC scans numeric columns, in column order, for the whole-word
// tokens open, high, low and close. The first match per role wins and the
// four roles must land on distinct columns.
func ResolveOHLC(roles table.Roles) (*chart.OHLC, bool) {
	found := map[string]string{}
	used := map[string]bool{}
	for _, name := range roles.Columns(table.RoleNumeric) {
		tokens := Tokenize(name)
		for _, role := range ohlcRoles {
			if _, done := found[role]; done || used[name] {
				continue
			}
			if tokens[role] {
				found[role] = name
				used[name] = true
			}
		}
	}
	if len(found) != len(ohlcRoles) {
		return nil, false
	}
	return &chart.OHLC{
		Open:  found["open"],
		High:  found["high"],
		Low:   found["low"],
		Close: found["close"],
	}, true
}

var ohlcRoles = []string{"open", "high", "low", "close"}

// Tokenize splits a column name into lower-case words on any non-alphanumeric
// rune, on lower-to-upper case transitions ("AdjClose" -> adj, close) and
// before the last capital of an upper-case run ("HIGHPrice" -> high, price).
func Tokenize(name string) map[string]bool {
	tokens := map[string]bool{}
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens[strings.ToLower(b.String())] = true
			b.Reset()
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		var prev, next rune
		if i > 0 {
			prev = runes[i-1]
		}
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			b.WriteRune(r)
		case unicode.IsUpper(r) && unicode.IsUpper(prev) && unicode.IsLower(next):
			flush()
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// CandlestickEligible reports whether a temporal column exists and all four
// OHLC roles resolve to distinct numeric columns.
func CandlestickEligible(roles table.Roles) bool {
	if len(roles.Columns(table.RoleTemporal)) == 0 {
		return false
	}
	_, ok := ResolveOHLC(roles)
	return ok
}

// OfferedTypes lists the chart types to present: the four basic types, plus
// candlestick when eligible.
func OfferedTypes(roles table.Roles) []chart.ChartType {
	out := append([]chart.ChartType(nil), chart.BasicTypes...)
	if CandlestickEligible(roles) {
		out = append(out, chart.ChartTypeCandlestick)
	}
	return out
}
