package chart

import (
	"fmt"
	"strings"

	"csvdash/domain/table"
)

// ChartType enumerates the supported chart kinds
type ChartType string

const (
	ChartTypeBar         ChartType = "bar"
	ChartTypeLine        ChartType = "line"
	ChartTypePie         ChartType = "pie"
	ChartTypeScatter     ChartType = "scatter"
	ChartTypeCandlestick ChartType = "candlestick"
)

// BasicTypes are offered for every table.
var BasicTypes = []ChartType{ChartTypeBar, ChartTypeLine, ChartTypePie, ChartTypeScatter}

// ParseChartType is case-insensitive.
func ParseChartType(s string) (ChartType, error) {
	ct := ChartType(strings.ToLower(strings.TrimSpace(s)))
	switch ct {
	case ChartTypeBar, ChartTypeLine, ChartTypePie, ChartTypeScatter, ChartTypeCandlestick:
		return ct, nil
	}
	return "", fmt.Errorf("unknown chart type %q", s)
}

// Title returns the display name, e.g. "Bar".
func (c ChartType) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// OHLC names the four price columns of a candlestick chart.
type OHLC struct {
	Open  string `json:"open"`
	High  string `json:"high"`
	Low   string `json:"low"`
	Close string `json:"close"`
}

// Columns returns the four names in open, high, low, close order.
func (o OHLC) Columns() []string {
	return []string{o.Open, o.High, o.Low, o.Close}
}

// Request is a user's chart choice. Which fields apply depends on Type.
type Request struct {
	Type     ChartType `json:"type"`
	XAxis    string    `json:"x_axis,omitempty"`
	YAxis    string    `json:"y_axis,omitempty"`
	PieLabel string    `json:"pie_label,omitempty"`
	PieValue string    `json:"pie_value,omitempty"`
	OHLC     *OHLC     `json:"ohlc,omitempty"`
}

// Candidates are the legal column choices per axis for one chart type.
type Candidates struct {
	Type   ChartType `json:"type"`
	X      []string  `json:"x,omitempty"`
	Y      []string  `json:"y,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	Values []string  `json:"values,omitempty"`
	OHLC   *OHLC     `json:"ohlc,omitempty"`
}

// Series binds one column's values to a role in the chart ("x", "y",
// "label", "value", "open", "high", "low", "close").
type Series struct {
	Role   string        `json:"role"`
	Column string        `json:"column"`
	Kind   table.Role    `json:"kind"`
	Values []table.Value `json:"values"`
}

// Slice is one aggregated pie wedge.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Spec is a render-ready, backend-agnostic chart description.
type Spec struct {
	Type   ChartType `json:"type"`
	Title  string    `json:"title"`
	XTitle string    `json:"x_title,omitempty"`
	YTitle string    `json:"y_title,omitempty"`
	Rows   int       `json:"rows"`
	Series []Series  `json:"series"`
	Slices []Slice   `json:"slices,omitempty"`
}

// SeriesByRole returns the series bound to role.
func (s *Spec) SeriesByRole(role string) (Series, bool) {
	for _, ser := range s.Series {
		if ser.Role == role {
			return ser, true
		}
	}
	return Series{}, false
}
