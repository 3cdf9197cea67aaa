package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainchart "csvdash/domain/chart"
	"csvdash/domain/table"
	"csvdash/ports"
)

var _ ports.ChartRenderer = (*PNGRenderer)(nil)

func series(role, column string, kind table.Role, values ...table.Value) domainchart.Series {
	return domainchart.Series{Role: role, Column: column, Kind: kind, Values: values}
}

func nums(fs ...float64) []table.Value {
	out := make([]table.Value, len(fs))
	for i, f := range fs {
		out[i] = table.NewNumericValue(f)
	}
	return out
}

func strs(ss ...string) []table.Value {
	out := make([]table.Value, len(ss))
	for i, s := range ss {
		out[i] = table.NewStringValue(s)
	}
	return out
}

func days(n int) []table.Value {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]table.Value, n)
	for i := range out {
		out[i] = table.NewTimestampValue(start.AddDate(0, 0, i))
	}
	return out
}

func renderPNG(t *testing.T, spec *domainchart.Spec) {
	t.Helper()
	r := NewPNGRenderer(640, 320, nil)
	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), spec, &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
}

func TestRenderBar(t *testing.T) {
	renderPNG(t, &domainchart.Spec{
		Type: domainchart.ChartTypeBar, Title: "Amount by Category", XTitle: "Category", YTitle: "Amount", Rows: 4,
		Series: []domainchart.Series{
			series("x", "Category", table.RoleCategorical, strs("A", "B", "A", "C")...),
			series("y", "Amount", table.RoleNumeric, nums(1, 2, 3, 4)...),
		},
	})
}

func TestRenderBarFlatValues(t *testing.T) {
	renderPNG(t, &domainchart.Spec{
		Type: domainchart.ChartTypeBar, Rows: 2,
		Series: []domainchart.Series{
			series("x", "Category", table.RoleCategorical, strs("A", "B")...),
			series("y", "Amount", table.RoleNumeric, nums(0, 0)...),
		},
	})
}

func TestRenderLineTemporal(t *testing.T) {
	renderPNG(t, &domainchart.Spec{
		Type: domainchart.ChartTypeLine, Rows: 5,
		Series: []domainchart.Series{
			series("x", "Date", table.RoleTemporal, days(5)...),
			series("y", "Close", table.RoleNumeric, nums(10, 11, 9, 12, 13)...),
		},
	})
}

func TestRenderScatterCategoricalSinglePoint(t *testing.T) {
	renderPNG(t, &domainchart.Spec{
		Type: domainchart.ChartTypeScatter, Rows: 1,
		Series: []domainchart.Series{
			series("x", "Category", table.RoleCategorical, strs("A")...),
			series("y", "Amount", table.RoleNumeric, nums(5)...),
		},
	})
}

func TestRenderPie(t *testing.T) {
	renderPNG(t, &domainchart.Spec{
		Type: domainchart.ChartTypePie, Rows: 3,
		Slices: []domainchart.Slice{{Label: "A", Value: 3}, {Label: "B", Value: 5}, {Label: "C", Value: 0}},
	})
}

func TestRenderCandlestick(t *testing.T) {
	renderPNG(t, &domainchart.Spec{
		Type: domainchart.ChartTypeCandlestick, Rows: 3, YTitle: "Price",
		Series: []domainchart.Series{
			series("x", "Date", table.RoleTemporal, days(3)...),
			series("open", "Open", table.RoleNumeric, nums(10, 11, 12)...),
			series("high", "High", table.RoleNumeric, nums(12, 13, 14)...),
			series("low", "Low", table.RoleNumeric, nums(9, 10, 11)...),
			series("close", "Close", table.RoleNumeric, nums(11, 12, 13)...),
		},
	})
}

func TestRenderErrors(t *testing.T) {
	r := NewPNGRenderer(640, 320, nil)
	var buf bytes.Buffer

	err := r.Render(context.Background(), &domainchart.Spec{Type: domainchart.ChartTypePie}, &buf)
	assert.Error(t, err)

	err = r.Render(context.Background(), &domainchart.Spec{Type: "radar"}, &buf)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = r.Render(ctx, &domainchart.Spec{Type: domainchart.ChartTypeBar}, &buf)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, "image/png", r.ContentType())
}
