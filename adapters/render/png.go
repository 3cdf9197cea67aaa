// Package render draws chart specs as PNG images with go-chart.
package render

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"

	domainchart "csvdash/domain/chart"
	"csvdash/domain/table"
)

const dateLayout = "2006-01-02"

// PNGRenderer implements ports.ChartRenderer.
type PNGRenderer struct {
	width  int
	height int
	logger *zap.Logger
}

// NewPNGRenderer creates a renderer producing width x height images.
func NewPNGRenderer(width, height int, logger *zap.Logger) *PNGRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PNGRenderer{width: width, height: height, logger: logger.Named("render")}
}

// ContentType is the MIME type of the rendered output.
func (r *PNGRenderer) ContentType() string { return "image/png" }

// Render writes spec as a PNG to w.
func (r *PNGRenderer) Render(ctx context.Context, spec *domainchart.Spec, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	var err error
	switch spec.Type {
	case domainchart.ChartTypeBar:
		err = r.renderBar(spec, w)
	case domainchart.ChartTypePie:
		err = r.renderPie(spec, w)
	case domainchart.ChartTypeLine, domainchart.ChartTypeScatter:
		err = r.renderXY(spec, w)
	case domainchart.ChartTypeCandlestick:
		err = r.renderOHLC(spec, w)
	default:
		err = fmt.Errorf("render: unsupported chart type %q", spec.Type)
	}
	if err != nil {
		return fmt.Errorf("render %s chart: %w", spec.Type, err)
	}

	r.logger.Debug("chart rendered",
		zap.String("type", string(spec.Type)),
		zap.Int("rows", spec.Rows),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (r *PNGRenderer) renderBar(spec *domainchart.Spec, w io.Writer) error {
	xs, ys, err := xySeries(spec)
	if err != nil {
		return err
	}
	labels, sums := sumByLabel(xs.Values, ys.Values)
	if len(labels) == 0 {
		return fmt.Errorf("no plottable rows")
	}

	bars := make([]chart.Value, len(labels))
	lo, hi := 0.0, 0.0
	for i, label := range labels {
		bars[i] = chart.Value{Label: label, Value: sums[i]}
		lo, hi = math.Min(lo, sums[i]), math.Max(hi, sums[i])
	}
	if lo == hi {
		hi = lo + 1
	}

	graph := chart.BarChart{
		Title:        spec.Title,
		Width:        r.width,
		Height:       r.height,
		Background:   chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:        chart.YAxis{Name: spec.YTitle, Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}
	return graph.Render(chart.PNG, w)
}

func (r *PNGRenderer) renderPie(spec *domainchart.Spec, w io.Writer) error {
	values := make([]chart.Value, 0, len(spec.Slices))
	for _, s := range spec.Slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: s.Label, Value: s.Value})
	}
	if len(values) == 0 {
		return fmt.Errorf("pie needs at least one positive slice")
	}
	graph := chart.PieChart{
		Title:  spec.Title,
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
	return graph.Render(chart.PNG, w)
}

func (r *PNGRenderer) renderXY(spec *domainchart.Spec, w io.Writer) error {
	xs, ys, err := xySeries(spec)
	if err != nil {
		return err
	}

	style := chart.Style{StrokeWidth: 2}
	if spec.Type == domainchart.ChartTypeScatter {
		style = pointStyle(chart.GetDefaultColor(0))
	}

	graph := chart.Chart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		YAxis:      chart.YAxis{Name: spec.YTitle},
	}

	if xs.Kind == table.RoleTemporal {
		times, values := timePoints(xs.Values, ys.Values)
		if len(times) == 0 {
			return fmt.Errorf("no plottable rows")
		}
		graph.XAxis = chart.XAxis{Name: spec.XTitle, ValueFormatter: chart.TimeValueFormatterWithFormat(dateLayout)}
		graph.XAxis.Range = padTimeRange(times)
		graph.Series = []chart.Series{chart.TimeSeries{Name: ys.Column, XValues: times, YValues: values, Style: style}}
		graph.YAxis.Range = padRange(values)
	} else {
		positions, values, ticks := categoryPoints(xs.Values, ys.Values)
		if len(positions) == 0 {
			return fmt.Errorf("no plottable rows")
		}
		graph.XAxis = chart.XAxis{Name: spec.XTitle, Ticks: ticks}
		graph.Series = []chart.Series{chart.ContinuousSeries{Name: ys.Column, XValues: positions, YValues: values, Style: style}}
		graph.YAxis.Range = padRange(values)
	}
	return graph.Render(chart.PNG, w)
}

func (r *PNGRenderer) renderOHLC(spec *domainchart.Spec, w io.Writer) error {
	xs, ok := spec.SeriesByRole("x")
	if !ok {
		return fmt.Errorf("candlestick spec has no x series")
	}

	graph := chart.Chart{
		Title:      spec.Title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: spec.XTitle, ValueFormatter: chart.TimeValueFormatterWithFormat(dateLayout)},
		YAxis:      chart.YAxis{Name: spec.YTitle},
	}

	var all []float64
	var allTimes []time.Time
	for i, role := range []string{"open", "high", "low", "close"} {
		ser, ok := spec.SeriesByRole(role)
		if !ok {
			return fmt.Errorf("candlestick spec has no %s series", role)
		}
		times, values := timePoints(xs.Values, ser.Values)
		if len(times) == 0 {
			continue
		}
		all = append(all, values...)
		allTimes = append(allTimes, times...)
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    ser.Column,
			XValues: times,
			YValues: values,
			Style:   chart.Style{StrokeWidth: 1.5, StrokeColor: chart.GetDefaultColor(i)},
		})
	}
	if len(graph.Series) == 0 {
		return fmt.Errorf("no plottable rows")
	}
	graph.XAxis.Range = padTimeRange(allTimes)
	graph.YAxis.Range = padRange(all)
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// pointStyle renders points only, with no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func xySeries(spec *domainchart.Spec) (domainchart.Series, domainchart.Series, error) {
	xs, okX := spec.SeriesByRole("x")
	ys, okY := spec.SeriesByRole("y")
	if !okX || !okY {
		return xs, ys, fmt.Errorf("spec needs x and y series")
	}
	return xs, ys, nil
}

func label(v table.Value) string {
	if ts, ok := v.Timestamp(); ok {
		return ts.Format(dateLayout)
	}
	return v.String()
}

// sumByLabel totals y per x label in first-appearance order.
func sumByLabel(xs, ys []table.Value) ([]string, []float64) {
	index := map[string]int{}
	var labels []string
	var sums []float64
	for i, xv := range xs {
		y, ok := ys[i].Float()
		if xv.IsMissing() || !ok {
			continue
		}
		key := label(xv)
		j, seen := index[key]
		if !seen {
			j = len(labels)
			index[key] = j
			labels = append(labels, key)
			sums = append(sums, 0)
		}
		sums[j] += y
	}
	return labels, sums
}

func timePoints(xs, ys []table.Value) ([]time.Time, []float64) {
	var times []time.Time
	var values []float64
	for i, xv := range xs {
		ts, okX := xv.Timestamp()
		y, okY := ys[i].Float()
		if okX && okY {
			times = append(times, ts)
			values = append(values, y)
		}
	}
	return times, values
}

// categoryPoints places each distinct x label at an integer position.
func categoryPoints(xs, ys []table.Value) ([]float64, []float64, []chart.Tick) {
	index := map[string]int{}
	var positions, values []float64
	var ticks []chart.Tick
	for i, xv := range xs {
		y, ok := ys[i].Float()
		if xv.IsMissing() || !ok {
			continue
		}
		key := label(xv)
		j, seen := index[key]
		if !seen {
			j = len(index)
			index[key] = j
			ticks = append(ticks, chart.Tick{Value: float64(j), Label: key})
		}
		positions = append(positions, float64(j))
		values = append(values, y)
	}
	if len(ticks) == 1 {
		ticks = append([]chart.Tick{{Value: -1}}, append(ticks, chart.Tick{Value: 1})...)
	}
	return positions, values, ticks
}

// padRange widens a degenerate value range, which go-chart refuses to draw.
func padRange(values []float64) chart.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo != hi {
		return nil
	}
	pad := math.Max(math.Abs(lo)*0.1, 1)
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func padTimeRange(times []time.Time) chart.Range {
	first := times[0]
	for _, t := range times[1:] {
		if !t.Equal(first) {
			return nil
		}
	}
	day := float64(24 * time.Hour)
	at := chart.TimeToFloat64(first)
	return &chart.ContinuousRange{Min: at - day, Max: at + day}
}
