// Package chartspec maps a validated chart request and a filtered table to
// a backend-agnostic chart description. Nothing is rendered here.
package chartspec

import (
	"fmt"
	"math"

	"csvdash/domain/chart"
	"csvdash/domain/core"
	"csvdash/domain/table"
	"csvdash/internal/axis"
)

// Build assembles the Spec for req over t. It fails with a
// MissingDataError when a required candidate list is empty, with an
// AxisSelectionError when a selected column is outside its candidate set,
// and with ErrEmptyTable when t has no rows.
func Build(t *table.Table, roles table.Roles, req chart.Request) (*chart.Spec, error) {
	if req.Type == chart.ChartTypeCandlestick && req.OHLC == nil {
		if ohlc, ok := axis.ResolveOHLC(roles); ok {
			req.OHLC = ohlc
		}
	}
	if err := axis.Validate(req, roles); err != nil {
		return nil, err
	}
	if t.NumRows() == 0 {
		return nil, fmt.Errorf("%w: nothing to plot", core.ErrEmptyTable)
	}

	spec := &chart.Spec{Type: req.Type, Rows: t.NumRows()}
	var err error
	switch req.Type {
	case chart.ChartTypeBar, chart.ChartTypeLine, chart.ChartTypeScatter:
		spec.Title = fmt.Sprintf("%s by %s", req.YAxis, req.XAxis)
		spec.XTitle, spec.YTitle = req.XAxis, req.YAxis
		err = addSeries(spec, t, roles, [][2]string{{"x", req.XAxis}, {"y", req.YAxis}})
	case chart.ChartTypePie:
		spec.Title = fmt.Sprintf("%s by %s", req.PieValue, req.PieLabel)
		if err = addSeries(spec, t, roles, [][2]string{{"label", req.PieLabel}, {"value", req.PieValue}}); err == nil {
			spec.Slices = pieSlices(spec)
		}
	case chart.ChartTypeCandlestick:
		spec.Title = fmt.Sprintf("%s OHLC", req.XAxis)
		spec.XTitle, spec.YTitle = req.XAxis, "Price"
		err = addSeries(spec, t, roles, [][2]string{
			{"x", req.XAxis},
			{"open", req.OHLC.Open},
			{"high", req.OHLC.High},
			{"low", req.OHLC.Low},
			{"close", req.OHLC.Close},
		})
	default:
		err = fmt.Errorf("%w: %q", core.ErrUnsupportedChart, req.Type)
	}
	if err != nil {
		return nil, err
	}
	return spec, nil
}

func addSeries(spec *chart.Spec, t *table.Table, roles table.Roles, bindings [][2]string) error {
	for _, b := range bindings {
		col, err := t.Column(b[1])
		if err != nil {
			return err
		}
		spec.Series = append(spec.Series, chart.Series{
			Role:   b[0],
			Column: b[1],
			Kind:   roles.Role(b[1]),
			Values: col.Values,
		})
	}
	return nil
}

// pieSlices sums value per label in first-appearance order. Rows with a
// missing label or value do not contribute.
func pieSlices(spec *chart.Spec) []chart.Slice {
	labels, _ := spec.SeriesByRole("label")
	values, _ := spec.SeriesByRole("value")

	index := map[string]int{}
	var slices []chart.Slice
	for i, lv := range labels.Values {
		v, ok := values.Values[i].Float()
		if lv.IsMissing() || !ok {
			continue
		}
		key := lv.String()
		j, seen := index[key]
		if !seen {
			j = len(slices)
			index[key] = j
			slices = append(slices, chart.Slice{Label: key})
		}
		slices[j].Value += v
	}
	for i := range slices {
		if v := slices[i].Value; math.IsInf(v, 0) {
			slices[i].Value = math.Copysign(math.MaxFloat64, v)
		}
	}
	return slices
}
