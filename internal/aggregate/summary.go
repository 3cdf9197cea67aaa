// Package aggregate computes descriptive statistics and frequency tables
// over the columns of a filtered table.
package aggregate

import (
	"context"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	gstat "gonum.org/v1/gonum/stat"

	domainstats "csvdash/domain/stats"
	"csvdash/domain/table"
)

// Summarize computes the descriptive aggregates of col in its current row
// order. First and Latest are positional: the first and last rows, nil
// when that row is missing. Every other aggregate ignores missing cells.
func Summarize(col table.Column) domainstats.Summary {
	s := domainstats.Summary{Column: col.Name, Rows: len(col.Values)}

	if n := len(col.Values); n > 0 {
		s.First = floatPtr(col.Values[0])
		s.Latest = floatPtr(col.Values[n-1])
	}
	if len(col.Values) >= 2 {
		s.PercentChange = PercentChange(s.First, s.Latest)
	}

	data := make(stats.Float64Data, 0, len(col.Values))
	for _, v := range col.Values {
		if f, ok := v.Float(); ok {
			data = append(data, f)
		}
	}
	s.Count = len(data)
	if s.Count == 0 {
		s.NoData = true
		return s
	}

	s.Min = must(stats.Min(data))
	s.Max = must(stats.Max(data))
	s.Mean = must(stats.Mean(data))
	s.Median = must(stats.Median(data))
	s.Sum = must(stats.Sum(data))
	if s.Count >= 2 {
		s.StdDev = must(stats.StandardDeviationSample(data))
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	s.Q1 = finite(gstat.Quantile(0.25, gstat.LinInterp, sorted, nil))
	s.Q3 = finite(gstat.Quantile(0.75, gstat.LinInterp, sorted, nil))

	return s
}

// PercentChange returns 100 * (latest - first) / |first|. It is nil when
// either operand is missing, first is zero or the ratio overflows.
func PercentChange(first, latest *float64) *float64 {
	if first == nil || latest == nil || *first == 0 {
		return nil
	}
	return finite(100 * (*latest - *first) / math.Abs(*first))
}

// SummarizeAll summarizes every numeric column of t, keyed by column name.
// Columns are independent, so they are computed concurrently.
func SummarizeAll(ctx context.Context, t *table.Table, roles table.Roles) (map[string]domainstats.Summary, error) {
	names := roles.Columns(table.RoleNumeric)
	results := make([]domainstats.Summary, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			col, err := t.Column(name)
			if err != nil {
				return err
			}
			results[i] = Summarize(col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]domainstats.Summary, len(names))
	for i, name := range names {
		out[name] = results[i]
	}
	return out, nil
}

func floatPtr(v table.Value) *float64 {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}

// must converts a stats result into an optional; the inputs are
// non-empty, so errors only arise for undefined results.
func must(v float64, err error) *float64 {
	if err != nil {
		return nil
	}
	return finite(v)
}

// finite returns nil for NaN and ±Inf, which have no JSON encoding.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
