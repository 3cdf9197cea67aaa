package chartspec

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/domain/chart"
	"csvdash/domain/core"
	"csvdash/domain/table"
	"csvdash/internal/aggregate"
)

func salesTable() (*table.Table, table.Roles) {
	cats := []string{"A", "B", "A", "C", "B", "A", "C", "A"}
	amounts := []float64{10, 20, 5, 7, 3, 1, 2, 4}
	rows := make([][]table.Value, len(cats))
	for i := range cats {
		rows[i] = []table.Value{table.NewStringValue(cats[i]), table.NewNumericValue(amounts[i])}
	}
	roles := table.Roles{
		{Name: "Category", Role: table.RoleCategorical},
		{Name: "Amount", Role: table.RoleNumeric},
	}
	return table.MustNew([]string{"Category", "Amount"}, rows), roles
}

func ohlcTable() (*table.Table, table.Roles) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([][]table.Value, 10)
	for i := range rows {
		p := 100 + float64(i)
		rows[i] = []table.Value{
			table.NewTimestampValue(start.AddDate(0, 0, i)),
			table.NewNumericValue(p), table.NewNumericValue(p + 2),
			table.NewNumericValue(p - 1), table.NewNumericValue(p + 1),
			table.NewNumericValue(1000),
		}
	}
	roles := table.Roles{
		{Name: "Date", Role: table.RoleTemporal},
		{Name: "Open", Role: table.RoleNumeric},
		{Name: "High", Role: table.RoleNumeric},
		{Name: "Low", Role: table.RoleNumeric},
		{Name: "Close", Role: table.RoleNumeric},
		{Name: "Volume", Role: table.RoleNumeric},
	}
	return table.MustNew([]string{"Date", "Open", "High", "Low", "Close", "Volume"}, rows), roles
}

func TestBuildPieScenario(t *testing.T) {
	tbl, roles := salesTable()

	spec, err := Build(tbl, roles, chart.Request{Type: chart.ChartTypePie, PieLabel: "Category", PieValue: "Amount"})
	require.NoError(t, err)

	assert.Equal(t, chart.ChartTypePie, spec.Type)
	assert.Equal(t, 8, spec.Rows)
	assert.Equal(t, []chart.Slice{{Label: "A", Value: 20}, {Label: "B", Value: 23}, {Label: "C", Value: 9}}, spec.Slices)

	label, ok := spec.SeriesByRole("label")
	require.True(t, ok)
	assert.Equal(t, table.RoleCategorical, label.Kind)
	assert.Len(t, label.Values, 8)

	col, err := tbl.Column("Category")
	require.NoError(t, err)
	freq := aggregate.Frequencies(col)
	assert.Len(t, freq.Values, 3)
	assert.Equal(t, 8, freq.Total)
}

func TestBuildBar(t *testing.T) {
	tbl, roles := salesTable()

	spec, err := Build(tbl, roles, chart.Request{Type: chart.ChartTypeBar, XAxis: "Category", YAxis: "Amount"})
	require.NoError(t, err)

	assert.Equal(t, "Amount by Category", spec.Title)
	assert.Equal(t, "Category", spec.XTitle)
	assert.Equal(t, "Amount", spec.YTitle)
	require.Len(t, spec.Series, 2)
	assert.Equal(t, "x", spec.Series[0].Role)
	assert.Equal(t, "y", spec.Series[1].Role)
	assert.Equal(t, table.RoleNumeric, spec.Series[1].Kind)
	assert.Nil(t, spec.Slices)
}

func TestBuildCandlestick(t *testing.T) {
	tbl, roles := ohlcTable()

	spec, err := Build(tbl, roles, chart.Request{Type: chart.ChartTypeCandlestick, XAxis: "Date"})
	require.NoError(t, err)

	var got []string
	for _, s := range spec.Series {
		got = append(got, s.Role+"="+s.Column)
	}
	assert.Equal(t, []string{"x=Date", "open=Open", "high=High", "low=Low", "close=Close"}, got)
	assert.Equal(t, 10, spec.Rows)
}

func TestBuildMissingData(t *testing.T) {
	tbl := table.MustNew([]string{"Category"}, [][]table.Value{{table.NewStringValue("A")}})
	roles := table.Roles{{Name: "Category", Role: table.RoleCategorical}}

	_, err := Build(tbl, roles, chart.Request{Type: chart.ChartTypeBar, XAxis: "Category"})
	require.ErrorIs(t, err, core.ErrMissingData)

	var missing *chart.MissingDataError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "y axis", missing.Role)

	_, err = Build(tbl, roles, chart.Request{Type: chart.ChartTypeCandlestick})
	assert.ErrorIs(t, err, core.ErrMissingData)
}

func TestBuildInvalidSelection(t *testing.T) {
	tbl, roles := salesTable()
	_, err := Build(tbl, roles, chart.Request{Type: chart.ChartTypeScatter, XAxis: "Amount", YAxis: "Amount"})
	assert.ErrorIs(t, err, core.ErrInvalidAxisSelection)
}

func TestBuildEmptyTable(t *testing.T) {
	_, roles := salesTable()
	empty := table.MustNew([]string{"Category", "Amount"}, nil)

	_, err := Build(empty, roles, chart.Request{Type: chart.ChartTypeBar, XAxis: "Category", YAxis: "Amount"})
	assert.ErrorIs(t, err, core.ErrEmptyTable)
}

func TestPieSlicesSkipMissing(t *testing.T) {
	tbl := table.MustNew([]string{"Category", "Amount"}, [][]table.Value{
		{table.NewStringValue("A"), table.NewNumericValue(1)},
		{table.NewMissingValue(), table.NewNumericValue(5)},
		{table.NewStringValue("A"), table.NewMissingValue()},
	})
	roles := table.Roles{
		{Name: "Category", Role: table.RoleCategorical},
		{Name: "Amount", Role: table.RoleNumeric},
	}
	spec, err := Build(tbl, roles, chart.Request{Type: chart.ChartTypePie, PieLabel: "Category", PieValue: "Amount"})
	require.NoError(t, err)
	assert.Equal(t, []chart.Slice{{Label: "A", Value: 1}}, spec.Slices)
}

func TestPieSlicesSaturateOnOverflow(t *testing.T) {
	tbl := table.MustNew([]string{"Category", "Amount"}, [][]table.Value{
		{table.NewStringValue("A"), table.NewNumericValue(math.MaxFloat64)},
		{table.NewStringValue("A"), table.NewNumericValue(math.MaxFloat64)},
		{table.NewStringValue("B"), table.NewNumericValue(-math.MaxFloat64)},
		{table.NewStringValue("B"), table.NewNumericValue(-math.MaxFloat64)},
	})
	roles := table.Roles{
		{Name: "Category", Role: table.RoleCategorical},
		{Name: "Amount", Role: table.RoleNumeric},
	}
	spec, err := Build(tbl, roles, chart.Request{Type: chart.ChartTypePie, PieLabel: "Category", PieValue: "Amount"})
	require.NoError(t, err)
	assert.Equal(t, []chart.Slice{
		{Label: "A", Value: math.MaxFloat64},
		{Label: "B", Value: -math.MaxFloat64},
	}, spec.Slices)

	_, err = json.Marshal(spec)
	assert.NoError(t, err)
}
