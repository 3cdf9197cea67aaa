package axis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/domain/chart"
	"csvdash/domain/core"
	"csvdash/domain/table"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		roles   table.Roles
		req     chart.Request
		wantErr error
	}{
		{
			name:  "valid bar",
			roles: salesRoles(),
			req:   chart.Request{Type: chart.ChartTypeBar, XAxis: "Category", YAxis: "Amount"},
		},
		{
			name:    "unclassified x",
			roles:   salesRoles(),
			req:     chart.Request{Type: chart.ChartTypeBar, XAxis: "Note", YAxis: "Amount"},
			wantErr: core.ErrInvalidAxisSelection,
		},
		{
			name:    "categorical y",
			roles:   salesRoles(),
			req:     chart.Request{Type: chart.ChartTypeLine, XAxis: "Category", YAxis: "Category"},
			wantErr: core.ErrInvalidAxisSelection,
		},
		{
			name:    "unknown column",
			roles:   salesRoles(),
			req:     chart.Request{Type: chart.ChartTypeScatter, XAxis: "Category", YAxis: "Ghost"},
			wantErr: core.ErrInvalidAxisSelection,
		},
		{
			name:    "unselected axis",
			roles:   salesRoles(),
			req:     chart.Request{Type: chart.ChartTypeBar, XAxis: "Category"},
			wantErr: core.ErrInvalidAxisSelection,
		},
		{
			name:  "valid pie",
			roles: salesRoles(),
			req:   chart.Request{Type: chart.ChartTypePie, PieLabel: "Category", PieValue: "Amount"},
		},
		{
			name:    "pie value not numeric",
			roles:   salesRoles(),
			req:     chart.Request{Type: chart.ChartTypePie, PieLabel: "Category", PieValue: "Category"},
			wantErr: core.ErrInvalidAxisSelection,
		},
		{
			name:    "no numeric columns",
			roles:   table.Roles{{Name: "Category", Role: table.RoleCategorical}},
			req:     chart.Request{Type: chart.ChartTypeBar, XAxis: "Category", YAxis: "Category"},
			wantErr: core.ErrMissingData,
		},
		{
			name:  "candlestick resolved ohlc",
			roles: ohlcRolesFixture(),
			req:   chart.Request{Type: chart.ChartTypeCandlestick, XAxis: "Date"},
		},
		{
			name:  "candlestick explicit ohlc",
			roles: ohlcRolesFixture(),
			req: chart.Request{Type: chart.ChartTypeCandlestick, XAxis: "Date",
				OHLC: &chart.OHLC{Open: "Open", High: "High", Low: "Low", Close: "Volume"}},
		},
		{
			name:  "candlestick repeated column",
			roles: ohlcRolesFixture(),
			req: chart.Request{Type: chart.ChartTypeCandlestick, XAxis: "Date",
				OHLC: &chart.OHLC{Open: "Open", High: "Open", Low: "Low", Close: "Close"}},
			wantErr: core.ErrInvalidAxisSelection,
		},
		{
			name:    "candlestick without ohlc columns",
			roles:   salesRoles(),
			req:     chart.Request{Type: chart.ChartTypeCandlestick, XAxis: "Category"},
			wantErr: core.ErrMissingData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req, tt.roles)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateErrorDetail(t *testing.T) {
	err := Validate(chart.Request{Type: chart.ChartTypeBar, XAxis: "Note", YAxis: "Amount"}, salesRoles())

	var axisErr *chart.AxisSelectionError
	require.True(t, errors.As(err, &axisErr))
	assert.Equal(t, "x axis", axisErr.Field)
	assert.Equal(t, "Note", axisErr.Column)
	assert.Equal(t, []string{"Category"}, axisErr.Allowed)

	err = Validate(chart.Request{Type: chart.ChartTypePie}, table.Roles{{Name: "Amount", Role: table.RoleNumeric}})
	var missing *chart.MissingDataError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "label", missing.Role)
}

func TestDefaults(t *testing.T) {
	req := Defaults(chart.Request{Type: chart.ChartTypeBar}, salesRoles())
	assert.Equal(t, "Category", req.XAxis)
	assert.Equal(t, "Amount", req.YAxis)
	assert.NoError(t, Validate(req, salesRoles()))

	req = Defaults(chart.Request{Type: chart.ChartTypePie, PieValue: "Amount"}, salesRoles())
	assert.Equal(t, "Category", req.PieLabel)
	assert.Equal(t, "Amount", req.PieValue)

	req = Defaults(chart.Request{Type: chart.ChartTypeCandlestick}, ohlcRolesFixture())
	assert.Equal(t, "Date", req.XAxis)
	require.NotNil(t, req.OHLC)
	assert.Equal(t, "Close", req.OHLC.Close)

	// selected fields are kept even when invalid
	req = Defaults(chart.Request{Type: chart.ChartTypeBar, XAxis: "Note"}, salesRoles())
	assert.Equal(t, "Note", req.XAxis)

	// nothing to choose from leaves the field empty
	req = Defaults(chart.Request{Type: chart.ChartTypeBar}, table.Roles{{Name: "Category", Role: table.RoleCategorical}})
	assert.Empty(t, req.YAxis)
}
