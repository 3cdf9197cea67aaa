package axis

import (
	"csvdash/domain/chart"
	"csvdash/domain/table"
)

// Requirements returns a MissingDataError for the first required candidate
// list of c that is empty.
func Requirements(c chart.Candidates) error {
	missing := func(role, need string) error {
		return &chart.MissingDataError{Chart: c.Type, Role: role, Need: need}
	}
	switch c.Type {
	case chart.ChartTypeBar, chart.ChartTypeLine, chart.ChartTypeScatter:
		if len(c.X) == 0 {
			return missing("x axis", "temporal or categorical")
		}
		if len(c.Y) == 0 {
			return missing("y axis", "numeric")
		}
	case chart.ChartTypePie:
		if len(c.Labels) == 0 {
			return missing("label", "temporal or categorical")
		}
		if len(c.Values) == 0 {
			return missing("value", "numeric")
		}
	case chart.ChartTypeCandlestick:
		if len(c.X) == 0 {
			return missing("x axis", "temporal")
		}
		if c.OHLC == nil {
			return missing("open/high/low/close", "matching numeric")
		}
	}
	return nil
}

// Validate checks every column req references against the candidate set of
// its role. An unselected required field is rejected as well. Candlestick
// requests without explicit OHLC columns use the resolved ones.
func Validate(req chart.Request, roles table.Roles) error {
	c, err := Candidates(roles, req.Type)
	if err != nil {
		return err
	}
	if err := Requirements(c); err != nil {
		return err
	}

	check := func(field, column string, allowed []string) error {
		if column != "" && contains(allowed, column) {
			return nil
		}
		return &chart.AxisSelectionError{Chart: req.Type, Field: field, Column: column, Allowed: allowed}
	}

	switch req.Type {
	case chart.ChartTypeBar, chart.ChartTypeLine, chart.ChartTypeScatter:
		if err := check("x axis", req.XAxis, c.X); err != nil {
			return err
		}
		return check("y axis", req.YAxis, c.Y)
	case chart.ChartTypePie:
		if err := check("label", req.PieLabel, c.Labels); err != nil {
			return err
		}
		return check("value", req.PieValue, c.Values)
	case chart.ChartTypeCandlestick:
		if err := check("x axis", req.XAxis, c.X); err != nil {
			return err
		}
		if req.OHLC == nil {
			return nil
		}
		numeric := roles.Columns(table.RoleNumeric)
		fields := []string{"open", "high", "low", "close"}
		seen := map[string]bool{}
		for i, column := range req.OHLC.Columns() {
			if err := check(fields[i], column, numeric); err != nil {
				return err
			}
			if seen[column] {
				return &chart.AxisSelectionError{Chart: req.Type, Field: fields[i], Column: column, Allowed: numeric}
			}
			seen[column] = true
		}
	}
	return nil
}

// Defaults fills every unselected field of req with the first candidate for
// that field. Selected fields are left alone, so the result may still fail
// Validate; nothing outside the candidate set is ever chosen.
func Defaults(req chart.Request, roles table.Roles) chart.Request {
	c, err := Candidates(roles, req.Type)
	if err != nil {
		return req
	}
	first := func(current string, options []string) string {
		if current != "" || len(options) == 0 {
			return current
		}
		return options[0]
	}

	switch req.Type {
	case chart.ChartTypeBar, chart.ChartTypeLine, chart.ChartTypeScatter:
		req.XAxis = first(req.XAxis, c.X)
		req.YAxis = first(req.YAxis, c.Y)
	case chart.ChartTypePie:
		req.PieLabel = first(req.PieLabel, c.Labels)
		req.PieValue = first(req.PieValue, c.Values)
	case chart.ChartTypeCandlestick:
		req.XAxis = first(req.XAxis, c.X)
		if req.OHLC == nil && c.OHLC != nil {
			ohlc := *c.OHLC
			req.OHLC = &ohlc
		}
	}
	return req
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
