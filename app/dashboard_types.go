package app

import (
	"errors"
	"fmt"

	"csvdash/domain/chart"
	"csvdash/domain/core"
	"csvdash/domain/period"
	"csvdash/domain/stats"
	"csvdash/domain/table"
	apperrors "csvdash/internal/errors"
)

// DefaultPreviewRows is the preview length when a request does not set one.
const DefaultPreviewRows = 20

// AnalysisRequest carries every user control of one dashboard interaction.
// Zero values select the defaults: first temporal anchor, All period, no
// chart, no custom stat.
type AnalysisRequest struct {
	Anchor      string         `json:"anchor,omitempty"`
	Period      string         `json:"period,omitempty"`
	Start       string         `json:"start,omitempty"`
	End         string         `json:"end,omitempty"`
	Chart       *chart.Request `json:"chart,omitempty"`
	StatColumn  string         `json:"stat_column,omitempty"`
	PreviewRows int            `json:"preview_rows,omitempty"`
}

// Selection parses the period controls for anchor. Custom bounds are only
// read in Custom mode.
func (r AnalysisRequest) Selection(anchor string) (period.Selection, error) {
	mode, err := period.ParseMode(r.Period)
	if err != nil {
		return period.Selection{}, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	sel := period.Selection{Anchor: anchor, Mode: mode}
	if mode != period.ModeCustom {
		return sel, nil
	}
	if sel.Start, err = period.ParseBound(r.Start, false); err != nil {
		return period.Selection{}, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	if sel.End, err = period.ParseBound(r.End, true); err != nil {
		return period.Selection{}, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	return sel, nil
}

// Rejection explains why the requested chart could not be built.
type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Role is the axis or OHLC field at fault, when known.
	Role string `json:"role,omitempty"`
}

// Err converts the rejection back into an application error.
func (r *Rejection) Err() error {
	if r == nil {
		return nil
	}
	return apperrors.New(r.Code, r.Message)
}

// Preview is the head of the working table.
type Preview struct {
	Columns []string        `json:"columns"`
	Rows    [][]table.Value `json:"rows"`
}

// AnalysisResult is everything the presentation layer needs for one
// interaction: roles, window, statistics, chart choices and a chart spec or
// the reason it was refused.
type AnalysisResult struct {
	DatasetID core.DatasetID `json:"dataset_id"`
	Roles     table.Roles    `json:"columns"`

	Anchor      string         `json:"anchor,omitempty"`
	Window      *period.Window `json:"window,omitempty"`
	TotalRows   int            `json:"total_rows"`
	DroppedRows int            `json:"dropped_rows"`
	Rows        int            `json:"rows"`
	Empty       bool           `json:"empty"`

	Summaries   map[string]stats.Summary   `json:"summaries"`
	Frequencies map[string]stats.Frequency `json:"frequencies"`
	CustomStat  *stats.Summary             `json:"custom_stat,omitempty"`

	ChartTypes []chart.ChartType `json:"chart_types"`
	Candidates *chart.Candidates `json:"candidates,omitempty"`
	Chart      *chart.Spec       `json:"chart,omitempty"`
	Rejection  *Rejection        `json:"rejection,omitempty"`

	Preview       Preview        `json:"preview"`
	ParseFailures map[string]int `json:"parse_failures,omitempty"`
}

// rejectionFor turns a chart building error into a Rejection.
func rejectionFor(err error) *Rejection {
	appErr := apperrors.FromDomain(err)
	rej := &Rejection{Code: appErr.Code, Message: err.Error()}

	var missing *chart.MissingDataError
	var selection *chart.AxisSelectionError
	switch {
	case errors.As(err, &missing):
		rej.Role = missing.Role
	case errors.As(err, &selection):
		rej.Role = selection.Field
	}
	return rej
}

func statColumnError(name string, role table.Role) error {
	return fmt.Errorf("%w: stat column %q is %s, not numeric", core.ErrInvalidAxisSelection, name, role)
}
