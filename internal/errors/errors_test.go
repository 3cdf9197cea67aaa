package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/domain/chart"
	"csvdash/domain/core"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		http int
	}{
		{"anchor", core.NewInvalidAnchorError("Amount", "numeric"), CodeInvalidAnchor, http.StatusBadRequest},
		{"range", fmt.Errorf("%w: start after end", core.ErrInvalidRange), CodeInvalidRange, http.StatusBadRequest},
		{"axis", &chart.AxisSelectionError{Chart: chart.ChartTypeBar, Field: "x axis", Column: "Note"}, CodeInvalidAxisSelection, http.StatusUnprocessableEntity},
		{"missing data", &chart.MissingDataError{Chart: chart.ChartTypeBar, Role: "y axis", Need: "numeric"}, CodeMissingData, http.StatusUnprocessableEntity},
		{"empty", core.ErrEmptyTable, CodeEmptyTable, http.StatusUnprocessableEntity},
		{"dataset not found", core.ErrDatasetNotFound, CodeNotFound, http.StatusNotFound},
		{"no header", core.ErrNoHeader, CodeInvalidInput, http.StatusBadRequest},
		{"unknown", stderrors.New("boom"), CodeInternalError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomain(tt.err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.http, HTTPStatus(appErr.Code))
			assert.ErrorIs(t, appErr, tt.err)
		})
	}
	assert.Nil(t, FromDomain(nil))
}

func TestWrapKeepsCode(t *testing.T) {
	err := Wrap(core.ErrInvalidRange, "resolving period")
	assert.Equal(t, CodeInvalidRange, GetCode(err))
	assert.ErrorIs(t, err, core.ErrInvalidRange)
	assert.Equal(t, "resolving period: custom period start is after end", err.Error())

	outer := Wrapf(err, "analysis of %s", "prices.csv")
	assert.Equal(t, CodeInvalidRange, GetCode(outer))

	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, stderrors.New("bad period"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.False(t, IsAppError(stderrors.New("plain")))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}
