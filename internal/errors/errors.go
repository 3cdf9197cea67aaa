package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"csvdash/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of an
// AppError cause or deriving one from the domain sentinels.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    codeOf(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeInvalidAnchor        = "INVALID_ANCHOR"
	CodeInvalidRange         = "INVALID_RANGE"
	CodeInvalidAxisSelection = "INVALID_AXIS_SELECTION"
	CodeMissingData          = "MISSING_DATA"
	CodeEmptyTable           = "EMPTY_TABLE"
	CodeParseFailure         = "PARSE_FAILURE"
	CodeUnsupportedChart     = "UNSUPPORTED_CHART"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeConfigInvalid        = "CONFIG_INVALID"
	CodeInternalError        = "INTERNAL_ERROR"
)

var sentinelCodes = []struct {
	err  error
	code string
}{
	{core.ErrInvalidAnchor, CodeInvalidAnchor},
	{core.ErrInvalidRange, CodeInvalidRange},
	{core.ErrInvalidAxisSelection, CodeInvalidAxisSelection},
	{core.ErrMissingData, CodeMissingData},
	{core.ErrEmptyTable, CodeEmptyTable},
	{core.ErrParseFailure, CodeParseFailure},
	{core.ErrNoHeader, CodeInvalidInput},
	{core.ErrUnsupportedChart, CodeUnsupportedChart},
	{core.ErrNotFound, CodeNotFound},
}

func codeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	for _, sc := range sentinelCodes {
		if stderrors.Is(err, sc.err) {
			return sc.code
		}
	}
	return CodeInternalError
}

// FromDomain converts any error into an AppError whose code reflects the
// domain sentinel it wraps. The message is the error text itself.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: codeOf(err), Message: err.Error(), Cause: err}
}

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(code string) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeInvalidAnchor, CodeInvalidRange, CodeUnsupportedChart:
		return http.StatusBadRequest
	case CodeInvalidAxisSelection, CodeMissingData, CodeEmptyTable, CodeParseFailure:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
