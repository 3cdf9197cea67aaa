package table

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// ValueType defines the storage type for a cell
type ValueType string

const (
	ValueTypeMissing   ValueType = "missing"
	ValueTypeString    ValueType = "string"
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeBoolean   ValueType = "boolean"
	ValueTypeTimestamp ValueType = "timestamp"
)

// Value is a single typed cell. The zero Value is missing.
type Value struct {
	Type ValueType
	Str  string
	Num  float64
	Bool bool
	Time time.Time
}

// NewStringValue creates a string value; empty strings are missing.
func NewStringValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeString, Str: s}
}

// NewNumericValue creates a numeric value; NaN and ±Inf are missing.
func NewNumericValue(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeNumeric, Num: n}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, Bool: b}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, Time: t}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the cell holds no value.
func (v Value) IsMissing() bool {
	return v.Type == "" || v.Type == ValueTypeMissing
}

func (v Value) IsNumeric() bool   { return v.Type == ValueTypeNumeric }
func (v Value) IsString() bool    { return v.Type == ValueTypeString }
func (v Value) IsTimestamp() bool { return v.Type == ValueTypeTimestamp }

// Float returns the numeric value and whether the cell is numeric.
func (v Value) Float() (float64, bool) {
	if v.Type != ValueTypeNumeric {
		return 0, false
	}
	return v.Num, true
}

// Timestamp returns the time value and whether the cell is a timestamp.
func (v Value) Timestamp() (time.Time, bool) {
	if v.Type != ValueTypeTimestamp {
		return time.Time{}, false
	}
	return v.Time, true
}

// String renders the value as display text. Missing values render empty.
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return v.Str
	case ValueTypeNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.Bool)
	case ValueTypeTimestamp:
		return v.Time.Format(time.RFC3339)
	}
	return ""
}

// Equal compares two values by type and content.
func (v Value) Equal(o Value) bool {
	if v.IsMissing() || o.IsMissing() {
		return v.IsMissing() && o.IsMissing()
	}
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case ValueTypeString:
		return v.Str == o.Str
	case ValueTypeNumeric:
		return v.Num == o.Num
	case ValueTypeBoolean:
		return v.Bool == o.Bool
	case ValueTypeTimestamp:
		return v.Time.Equal(o.Time)
	}
	return false
}

// MarshalJSON encodes the value as its natural JSON scalar; missing is null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case ValueTypeString:
		return json.Marshal(v.Str)
	case ValueTypeNumeric:
		return json.Marshal(v.Num)
	case ValueTypeBoolean:
		return json.Marshal(v.Bool)
	case ValueTypeTimestamp:
		return json.Marshal(v.Time.Format(time.RFC3339Nano))
	}
	return []byte("null"), nil
}
