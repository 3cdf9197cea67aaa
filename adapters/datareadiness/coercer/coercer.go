package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"csvdash/domain/table"
)

// TypeCoercer handles deterministic per-cell type coercion
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold   float64 `json:"numeric_threshold"`   // share of non-null values that must parse as numbers
	TimestampThreshold float64 `json:"timestamp_threshold"` // share of non-null values that must parse as timestamps
	SampleSize         int     `json:"sample_size"`         // 0 analyses every value
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:   0.8,
		TimestampThreshold: 0.5,
		SampleSize:         1000,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// Config returns the active thresholds.
func (c *TypeCoercer) Config() CoercionConfig { return c.config }

var (
	thousandsGrouped = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)
	currencySymbols  = []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"}
)

// ParseNumeric parses a textual number. Handles parentheses for negatives,
// currency symbols, percent signs, thousands separators and European decimals.
func (c *TypeCoercer) ParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range currencySymbols {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(strings.ReplaceAll(cleanVal, "%", ""))

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case thousandsGrouped.MatchString(cleanVal):
		// 1,234,567.89
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 3 && isDigits(afterComma) {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		}
	case hasComma:
		// 12,5
		cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06 15:04",
	"1/2/06",
	"01-02-06 15:04",
	"01-02-06",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
}

// Epoch bounds accepted for integer timestamps: 1973-03-03 .. 2100-01-01.
const (
	minEpochSeconds = 1e8
	maxEpochSeconds = 4102444800
)

// ParseTimestamp parses textual timestamps. Integer epochs (seconds or
// milliseconds) are accepted only when allowEpoch is set.
func (c *TypeCoercer) ParseTimestamp(strVal string, allowEpoch bool) (time.Time, bool) {
	strVal = strings.TrimSpace(strVal)
	if strVal == "" {
		return time.Time{}, false
	}

	for _, format := range timestampFormats {
		if t, err := time.Parse(format, strVal); err == nil {
			return t, true
		}
	}

	if allowEpoch {
		if n, err := strconv.ParseInt(strVal, 10, 64); err == nil {
			return epochToTime(float64(n))
		}
	}
	return time.Time{}, false
}

func epochToTime(n float64) (time.Time, bool) {
	if n != math.Trunc(n) {
		return time.Time{}, false
	}
	switch {
	case n >= minEpochSeconds && n <= maxEpochSeconds:
		return time.Unix(int64(n), 0).UTC(), true
	case n >= minEpochSeconds*1000 && n <= maxEpochSeconds*1000:
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return time.Time{}, false
}

// ToNumeric coerces a cell to a numeric value.
func (c *TypeCoercer) ToNumeric(v table.Value) (table.Value, bool) {
	switch v.Type {
	case table.ValueTypeNumeric:
		return v, true
	case table.ValueTypeString:
		if f, ok := c.ParseNumeric(v.Str); ok {
			return table.NewNumericValue(f), true
		}
	}
	return table.NewMissingValue(), false
}

// ToTimestamp coerces a cell to a timestamp value.
func (c *TypeCoercer) ToTimestamp(v table.Value, allowEpoch bool) (table.Value, bool) {
	switch v.Type {
	case table.ValueTypeTimestamp:
		return v, true
	case table.ValueTypeString:
		if t, ok := c.ParseTimestamp(v.Str, allowEpoch); ok {
			return table.NewTimestampValue(t), true
		}
	case table.ValueTypeNumeric:
		if allowEpoch {
			if t, ok := epochToTime(v.Num); ok {
				return table.NewTimestampValue(t), true
			}
		}
	}
	return table.NewMissingValue(), false
}

// AnalyzeTypeDistribution measures how much of a column each type can absorb.
// Missing cells are excluded from every ratio.
func (c *TypeCoercer) AnalyzeTypeDistribution(values []table.Value, allowEpoch bool) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}
	distinct := make(map[string]struct{})

	sampled := 0
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		analysis.ValidCount++
		distinct[string(v.Type)+":"+v.String()] = struct{}{}

		if c.config.SampleSize > 0 && sampled >= c.config.SampleSize {
			continue
		}
		sampled++

		switch v.Type {
		case table.ValueTypeTimestamp:
			analysis.NativeTimestampCount++
		case table.ValueTypeNumeric:
			analysis.NativeNumericCount++
		}
		if _, ok := c.ToNumeric(v); ok {
			analysis.NumericCount++
		}
		if _, ok := c.ToTimestamp(v, allowEpoch); ok {
			analysis.TimestampCount++
		}
	}

	analysis.SampledCount = sampled
	analysis.DistinctCount = len(distinct)
	if sampled > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(sampled)
		analysis.TimestampRatio = float64(analysis.TimestampCount) / float64(sampled)
	}
	return analysis
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount           int     `json:"total_count"`
	ValidCount           int     `json:"valid_count"`
	SampledCount         int     `json:"sampled_count"`
	DistinctCount        int     `json:"distinct_count"`
	NumericCount         int     `json:"numeric_count"`
	TimestampCount       int     `json:"timestamp_count"`
	NativeNumericCount   int     `json:"native_numeric_count"`
	NativeTimestampCount int     `json:"native_timestamp_count"`
	NumericRatio         float64 `json:"numeric_ratio"`
	TimestampRatio       float64 `json:"timestamp_ratio"`
}

// AllNativeTimestamps reports whether every sampled value is already a time.
func (a TypeAnalysis) AllNativeTimestamps() bool {
	return a.SampledCount > 0 && a.NativeTimestampCount == a.SampledCount
}

// AllNativeNumeric reports whether every sampled value is already a number.
func (a TypeAnalysis) AllNativeNumeric() bool {
	return a.SampledCount > 0 && a.NativeNumericCount == a.SampledCount
}
