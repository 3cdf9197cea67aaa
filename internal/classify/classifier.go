// Package classify assigns every column of a raw table exactly one semantic
// role and produces the typed working table for that assignment.
package classify

import (
	"regexp"
	"sort"

	"go.uber.org/zap"

	"csvdash/adapters/datareadiness/coercer"
	"csvdash/domain/table"
)

// Config holds the classification thresholds.
type Config struct {
	CategoricalCutoff int     `mapstructure:"categoricalCutoff" validate:"min=1"`
	NumericThreshold  float64 `mapstructure:"numericThreshold" validate:"gt=0,lte=1"`
	TemporalThreshold float64 `mapstructure:"temporalThreshold" validate:"gte=0,lt=1"`
	SampleSize        int     `mapstructure:"sampleSize" validate:"min=0"`
}

// DefaultConfig returns the dashboard defaults.
func DefaultConfig() Config {
	return Config{
		CategoricalCutoff: 20,
		NumericThreshold:  0.8,
		TemporalThreshold: 0.5,
		SampleSize:        1000,
	}
}

// Names matching this pattern may hold integer epochs.
var timeLikeName = regexp.MustCompile(`(?i)date|time|day`)

// Classifier infers column roles. It never fails: anything it cannot place
// degrades to RoleUnclassified.
type Classifier struct {
	config  Config
	coercer *coercer.TypeCoercer
	logger  *zap.Logger
}

// New creates a classifier.
func New(config Config, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		config: config,
		coercer: coercer.NewTypeCoercer(coercer.CoercionConfig{
			NumericThreshold:   config.NumericThreshold,
			TimestampThreshold: config.TemporalThreshold,
			SampleSize:         config.SampleSize,
		}),
		logger: logger.Named("classify"),
	}
}

// Classify returns a total role assignment in column order.
func (c *Classifier) Classify(t *table.Table) table.Roles {
	roles := make(table.Roles, 0, t.NumColumns())
	for _, name := range t.Columns() {
		col, _ := t.Column(name)
		roles = append(roles, table.ColumnRole{Name: name, Role: c.ClassifyColumn(name, col.Values)})
	}
	c.logger.Debug("columns classified",
		zap.Strings("temporal", roles.Columns(table.RoleTemporal)),
		zap.Strings("numeric", roles.Columns(table.RoleNumeric)),
		zap.Strings("categorical", roles.Columns(table.RoleCategorical)),
		zap.Strings("unclassified", roles.Columns(table.RoleUnclassified)))
	return roles
}

// ClassifyColumn decides the role of a single column. Precedence is
// temporal, numeric, categorical, then unclassified.
func (c *Classifier) ClassifyColumn(name string, values []table.Value) table.Role {
	a := c.coercer.AnalyzeTypeDistribution(values, allowEpoch(name))
	switch {
	case a.ValidCount == 0:
		return table.RoleUnclassified
	case a.AllNativeTimestamps():
		return table.RoleTemporal
	case a.TimestampRatio > c.config.TemporalThreshold:
		return table.RoleTemporal
	case a.NumericRatio >= c.config.NumericThreshold:
		return table.RoleNumeric
	case a.DistinctCount < c.config.CategoricalCutoff:
		return table.RoleCategorical
	}
	return table.RoleUnclassified
}

// Coerce converts temporal and numeric columns to typed values. Cells that
// do not fit their column's role become missing and are reported as
// parse failures; categorical and unclassified columns are left as read.
func (c *Classifier) Coerce(t *table.Table, roles table.Roles) (*table.Table, []table.ParseFailure) {
	var failures []table.ParseFailure
	fns := make(map[string]func(row int, v table.Value) table.Value)

	for _, cr := range roles {
		name, role := cr.Name, cr.Role
		var convert func(table.Value) (table.Value, bool)
		switch role {
		case table.RoleTemporal:
			epoch := allowEpoch(name)
			convert = func(v table.Value) (table.Value, bool) { return c.coercer.ToTimestamp(v, epoch) }
		case table.RoleNumeric:
			convert = c.coercer.ToNumeric
		default:
			continue
		}
		fns[name] = func(row int, v table.Value) table.Value {
			if v.IsMissing() {
				return table.NewMissingValue()
			}
			out, ok := convert(v)
			if !ok {
				failures = append(failures, table.ParseFailure{Column: name, Row: row, Raw: v.String(), Role: role})
			}
			return out
		}
	}

	typed := t.MapColumns(fns)
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].Row != failures[j].Row {
			return failures[i].Row < failures[j].Row
		}
		return failures[i].Column < failures[j].Column
	})
	if len(failures) > 0 {
		c.logger.Debug("cells failed coercion", zap.Any("by_column", table.CountByColumn(failures)))
	}
	return typed, failures
}

func allowEpoch(name string) bool {
	return timeLikeName.MatchString(name)
}
