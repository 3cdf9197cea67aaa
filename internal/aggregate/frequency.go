package aggregate

import (
	"sort"

	domainstats "csvdash/domain/stats"
	"csvdash/domain/table"
)

// Frequencies counts the non-missing values of col, sorted by descending
// count with ties broken by value so the order is stable across calls.
func Frequencies(col table.Column) domainstats.Frequency {
	counts := make(map[string]int)
	total := 0
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		counts[v.String()]++
		total++
	}

	values := make([]domainstats.ValueCount, 0, len(counts))
	for value, count := range counts {
		values = append(values, domainstats.ValueCount{
			Value: value,
			Count: count,
			Ratio: float64(count) / float64(total),
		})
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Count != values[j].Count {
			return values[i].Count > values[j].Count
		}
		return values[i].Value < values[j].Value
	})

	return domainstats.Frequency{Column: col.Name, Total: total, Values: values}
}

// FrequenciesAll builds a frequency table for every categorical column.
func FrequenciesAll(t *table.Table, roles table.Roles) map[string]domainstats.Frequency {
	out := make(map[string]domainstats.Frequency)
	for _, name := range roles.Columns(table.RoleCategorical) {
		col, err := t.Column(name)
		if err != nil {
			continue
		}
		out[name] = Frequencies(col)
	}
	return out
}
