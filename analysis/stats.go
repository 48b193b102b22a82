package analysis

import (
	"gonum.org/v1/gonum/stat"
)

// Summary holds the descriptive statistics of one group of values.
type Summary struct {
	Mean  float64
	Std   float64
	Min   float64
	Max   float64
	Count int
}

// Describe computes the summary of a slice of values. A single
// observation has zero standard deviation; an empty slice yields the
// zero Summary.
func Describe(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	s := Summary{
		Mean:  stat.Mean(values, nil),
		Min:   values[0],
		Max:   values[0],
		Count: len(values),
	}
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	for _, v := range values[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

// GroupStats computes per-group summaries of a metric, keyed by the
// group column's values. Cells missing either the key or a parseable
// metric are excluded. The returned key slice is sorted for stable
// presentation.
func GroupStats(t *Table, groupCol, metricCol string) (map[string]Summary, []string) {
	groups := map[string][]float64{}
	var keys []string
	for _, row := range t.Rows {
		key := row[groupCol]
		if key == "" {
			continue
		}
		v, ok := t.Float(row, metricCol)
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], v)
	}

	stats := make(map[string]Summary, len(groups))
	for key, values := range groups {
		stats[key] = Describe(values)
	}
	sortKeys(keys)
	return stats, keys
}
