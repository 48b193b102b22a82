package analysis

import (
	"gonum.org/v1/gonum/stat"
)

// RelativeEntry is one (group, benchmark) metric expressed as a ratio
// against the baseline group's value for the same benchmark.
type RelativeEntry struct {
	Group     string
	Benchmark string
	Ratio     float64
}

// NormalizeToBaseline computes, for every (group, benchmark) pair, the
// metric's ratio against the designated baseline group's mean for the
// same benchmark. Pairs whose baseline value is zero or absent are
// skipped rather than producing a division error. The baseline group
// itself is included (ratio 1.0 by construction when it has a single
// observation).
func NormalizeToBaseline(t *Table, groupCol, baseline, metricCol string) []RelativeEntry {
	baselineByBench := map[string]float64{}
	for _, bench := range t.UniqueValues("benchmark") {
		var values []float64
		for _, row := range t.Rows {
			if row[groupCol] != baseline || row["benchmark"] != bench {
				continue
			}
			if v, ok := t.Float(row, metricCol); ok {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			baselineByBench[bench] = stat.Mean(values, nil)
		}
	}

	var entries []RelativeEntry
	for _, group := range t.UniqueValues(groupCol) {
		for _, bench := range t.UniqueValues("benchmark") {
			base, haveBase := baselineByBench[bench]
			if !haveBase || base == 0 {
				continue
			}
			var values []float64
			for _, row := range t.Rows {
				if row[groupCol] != group || row["benchmark"] != bench {
					continue
				}
				if v, ok := t.Float(row, metricCol); ok {
					values = append(values, v)
				}
			}
			if len(values) == 0 {
				continue
			}
			entries = append(entries, RelativeEntry{
				Group:     group,
				Benchmark: bench,
				Ratio:     stat.Mean(values, nil) / base,
			})
		}
	}
	return entries
}
