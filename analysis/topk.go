package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// configColumns identify one distinct structural configuration in a
// geometry results table.
var configColumns = []string{"d_cache_num_sets", "line_size_bytes", "associativity"}

// ConfigRank is one configuration's aggregate standing for a target
// metric.
type ConfigRank struct {
	NumSets  string
	LineSize string
	Assoc    string
	Mean     float64
	Count    int
}

// TopConfigs ranks the distinct structural configurations by the mean
// of a target metric, descending, and returns the first k. Ties keep
// first-encountered order. Rows missing a configuration field or a
// parseable metric are excluded. Returns nil when the table lacks the
// configuration columns.
func TopConfigs(t *Table, metricCol string, k int) []ConfigRank {
	for _, col := range configColumns {
		if !t.HasColumn(col) {
			return nil
		}
	}

	type group struct {
		rank   ConfigRank
		values []float64
	}
	index := map[[3]string]*group{}
	var order [][3]string

	for _, row := range t.Rows {
		key := [3]string{row["d_cache_num_sets"], row["line_size_bytes"], row["associativity"]}
		if key[0] == "" || key[1] == "" || key[2] == "" {
			continue
		}
		v, ok := t.Float(row, metricCol)
		if !ok {
			continue
		}
		g, seen := index[key]
		if !seen {
			g = &group{rank: ConfigRank{NumSets: key[0], LineSize: key[1], Assoc: key[2]}}
			index[key] = g
			order = append(order, key)
		}
		g.values = append(g.values, v)
	}

	ranks := make([]ConfigRank, 0, len(order))
	for _, key := range order {
		g := index[key]
		g.rank.Mean = stat.Mean(g.values, nil)
		g.rank.Count = len(g.values)
		ranks = append(ranks, g.rank)
	}

	// Stable sort preserves first-encountered order on ties.
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Mean > ranks[j].Mean })
	if k > 0 && len(ranks) > k {
		ranks = ranks[:k]
	}
	return ranks
}
