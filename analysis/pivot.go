package analysis

import (
	"gonum.org/v1/gonum/stat"
)

// PivotTable cross-tabulates a metric's mean over two grouping
// dimensions for heatmap-style presentation. Cells with no parseable
// observation are simply absent.
type PivotTable struct {
	RowKeys []string
	ColKeys []string
	Cells   map[string]map[string]float64 // row key -> col key -> mean
}

// Cell looks up one mean; ok=false marks an empty cell.
func (p *PivotTable) Cell(row, col string) (float64, bool) {
	cols, present := p.Cells[row]
	if !present {
		return 0, false
	}
	v, present := cols[col]
	return v, present
}

// Pivot aggregates the mean of metricCol over rowCol × colCol. Row
// and column keys are ordered numerically when possible.
func Pivot(t *Table, rowCol, colCol, metricCol string) *PivotTable {
	values := map[string]map[string][]float64{}
	for _, row := range t.Rows {
		rk, ck := row[rowCol], row[colCol]
		if rk == "" || ck == "" {
			continue
		}
		v, ok := t.Float(row, metricCol)
		if !ok {
			continue
		}
		if values[rk] == nil {
			values[rk] = map[string][]float64{}
		}
		values[rk][ck] = append(values[rk][ck], v)
	}

	p := &PivotTable{
		RowKeys: t.UniqueValues(rowCol),
		ColKeys: t.UniqueValues(colCol),
		Cells:   map[string]map[string]float64{},
	}
	for rk, cols := range values {
		p.Cells[rk] = make(map[string]float64, len(cols))
		for ck, vs := range cols {
			p.Cells[rk][ck] = stat.Mean(vs, nil)
		}
	}
	return p
}
