// Package analysis computes grouped statistics, rankings, baseline
// comparisons and pivot tables over a persisted sweep results file.
// It operates purely on the stored dataset and has no dependency on
// the live sweep.
package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Table is the canonical in-memory tabular representation of a
// results file: a header and rows of string cells. Numeric access
// helpers skip blank and non-numeric cells so a ragged dataset
// degrades per-cell rather than failing a whole report.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// LoadTable reads a delimited results file produced by a sweep.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate short rows
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("results file is empty")
	}

	t := &Table{Columns: records[0]}
	for _, record := range records[1:] {
		row := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Float parses one cell as a number. Blank and non-numeric cells
// report ok=false and are excluded from aggregations.
func (t *Table) Float(row map[string]string, col string) (float64, bool) {
	raw, present := row[col]
	if !present || raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NumericColumn returns every parseable value of a column in row
// order.
func (t *Table) NumericColumn(col string) []float64 {
	var values []float64
	for _, row := range t.Rows {
		if v, ok := t.Float(row, col); ok {
			values = append(values, v)
		}
	}
	return values
}

// Filter returns the sub-table whose rows have the given cell value.
func (t *Table) Filter(col, value string) *Table {
	sub := &Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if row[col] == value {
			sub.Rows = append(sub.Rows, row)
		}
	}
	return sub
}

// UniqueValues returns the distinct non-empty values of a column,
// sorted numerically when every value parses as a number and
// lexically otherwise.
func (t *Table) UniqueValues(col string) []string {
	seen := map[string]bool{}
	var values []string
	for _, row := range t.Rows {
		v := row[col]
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sortKeys(values)
	return values
}

// sortKeys orders group keys numerically when possible so parameter
// values like 64/128/1024 line up, falling back to lexical order.
func sortKeys(keys []string) {
	allNumeric := true
	for _, k := range keys {
		if _, err := strconv.ParseFloat(k, 64); err != nil {
			allNumeric = false
			break
		}
	}
	if allNumeric {
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.ParseFloat(keys[i], 64)
			b, _ := strconv.ParseFloat(keys[j], 64)
			return a < b
		})
		return
	}
	sort.Strings(keys)
}
