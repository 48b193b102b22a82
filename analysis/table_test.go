package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// tableFrom builds an in-memory table without a file, for the
// aggregation tests.
func tableFrom(columns []string, rows ...map[string]string) *Table {
	return &Table{Columns: columns, Rows: rows}
}

func TestLoadTable_RoundTrip(t *testing.T) {
	path := writeCSV(t, `benchmark,ipc,cycles
fib,0.85,1000
sort,0.70,2000
`)

	table, err := LoadTable(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"benchmark", "ipc", "cycles"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "fib", table.Rows[0]["benchmark"])
	assert.Equal(t, "0.85", table.Rows[0]["ipc"])
	assert.Equal(t, "2000", table.Rows[1]["cycles"])
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestLoadTable_EmptyFile(t *testing.T) {
	path := writeCSV(t, "")
	_, err := LoadTable(path)
	assert.Error(t, err)
}

func TestTable_Float_SkipsBlankAndNonNumeric(t *testing.T) {
	table := tableFrom([]string{"ipc"},
		map[string]string{"ipc": "0.85"},
		map[string]string{"ipc": ""},
		map[string]string{"ipc": "n/a"},
	)

	v, ok := table.Float(table.Rows[0], "ipc")
	assert.True(t, ok)
	assert.Equal(t, 0.85, v)

	_, ok = table.Float(table.Rows[1], "ipc")
	assert.False(t, ok)
	_, ok = table.Float(table.Rows[2], "ipc")
	assert.False(t, ok)
}

func TestTable_NumericColumn_ExcludesBadCells(t *testing.T) {
	table := tableFrom([]string{"ipc"},
		map[string]string{"ipc": "1.0"},
		map[string]string{"ipc": "oops"},
		map[string]string{"ipc": "2.0"},
		map[string]string{"ipc": ""},
	)
	assert.Equal(t, []float64{1.0, 2.0}, table.NumericColumn("ipc"))
}

func TestTable_Filter(t *testing.T) {
	table := tableFrom([]string{"policy", "ipc"},
		map[string]string{"policy": "LRU", "ipc": "1.0"},
		map[string]string{"policy": "DIP", "ipc": "2.0"},
		map[string]string{"policy": "LRU", "ipc": "3.0"},
	)
	sub := table.Filter("policy", "LRU")
	assert.Len(t, sub.Rows, 2)
	assert.Equal(t, table.Columns, sub.Columns)
}

func TestTable_UniqueValues_NumericAwareOrder(t *testing.T) {
	table := tableFrom([]string{"sets"},
		map[string]string{"sets": "1024"},
		map[string]string{"sets": "64"},
		map[string]string{"sets": "128"},
		map[string]string{"sets": "64"},
	)
	assert.Equal(t, []string{"64", "128", "1024"}, table.UniqueValues("sets"))
}

func TestTable_UniqueValues_LexicalFallback(t *testing.T) {
	table := tableFrom([]string{"policy"},
		map[string]string{"policy": "LRU"},
		map[string]string{"policy": "DIP"},
		map[string]string{"policy": "EAF"},
	)
	assert.Equal(t, []string{"DIP", "EAF", "LRU"}, table.UniqueValues("policy"))
}
