package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe_KnownValues(t *testing.T) {
	s := Describe([]float64{1, 2, 3, 4})
	assert.Equal(t, 2.5, s.Mean)
	assert.InDelta(t, 1.2909944, s.Std, 1e-6) // sample standard deviation
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 4, s.Count)
}

func TestDescribe_SingleObservationHasZeroStd(t *testing.T) {
	s := Describe([]float64{7})
	assert.Equal(t, 7.0, s.Mean)
	assert.Equal(t, 0.0, s.Std)
	assert.Equal(t, 1, s.Count)
}

func TestDescribe_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Describe(nil))
}

func TestGroupStats_MeansPerGroup(t *testing.T) {
	table := tableFrom([]string{"policy", "ipc"},
		map[string]string{"policy": "LRU", "ipc": "1.0"},
		map[string]string{"policy": "LRU", "ipc": "3.0"},
		map[string]string{"policy": "DIP", "ipc": "2.0"},
	)

	stats, keys := GroupStats(table, "policy", "ipc")

	assert.Equal(t, []string{"DIP", "LRU"}, keys)
	assert.Equal(t, 2.0, stats["LRU"].Mean)
	assert.Equal(t, 2, stats["LRU"].Count)
	assert.Equal(t, 2.0, stats["DIP"].Mean)
	assert.Equal(t, 1, stats["DIP"].Count)
}

func TestGroupStats_ExcludesMissingCellsNotWholeGroups(t *testing.T) {
	// GIVEN a group with one unparseable metric cell
	table := tableFrom([]string{"sets", "ipc"},
		map[string]string{"sets": "64", "ipc": "1.0"},
		map[string]string{"sets": "64", "ipc": ""},
		map[string]string{"sets": "64", "ipc": "bogus"},
		map[string]string{"sets": "128", "ipc": "2.0"},
	)

	// WHEN grouped
	stats, keys := GroupStats(table, "sets", "ipc")

	// THEN the bad cells are excluded, not the group or the report
	assert.Equal(t, []string{"64", "128"}, keys)
	assert.Equal(t, 1, stats["64"].Count)
	assert.Equal(t, 1.0, stats["64"].Mean)
}

func TestGroupStats_EmptyKeyExcluded(t *testing.T) {
	table := tableFrom([]string{"sets", "ipc"},
		map[string]string{"sets": "", "ipc": "1.0"},
	)
	stats, keys := GroupStats(table, "sets", "ipc")
	assert.Empty(t, keys)
	assert.Empty(t, stats)
}
