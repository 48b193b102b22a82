package sweep

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrNoResults reports that a sweep finished with zero collected
// measurements. It is the only sweep-fatal condition.
var ErrNoResults = errors.New("no results collected")

// GeometryColumns is the canonical column order of a geometry sweep's
// results file: configuration fields first, then counters.
var GeometryColumns = []string{
	"benchmark",
	"d_cache_num_sets",
	"line_size_bytes",
	"associativity",
	"d_cache_size_kb",
	"i_cache_num_sets",
	"i_cache_assoc",
	"cycles",
	"ipc",
	"i_cache_accesses",
	"i_cache_reads",
	"i_cache_writes",
	"i_cache_hits",
	"i_cache_misses",
	"i_cache_hit_rate",
	"i_cache_miss_rate",
	"d_cache_accesses",
	"d_cache_reads",
	"d_cache_writes",
	"d_cache_hits",
	"d_cache_misses",
	"d_cache_hit_rate",
	"d_cache_miss_rate",
}

// PolicyColumns is the canonical column order of a policy sweep's
// results file.
var PolicyColumns = []string{
	"policy",
	"benchmark",
	"cycles",
	"ipc",
	"mpki",
	"d_cache_read_misses",
	"d_cache_write_misses",
	"d_cache_total_misses",
	"d_cache_read_hits",
	"d_cache_write_hits",
	"fetched_instr",
	"retired_instr",
}

// ResultRow is the flattened join of one configuration (or policy),
// one benchmark, and one metrics record. Cells absent from a row are
// written as empty fields, never zero-filled.
type ResultRow map[string]string

// Store accumulates result rows in arrival order during a sweep and
// writes them exactly once at sweep end. It is never mutated after
// finalization; each sweep invocation gets its own timestamped file.
type Store struct {
	columns   []string
	rows      []ResultRow
	finalized bool
}

// NewStore creates an empty store with the given canonical column
// order.
func NewStore(columns []string) *Store {
	return &Store{columns: columns}
}

// Append adds one row. Rows keep arrival order.
func (s *Store) Append(row ResultRow) {
	s.rows = append(s.rows, row)
}

// Len reports the number of accumulated rows.
func (s *Store) Len() int { return len(s.rows) }

// header is the canonical columns followed by any unexpected extra
// keys, appended alphabetically. The fixed prefix keeps every sweep
// run's output diff-able and concatenable.
func (s *Store) header() []string {
	known := make(map[string]bool, len(s.columns))
	for _, col := range s.columns {
		known[col] = true
	}
	extras := map[string]bool{}
	for _, row := range s.rows {
		for key := range row {
			if !known[key] {
				extras[key] = true
			}
		}
	}
	header := append([]string{}, s.columns...)
	extraKeys := make([]string, 0, len(extras))
	for key := range extras {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	return append(header, extraKeys...)
}

// Finalize writes the accumulated rows as delimited text to path. It
// may be called at most once; an empty store is ErrNoResults. Rows
// collected before a fatal error are still flushed, so an interrupted
// sweep does not lose completed work.
func (s *Store) Finalize(path string) error {
	if s.finalized {
		return errors.New("results store already finalized")
	}
	if len(s.rows) == 0 {
		return ErrNoResults
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}
	defer f.Close()

	header := s.header()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	record := make([]string, len(header))
	for _, row := range s.rows {
		for i, col := range header {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing results: %w", err)
	}
	s.finalized = true
	return nil
}

// TimestampedPath inserts a per-invocation timestamp before the base
// filename's extension so re-running the sweep never overwrites a
// prior run's output.
func TimestampedPath(dir, base string, now time.Time) string {
	stamp := now.Format("20060102_150405")
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext) + "_" + stamp + ext
	return filepath.Join(dir, name)
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// GeometryRow flattens one geometry measurement into a result row.
func GeometryRow(cfg Config, benchmark string, m Metrics) ResultRow {
	row := ResultRow{
		"benchmark":         benchmark,
		"d_cache_num_sets":  strconv.Itoa(cfg.DCacheNumSets),
		"line_size_bytes":   strconv.Itoa(cfg.LineSizeBytes),
		"associativity":     strconv.Itoa(cfg.Associativity),
		"d_cache_size_kb":   strconv.FormatFloat(cfg.DCacheSizeKB, 'g', -1, 64),
		"i_cache_num_sets":  strconv.Itoa(cfg.ICacheNumSets),
		"i_cache_assoc":     strconv.Itoa(cfg.ICacheAssoc),
		"cycles":            formatInt(m.Cycles),
		"ipc":               formatFloat(m.IPC),
		"i_cache_accesses":  formatInt(m.ICacheAccesses),
		"i_cache_reads":     formatInt(m.ICacheReads),
		"i_cache_writes":    formatInt(m.ICacheWrites),
		"i_cache_hits":      formatInt(m.ICacheHits),
		"i_cache_misses":    formatInt(m.ICacheMisses),
		"i_cache_hit_rate":  formatFloat(m.ICacheHitRate),
		"i_cache_miss_rate": formatFloat(m.ICacheMissRate),
		"d_cache_accesses":  formatInt(m.DCacheAccesses),
		"d_cache_reads":     formatInt(m.DCacheReads),
		"d_cache_writes":    formatInt(m.DCacheWrites),
		"d_cache_hits":      formatInt(m.DCacheHits),
		"d_cache_misses":    formatInt(m.DCacheMisses),
		"d_cache_hit_rate":  formatFloat(m.DCacheHitRate),
		"d_cache_miss_rate": formatFloat(m.DCacheMissRate),
	}
	return row
}

// PolicyRow flattens one policy measurement into a result row.
func PolicyRow(policy, benchmark string, m Metrics) ResultRow {
	return ResultRow{
		"policy":               policy,
		"benchmark":            benchmark,
		"cycles":               formatInt(m.Cycles),
		"ipc":                  formatFloat(m.IPC),
		"mpki":                 formatFloat(m.MPKI),
		"d_cache_read_misses":  formatInt(m.DCacheReadMisses),
		"d_cache_write_misses": formatInt(m.DCacheWriteMisses),
		"d_cache_total_misses": formatInt(m.DCacheTotalMisses),
		"d_cache_read_hits":    formatInt(m.DCacheReadHits),
		"d_cache_write_hits":   formatInt(m.DCacheWriteHits),
		"fetched_instr":        formatInt(m.FetchedInstr),
		"retired_instr":        formatInt(m.RetiredInstr),
	}
}
