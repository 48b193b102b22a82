package analysis

import (
	"fmt"
	"os"
	"strings"
)

const reportWidth = 80

// WriteReport renders the fixed-section text report for a results
// table: summary statistics, best configuration (or policy) by
// metric, per-group comparison, parameter-impact tables, and a
// per-benchmark breakdown. The profile is detected from the table's
// columns: a "policy" column selects the policy-comparison report.
func WriteReport(t *Table, path string) error {
	var b strings.Builder
	if t.HasColumn("policy") {
		writePolicyReport(t, &b)
	} else {
		writeGeometryReport(t, &b)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func rule(b *strings.Builder, ch string) {
	b.WriteString(strings.Repeat(ch, reportWidth))
	b.WriteString("\n")
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n" + title + "\n")
	rule(b, "-")
}

func writeGeometryReport(t *Table, b *strings.Builder) {
	rule(b, "=")
	b.WriteString("Cache Parameter Sweep Analysis Report\n")
	rule(b, "=")

	section(b, "SUMMARY STATISTICS")
	for _, col := range []string{"cycles", "ipc", "d_cache_miss_rate", "i_cache_miss_rate"} {
		if !t.HasColumn(col) {
			continue
		}
		s := Describe(t.NumericColumn(col))
		if s.Count == 0 {
			continue
		}
		fmt.Fprintf(b, "%s:\n", col)
		fmt.Fprintf(b, "  Mean: %.4f\n", s.Mean)
		fmt.Fprintf(b, "  Std:  %.4f\n", s.Std)
		fmt.Fprintf(b, "  Min:  %.4f\n", s.Min)
		fmt.Fprintf(b, "  Max:  %.4f\n\n", s.Max)
	}

	section(b, "TOP 5 CONFIGURATIONS BY IPC")
	for i, rank := range TopConfigs(t, "ipc", 5) {
		fmt.Fprintf(b, "%d. Sets: %s, Line: %sB, Assoc: %s-way, IPC: %.4f\n",
			i+1, rank.NumSets, rank.LineSize, rank.Assoc, rank.Mean)
	}

	section(b, "PARAMETER IMPACT ANALYSIS")
	writeImpact(t, b, "Cache Size Impact on IPC", "d_cache_size_kb", "ipc", "%sKB: IPC = %.4f ± %.4f\n")
	writeImpact(t, b, "Line Size Impact on D-Cache Miss Rate", "line_size_bytes", "d_cache_miss_rate", "%sB: Miss Rate = %.4f ± %.4f\n")
	writeImpact(t, b, "Associativity Impact on IPC", "associativity", "ipc", "%s-way: IPC = %.4f ± %.4f\n")

	if t.HasColumn("d_cache_size_kb") && t.HasColumn("associativity") {
		section(b, "IPC BY CACHE SIZE AND ASSOCIATIVITY")
		writePivot(b, Pivot(t, "d_cache_size_kb", "associativity", "ipc"), "size\\assoc")
	}

	section(b, "BENCHMARK ANALYSIS")
	for _, bench := range t.UniqueValues("benchmark") {
		sub := t.Filter("benchmark", bench)
		fmt.Fprintf(b, "\n%s:\n", bench)
		if s := Describe(sub.NumericColumn("ipc")); s.Count > 0 {
			fmt.Fprintf(b, "  Avg IPC: %.4f\n", s.Mean)
		}
		if s := Describe(sub.NumericColumn("d_cache_miss_rate")); s.Count > 0 {
			fmt.Fprintf(b, "  Avg D-Cache Miss Rate: %.4f\n", s.Mean)
		}
		if s := Describe(sub.NumericColumn("cycles")); s.Count > 0 {
			fmt.Fprintf(b, "  Avg Cycles: %.0f\n", s.Mean)
		}
	}
}

func writePolicyReport(t *Table, b *strings.Builder) {
	rule(b, "=")
	b.WriteString("REPLACEMENT POLICY PERFORMANCE ANALYSIS\n")
	rule(b, "=")

	section(b, "SUMMARY STATISTICS")
	for _, metric := range []string{"ipc", "mpki"} {
		stats, keys := GroupStats(t, "policy", metric)
		fmt.Fprintf(b, "%s by policy:\n", metric)
		for _, key := range keys {
			s := stats[key]
			fmt.Fprintf(b, "  %-6s mean=%.4f std=%.4f min=%.4f max=%.4f\n", key, s.Mean, s.Std, s.Min, s.Max)
		}
		b.WriteString("\n")
	}

	section(b, "BEST POLICY BY METRIC")
	if best, s, ok := bestGroup(t, "policy", "ipc", true); ok {
		fmt.Fprintf(b, "Best IPC: %s (IPC = %.4f)\n", best, s.Mean)
	}
	if best, s, ok := bestGroup(t, "policy", "mpki", false); ok {
		fmt.Fprintf(b, "Best MPKI: %s (MPKI = %.2f)\n", best, s.Mean)
	}

	section(b, "POLICY COMPARISON")
	ipcStats, keys := GroupStats(t, "policy", "ipc")
	mpkiStats, _ := GroupStats(t, "policy", "mpki")
	for _, key := range keys {
		fmt.Fprintf(b, "%s:\n", key)
		if s, ok := ipcStats[key]; ok {
			fmt.Fprintf(b, "  Average IPC: %.4f ± %.4f\n", s.Mean, s.Std)
		}
		if s, ok := mpkiStats[key]; ok {
			fmt.Fprintf(b, "  Average MPKI: %.2f ± %.2f\n", s.Mean, s.Std)
		}
		fmt.Fprintf(b, "  Number of benchmarks: %d\n\n", len(t.Filter("policy", key).Rows))
	}

	section(b, "RELATIVE IPC (NORMALIZED TO LRU)")
	entries := NormalizeToBaseline(t, "policy", "LRU", "ipc")
	if len(entries) == 0 {
		b.WriteString("No LRU baseline available.\n")
	}
	for _, e := range entries {
		fmt.Fprintf(b, "  %-6s %-20s %.4f\n", e.Group, e.Benchmark, e.Ratio)
	}

	section(b, "IPC BY BENCHMARK AND POLICY")
	writePivot(b, Pivot(t, "benchmark", "policy", "ipc"), "benchmark\\policy")

	b.WriteString("\n")
	rule(b, "=")
}

// bestGroup returns the group with the highest (or lowest) mean for a
// metric.
func bestGroup(t *Table, groupCol, metricCol string, highest bool) (string, Summary, bool) {
	stats, keys := GroupStats(t, groupCol, metricCol)
	if len(keys) == 0 {
		return "", Summary{}, false
	}
	best := keys[0]
	for _, key := range keys[1:] {
		if highest && stats[key].Mean > stats[best].Mean {
			best = key
		}
		if !highest && stats[key].Mean < stats[best].Mean {
			best = key
		}
	}
	return best, stats[best], true
}

func writeImpact(t *Table, b *strings.Builder, title, groupCol, metricCol, format string) {
	if !t.HasColumn(groupCol) || !t.HasColumn(metricCol) {
		return
	}
	stats, keys := GroupStats(t, groupCol, metricCol)
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, key := range keys {
		s := stats[key]
		fmt.Fprintf(b, "  "+format, key, s.Mean, s.Std)
	}
}

// writePivot renders a pivot table as a fixed-width text grid with
// empty cells left blank.
func writePivot(b *strings.Builder, p *PivotTable, corner string) {
	fmt.Fprintf(b, "%-18s", corner)
	for _, ck := range p.ColKeys {
		fmt.Fprintf(b, "%12s", ck)
	}
	b.WriteString("\n")
	for _, rk := range p.RowKeys {
		fmt.Fprintf(b, "%-18s", rk)
		for _, ck := range p.ColKeys {
			if v, ok := p.Cell(rk, ck); ok {
				fmt.Fprintf(b, "%12.4f", v)
			} else {
				fmt.Fprintf(b, "%12s", "")
			}
		}
		b.WriteString("\n")
	}
}
