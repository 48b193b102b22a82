package sweep

import (
	"errors"
	"regexp"
	"strconv"
)

// ErrExtractionIncomplete reports that a run's output lacked the IPC
// counter. IPC is the one field every measurement needs, so its
// absence fails the whole extraction and is treated like a run
// failure. All other fields are individually optional.
var ErrExtractionIncomplete = errors.New("extraction incomplete: IPC not found in output")

// Metrics is one simulation run's extracted counters. Pointer fields
// distinguish "not reported" (nil) from a genuine zero; a label the
// extractor cannot find stays nil rather than defaulting to zero.
type Metrics struct {
	Cycles       *int64
	IPC          *float64
	FetchedInstr *int64
	RetiredInstr *int64

	// Cache-geometry profile counters.
	ICacheAccesses *int64
	ICacheReads    *int64
	ICacheWrites   *int64
	ICacheHits     *int64
	ICacheMisses   *int64
	ICacheHitRate  *float64
	ICacheMissRate *float64
	DCacheAccesses *int64
	DCacheReads    *int64
	DCacheWrites   *int64
	DCacheHits     *int64
	DCacheMisses   *int64
	DCacheHitRate  *float64
	DCacheMissRate *float64

	// Policy-comparison profile counters. The read/write hit and miss
	// splits are apportioned from the totals proportionally to the
	// observed read/write access ratio; the simulator does not report
	// them split directly, so these are approximations, not ground
	// truth.
	DCacheReadHits    *int64
	DCacheWriteHits   *int64
	DCacheReadMisses  *int64
	DCacheWriteMisses *int64
	DCacheTotalMisses *int64
	MPKI              *float64
}

// Label-anchored patterns: "<Label>: <number>". Core counters match
// the simulator's rdump output exactly; cache-subsystem labels are
// case-insensitive.
var (
	cyclesPattern    = regexp.MustCompile(`Cycles:\s*(\d+)`)
	ipcPattern       = regexp.MustCompile(`IPC:\s*([\d.]+)`)
	fetchedPattern   = regexp.MustCompile(`FetchedInstr:\s*(\d+)`)
	retiredPattern   = regexp.MustCompile(`RetiredInstr:\s*(\d+)`)
	iAccessesPattern = regexp.MustCompile(`(?i)I-cache\s+accesses:\s*(\d+)`)
	iReadsPattern    = regexp.MustCompile(`(?i)I-cache\s+reads:\s*(\d+)`)
	iWritesPattern   = regexp.MustCompile(`(?i)I-cache\s+writes:\s*(\d+)`)
	iHitsPattern     = regexp.MustCompile(`(?i)I-cache\s+hits:\s*(\d+)`)
	iMissesPattern   = regexp.MustCompile(`(?i)I-cache\s+misses:\s*(\d+)`)
	iHitRatePattern  = regexp.MustCompile(`(?i)I-cache\s+hit\s+rate:\s*([\d.]+)`)
	iMissRatePattern = regexp.MustCompile(`(?i)I-cache\s+miss\s+rate:\s*([\d.]+)`)
	dAccessesPattern = regexp.MustCompile(`(?i)D-cache\s+accesses:\s*(\d+)`)
	dReadsPattern    = regexp.MustCompile(`(?i)D-cache\s+reads:\s*(\d+)`)
	dWritesPattern   = regexp.MustCompile(`(?i)D-cache\s+writes:\s*(\d+)`)
	dHitsPattern     = regexp.MustCompile(`(?i)D-cache\s+hits:\s*(\d+)`)
	dMissesPattern   = regexp.MustCompile(`(?i)D-cache\s+misses:\s*(\d+)`)
	dHitRatePattern  = regexp.MustCompile(`(?i)D-cache\s+hit\s+rate:\s*([\d.]+)`)
	dMissRatePattern = regexp.MustCompile(`(?i)D-cache\s+miss\s+rate:\s*([\d.]+)`)
)

func matchInt(pattern *regexp.Regexp, text string) *int64 {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func matchFloat(pattern *regexp.Regexp, text string) *float64 {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseCore pulls the counters common to both extraction profiles.
func parseCore(text string) Metrics {
	return Metrics{
		Cycles:       matchInt(cyclesPattern, text),
		IPC:          matchFloat(ipcPattern, text),
		FetchedInstr: matchInt(fetchedPattern, text),
		RetiredInstr: matchInt(retiredPattern, text),
	}
}

// ParseGeometry extracts the cache-geometry profile: core counters
// plus raw I/D cache accesses, hits, misses and rates. Each field is
// pulled independently; a partially parseable output is still usable
// for the fields it has. Only a missing IPC fails the extraction.
func ParseGeometry(text string) (Metrics, error) {
	m := parseCore(text)
	m.ICacheAccesses = matchInt(iAccessesPattern, text)
	m.ICacheReads = matchInt(iReadsPattern, text)
	m.ICacheWrites = matchInt(iWritesPattern, text)
	m.ICacheHits = matchInt(iHitsPattern, text)
	m.ICacheMisses = matchInt(iMissesPattern, text)
	m.ICacheHitRate = matchFloat(iHitRatePattern, text)
	m.ICacheMissRate = matchFloat(iMissRatePattern, text)
	m.DCacheAccesses = matchInt(dAccessesPattern, text)
	m.DCacheReads = matchInt(dReadsPattern, text)
	m.DCacheWrites = matchInt(dWritesPattern, text)
	m.DCacheHits = matchInt(dHitsPattern, text)
	m.DCacheMisses = matchInt(dMissesPattern, text)
	m.DCacheHitRate = matchFloat(dHitRatePattern, text)
	m.DCacheMissRate = matchFloat(dMissRatePattern, text)

	if m.IPC == nil {
		return m, ErrExtractionIncomplete
	}
	return m, nil
}

// splitProportional apportions a total between reads and writes by
// the observed read/write access ratio. With no accesses observed the
// whole total is attributed to writes (nothing was read); with reads
// or writes unreported the whole total is attributed to reads.
func splitProportional(total int64, reads, writes *int64) (readPart, writePart int64) {
	if reads == nil || writes == nil {
		return total, 0
	}
	accesses := *reads + *writes
	if accesses == 0 {
		return 0, total
	}
	readPart = int64(float64(total) * float64(*reads) / float64(accesses))
	return readPart, total - readPart
}

// ParsePolicy extracts the policy-comparison profile: core counters,
// D-cache totals, approximate read/write splits, and MPKI derived from
// total D-cache misses and retired instructions. MPKI is zero-safe:
// it is 0 when no retired instructions are observed.
func ParsePolicy(text string) (Metrics, error) {
	m := parseCore(text)
	m.DCacheAccesses = matchInt(dAccessesPattern, text)
	m.DCacheReads = matchInt(dReadsPattern, text)
	m.DCacheWrites = matchInt(dWritesPattern, text)

	if misses := matchInt(dMissesPattern, text); misses != nil {
		readMisses, writeMisses := splitProportional(*misses, m.DCacheReads, m.DCacheWrites)
		total := readMisses + writeMisses
		m.DCacheReadMisses = &readMisses
		m.DCacheWriteMisses = &writeMisses
		m.DCacheTotalMisses = &total
	}
	if hits := matchInt(dHitsPattern, text); hits != nil {
		readHits, writeHits := splitProportional(*hits, m.DCacheReads, m.DCacheWrites)
		m.DCacheReadHits = &readHits
		m.DCacheWriteHits = &writeHits
	}

	mpki := 0.0
	if m.DCacheTotalMisses != nil && m.RetiredInstr != nil && *m.RetiredInstr > 0 {
		mpki = float64(*m.DCacheTotalMisses) / float64(*m.RetiredInstr) * 1000.0
	}
	m.MPKI = &mpki

	if m.IPC == nil {
		return m, ErrExtractionIncomplete
	}
	return m, nil
}
