// Package sweep orchestrates design-space exploration for the cache
// simulator: it expands parameter ranges into concrete configurations,
// rebuilds the simulator for each one, runs benchmarks against the
// rebuilt binary, extracts performance counters from its output, and
// accumulates the measurements into a results store.
package sweep

import (
	"github.com/sirupsen/logrus"
)

// Policies is the fixed set of D-cache replacement policies exercised
// by a policy sweep, in comparison order. LRU is the baseline.
var Policies = []string{"LRU", "DIP", "DRRIP", "EAF"}

// policyEnums maps a policy name to the enum constant used in the
// simulator source.
var policyEnums = map[string]string{
	"LRU":   "POLICY_LRU",
	"DIP":   "POLICY_DIP",
	"DRRIP": "POLICY_DRRIP",
	"EAF":   "POLICY_EAF",
}

// Config is one concrete cache geometry to build and measure. It is
// immutable once generated; DCacheSizeKB is always recomputed from the
// structural parameters, never supplied.
type Config struct {
	DCacheNumSets int
	LineSizeBytes int
	Associativity int
	DCacheSizeKB  float64
	ICacheNumSets int
	ICacheAssoc   int
}

// CacheSizeKB derives the total cache capacity in KB:
// num_sets * line_size_bytes * associativity / 1024.
func CacheSizeKB(numSets, lineSizeBytes, associativity int) float64 {
	return float64(numSets*lineSizeBytes*associativity) / 1024.0
}

// Space declares the parameter ranges of a geometry sweep. The D-cache
// dimensions are swept as a Cartesian product; the I-cache overrides
// are held fixed across the sweep and collapse to their first element
// when given as arrays.
type Space struct {
	DCacheNumSets   []int
	LineSizesBytes  []int
	Associativities []int
	ICacheNumSets   []int
	ICacheAssoc     []int
}

const (
	defaultICacheNumSets = 64
	defaultICacheAssoc   = 4
)

// firstOrDefault collapses an array-valued override to its first
// element, falling back to def when unset.
func firstOrDefault(values []int, def int) int {
	if len(values) == 0 {
		return def
	}
	return values[0]
}

// validConfig is the validity predicate applied before any build
// attempt. Invalid tuples are skipped, never coerced.
func validConfig(numSets, lineSizeBytes, associativity int) bool {
	return numSets >= 1
}

// Generate expands the declared ranges into the ordered sequence of
// valid configurations. Iteration order follows the declared parameter
// order (sets, then line size, then associativity) so progress
// reporting is deterministic. Returns the configurations and the count
// of tuples excluded by the validity predicate; each exclusion is
// logged as a skip diagnostic.
func (s Space) Generate() ([]Config, int) {
	iSets := firstOrDefault(s.ICacheNumSets, defaultICacheNumSets)
	iAssoc := firstOrDefault(s.ICacheAssoc, defaultICacheAssoc)

	var configs []Config
	skipped := 0
	for _, numSets := range s.DCacheNumSets {
		for _, lineSize := range s.LineSizesBytes {
			for _, assoc := range s.Associativities {
				if !validConfig(numSets, lineSize, assoc) {
					skipped++
					logrus.Warnf("Skipping invalid config: %d sets, %dB line, %d-way", numSets, lineSize, assoc)
					continue
				}
				configs = append(configs, Config{
					DCacheNumSets: numSets,
					LineSizeBytes: lineSize,
					Associativity: assoc,
					DCacheSizeKB:  CacheSizeKB(numSets, lineSize, assoc),
					ICacheNumSets: iSets,
					ICacheAssoc:   iAssoc,
				})
			}
		}
	}
	return configs, skipped
}
