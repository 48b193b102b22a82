package sweep

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Verdict is the outcome of the differential sanity check between a
// new measurement and the most recent prior measurement for the same
// benchmark under a different configuration or policy.
type Verdict int

const (
	// VerdictFirst: no prior record exists for the benchmark.
	VerdictFirst Verdict = iota
	// VerdictDifferent: the records differ, as expected when the
	// configuration change took effect.
	VerdictDifferent
	// VerdictIdentical: the records are statistically
	// indistinguishable. Strong signal that a configuration change
	// failed to take effect (stale binary, failed source patch, or a
	// no-op policy). Flagged, never auto-corrected.
	VerdictIdentical
)

func (v Verdict) String() string {
	switch v {
	case VerdictFirst:
		return "FIRST"
	case VerdictDifferent:
		return "DIFFERENT"
	case VerdictIdentical:
		return "IDENTICAL"
	default:
		return "UNKNOWN"
	}
}

// identicalEpsilon is the tolerance for floating-point key metrics;
// integer counters are compared exactly.
const identicalEpsilon = 1e-4

// KeyMetrics are the comparison keys of one measurement: IPC, the
// normalized miss metric (MPKI for policy sweeps, D-cache miss rate
// for geometry sweeps), cycles and total misses.
type KeyMetrics struct {
	Label     string // configuration or policy that produced the record
	Benchmark string
	IPC       float64
	MissKey   float64
	Cycles    int64
	Misses    int64
}

// keyMetricsFrom flattens a Metrics record to its comparison keys.
// Absent fields compare as zero; missKey picks MPKI when present,
// otherwise the D-cache miss rate.
func keyMetricsFrom(label, benchmark string, m Metrics) KeyMetrics {
	k := KeyMetrics{Label: label, Benchmark: benchmark}
	if m.IPC != nil {
		k.IPC = *m.IPC
	}
	if m.MPKI != nil {
		k.MissKey = *m.MPKI
	} else if m.DCacheMissRate != nil {
		k.MissKey = *m.DCacheMissRate
	}
	if m.Cycles != nil {
		k.Cycles = *m.Cycles
	}
	if m.DCacheTotalMisses != nil {
		k.Misses = *m.DCacheTotalMisses
	} else if m.DCacheMisses != nil {
		k.Misses = *m.DCacheMisses
	}
	return k
}

// CheckIdentical compares a new record against the most recent prior
// record for the same benchmark. An IDENTICAL verdict is logged
// prominently with both records' full values; the sweep continues
// collecting data either way.
func CheckIdentical(newRec KeyMetrics, prior []KeyMetrics) (Verdict, *KeyMetrics) {
	if len(prior) == 0 {
		return VerdictFirst, nil
	}
	prev := prior[len(prior)-1]

	if math.Abs(newRec.IPC-prev.IPC) < identicalEpsilon &&
		math.Abs(newRec.MissKey-prev.MissKey) < identicalEpsilon &&
		newRec.Cycles == prev.Cycles &&
		newRec.Misses == prev.Misses {
		logrus.Warnf("SUSPICIOUS: %s produced results identical to %s on %s; the configuration change may not have taken effect",
			newRec.Label, prev.Label, newRec.Benchmark)
		logrus.Warnf("  %s: IPC=%.6f MissKey=%.6f Cycles=%d Misses=%d",
			prev.Label, prev.IPC, prev.MissKey, prev.Cycles, prev.Misses)
		logrus.Warnf("  %s: IPC=%.6f MissKey=%.6f Cycles=%d Misses=%d",
			newRec.Label, newRec.IPC, newRec.MissKey, newRec.Cycles, newRec.Misses)
		return VerdictIdentical, &prev
	}
	return VerdictDifferent, &prev
}
