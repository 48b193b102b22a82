package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures one sweep invocation.
type Options struct {
	Space      Space    // geometry sweeps only
	Benchmarks []string // requested subset; empty keeps every discovered benchmark
	InputDir   string   // benchmark inputs (*.x)
	ResultsDir string
	BaseName   string // results filename; a timestamp is inserted before the extension
	Builder    *Builder
	Runner     *Runner
	Verbose    bool
}

// resolveBenchmarks discovers the available workloads and intersects
// them with the requested subset.
func resolveBenchmarks(opts Options) ([]string, error) {
	available, err := DiscoverBenchmarks(opts.InputDir)
	if err != nil {
		return nil, err
	}
	benchmarks, err := FilterBenchmarks(available, opts.Benchmarks)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Found %d benchmarks: %v", len(benchmarks), benchmarks)
	return benchmarks, nil
}

// measure runs one benchmark against the current binary and extracts
// a metrics record with the given profile. Run failures and incomplete
// extractions drop this single measurement.
func measure(ctx context.Context, opts Options, benchmark string, parse func(string) (Metrics, error)) (Metrics, bool) {
	output, err := opts.Runner.Execute(ctx, BenchmarkPath(opts.InputDir, benchmark))
	if err != nil {
		logrus.Errorf("Run failed: %v", err)
		return Metrics{}, false
	}
	m, err := parse(output)
	if err != nil {
		logrus.Errorf("Benchmark %s: %v (treated as run failure)", benchmark, err)
		return Metrics{}, false
	}
	return m, true
}

// RunGeometrySweep explores the declared geometry space: per
// configuration it patches the simulator header, rebuilds, and
// measures every benchmark. A failure in one configuration or one
// benchmark never terminates the overall sweep; only zero collected
// results is fatal. Returns the path of the written results file.
func RunGeometrySweep(ctx context.Context, opts Options) (string, error) {
	benchmarks, err := resolveBenchmarks(opts)
	if err != nil {
		return "", err
	}

	configs, skipped := opts.Space.Generate()
	if skipped > 0 {
		logrus.Warnf("Excluded %d invalid configurations", skipped)
	}
	logrus.Infof("Total configurations to test: %d (%d benchmark runs)", len(configs), len(configs)*len(benchmarks))

	store := NewStore(GeometryColumns)
	prior := map[string][]KeyMetrics{}

	for i, cfg := range configs {
		label := fmt.Sprintf("%dsets/%dB/%d-way", cfg.DCacheNumSets, cfg.LineSizeBytes, cfg.Associativity)
		if opts.Verbose {
			logrus.Infof("[%d/%d] Config: %s (%.2fKB)", i+1, len(configs), label, cfg.DCacheSizeKB)
		}

		if err := ApplyGeometry(opts.Builder.HeaderPath(), cfg); err != nil {
			logrus.Errorf("Patching cache parameters failed, skipping configuration: %v", err)
			continue
		}
		if err := opts.Builder.Rebuild(ctx); err != nil {
			logrus.Errorf("Rebuild failed, skipping configuration: %v", err)
			continue
		}

		for _, benchmark := range benchmarks {
			m, ok := measure(ctx, opts, benchmark, ParseGeometry)
			if !ok {
				continue
			}
			keys := keyMetricsFrom(label, benchmark, m)
			CheckIdentical(keys, prior[benchmark])
			prior[benchmark] = append(prior[benchmark], keys)
			store.Append(GeometryRow(cfg, benchmark, m))
		}
	}

	return finalize(store, opts)
}

// RunPolicySweep measures every replacement policy against every
// benchmark. After each rebuild it re-runs the first benchmark as a
// quick differential check before committing to the full benchmark
// list, so a policy patch that silently failed is caught early.
func RunPolicySweep(ctx context.Context, opts Options) (string, error) {
	benchmarks, err := resolveBenchmarks(opts)
	if err != nil {
		return "", err
	}
	logrus.Infof("Testing %d policies: %v", len(Policies), Policies)

	store := NewStore(PolicyColumns)
	prior := map[string][]KeyMetrics{}
	total := len(Policies) * len(benchmarks)
	run := 0

	for _, policy := range Policies {
		logrus.Infof("Testing policy: %s", policy)

		if err := ApplyPolicy(opts.Builder.PolicySourcePath(), policy); err != nil {
			logrus.Errorf("Policy patch failed, skipping %s: %v", policy, err)
			continue
		}
		if err := opts.Builder.Rebuild(ctx); err != nil {
			logrus.Errorf("Rebuild failed, skipping %s: %v", policy, err)
			continue
		}

		// Quick differential check against the previous policy.
		if store.Len() > 0 {
			if m, ok := measure(ctx, opts, benchmarks[0], ParsePolicy); ok {
				verdict, _ := CheckIdentical(keyMetricsFrom(policy, benchmarks[0], m), prior[benchmarks[0]])
				if verdict == VerdictDifferent {
					logrus.Infof("  Differential check passed for %s", policy)
				}
			}
		}

		for _, benchmark := range benchmarks {
			run++
			if opts.Verbose {
				logrus.Infof("  [%d/%d] %s / %s", run, total, policy, benchmark)
			}
			m, ok := measure(ctx, opts, benchmark, ParsePolicy)
			if !ok {
				continue
			}
			keys := keyMetricsFrom(policy, benchmark, m)
			CheckIdentical(keys, prior[benchmark])
			prior[benchmark] = append(prior[benchmark], keys)
			store.Append(PolicyRow(policy, benchmark, m))
		}
	}

	return finalize(store, opts)
}

// finalize writes whatever rows were collected to a timestamped file.
// Zero rows is the sweep-fatal aggregate failure.
func finalize(store *Store, opts Options) (string, error) {
	if store.Len() == 0 {
		return "", ErrNoResults
	}
	path := TimestampedPath(opts.ResultsDir, opts.BaseName, time.Now())
	if err := store.Finalize(path); err != nil {
		if errors.Is(err, ErrNoResults) {
			return "", err
		}
		return "", fmt.Errorf("saving results: %w", err)
	}
	logrus.Infof("Saved %d results to %s", store.Len(), path)
	return path, nil
}
