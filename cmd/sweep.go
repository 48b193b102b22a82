package cmd

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cache-lab/cachesweep/sweep"
)

var (
	sweepConfigPath string   // Path to the sweep configuration file
	benchmarkList   []string // Override for the config's benchmark subset
	policySweep     bool     // Sweep replacement policies instead of geometry
)

// sweepCmd runs one full exploration over the declared configuration
// space: build, run, extract, verify, persist.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a cache parameter or replacement-policy sweep",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := LoadSweepConfig(sweepConfigPath)
		if err != nil {
			logrus.Fatalf("Could not load sweep config: %v", err)
		}

		opts := cfg.SweepOptions()
		if len(benchmarkList) > 0 {
			opts.Benchmarks = benchmarkList
		}

		ctx := context.Background()
		var resultsPath string
		if policySweep {
			opts = policyOutput(opts)
			resultsPath, err = sweep.RunPolicySweep(ctx, opts)
		} else {
			resultsPath, err = sweep.RunGeometrySweep(ctx, opts)
		}
		switch {
		case errors.Is(err, sweep.ErrNoBenchmarks):
			logrus.Fatalf("Sweep aborted: %v", err)
		case errors.Is(err, sweep.ErrNoResults):
			logrus.Fatalf("Sweep produced no results: %v", err)
		case err != nil:
			logrus.Fatalf("Sweep failed: %v", err)
		}

		logrus.Infof("Sweep complete. Results: %s", resultsPath)
	},
}

// policyOutput redirects a policy sweep's results into their own
// subdirectory so geometry and policy runs never interleave in one
// directory.
func policyOutput(opts sweep.Options) sweep.Options {
	opts.ResultsDir = filepath.Join(opts.ResultsDir, "policy_analysis")
	opts.BaseName = "policy_analysis.csv"
	return opts
}

func init() {
	sweepCmd.Flags().StringVar(&sweepConfigPath, "config", "scripts/sweep_config.json", "Path to sweep config file (JSON, or YAML by extension)")
	sweepCmd.Flags().StringSliceVar(&benchmarkList, "benchmarks", nil, "Comma-separated benchmark subset, overriding the config")
	sweepCmd.Flags().BoolVar(&policySweep, "policies", false, "Sweep D-cache replacement policies (LRU, DIP, DRRIP, EAF) instead of geometry")
}
