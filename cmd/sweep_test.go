package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cache-lab/cachesweep/sweep"
)

func TestPolicyOutput_SeparatesPolicyResults(t *testing.T) {
	opts := sweep.Options{ResultsDir: "results", BaseName: "cache_sweep_results.csv"}

	got := policyOutput(opts)

	assert.Equal(t, filepath.Join("results", "policy_analysis"), got.ResultsDir)
	assert.Equal(t, "policy_analysis.csv", got.BaseName)
	// Geometry output settings are untouched.
	assert.Equal(t, "results", opts.ResultsDir)
}
