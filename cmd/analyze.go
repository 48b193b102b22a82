package cmd

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cache-lab/cachesweep/analysis"
)

var (
	analysisOutputDir string // Output directory for analysis artifacts
	noPlots           bool   // Skip the visualization step
)

// analyzeCmd aggregates a persisted results file into a text report.
// Plot rendering is a downstream consumer of the same table; this
// command only notes where plots would go unless suppressed.
var analyzeCmd = &cobra.Command{
	Use:   "analyze RESULTS_CSV",
	Short: "Aggregate a sweep results file into a report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		csvPath := args[0]
		table, err := analysis.LoadTable(csvPath)
		if err != nil {
			logrus.Fatalf("Could not load results: %v", err)
		}
		logrus.Infof("Loaded %d data points from %s", len(table.Rows), csvPath)
		logrus.Infof("Columns: %v", table.Columns)

		if err := os.MkdirAll(analysisOutputDir, 0o755); err != nil {
			logrus.Fatalf("Could not create output directory: %v", err)
		}

		reportPath := filepath.Join(analysisOutputDir, "analysis_report.txt")
		if err := analysis.WriteReport(table, reportPath); err != nil {
			logrus.Fatalf("Could not write report: %v", err)
		}
		logrus.Infof("Report written to %s", reportPath)

		if noPlots {
			logrus.Info("Skipping visualizations (--no-plots specified)")
		} else {
			logrus.Infof("Visualization is handled by downstream tooling; feed it %s", csvPath)
		}
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analysisOutputDir, "output-dir", filepath.Join("results", "analysis"), "Output directory for analysis results")
	analyzeCmd.Flags().BoolVar(&noPlots, "no-plots", false, "Skip the visualization step")
}
