package main

import (
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the code graph once and print a report",
	Long: `Analyze the code graph once and print a report to stdout.

Examples:
  codewarn analyze
  codewarn analyze -p ./web --graph build/graph.json
  codewarn analyze --format json --fail-on warning
  codewarn analyze --function-circular --cycle-key edges`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runner, err := newRunner(cfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	result, err := runner.Run(ctx, "analyze")
	if err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), cfg, result)
}
