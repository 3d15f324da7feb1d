package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/drillbook/internal/trend"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Report whether your accuracy is improving",
	Long: `Compare the mean accuracy of your recent games against your earlier
games. At least six analyzed games are required for a verdict.`,
	Args: cobra.NoArgs,
	RunE: runTrend,
}

func init() {
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) error {
	if err := requireUser(); err != nil {
		return err
	}

	client, err := newStoreClient()
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Trend(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("computing trend: %w", err)
	}

	if result.Verdict == trend.InsufficientData {
		fmt.Printf("Not enough games yet (%d analyzed). Analyze at least 6 for a trend.\n", result.Games)
		return nil
	}

	fmt.Printf("Verdict:  %s\n", result.Verdict)
	fmt.Printf("Games:    %d\n", result.Games)
	fmt.Printf("Recent:   %.1f mean accuracy\n", result.RecentMean)
	fmt.Printf("Baseline: %.1f mean accuracy\n", result.BaselineMean)
	fmt.Printf("Delta:    %+.1f (effect size %.2f)\n", result.Delta, result.EffectSize)
	return nil
}
