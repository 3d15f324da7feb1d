package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/discochess/drillbook"
	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/pgn"
)

var analyzeSide string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [PGN file]",
	Short: "Analyze the games in a PGN file",
	Long: `Analyze every game in a PGN file with the configured engine: classify
each move, compute accuracy per phase, and mine mistakes into puzzles.

Examples:
  # Analyze your games as White at depth 18
  drillbook analyze games.pgn --user alice --side w --depth 18`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSide, "side", "w", "side the user played (w or b)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := requireUser(); err != nil {
		return err
	}
	if analyzeSide != "w" && analyzeSide != "b" {
		return fmt.Errorf("--side must be w or b")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening PGN file: %w", err)
	}
	defer f.Close()

	games, err := pgn.ParseAll(f)
	if err != nil {
		return fmt.Errorf("reading PGN file: %w", err)
	}
	if len(games) == 0 {
		return fmt.Errorf("no games found in %s", args[0])
	}

	client, err := newAnalysisClient()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := context.Background()
	analyzed := 0
	for _, game := range games {
		report, err := client.AnalyzeGame(ctx, userID, analyzeSide, game)
		if err != nil {
			// A bad game must not sink the rest of the file.
			if errors.Is(err, drillbook.ErrEmptyGame) {
				continue
			}
			fmt.Fprintf(os.Stderr, "game %s: %v\n", game.ID, err)
			continue
		}
		if err := client.Persist(ctx, report); err != nil {
			return fmt.Errorf("persisting game %s: %w", report.GameID, err)
		}
		printReport(report)
		analyzed++
	}

	fmt.Printf("\nAnalyzed %d of %d games.\n", analyzed, len(games))
	return nil
}

func printReport(report *drillbook.GameReport) {
	a := report.Analysis
	fmt.Printf("Game %s (%s): accuracy %.1f, avg loss %.2f cp over %d moves\n",
		report.GameID, report.Side,
		drillbook.RoundAccuracy(a.Accuracy),
		a.Overall.AvgCPLoss,
		a.Overall.Moves)

	for _, q := range []classify.Quality{
		classify.QualityMistake,
		classify.QualityBlunder,
		classify.QualityMissedWin,
	} {
		if n := a.QualityCounts[q]; n > 0 {
			fmt.Printf("  %s: %d\n", q, n)
		}
	}
	if len(report.Puzzles) > 0 {
		fmt.Printf("  mined %d puzzles\n", len(report.Puzzles))
	}
}
