package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var puzzlesCmd = &cobra.Command{
	Use:   "puzzles",
	Short: "List puzzles due for review",
	Long: `List the user's puzzles whose spaced-repetition schedule makes them
due right now. Puzzles that have never been attempted are always due.`,
	Args: cobra.NoArgs,
	RunE: runPuzzles,
}

func init() {
	rootCmd.AddCommand(puzzlesCmd)
}

func runPuzzles(cmd *cobra.Command, args []string) error {
	if err := requireUser(); err != nil {
		return err
	}

	client, err := newStoreClient()
	if err != nil {
		return err
	}
	defer client.Close()

	due, err := client.DuePuzzles(context.Background(), userID, time.Now())
	if err != nil {
		return fmt.Errorf("listing puzzles: %w", err)
	}
	if len(due) == 0 {
		fmt.Println("No puzzles due. Come back later.")
		return nil
	}

	fmt.Printf("%d puzzles due:\n\n", len(due))
	for _, p := range due {
		fmt.Printf("%s  [%s, %d cp]\n", p.Key, strings.Join(p.Themes, ", "), p.EvalLossCP)
		fmt.Printf("  position: %s\n", p.FEN)
		fmt.Printf("  you played %s; find the better move\n\n", p.PlayedMove)
	}
	return nil
}
