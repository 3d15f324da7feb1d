package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/drillbook/internal/srs"
)

var (
	reviewCorrect bool
	reviewSeconds int
)

var reviewCmd = &cobra.Command{
	Use:   "review [puzzle key]",
	Short: "Record a puzzle attempt",
	Long: `Record the outcome of a puzzle attempt and print the next scheduled
review. Faster correct answers push the next review further out; an
incorrect answer schedules a retry for tomorrow.`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewCorrect, "correct", false, "the attempt was correct")
	reviewCmd.Flags().IntVar(&reviewSeconds, "seconds", 30, "time taken in seconds")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	if err := requireUser(); err != nil {
		return err
	}

	client, err := newStoreClient()
	if err != nil {
		return err
	}
	defer client.Close()

	state, err := client.RecordAttempt(context.Background(), srs.Attempt{
		PuzzleKey: args[0],
		UserID:    userID,
		Correct:   reviewCorrect,
		TimeTaken: time.Duration(reviewSeconds) * time.Second,
		At:        time.Now(),
	})
	if err != nil {
		return fmt.Errorf("recording attempt: %w", err)
	}

	if reviewCorrect {
		fmt.Printf("Correct. Repetition %d, next review in %d day(s) (%s).\n",
			state.Repetition, state.IntervalDays, state.NextReview.Format("2006-01-02"))
	} else {
		fmt.Printf("Incorrect. Schedule reset; retry on %s.\n",
			state.NextReview.Format("2006-01-02"))
	}
	return nil
}
