package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/drillbook"
	"github.com/discochess/drillbook/internal/engine"
	"github.com/discochess/drillbook/internal/engine/uciengine"
	"github.com/discochess/drillbook/internal/store/sqlitestore"
)

var (
	// Global flags.
	dbPath     string
	enginePath string
	depth      int
	workers    int
	userID     string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "drillbook",
	Short: "Turn your chess games into coaching material",
	Long: `Drillbook analyzes chess games with a UCI engine, classifies every
move, mines your mistakes into tactical puzzles, and schedules them
for spaced-repetition review.

Examples:
  # Analyze a PGN file as White
  drillbook analyze games.pgn --user alice --side w

  # List puzzles due for review
  drillbook puzzles --user alice

  # Record a puzzle attempt
  drillbook review 9f86d081884c7d65 --user alice --correct --seconds 8

  # Check whether your accuracy is trending up
  drillbook trend --user alice`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./drillbook.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&enginePath, "engine", "stockfish", "path to a UCI engine binary")
	rootCmd.PersistentFlags().IntVar(&depth, "depth", uciengine.DefaultDepth, "engine search depth per position")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 4, "concurrent engine evaluations")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user the games and puzzles belong to")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newStoreClient builds a client with the SQLite store only, for commands
// that never evaluate positions.
func newStoreClient() (*drillbook.Client, error) {
	st, err := sqlitestore.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	client, err := drillbook.New(
		drillbook.WithEvaluator(noEvaluator{}),
		drillbook.WithStore(st),
		drillbook.WithLogger(newLogger()),
	)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}

// newAnalysisClient builds a client with both the engine and the store.
func newAnalysisClient() (*drillbook.Client, error) {
	logger := newLogger()

	eng, err := uciengine.New(enginePath, depth, logger.Named("engine"))
	if err != nil {
		return nil, fmt.Errorf("starting engine %q: %w", enginePath, err)
	}

	st, err := sqlitestore.New(dbPath)
	if err != nil {
		eng.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	client, err := drillbook.New(
		drillbook.WithEvaluator(eng),
		drillbook.WithStore(st),
		drillbook.WithWorkers(workers),
		drillbook.WithLogger(logger),
	)
	if err != nil {
		eng.Close()
		st.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}

// noEvaluator backs commands that only read the store.
type noEvaluator struct{}

func (noEvaluator) Evaluate(ctx context.Context, fenStr string) (*engine.Evaluation, error) {
	return nil, engine.ErrUnavailable
}

func requireUser() error {
	if userID == "" {
		return fmt.Errorf("--user is required")
	}
	return nil
}
