// Package drillbook turns engine evaluations of chess games into coaching
// material: classified moves, accuracy and trend statistics, tactical
// puzzles mined from mistakes, and a spaced-repetition review queue.
//
// Example usage:
//
//	client, err := drillbook.New(
//	    drillbook.WithEvaluator(eng),
//	    drillbook.WithStore(st),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	report, err := client.AnalyzeGame(ctx, "user-1", "w", game)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Accuracy: %.1f\n", report.Analysis.Accuracy)
package drillbook

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/drillbook/internal/accuracy"
	"github.com/discochess/drillbook/internal/claim"
	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/engine"
	"github.com/discochess/drillbook/internal/pgn"
	"github.com/discochess/drillbook/internal/puzzle"
	"github.com/discochess/drillbook/internal/srs"
	"github.com/discochess/drillbook/internal/stats"
	"github.com/discochess/drillbook/internal/store"
	"github.com/discochess/drillbook/internal/trend"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("drillbook: client closed")

	// ErrNoEvaluator indicates no evaluator was provided.
	ErrNoEvaluator = errors.New("drillbook: no evaluator provided")

	// ErrNoStore indicates an operation that needs persistence was called
	// on a client configured without a store.
	ErrNoStore = errors.New("drillbook: no store provided")

	// ErrEmptyGame indicates a game with no moves was submitted.
	ErrEmptyGame = errors.New("drillbook: game has no moves")
)

// Client runs the analysis pipeline.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	pool       *engine.Pool
	evaluator  engine.Evaluator
	classifier *classify.Classifier
	aggregator *accuracy.Aggregator
	generator  *puzzle.Generator
	trends     *trend.Analyzer
	store      store.Store
	stats      stats.Collector
	logger     *zap.Logger
	closed     atomic.Bool
}

// New creates a new Client with the given options.
// An evaluator is required; everything else has sensible defaults.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.evaluator == nil {
		return nil, ErrNoEvaluator
	}

	evaluator := cfg.evaluator
	if cfg.evalCacheSize > 0 {
		cached, err := engine.NewCached(evaluator, cfg.evalCacheSize, cfg.stats)
		if err != nil {
			return nil, fmt.Errorf("creating eval cache: %w", err)
		}
		evaluator = cached
	}

	c := &Client{
		pool:       engine.NewPool(evaluator, cfg.workers, cfg.logger, cfg.stats),
		evaluator:  cfg.evaluator,
		classifier: classify.New(cfg.classifierCfg),
		aggregator: accuracy.New(),
		generator:  puzzle.New(cfg.puzzleCfg),
		trends:     trend.New(cfg.trendCfg),
		store:      cfg.store,
		stats:      cfg.stats,
		logger:     cfg.logger,
	}

	c.logger.Debug("client initialized",
		zap.Int("workers", cfg.workers),
		zap.Int("evalCacheSize", cfg.evalCacheSize),
		zap.Bool("persistent", cfg.store != nil),
	)

	return c, nil
}

// AnalyzeGame evaluates every position of a game, classifies the moves, and
// aggregates the result for one side. Positions the evaluator fails on are
// skipped and their moves left unclassified; only cancellation or an empty
// game aborts the analysis.
func (c *Client) AnalyzeGame(ctx context.Context, userID, side string, game *pgn.Game) (*GameReport, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if game == nil || len(game.Moves) == 0 {
		return nil, ErrEmptyGame
	}

	// One evaluation per position: before the first move plus after every
	// move. Move i sits between positions i and i+1.
	fens := make([]string, 0, len(game.Moves)+1)
	fens = append(fens, game.Moves[0].FENBefore)
	for _, mv := range game.Moves {
		fens = append(fens, mv.FENAfter)
	}

	evals, err := c.pool.EvaluateAll(ctx, fens)
	if err != nil {
		return nil, fmt.Errorf("evaluating game %s: %w", game.ID, err)
	}

	moves := make([]classify.MoveEvaluation, 0, len(game.Moves))
	for i, mv := range game.Moves {
		m := c.classifier.Classify(classify.Input{
			MoveNumber:    mv.Number,
			Side:          mv.Color,
			SAN:           mv.SAN,
			UCI:           mv.UCI,
			FENBefore:     mv.FENBefore,
			FENAfter:      mv.FENAfter,
			Before:        evals[i],
			After:         evals[i+1],
			LegalMoves:    mv.LegalMoves,
			TimeRemaining: mv.Clock,
		})
		if m.Classified() {
			c.stats.IncCounter(stats.MetricMovesClassified, 1)
			if m.Side == side {
				c.stats.ObserveHistogram(stats.MetricCPLoss, float64(m.CPLoss))
			}
		} else {
			c.stats.IncCounter(stats.MetricMovesSkipped, 1)
		}
		moves = append(moves, m)
	}

	analyzedAt := time.Now().UTC()
	analysis, err := c.aggregator.Aggregate(game.ID, userID, side, moves, analyzedAt)
	if err != nil {
		return nil, fmt.Errorf("aggregating game %s: %w", game.ID, err)
	}

	puzzles := c.generator.FromGame(game.ID, userID, side, moves, analyzedAt)

	c.stats.IncCounter(stats.MetricGamesAnalyzed, 1)
	c.stats.ObserveHistogram(stats.MetricAccuracy, analysis.Accuracy)
	c.logger.Debug("game analyzed",
		zap.String("game", game.ID),
		zap.String("side", side),
		zap.Float64("accuracy", analysis.Accuracy),
		zap.Int("puzzles", len(puzzles)),
	)

	return &GameReport{
		GameID:      game.ID,
		UserID:      userID,
		Side:        side,
		Fingerprint: game.Fingerprint,
		Moves:       moves,
		Analysis:    analysis,
		Puzzles:     puzzles,
	}, nil
}

// Persist writes a game report to the store: the classified moves, the
// aggregated analysis, and any puzzles whose keys are not already taken.
// Re-persisting the same report is safe.
func (c *Client) Persist(ctx context.Context, report *GameReport) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.store == nil {
		return ErrNoStore
	}

	if err := c.store.SaveMoveEvaluations(ctx, report.GameID, report.UserID, report.Side, report.Moves); err != nil {
		return fmt.Errorf("saving moves for game %s: %w", report.GameID, err)
	}
	if err := c.store.ReplaceAnalysis(ctx, &report.Analysis); err != nil {
		return fmt.Errorf("saving analysis for game %s: %w", report.GameID, err)
	}

	for _, p := range report.Puzzles {
		created, err := c.store.CreatePuzzle(ctx, p)
		if err != nil {
			return fmt.Errorf("creating puzzle %s: %w", p.Key, err)
		}
		if created {
			c.stats.IncCounter(stats.MetricPuzzlesCreated, 1)
		} else {
			c.stats.IncCounter(stats.MetricPuzzlesDuplicate, 1)
		}
	}
	return nil
}

// Trend reports whether a user's accuracy is improving across their
// analyzed games. Histories shorter than the minimum yield an
// insufficient-data verdict, never an error.
func (c *Client) Trend(ctx context.Context, userID string) (trend.Result, error) {
	if c.closed.Load() {
		return trend.Result{}, ErrClosed
	}
	if c.store == nil {
		return trend.Result{}, ErrNoStore
	}

	history, err := c.store.ListAnalyses(ctx, userID)
	if err != nil {
		return trend.Result{}, fmt.Errorf("listing analyses: %w", err)
	}
	return c.trends.Analyze(history), nil
}

// DuePuzzles returns the user's puzzles due for review at the given time.
func (c *Client) DuePuzzles(ctx context.Context, userID string, at time.Time) ([]puzzle.Puzzle, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if c.store == nil {
		return nil, ErrNoStore
	}
	return c.store.ListDuePuzzles(ctx, userID, at)
}

// RecordAttempt appends a puzzle attempt and returns the updated schedule
// state, replayed from the full attempt log in timestamp order.
func (c *Client) RecordAttempt(ctx context.Context, a srs.Attempt) (srs.State, error) {
	if c.closed.Load() {
		return srs.State{}, ErrClosed
	}
	if c.store == nil {
		return srs.State{}, ErrNoStore
	}

	if err := c.store.AppendAttempt(ctx, a); err != nil {
		return srs.State{}, fmt.Errorf("recording attempt: %w", err)
	}
	attempts, err := c.store.ListAttempts(ctx, a.UserID, a.PuzzleKey)
	if err != nil {
		return srs.State{}, fmt.Errorf("listing attempts: %w", err)
	}
	return srs.Replay(attempts), nil
}

// NewSession starts an anonymous analysis session whose results can later
// be claimed by an authenticated identity.
func (c *Client) NewSession() (*claim.Session, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if c.store == nil {
		return nil, ErrNoStore
	}
	return claim.NewSession(c.store, c.logger, c.stats), nil
}

// Store returns the persistence backend, or nil for an ephemeral client.
func (c *Client) Store() store.Store {
	return c.store
}

// Close releases all resources associated with the client.
// After Close, the client should not be used.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if closer, ok := c.evaluator.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("closing evaluator: %w", err)
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			return fmt.Errorf("closing store: %w", err)
		}
	}
	return nil
}
