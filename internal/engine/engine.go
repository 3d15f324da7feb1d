// Package engine defines the position evaluator consumed by the analysis
// pipeline and utilities for calling it concurrently.
package engine

import (
	"context"
	"errors"
	"strconv"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrUnavailable indicates the evaluator failed or timed out for a
	// position. Callers treat it as a per-position failure, not a fatal one.
	ErrUnavailable = errors.New("engine: evaluator unavailable")

	// ErrClosed indicates the evaluator has been closed.
	ErrClosed = errors.New("engine: evaluator closed")
)

// Evaluation is the evaluator's verdict for a single position.
type Evaluation struct {
	// CP is the score in centipawns from White's perspective.
	// Positive values favor White. Nil when the position has a forced mate.
	CP *int

	// Mate is the number of moves until checkmate. Positive means White
	// delivers mate, negative means Black. Nil when there is no forced mate.
	Mate *int

	// BestMove is the engine's preferred move in UCI notation.
	BestMove string

	// Depth is the search depth used to compute this evaluation.
	Depth int
}

// IsMate returns true if the position has a forced mate.
func (e *Evaluation) IsMate() bool {
	return e != nil && e.Mate != nil
}

// Score returns a human-readable score string.
// Examples: "+1.25", "-0.50", "#3", "#-5"
func (e *Evaluation) Score() string {
	if e == nil {
		return "?"
	}
	if e.Mate != nil {
		return "#" + strconv.Itoa(*e.Mate)
	}
	if e.CP == nil {
		return "?"
	}
	cp := *e.CP
	sign := "+"
	if cp < 0 {
		sign = "-"
		cp = -cp
	}
	whole := cp / 100
	frac := cp % 100
	if frac < 10 {
		return sign + strconv.Itoa(whole) + ".0" + strconv.Itoa(frac)
	}
	return sign + strconv.Itoa(whole) + "." + strconv.Itoa(frac)
}

// Evaluator computes an evaluation and best move for a FEN position.
// Implementations may be slow and may fail per position; they must be safe
// for concurrent use.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string) (*Evaluation, error)
}
