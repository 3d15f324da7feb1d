// Package scriptengine provides an in-memory evaluator implementation for
// testing.
package scriptengine

import (
	"context"
	"sync"

	"github.com/discochess/drillbook/internal/engine"
	"github.com/discochess/drillbook/internal/fen"
)

// Compile-time check that Evaluator implements engine.Evaluator.
var _ engine.Evaluator = (*Evaluator)(nil)

// Evaluator is a scripted evaluator backed by a position table.
// Positions without a scripted evaluation return engine.ErrUnavailable,
// which is also how per-position evaluator failures are simulated.
type Evaluator struct {
	mu    sync.RWMutex
	evals map[string]*engine.Evaluation
	fail  map[string]bool
	calls int
}

// New creates an empty scripted evaluator.
func New() *Evaluator {
	return &Evaluator{
		evals: make(map[string]*engine.Evaluation),
		fail:  make(map[string]bool),
	}
}

// Set scripts the evaluation for a position (for test setup).
func (e *Evaluator) Set(fenStr string, eval engine.Evaluation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evals[normalize(fenStr)] = &eval
}

// SetCP scripts a centipawn evaluation with a best move.
func (e *Evaluator) SetCP(fenStr string, cp int, bestMove string) {
	e.Set(fenStr, engine.Evaluation{CP: &cp, BestMove: bestMove, Depth: 20})
}

// SetMate scripts a forced-mate evaluation with a best move.
func (e *Evaluator) SetMate(fenStr string, mate int, bestMove string) {
	e.Set(fenStr, engine.Evaluation{Mate: &mate, BestMove: bestMove, Depth: 20})
}

// FailOn makes evaluation of a position fail with engine.ErrUnavailable.
func (e *Evaluator) FailOn(fenStr string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fail[normalize(fenStr)] = true
}

// Calls returns how many evaluations have been requested.
func (e *Evaluator) Calls() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.calls
}

// Evaluate returns the scripted evaluation for a position.
func (e *Evaluator) Evaluate(ctx context.Context, fenStr string) (*engine.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.calls++
	key := normalize(fenStr)
	failed := e.fail[key]
	eval, ok := e.evals[key]
	e.mu.Unlock()

	if failed || !ok {
		return nil, engine.ErrUnavailable
	}
	return eval, nil
}

func normalize(fenStr string) string {
	if n, err := fen.Normalize(fenStr); err == nil {
		return n
	}
	return fenStr
}
