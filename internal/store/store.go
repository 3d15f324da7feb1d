// Package store defines the persistence interface for analysis output.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/discochess/drillbook/internal/accuracy"
	"github.com/discochess/drillbook/internal/claim"
	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/puzzle"
	"github.com/discochess/drillbook/internal/srs"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store defines the interface for persistence backends.
// Implementations handle schema and storage details internally.
type Store interface {
	// SaveMoveEvaluations replaces the classified move list for one game
	// and side. Re-analysis overwrites wholesale.
	SaveMoveEvaluations(ctx context.Context, gameID, userID, side string, moves []classify.MoveEvaluation) error

	// MoveEvaluations returns the classified moves saved for a game and
	// side, in move order. Returns ErrNotFound when no analysis exists.
	MoveEvaluations(ctx context.Context, gameID, userID, side string) ([]classify.MoveEvaluation, error)

	// ReplaceAnalysis upserts a game analysis keyed by (game, user, side).
	ReplaceAnalysis(ctx context.Context, analysis *accuracy.GameAnalysis) error

	// ListAnalyses returns a user's analyses ordered by analysis time,
	// oldest first.
	ListAnalyses(ctx context.Context, userID string) ([]accuracy.GameAnalysis, error)

	// CreatePuzzle inserts a puzzle unless its key already exists.
	// A duplicate key is benign: created is false and err is nil. The
	// check-and-insert is atomic under concurrent writers.
	CreatePuzzle(ctx context.Context, p puzzle.Puzzle) (created bool, err error)

	// ListDuePuzzles returns a user's puzzles whose replayed schedule is
	// due at the given time.
	ListDuePuzzles(ctx context.Context, userID string, at time.Time) ([]puzzle.Puzzle, error)

	// AppendAttempt records one puzzle attempt.
	AppendAttempt(ctx context.Context, a srs.Attempt) error

	// ListAttempts returns all attempts for a (user, puzzle) pair in
	// insertion order. Schedule state is replayed from this log.
	ListAttempts(ctx context.Context, userID, puzzleKey string) ([]srs.Attempt, error)

	// PersistClaim atomically persists a claimed bundle under its
	// idempotency key. Returns claim.ErrConflict when the key is already
	// claimed; a failure leaves no partial writes.
	PersistClaim(ctx context.Context, key, identity string, bundle *claim.Bundle) error

	// Close releases any resources held by the store.
	Close() error
}
