// Package memstore provides an in-memory store implementation for testing
// and single-process use.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/discochess/drillbook/internal/accuracy"
	"github.com/discochess/drillbook/internal/claim"
	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/puzzle"
	"github.com/discochess/drillbook/internal/srs"
	"github.com/discochess/drillbook/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

type analysisKey struct {
	gameID string
	userID string
	side   string
}

// Store is an in-memory store.
type Store struct {
	mu       sync.RWMutex
	moves    map[analysisKey][]classify.MoveEvaluation
	analyses map[analysisKey]accuracy.GameAnalysis
	puzzles  map[string]puzzle.Puzzle
	attempts map[string][]srs.Attempt
	claims   map[string]*claim.Bundle
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		moves:    make(map[analysisKey][]classify.MoveEvaluation),
		analyses: make(map[analysisKey]accuracy.GameAnalysis),
		puzzles:  make(map[string]puzzle.Puzzle),
		attempts: make(map[string][]srs.Attempt),
		claims:   make(map[string]*claim.Bundle),
	}
}

// SaveMoveEvaluations replaces the classified moves for a game and side.
func (s *Store) SaveMoveEvaluations(ctx context.Context, gameID, userID, side string, moves []classify.MoveEvaluation) error {
	copied := make([]classify.MoveEvaluation, len(moves))
	copy(copied, moves)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves[analysisKey{gameID, userID, side}] = copied
	return nil
}

// MoveEvaluations returns the saved moves for a game and side.
func (s *Store) MoveEvaluations(ctx context.Context, gameID, userID, side string) ([]classify.MoveEvaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	moves, ok := s.moves[analysisKey{gameID, userID, side}]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := make([]classify.MoveEvaluation, len(moves))
	copy(out, moves)
	return out, nil
}

// ReplaceAnalysis upserts a game analysis.
func (s *Store) ReplaceAnalysis(ctx context.Context, analysis *accuracy.GameAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[analysisKey{analysis.GameID, analysis.UserID, analysis.Side}] = *analysis
	return nil
}

// ListAnalyses returns a user's analyses ordered by analysis time, with
// game ID breaking ties so equal timestamps still order deterministically.
func (s *Store) ListAnalyses(ctx context.Context, userID string) ([]accuracy.GameAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []accuracy.GameAnalysis
	for _, a := range s.analyses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AnalyzedAt.Equal(out[j].AnalyzedAt) {
			return out[i].AnalyzedAt.Before(out[j].AnalyzedAt)
		}
		return out[i].GameID < out[j].GameID
	})
	return out, nil
}

// CreatePuzzle inserts a puzzle unless its key exists.
func (s *Store) CreatePuzzle(ctx context.Context, p puzzle.Puzzle) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.puzzles[p.Key]; ok {
		return false, nil
	}
	s.puzzles[p.Key] = p
	return true, nil
}

// ListDuePuzzles returns the user's puzzles due for review.
func (s *Store) ListDuePuzzles(ctx context.Context, userID string, at time.Time) ([]puzzle.Puzzle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []puzzle.Puzzle
	for _, p := range s.puzzles {
		if p.UserID != userID {
			continue
		}
		state := srs.Replay(s.attempts[attemptKey(userID, p.Key)])
		if state.Due(at) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// AppendAttempt records one puzzle attempt.
func (s *Store) AppendAttempt(ctx context.Context, a srs.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := attemptKey(a.UserID, a.PuzzleKey)
	s.attempts[k] = append(s.attempts[k], a)
	return nil
}

// ListAttempts returns all attempts for a (user, puzzle) pair.
func (s *Store) ListAttempts(ctx context.Context, userID, puzzleKey string) ([]srs.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attempts := s.attempts[attemptKey(userID, puzzleKey)]
	out := make([]srs.Attempt, len(attempts))
	copy(out, attempts)
	return out, nil
}

// PersistClaim persists a claimed bundle under its idempotency key.
func (s *Store) PersistClaim(ctx context.Context, key, identity string, bundle *claim.Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.claims[key]; ok {
		return claim.ErrConflict
	}
	s.claims[key] = bundle
	return nil
}

// ClaimedBundles returns the number of persisted claims (for test setup).
func (s *Store) ClaimedBundles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims)
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}

func attemptKey(userID, puzzleKey string) string {
	return userID + "\x00" + puzzleKey
}
