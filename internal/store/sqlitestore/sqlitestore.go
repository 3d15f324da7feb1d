// Package sqlitestore provides a SQLite-backed store implementation.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/discochess/drillbook/internal/accuracy"
	"github.com/discochess/drillbook/internal/claim"
	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/puzzle"
	"github.com/discochess/drillbook/internal/srs"
	"github.com/discochess/drillbook/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a SQLite-backed store.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New opens (or creates) a SQLite database at path and applies the schema.
func New(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{
		db:     db,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SaveMoveEvaluations replaces the classified moves for a game and side.
func (s *Store) SaveMoveEvaluations(ctx context.Context, gameID, userID, side string, moves []classify.MoveEvaluation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM move_evaluations WHERE game_id = ? AND user_id = ? AND side = ?`,
		gameID, userID, side); err != nil {
		return fmt.Errorf("clear previous analysis: %w", err)
	}

	for i, m := range moves {
		payload, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal move %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO move_evaluations (game_id, user_id, side, seq, payload) VALUES (?, ?, ?, ?, ?)`,
			gameID, userID, side, i, string(payload)); err != nil {
			return fmt.Errorf("insert move %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// MoveEvaluations returns the saved moves for a game and side in move order.
func (s *Store) MoveEvaluations(ctx context.Context, gameID, userID, side string) ([]classify.MoveEvaluation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM move_evaluations WHERE game_id = ? AND user_id = ? AND side = ? ORDER BY seq`,
		gameID, userID, side)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	var out []classify.MoveEvaluation
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		var m classify.MoveEvaluation
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("unmarshal move: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	if len(out) == 0 {
		return nil, store.ErrNotFound
	}
	return out, nil
}

// ReplaceAnalysis upserts a game analysis keyed by (game, user, side).
func (s *Store) ReplaceAnalysis(ctx context.Context, analysis *accuracy.GameAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (game_id, user_id, side, analyzed_at, payload) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(game_id, user_id, side) DO UPDATE SET analyzed_at = excluded.analyzed_at, payload = excluded.payload`,
		analysis.GameID, analysis.UserID, analysis.Side, analysis.AnalyzedAt.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns a user's analyses ordered by analysis time.
func (s *Store) ListAnalyses(ctx context.Context, userID string) ([]accuracy.GameAnalysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM analyses WHERE user_id = ? ORDER BY analyzed_at, game_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []accuracy.GameAnalysis
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		var a accuracy.GameAnalysis
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}

// CreatePuzzle inserts a puzzle unless its key exists. The uniqueness
// constraint on puzzle_key makes the check-and-insert atomic under
// concurrent writers.
func (s *Store) CreatePuzzle(ctx context.Context, p puzzle.Puzzle) (bool, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("marshal puzzle: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO puzzles (puzzle_key, user_id, created_at, payload) VALUES (?, ?, ?, ?)`,
		p.Key, p.UserID, p.CreatedAt.UTC(), string(payload))
	if err != nil {
		return false, fmt.Errorf("insert puzzle: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListDuePuzzles returns the user's puzzles whose replayed schedule is due.
func (s *Store) ListDuePuzzles(ctx context.Context, userID string, at time.Time) ([]puzzle.Puzzle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM puzzles WHERE user_id = ? ORDER BY puzzle_key`, userID)
	if err != nil {
		return nil, fmt.Errorf("query puzzles: %w", err)
	}
	defer rows.Close()

	var all []puzzle.Puzzle
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan puzzle: %w", err)
		}
		var p puzzle.Puzzle
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return nil, fmt.Errorf("unmarshal puzzle: %w", err)
		}
		all = append(all, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate puzzles: %w", err)
	}

	var due []puzzle.Puzzle
	for _, p := range all {
		attempts, err := s.ListAttempts(ctx, userID, p.Key)
		if err != nil {
			return nil, err
		}
		if srs.Replay(attempts).Due(at) {
			due = append(due, p)
		}
	}
	return due, nil
}

// AppendAttempt records one puzzle attempt.
func (s *Store) AppendAttempt(ctx context.Context, a srs.Attempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (user_id, puzzle_key, correct, time_taken_ms, attempted_at) VALUES (?, ?, ?, ?, ?)`,
		a.UserID, a.PuzzleKey, a.Correct, a.TimeTaken.Milliseconds(), a.At.UTC())
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// ListAttempts returns all attempts for a (user, puzzle) pair.
func (s *Store) ListAttempts(ctx context.Context, userID, puzzleKey string) ([]srs.Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT correct, time_taken_ms, attempted_at FROM attempts WHERE user_id = ? AND puzzle_key = ? ORDER BY attempt_id`,
		userID, puzzleKey)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []srs.Attempt
	for rows.Next() {
		var (
			correct bool
			ms      int64
			at      time.Time
		)
		if err := rows.Scan(&correct, &ms, &at); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, srs.Attempt{
			PuzzleKey: puzzleKey,
			UserID:    userID,
			Correct:   correct,
			TimeTaken: time.Duration(ms) * time.Millisecond,
			At:        at,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

// PersistClaim atomically persists a claimed bundle under its idempotency
// key. The primary key on claim_key turns a duplicate claim into
// claim.ErrConflict without partial writes.
func (s *Store) PersistClaim(ctx context.Context, key, identity string, bundle *claim.Bundle) error {
	encoded, err := claim.EncodeBundle(bundle)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO claims (claim_key, identity, bundle, claimed_at) VALUES (?, ?, ?, ?)`,
		key, identity, encoded, time.Now().UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return claim.ErrConflict
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

// ClaimedBundle loads a previously claimed bundle by its idempotency key.
func (s *Store) ClaimedBundle(ctx context.Context, key string) (*claim.Bundle, error) {
	var encoded []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT bundle FROM claims WHERE claim_key = ?`, key).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query claim: %w", err)
	}
	return claim.DecodeBundle(encoded)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
