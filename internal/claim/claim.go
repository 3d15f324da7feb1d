// Package claim coordinates the anonymous-analysis-then-claim workflow.
//
// Analysis runs before the player signs in; the results live in an immutable
// Bundle held by the caller. Once an identity is established, the session
// attempts to persist the bundle exactly once. Retries and duplicate claim
// calls are safe: the persistence layer enforces the idempotency key, and a
// conflict means the desired end state already holds.
package claim

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/discochess/drillbook/internal/stats"
)

var (
	// ErrConflict signals the idempotency key was already claimed. Callers
	// treat it as success; Session.Claim never surfaces it.
	ErrConflict = errors.New("claim: bundle already claimed")

	// ErrBadTransition signals a session method called in the wrong state.
	ErrBadTransition = errors.New("claim: invalid state transition")

	// ErrEmptyBundle signals an attempt to lock results with no games.
	ErrEmptyBundle = errors.New("claim: bundle has no games")
)

// State is the lifecycle state of an anonymous analysis session.
type State string

const (
	// StateInput is the initial state, before any analysis has run.
	StateInput State = "input"
	// StateAnalyzing means evaluator calls are in flight.
	StateAnalyzing State = "analyzing"
	// StateResultsLocked means analysis is complete and the bundle is
	// sealed, but no identity has claimed it yet.
	StateResultsLocked State = "results_locked"
	// StateClaiming means a persistence attempt is in flight.
	StateClaiming State = "claiming"
	// StateResults means the bundle has been persisted to an account.
	StateResults State = "results"
	// StateAbandoned means the session ended without persisting anything.
	StateAbandoned State = "abandoned"
)

// GameSummary is one game's worth of claimable output.
type GameSummary struct {
	GameID      string  `json:"game_id"`
	Fingerprint string  `json:"fingerprint"`
	Side        string  `json:"side"`
	Accuracy    float64 `json:"accuracy"`
	AvgCPLoss   float64 `json:"avg_cp_loss"`
	PuzzleCount int     `json:"puzzle_count"`
}

// Bundle is the immutable snapshot of an anonymous session's results. It is
// held by the caller between analysis completion and a successful claim and
// is never stored server-side before then.
type Bundle struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Games     []GameSummary `json:"games"`
}

// NewBundle seals a set of game summaries into a bundle.
func NewBundle(games []GameSummary, createdAt time.Time) *Bundle {
	copied := make([]GameSummary, len(games))
	copy(copied, games)
	return &Bundle{
		ID:        uuid.NewString(),
		CreatedAt: createdAt,
		Games:     copied,
	}
}

// Key derives the idempotency key binding this bundle to an identity: the
// hash of the sorted game fingerprints plus the owning identity. The same
// games claimed by the same account always map to the same key, regardless
// of game order or how many times analysis was re-run.
func (b *Bundle) Key(identity string) string {
	prints := make([]string, 0, len(b.Games))
	for _, g := range b.Games {
		prints = append(prints, g.Fingerprint)
	}
	sort.Strings(prints)

	h := sha256.New()
	for _, p := range prints {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	h.Write([]byte(identity))
	return hex.EncodeToString(h.Sum(nil))
}

// Persister commits a claimed bundle atomically. Implementations must
// enforce the idempotency key with a check-and-insert and return ErrConflict
// (or wrap it) when the key is already claimed; a failed persist must leave
// no partial writes.
type Persister interface {
	PersistClaim(ctx context.Context, key, identity string, bundle *Bundle) error
}

// Session drives one anonymous analysis session through its lifecycle.
// Methods are safe for concurrent use.
type Session struct {
	id        string
	persister Persister
	logger    *zap.Logger
	stats     stats.Collector

	mu     sync.Mutex
	state  State
	bundle *Bundle
}

// NewSession creates a session in the input state.
func NewSession(p Persister, logger *zap.Logger, collector stats.Collector) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Session{
		id:        uuid.NewString(),
		persister: p,
		logger:    logger,
		stats:     collector,
		state:     StateInput,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Bundle returns the sealed bundle, or nil before results are locked.
func (s *Session) Bundle() *Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle
}

// StartAnalysis moves the session from input to analyzing.
func (s *Session) StartAnalysis() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInput {
		return fmt.Errorf("%w: start analysis from %q", ErrBadTransition, s.state)
	}
	s.state = StateAnalyzing
	return nil
}

// LockResults seals the analysis output into the session's bundle and moves
// to results-locked. The bundle must contain at least one game.
func (s *Session) LockResults(bundle *Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAnalyzing {
		return fmt.Errorf("%w: lock results from %q", ErrBadTransition, s.state)
	}
	if bundle == nil || len(bundle.Games) == 0 {
		return ErrEmptyBundle
	}
	s.bundle = bundle
	s.state = StateResultsLocked
	s.logger.Debug("analysis results locked",
		zap.String("session", s.id),
		zap.String("bundle", bundle.ID),
		zap.Int("games", len(bundle.Games)))
	return nil
}

// Claim persists the bundle to the given identity exactly once. A conflict
// on the idempotency key counts as success. On any other persistence error
// the session returns to results-locked with the bundle intact, so the
// caller can retry without re-running analysis.
func (s *Session) Claim(ctx context.Context, identity string) error {
	s.mu.Lock()
	switch s.state {
	case StateResultsLocked:
	case StateResults:
		// Already claimed; nothing left to do.
		s.mu.Unlock()
		return nil
	default:
		st := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: claim from %q", ErrBadTransition, st)
	}
	s.state = StateClaiming
	bundle := s.bundle
	s.mu.Unlock()

	key := bundle.Key(identity)
	err := s.persister.PersistClaim(ctx, key, identity, bundle)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case err == nil:
		s.state = StateResults
		s.stats.IncCounter(stats.MetricClaims, 1)
		s.logger.Info("bundle claimed",
			zap.String("session", s.id),
			zap.String("bundle", bundle.ID),
			zap.Int("games", len(bundle.Games)))
		return nil
	case errors.Is(err, ErrConflict):
		s.state = StateResults
		s.stats.IncCounter(stats.MetricClaimConflicts, 1)
		s.logger.Debug("bundle already claimed",
			zap.String("session", s.id),
			zap.String("bundle", bundle.ID))
		return nil
	default:
		s.state = StateResultsLocked
		s.stats.IncCounter(stats.MetricClaimFailures, 1)
		s.logger.Warn("claim persistence failed",
			zap.String("session", s.id),
			zap.Error(err))
		return fmt.Errorf("persist claim: %w", err)
	}
}

// Abandon ends the session without persisting anything. Abandoning after a
// successful claim is a no-op.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateResults || s.state == StateAbandoned {
		return
	}
	s.state = StateAbandoned
	s.bundle = nil
}
