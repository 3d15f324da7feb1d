// Package puzzle mines classified mistakes into deduplicated tactical
// exercises.
package puzzle

import (
	"strconv"
	"time"

	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/fen"
	"github.com/discochess/drillbook/internal/phase"
)

// Difficulty tiers a puzzle. Only one tier exists today; the field is kept
// for record compatibility rather than for any scoring logic.
type Difficulty string

// DifficultyStandard is the single difficulty every generated puzzle gets.
const DifficultyStandard Difficulty = "standard"

// Puzzle is a deduplicated tactical exercise mined from a player's mistake.
type Puzzle struct {
	// Key is the stable fingerprint of the position and its solution.
	// At most one puzzle exists per key.
	Key string `json:"puzzle_key"`

	FEN        string `json:"fen"`
	SideToMove string `json:"side_to_move"`
	BestMove   string `json:"best_move"`
	PlayedMove string `json:"played_move"`
	EvalLossCP int    `json:"eval_loss_cp"`

	Phase      phase.Phase `json:"phase"`
	Themes     []string    `json:"themes"`
	Difficulty Difficulty  `json:"difficulty"`

	GameID    string    `json:"game_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Fingerprint computes the stable puzzle key for a position and its best
// move: the FNV-1a 64-bit hash of the normalized FEN joined with the move.
// Equivalent positions reached in different games or re-analyses map to the
// same key.
func Fingerprint(fenStr, bestMove string) string {
	normalized, err := fen.Normalize(fenStr)
	if err != nil {
		normalized = fenStr
	}
	return strconv.FormatUint(fnv1a64(normalized+"|"+bestMove), 16)
}

// fnv1a64 computes the FNV-1a 64-bit hash of a string.
func fnv1a64(s string) uint64 {
	var h uint64 = 14695981039346656037 // FNV offset basis
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211 // FNV prime
	}
	return h
}

// Config holds the puzzle mining constants.
type Config struct {
	// MinEvalLoss filters noise: errors losing fewer centipawns than this
	// never become puzzles.
	MinEvalLoss int
}

// DefaultConfig returns the default mining constants.
func DefaultConfig() Config {
	return Config{MinEvalLoss: 50}
}

// Generator mines puzzles from classified moves. Generators are pure; the
// at-most-one-per-key guarantee is enforced by the store's check-and-insert,
// not here.
type Generator struct {
	cfg Config
}

// New creates a generator with the given config.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// FromGame returns puzzle candidates for one side of a game: every mistake,
// blunder, or missed win whose eval loss clears the noise floor. Running it
// twice over the same moves yields identical candidates with identical keys.
func (g *Generator) FromGame(gameID, userID, side string, moves []classify.MoveEvaluation, createdAt time.Time) []Puzzle {
	var out []Puzzle
	for _, m := range moves {
		if m.Side != side || !m.Quality.IsError() {
			continue
		}
		if m.CPLoss < g.cfg.MinEvalLoss && m.Quality != classify.QualityMissedWin {
			continue
		}
		if m.FENBefore == "" || m.BestMove == "" {
			continue
		}

		out = append(out, Puzzle{
			Key:        Fingerprint(m.FENBefore, m.BestMove),
			FEN:        m.FENBefore,
			SideToMove: m.Side,
			BestMove:   m.BestMove,
			PlayedMove: m.UCI,
			EvalLossCP: m.CPLoss,
			Phase:      m.Phase,
			Themes:     inferThemes(m),
			Difficulty: DifficultyStandard,
			GameID:     gameID,
			UserID:     userID,
			CreatedAt:  createdAt,
		})
	}
	return out
}
