// Package accuracy aggregates classified moves into per-game statistics.
package accuracy

import (
	"errors"
	"math"
	"time"

	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/phase"
)

// ErrNoMoves indicates an empty or fully unclassified move list.
// It aborts the analysis of that game only.
var ErrNoMoves = errors.New("accuracy: no classified moves for game")

// Accuracy curve constants, calibrated so that a single large blunder
// depresses the score more than several small inaccuracies
// (the standard Lichess-style exponential decay of average cp loss).
const (
	curveScale = 103.1668
	curveDecay = 0.04354
	curveShift = 3.1668
)

// PhaseStats holds the cp-loss aggregates for one phase.
type PhaseStats struct {
	Moves       int     `json:"moves"`
	TotalCPLoss int     `json:"total_cp_loss"`
	AvgCPLoss   float64 `json:"avg_cp_loss"`
}

// GameAnalysis summarizes one side of one analyzed game.
// It is derived wholly from the game's MoveEvaluation set and is replaced,
// never merged, when the game is re-analyzed.
type GameAnalysis struct {
	GameID string `json:"game_id"`
	UserID string `json:"user_id,omitempty"`
	Side   string `json:"side"`

	Overall  PhaseStats                `json:"overall"`
	ByPhase  map[phase.Phase]PhaseStats `json:"by_phase"`
	Accuracy float64                   `json:"accuracy"`

	QualityCounts       map[classify.Quality]int `json:"quality_counts"`
	TimeTroubleBlunders int                      `json:"time_trouble_blunders"`
	SkippedMoves        int                      `json:"skipped_moves"`

	Depth      int       `json:"depth,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Aggregator computes GameAnalysis records. Aggregators are pure and safe
// for concurrent use.
type Aggregator struct{}

// New creates an aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Aggregate computes the analysis for one side of a game from its complete,
// ordered move set. Unclassified moves are counted as skipped and excluded
// from every statistic. The whole computation runs from scratch each call;
// there is no incremental path.
func (a *Aggregator) Aggregate(gameID, userID, side string, moves []classify.MoveEvaluation, analyzedAt time.Time) (GameAnalysis, error) {
	ga := GameAnalysis{
		GameID:        gameID,
		UserID:        userID,
		Side:          side,
		ByPhase:       make(map[phase.Phase]PhaseStats, 3),
		QualityCounts: make(map[classify.Quality]int),
		AnalyzedAt:    analyzedAt,
	}

	for _, m := range moves {
		if m.Side != side {
			continue
		}
		if !m.Classified() {
			ga.SkippedMoves++
			continue
		}

		ga.Overall.Moves++
		ga.Overall.TotalCPLoss += m.CPLoss

		ps := ga.ByPhase[m.Phase]
		ps.Moves++
		ps.TotalCPLoss += m.CPLoss
		ga.ByPhase[m.Phase] = ps

		ga.QualityCounts[m.Quality]++

		if m.Quality == classify.QualityBlunder && m.BlunderSubtype == classify.SubtypeTimeTrouble {
			ga.TimeTroubleBlunders++
		}
	}

	if ga.Overall.Moves == 0 {
		return GameAnalysis{}, ErrNoMoves
	}

	ga.Overall.AvgCPLoss = float64(ga.Overall.TotalCPLoss) / float64(ga.Overall.Moves)
	for p, ps := range ga.ByPhase {
		ps.AvgCPLoss = float64(ps.TotalCPLoss) / float64(ps.Moves)
		ga.ByPhase[p] = ps
	}

	ga.Accuracy = Score(ga.Overall.AvgCPLoss)
	return ga, nil
}

// Score converts an average centipawn loss to a 0-100 accuracy score.
// The curve is monotonically non-increasing in average cp loss.
func Score(avgCPLoss float64) float64 {
	score := curveScale*math.Exp(-curveDecay*avgCPLoss) - curveShift
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
