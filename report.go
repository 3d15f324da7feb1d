package drillbook

import (
	"math"

	"github.com/discochess/drillbook/internal/accuracy"
	"github.com/discochess/drillbook/internal/claim"
	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/puzzle"
)

// GameReport is the full output of analyzing one game for one side. It is a
// read-only projection; consumers render it, the core does not.
type GameReport struct {
	GameID      string
	UserID      string
	Side        string
	Fingerprint string

	// Moves covers both sides in game order; Analysis and Puzzles cover
	// only the requested side.
	Moves    []classify.MoveEvaluation
	Analysis accuracy.GameAnalysis
	Puzzles  []puzzle.Puzzle
}

// Summary condenses the report into its claimable form.
func (r *GameReport) Summary() claim.GameSummary {
	return claim.GameSummary{
		GameID:      r.GameID,
		Fingerprint: r.Fingerprint,
		Side:        r.Side,
		Accuracy:    RoundAccuracy(r.Analysis.Accuracy),
		AvgCPLoss:   RoundPawnLoss(r.Analysis.Overall.AvgCPLoss),
		PuzzleCount: len(r.Puzzles),
	}
}

// Rounding policy shared by every consumer, so numbers never drift between
// views of the same analysis.

// RoundAccuracy rounds an accuracy score to one decimal place.
func RoundAccuracy(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundPawnLoss rounds an average centipawn loss to two decimal places.
func RoundPawnLoss(v float64) float64 {
	return math.Round(v*100) / 100
}
