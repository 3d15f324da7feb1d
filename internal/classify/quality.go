package classify

// Quality labels the standard of a played move relative to the engine's best
// continuation.
type Quality string

const (
	// QualityUnclassified marks a move whose evaluation failed.
	// Unclassified moves are excluded from aggregation.
	QualityUnclassified Quality = "unclassified"

	QualityBest            Quality = "best"
	QualityBrilliant       Quality = "brilliant"
	QualityExcellent       Quality = "excellent"
	QualityGood            Quality = "good"
	QualityForced          Quality = "forced"
	QualityInaccuracy      Quality = "inaccuracy"
	QualityMistake         Quality = "mistake"
	QualityBlunderAdjacent Quality = "blunder_adjacent"
	QualityBlunder         Quality = "blunder"
	QualityMissedWin       Quality = "missed_win"
)

// IsError reports whether the quality marks a move worth drilling:
// mistakes, blunders, and missed wins feed the puzzle generator.
func (q Quality) IsError() bool {
	switch q {
	case QualityMistake, QualityBlunder, QualityMissedWin:
		return true
	}
	return false
}

// BlunderType categorizes what kind of error a mistake or blunder was.
type BlunderType string

const (
	BlunderHangingPiece BlunderType = "hanging_piece"
	BlunderMissedTactic BlunderType = "missed_tactic"
	BlunderKingSafety   BlunderType = "king_safety"
)

// BlunderSubtype refines a blunder with circumstantial context.
type BlunderSubtype string

const (
	SubtypeTimeTrouble BlunderSubtype = "time_trouble"
)
