// Package phase maps move numbers to game phases.
//
// The boundaries are fixed constants, not derived from material or position
// complexity. Existing aggregates depend on these exact cutoffs; do not
// replace them with a material-based heuristic.
package phase

// Phase identifies a segment of a chess game.
type Phase string

const (
	Opening    Phase = "opening"
	Middlegame Phase = "middlegame"
	Endgame    Phase = "endgame"
)

// Move number boundaries (inclusive upper bounds).
const (
	openingUntil    = 15
	middlegameUntil = 40
)

// ForMove returns the phase for a fullmove number (1-based).
func ForMove(moveNumber int) Phase {
	switch {
	case moveNumber <= openingUntil:
		return Opening
	case moveNumber <= middlegameUntil:
		return Middlegame
	default:
		return Endgame
	}
}

// All lists every phase in game order.
func All() []Phase {
	return []Phase{Opening, Middlegame, Endgame}
}
