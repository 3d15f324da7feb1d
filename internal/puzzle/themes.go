package puzzle

import "github.com/discochess/drillbook/internal/classify"

// Theme tags attached to mined puzzles.
const (
	ThemeHangingPiece = "hanging_piece"
	ThemeMissedMate   = "missed_mate"
	ThemeBackRank     = "back_rank"
	ThemeKingSafety   = "king_safety"
	ThemeTimeTrouble  = "time_trouble"
	ThemeOpening      = "opening"
	ThemeMiddlegame   = "middlegame"
	ThemeEndgame      = "endgame"
)

// inferThemes derives theme tags from a classified move. The phase tag is
// always present; the rest depend on the blunder annotations.
func inferThemes(m classify.MoveEvaluation) []string {
	themes := []string{string(m.Phase)}

	switch m.BlunderType {
	case classify.BlunderHangingPiece:
		themes = append(themes, ThemeHangingPiece)
	case classify.BlunderKingSafety:
		themes = append(themes, ThemeKingSafety)
	}

	if m.Quality == classify.QualityMissedWin {
		themes = append(themes, ThemeMissedMate)
		if backRankMate(m.BestMove) {
			themes = append(themes, ThemeBackRank)
		}
	}

	if m.BlunderSubtype == classify.SubtypeTimeTrouble {
		themes = append(themes, ThemeTimeTrouble)
	}
	return themes
}

// backRankMate reports whether a missed mating move lands on the first or
// eighth rank, the usual signature of a back-rank pattern. The heuristic
// only looks at the destination square of the UCI move.
func backRankMate(uci string) bool {
	if len(uci) < 4 {
		return false
	}
	rank := uci[3]
	return rank == '1' || rank == '8'
}
