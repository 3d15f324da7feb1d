package puzzle

import (
	"testing"
	"time"

	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/phase"
)

const testFEN = "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(testFEN, "f3e5")
	b := Fingerprint(testFEN, "f3e5")
	if a != b {
		t.Fatalf("Fingerprint() not deterministic: %q vs %q", a, b)
	}
	if a == "" {
		t.Fatal("Fingerprint() returned empty key")
	}
}

func TestFingerprintIgnoresMoveCounters(t *testing.T) {
	// Same placement reached by a different move order differs only in
	// the halfmove and fullmove counters.
	other := "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 4 9"
	if Fingerprint(testFEN, "f3e5") != Fingerprint(other, "f3e5") {
		t.Fatal("Fingerprint() should ignore move counters")
	}
}

func TestFingerprintDistinguishesMoves(t *testing.T) {
	if Fingerprint(testFEN, "f3e5") == Fingerprint(testFEN, "d2d4") {
		t.Fatal("Fingerprint() collided for distinct best moves")
	}
}

func TestFromGameFiltersCandidates(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	moves := []classify.MoveEvaluation{
		{Side: "w", UCI: "e2e4", FENBefore: testFEN, BestMove: "e2e4", CPLoss: 0, Quality: classify.QualityBest, Phase: phase.Opening},
		{Side: "w", UCI: "g1f3", FENBefore: testFEN, BestMove: "d2d4", CPLoss: 30, Quality: classify.QualityInaccuracy, Phase: phase.Opening},
		{Side: "w", UCI: "f2f4", FENBefore: testFEN, BestMove: "d2d4", CPLoss: 40, Quality: classify.QualityMistake, Phase: phase.Middlegame},
		{Side: "w", UCI: "g2g4", FENBefore: testFEN, BestMove: "d1d5", CPLoss: 320, Quality: classify.QualityBlunder, Phase: phase.Middlegame, BlunderType: classify.BlunderHangingPiece},
		{Side: "b", UCI: "g8f6", FENBefore: testFEN, BestMove: "d7d5", CPLoss: 200, Quality: classify.QualityBlunder, Phase: phase.Middlegame},
	}

	got := New(DefaultConfig()).FromGame("g1", "u1", "w", moves, now)
	if len(got) != 1 {
		t.Fatalf("FromGame() returned %d puzzles, want 1", len(got))
	}
	p := got[0]
	if p.PlayedMove != "g2g4" || p.BestMove != "d1d5" {
		t.Fatalf("unexpected puzzle moves: played %q best %q", p.PlayedMove, p.BestMove)
	}
	if p.Difficulty != DifficultyStandard {
		t.Fatalf("Difficulty = %q, want %q", p.Difficulty, DifficultyStandard)
	}
	if p.GameID != "g1" || p.UserID != "u1" || !p.CreatedAt.Equal(now) {
		t.Fatal("puzzle provenance fields not carried through")
	}
}

func TestFromGameMissedWinBypassesNoiseFloor(t *testing.T) {
	moves := []classify.MoveEvaluation{
		{Side: "w", UCI: "h2h3", FENBefore: testFEN, BestMove: "d1d8", CPLoss: 10, Quality: classify.QualityMissedWin, Phase: phase.Endgame},
	}
	got := New(DefaultConfig()).FromGame("g1", "u1", "w", moves, time.Now())
	if len(got) != 1 {
		t.Fatalf("missed win below noise floor should still mine a puzzle, got %d", len(got))
	}
}

func TestFromGameDeterministic(t *testing.T) {
	now := time.Now()
	moves := []classify.MoveEvaluation{
		{Side: "w", UCI: "g2g4", FENBefore: testFEN, BestMove: "d1d5", CPLoss: 320, Quality: classify.QualityBlunder, Phase: phase.Middlegame},
	}
	g := New(DefaultConfig())
	first := g.FromGame("g1", "u1", "w", moves, now)
	second := g.FromGame("g1", "u1", "w", moves, now)
	if len(first) != 1 || len(second) != 1 || first[0].Key != second[0].Key {
		t.Fatal("FromGame() keys differ across runs")
	}
}

func TestInferThemes(t *testing.T) {
	tests := []struct {
		name string
		move classify.MoveEvaluation
		want []string
	}{
		{
			name: "hanging piece in middlegame",
			move: classify.MoveEvaluation{Phase: phase.Middlegame, Quality: classify.QualityBlunder, BlunderType: classify.BlunderHangingPiece},
			want: []string{"middlegame", ThemeHangingPiece},
		},
		{
			name: "missed back rank mate",
			move: classify.MoveEvaluation{Phase: phase.Endgame, Quality: classify.QualityMissedWin, BestMove: "d1d8"},
			want: []string{"endgame", ThemeMissedMate, ThemeBackRank},
		},
		{
			name: "missed mate off the back rank",
			move: classify.MoveEvaluation{Phase: phase.Endgame, Quality: classify.QualityMissedWin, BestMove: "d1d5"},
			want: []string{"endgame", ThemeMissedMate},
		},
		{
			name: "time trouble blunder",
			move: classify.MoveEvaluation{Phase: phase.Endgame, Quality: classify.QualityBlunder, BlunderSubtype: classify.SubtypeTimeTrouble},
			want: []string{"endgame", ThemeTimeTrouble},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := inferThemes(tc.move)
			if len(got) != len(tc.want) {
				t.Fatalf("inferThemes() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("inferThemes() = %v, want %v", got, tc.want)
				}
			}
		})
	}
}
