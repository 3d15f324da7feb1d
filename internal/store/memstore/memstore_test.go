package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/discochess/drillbook/internal/accuracy"
	"github.com/discochess/drillbook/internal/claim"
	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/puzzle"
	"github.com/discochess/drillbook/internal/srs"
	"github.com/discochess/drillbook/internal/store"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestMoveEvaluationsRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	moves := []classify.MoveEvaluation{
		{MoveNumber: 1, Side: "w", SAN: "e4", UCI: "e2e4", Quality: classify.QualityBest},
		{MoveNumber: 2, Side: "w", SAN: "Nf3", UCI: "g1f3", Quality: classify.QualityGood},
	}
	if err := s.SaveMoveEvaluations(ctx, "g1", "u1", "w", moves); err != nil {
		t.Fatalf("SaveMoveEvaluations() error: %v", err)
	}

	got, err := s.MoveEvaluations(ctx, "g1", "u1", "w")
	if err != nil {
		t.Fatalf("MoveEvaluations() error: %v", err)
	}
	if len(got) != 2 || got[0].SAN != "e4" || got[1].SAN != "Nf3" {
		t.Fatalf("unexpected moves: %+v", got)
	}

	if _, err := s.MoveEvaluations(ctx, "g1", "u1", "b"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing side = %v, want ErrNotFound", err)
	}
}

func TestSaveMoveEvaluationsReplaces(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := []classify.MoveEvaluation{{MoveNumber: 1, Side: "w", SAN: "e4"}}
	second := []classify.MoveEvaluation{{MoveNumber: 1, Side: "w", SAN: "d4"}}
	if err := s.SaveMoveEvaluations(ctx, "g1", "u1", "w", first); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveMoveEvaluations(ctx, "g1", "u1", "w", second); err != nil {
		t.Fatal(err)
	}

	got, err := s.MoveEvaluations(ctx, "g1", "u1", "w")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].SAN != "d4" {
		t.Fatalf("re-analysis did not replace: %+v", got)
	}
}

func TestListAnalysesOrderedByTime(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i, gameID := range []string{"g3", "g1", "g2"} {
		a := &accuracy.GameAnalysis{
			GameID: gameID, UserID: "u1", Side: "w",
			AnalyzedAt: base.Add(time.Duration(2-i) * time.Hour),
		}
		if err := s.ReplaceAnalysis(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListAnalyses(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d analyses, want 3", len(got))
	}
	if got[0].GameID != "g2" || got[1].GameID != "g1" || got[2].GameID != "g3" {
		t.Fatalf("analyses not ordered by time: %v %v %v", got[0].GameID, got[1].GameID, got[2].GameID)
	}
}

func TestListAnalysesBreaksTimestampTiesByGameID(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, gameID := range []string{"g4", "g2", "g3", "g1"} {
		a := &accuracy.GameAnalysis{
			GameID: gameID, UserID: "u1", Side: "w",
			AnalyzedAt: base,
		}
		if err := s.ReplaceAnalysis(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"g1", "g2", "g3", "g4"}
	for i := 0; i < 10; i++ {
		got, err := s.ListAnalyses(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(want) {
			t.Fatalf("got %d analyses, want %d", len(got), len(want))
		}
		for j, w := range want {
			if got[j].GameID != w {
				t.Fatalf("position %d: got %s, want %s", j, got[j].GameID, w)
			}
		}
	}
}

func TestCreatePuzzleIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	p := puzzle.Puzzle{Key: "k1", UserID: "u1", CreatedAt: base}
	created, err := s.CreatePuzzle(ctx, p)
	if err != nil || !created {
		t.Fatalf("first CreatePuzzle() = (%v, %v), want (true, nil)", created, err)
	}
	created, err = s.CreatePuzzle(ctx, p)
	if err != nil || created {
		t.Fatalf("second CreatePuzzle() = (%v, %v), want (false, nil)", created, err)
	}
}

func TestDuePuzzlesFollowAttemptLog(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreatePuzzle(ctx, puzzle.Puzzle{Key: "k1", UserID: "u1"}); err != nil {
		t.Fatal(err)
	}

	// Never attempted puzzles are due immediately.
	due, err := s.ListDuePuzzles(ctx, "u1", base)
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 {
		t.Fatalf("got %d due puzzles, want 1", len(due))
	}

	// A correct attempt pushes the review one day out.
	err = s.AppendAttempt(ctx, srs.Attempt{PuzzleKey: "k1", UserID: "u1", Correct: true, TimeTaken: 5 * time.Second, At: base})
	if err != nil {
		t.Fatal(err)
	}
	due, err = s.ListDuePuzzles(ctx, "u1", base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 0 {
		t.Fatalf("got %d due puzzles just after solving, want 0", len(due))
	}
	due, err = s.ListDuePuzzles(ctx, "u1", base.Add(25*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 {
		t.Fatalf("got %d due puzzles a day later, want 1", len(due))
	}
}

func TestSchedulesIndependentPerUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, user := range []string{"u1", "u2"} {
		if _, err := s.CreatePuzzle(ctx, puzzle.Puzzle{Key: "k-" + user, UserID: user}); err != nil {
			t.Fatal(err)
		}
	}
	err := s.AppendAttempt(ctx, srs.Attempt{PuzzleKey: "k-u1", UserID: "u1", Correct: true, TimeTaken: 5 * time.Second, At: base})
	if err != nil {
		t.Fatal(err)
	}

	due, err := s.ListDuePuzzles(ctx, "u2", base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 1 {
		t.Fatalf("u2's schedule affected by u1's attempt: %d due, want 1", len(due))
	}
}

func TestPersistClaimConflicts(t *testing.T) {
	s := New()
	ctx := context.Background()

	bundle := claim.NewBundle([]claim.GameSummary{{GameID: "g1", Fingerprint: "fp"}}, base)
	if err := s.PersistClaim(ctx, "key-1", "u1", bundle); err != nil {
		t.Fatalf("PersistClaim() error: %v", err)
	}
	if err := s.PersistClaim(ctx, "key-1", "u1", bundle); !errors.Is(err, claim.ErrConflict) {
		t.Fatalf("duplicate PersistClaim() = %v, want ErrConflict", err)
	}
	if s.ClaimedBundles() != 1 {
		t.Fatalf("claimed %d bundles, want 1", s.ClaimedBundles())
	}
}
