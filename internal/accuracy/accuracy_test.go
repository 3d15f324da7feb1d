package accuracy

import (
	"errors"
	"testing"
	"time"

	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/phase"
)

func move(number int, side string, quality classify.Quality, cpLoss int) classify.MoveEvaluation {
	return classify.MoveEvaluation{
		MoveNumber: number,
		Side:       side,
		Phase:      phase.ForMove(number),
		CPLoss:     cpLoss,
		Quality:    quality,
	}
}

func TestScore_Bounds(t *testing.T) {
	if got := Score(0); got != 100 {
		t.Errorf("Score(0) = %v, want 100 (clamped)", got)
	}
	if got := Score(10000); got != 0 {
		t.Errorf("Score(10000) = %v, want 0 (clamped)", got)
	}
}

func TestScore_Monotone(t *testing.T) {
	prev := Score(0)
	for loss := 1.0; loss <= 500; loss++ {
		s := Score(loss)
		if s > prev {
			t.Fatalf("Score not monotone at avg loss %v: %v > %v", loss, s, prev)
		}
		if s < 0 || s > 100 {
			t.Fatalf("Score(%v) = %v out of [0,100]", loss, s)
		}
		prev = s
	}
}

func TestAggregate(t *testing.T) {
	agg := New()
	now := time.Now()

	low := 10 * time.Second
	blunder := move(42, "w", classify.QualityBlunder, 320)
	blunder.BlunderSubtype = classify.SubtypeTimeTrouble
	blunder.TimeRemaining = &low

	moves := []classify.MoveEvaluation{
		move(1, "w", classify.QualityBest, 0),
		move(1, "b", classify.QualityGood, 5),
		move(10, "w", classify.QualityGood, 8),
		move(10, "b", classify.QualityBest, 0),
		move(20, "w", classify.QualityMistake, 40),
		move(20, "b", classify.QualityBlunder, 200),
		blunder,
		{MoveNumber: 43, Side: "w", Quality: classify.QualityUnclassified},
	}

	ga, err := agg.Aggregate("g1", "u1", "w", moves, now)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if ga.Overall.Moves != 4 {
		t.Errorf("Overall.Moves = %d, want 4", ga.Overall.Moves)
	}
	if ga.Overall.TotalCPLoss != 368 {
		t.Errorf("Overall.TotalCPLoss = %d, want 368", ga.Overall.TotalCPLoss)
	}
	if ga.SkippedMoves != 1 {
		t.Errorf("SkippedMoves = %d, want 1", ga.SkippedMoves)
	}
	if ga.TimeTroubleBlunders != 1 {
		t.Errorf("TimeTroubleBlunders = %d, want 1", ga.TimeTroubleBlunders)
	}

	if got := ga.ByPhase[phase.Opening].Moves; got != 2 {
		t.Errorf("opening moves = %d, want 2", got)
	}
	if got := ga.ByPhase[phase.Middlegame].TotalCPLoss; got != 40 {
		t.Errorf("middlegame loss = %d, want 40", got)
	}
	if got := ga.ByPhase[phase.Endgame].TotalCPLoss; got != 320 {
		t.Errorf("endgame loss = %d, want 320", got)
	}

	if ga.QualityCounts[classify.QualityBest] != 1 ||
		ga.QualityCounts[classify.QualityGood] != 1 ||
		ga.QualityCounts[classify.QualityMistake] != 1 ||
		ga.QualityCounts[classify.QualityBlunder] != 1 {
		t.Errorf("QualityCounts = %v", ga.QualityCounts)
	}

	want := Score(368.0 / 4)
	if ga.Accuracy != want {
		t.Errorf("Accuracy = %v, want %v", ga.Accuracy, want)
	}

	// Black's side aggregates independently.
	gb, err := agg.Aggregate("g1", "u2", "b", moves, now)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if gb.Overall.Moves != 3 || gb.Overall.TotalCPLoss != 205 {
		t.Errorf("black side = %d moves / %d loss, want 3 / 205", gb.Overall.Moves, gb.Overall.TotalCPLoss)
	}
}

func TestAggregate_NoMoves(t *testing.T) {
	agg := New()

	_, err := agg.Aggregate("g1", "u1", "w", nil, time.Now())
	if !errors.Is(err, ErrNoMoves) {
		t.Errorf("Aggregate() error = %v, want ErrNoMoves", err)
	}

	// All moves unclassified counts as no moves.
	moves := []classify.MoveEvaluation{
		{MoveNumber: 1, Side: "w", Quality: classify.QualityUnclassified},
	}
	_, err = agg.Aggregate("g1", "u1", "w", moves, time.Now())
	if !errors.Is(err, ErrNoMoves) {
		t.Errorf("Aggregate() error = %v, want ErrNoMoves", err)
	}
}
