package srs

import (
	"math"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func attempt(correct bool, taken time.Duration, at time.Time) Attempt {
	return Attempt{PuzzleKey: "k", UserID: "u", Correct: correct, TimeTaken: taken, At: at}
}

func TestNextFirstCorrectFast(t *testing.T) {
	got := Next(DefaultState(), attempt(true, 5*time.Second, base))
	if got.Repetition != 1 {
		t.Fatalf("Repetition = %d, want 1", got.Repetition)
	}
	if got.IntervalDays != 1 {
		t.Fatalf("IntervalDays = %d, want 1", got.IntervalDays)
	}
	if math.Abs(got.Easiness-2.6) > 1e-9 {
		t.Fatalf("Easiness = %v, want 2.6", got.Easiness)
	}
	if !got.NextReview.Equal(base.Add(24 * time.Hour)) {
		t.Fatalf("NextReview = %v, want one day out", got.NextReview)
	}
}

func TestNextSecondCorrectSixDays(t *testing.T) {
	s := Next(DefaultState(), attempt(true, 5*time.Second, base))
	s = Next(s, attempt(true, 5*time.Second, base.Add(24*time.Hour)))
	if s.Repetition != 2 || s.IntervalDays != 6 {
		t.Fatalf("got rep %d interval %d, want rep 2 interval 6", s.Repetition, s.IntervalDays)
	}
}

func TestNextThirdCorrectScalesByEasiness(t *testing.T) {
	s := State{Repetition: 2, Easiness: 2.5, IntervalDays: 6}
	got := Next(s, attempt(true, 20*time.Second, base))
	// Medium speed keeps the easiness at 2.5, so 6 days scale to 15.
	if got.IntervalDays != 15 {
		t.Fatalf("IntervalDays = %d, want 15", got.IntervalDays)
	}
	if got.Repetition != 3 {
		t.Fatalf("Repetition = %d, want 3", got.Repetition)
	}
}

func TestNextSlowAnswerLowersEasiness(t *testing.T) {
	got := Next(DefaultState(), attempt(true, time.Minute, base))
	if math.Abs(got.Easiness-2.36) > 1e-9 {
		t.Fatalf("Easiness = %v, want 2.36", got.Easiness)
	}
}

func TestNextIncorrectResets(t *testing.T) {
	s := State{Repetition: 4, Easiness: 2.2, IntervalDays: 30}
	got := Next(s, attempt(false, 40*time.Second, base))
	if got.Repetition != 0 {
		t.Fatalf("Repetition = %d, want 0", got.Repetition)
	}
	if got.IntervalDays != 1 {
		t.Fatalf("IntervalDays = %d, want 1", got.IntervalDays)
	}
	if got.Easiness != 2.2 {
		t.Fatalf("Easiness = %v, want unchanged 2.2", got.Easiness)
	}
	if !got.NextReview.Equal(base.Add(24 * time.Hour)) {
		t.Fatalf("NextReview = %v, want next-day retry", got.NextReview)
	}
}

func TestNextEasinessFloor(t *testing.T) {
	s := State{Repetition: 1, Easiness: MinEasiness, IntervalDays: 1}
	for i := 0; i < 10; i++ {
		s = Next(s, attempt(true, time.Minute, base.Add(time.Duration(i)*24*time.Hour)))
		if s.Easiness < MinEasiness {
			t.Fatalf("Easiness dropped below floor: %v", s.Easiness)
		}
	}
}

func TestDefaultStateDueImmediately(t *testing.T) {
	if !DefaultState().Due(base) {
		t.Fatal("unattempted puzzle should be due immediately")
	}
}

func TestReplayDeterministicAndOrderIndependent(t *testing.T) {
	attempts := []Attempt{
		attempt(true, 5*time.Second, base),
		attempt(true, 20*time.Second, base.Add(24*time.Hour)),
		attempt(false, 50*time.Second, base.Add(7*24*time.Hour)),
		attempt(true, 8*time.Second, base.Add(8*24*time.Hour)),
	}
	want := Replay(attempts)

	shuffled := []Attempt{attempts[2], attempts[0], attempts[3], attempts[1]}
	got := Replay(shuffled)
	if got != want {
		t.Fatalf("Replay() order dependent: %+v vs %+v", got, want)
	}

	// Incorrect attempt in the middle resets the repetition count.
	if want.Repetition != 1 {
		t.Fatalf("Repetition after reset and one correct = %d, want 1", want.Repetition)
	}
}

func TestReplayEmptyHistory(t *testing.T) {
	if got := Replay(nil); got != DefaultState() {
		t.Fatalf("Replay(nil) = %+v, want default state", got)
	}
}
