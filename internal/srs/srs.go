// Package srs schedules puzzle reviews with the SM-2 spaced repetition
// algorithm. Scheduling state is derived purely from the attempt history,
// so replaying the same attempts always lands on the same schedule.
package srs

import (
	"math"
	"sort"
	"time"
)

const (
	// MinEasiness is the SM-2 floor for the easiness factor.
	MinEasiness = 1.3

	// InitialEasiness is the easiness factor before any attempts.
	InitialEasiness = 2.5

	day = 24 * time.Hour
)

// Quality grades mapped from answer speed. Correct answers earn 3 to 5;
// incorrect answers reset the repetition count outright.
const (
	qualityFast   = 5
	qualityMedium = 4
	qualitySlow   = 3

	fastBelow   = 10 * time.Second
	mediumBelow = 30 * time.Second
)

// Attempt is one puzzle answer.
type Attempt struct {
	PuzzleKey string        `json:"puzzle_key"`
	UserID    string        `json:"user_id"`
	Correct   bool          `json:"correct"`
	TimeTaken time.Duration `json:"time_taken"`
	At        time.Time     `json:"at"`
}

// State is the scheduling state of one puzzle for one user.
type State struct {
	Repetition   int       `json:"repetition"`
	Easiness     float64   `json:"easiness"`
	IntervalDays int       `json:"interval_days"`
	NextReview   time.Time `json:"next_review"`
}

// DefaultState returns the state of a puzzle that has never been attempted.
// Its NextReview is zero; unattempted puzzles are due immediately.
func DefaultState() State {
	return State{Repetition: 0, Easiness: InitialEasiness}
}

// Due reports whether the puzzle should be reviewed at the given time.
func (s State) Due(at time.Time) bool {
	return !s.NextReview.After(at)
}

// Next computes the state after one attempt. An incorrect answer resets the
// repetition count and schedules a retry the next day without touching the
// easiness factor. A correct answer grades the response by speed and applies
// the SM-2 easiness and interval updates.
func Next(prev State, a Attempt) State {
	if prev.Easiness < MinEasiness {
		prev.Easiness = MinEasiness
	}

	if !a.Correct {
		return State{
			Repetition:   0,
			Easiness:     prev.Easiness,
			IntervalDays: 1,
			NextReview:   a.At.Add(day),
		}
	}

	q := grade(a.TimeTaken)
	ef := prev.Easiness + (0.1 - float64(5-q)*(0.08+float64(5-q)*0.02))
	if ef < MinEasiness {
		ef = MinEasiness
	}

	rep := prev.Repetition + 1
	var interval int
	switch rep {
	case 1:
		interval = 1
	case 2:
		interval = 6
	default:
		interval = int(math.Round(float64(prev.IntervalDays) * ef))
	}
	if interval < 1 {
		interval = 1
	}

	return State{
		Repetition:   rep,
		Easiness:     ef,
		IntervalDays: interval,
		NextReview:   a.At.Add(time.Duration(interval) * day),
	}
}

// Replay folds a full attempt history into the current scheduling state.
// Attempts are ordered by timestamp before folding, so the result does not
// depend on the order they were loaded in.
func Replay(attempts []Attempt) State {
	sorted := make([]Attempt, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})

	state := DefaultState()
	for _, a := range sorted {
		state = Next(state, a)
	}
	return state
}

// grade maps answer speed to an SM-2 quality score.
func grade(taken time.Duration) int {
	switch {
	case taken < fastBelow:
		return qualityFast
	case taken < mediumBelow:
		return qualityMedium
	default:
		return qualitySlow
	}
}
