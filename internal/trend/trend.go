// Package trend detects accuracy trends across a player's game history.
package trend

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/discochess/drillbook/internal/accuracy"
)

// Verdict is the outcome of a trend analysis.
type Verdict string

const (
	Improving        Verdict = "improving"
	Declining        Verdict = "declining"
	Stable           Verdict = "stable"
	InsufficientData Verdict = "insufficient_data"
)

// Config holds the trend detection constants.
type Config struct {
	// MinGames is the minimum history length required for any verdict other
	// than InsufficientData. Fewer games never produce a trend.
	MinGames int

	// RecentWindow is the number of most recent games compared against the
	// baseline of everything before them.
	RecentWindow int

	// MinDelta is the minimum difference in mean accuracy points before a
	// history is called improving or declining.
	MinDelta float64
}

// DefaultConfig returns the default trend constants.
func DefaultConfig() Config {
	return Config{
		MinGames:     6,
		RecentWindow: 5,
		MinDelta:     3.0,
	}
}

// Result carries the verdict together with the numbers behind it.
type Result struct {
	Verdict      Verdict `json:"verdict"`
	Games        int     `json:"games"`
	RecentMean   float64 `json:"recent_mean"`
	BaselineMean float64 `json:"baseline_mean"`
	Delta        float64 `json:"delta"`

	// EffectSize is Cohen's d for the recent window against the baseline,
	// a scale-free measure of how pronounced the shift is.
	EffectSize float64 `json:"effect_size"`
}

// Analyzer computes trend verdicts. Analyzers are pure and safe for
// concurrent use.
type Analyzer struct {
	cfg Config
}

// New creates an analyzer with the given config.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze inspects a date-ordered game history (oldest first) and reports
// whether the player's accuracy is improving, declining, or stable.
func (a *Analyzer) Analyze(history []accuracy.GameAnalysis) Result {
	res := Result{Verdict: InsufficientData, Games: len(history)}
	if len(history) < a.cfg.MinGames {
		return res
	}

	window := a.cfg.RecentWindow
	if window >= len(history) {
		window = len(history) - 1
	}

	split := len(history) - window
	baseline := accuracies(history[:split])
	recent := accuracies(history[split:])

	res.BaselineMean = stat.Mean(baseline, nil)
	res.RecentMean = stat.Mean(recent, nil)
	res.Delta = res.RecentMean - res.BaselineMean
	res.EffectSize = cohensD(recent, baseline)

	switch {
	case res.Delta >= a.cfg.MinDelta:
		res.Verdict = Improving
	case res.Delta <= -a.cfg.MinDelta:
		res.Verdict = Declining
	default:
		res.Verdict = Stable
	}
	return res
}

func accuracies(history []accuracy.GameAnalysis) []float64 {
	out := make([]float64, len(history))
	for i, g := range history {
		out[i] = g.Accuracy
	}
	return out
}

// cohensD computes Cohen's d: the mean difference over the pooled standard
// deviation. Zero when either sample is degenerate.
func cohensD(sample1, sample2 []float64) float64 {
	n1 := float64(len(sample1))
	n2 := float64(len(sample2))
	if n1 < 2 || n2 < 2 {
		return 0
	}

	std1 := stat.StdDev(sample1, nil)
	std2 := stat.StdDev(sample2, nil)
	pooledVar := ((n1-1)*std1*std1 + (n2-1)*std2*std2) / (n1 + n2 - 2)
	pooledStd := math.Sqrt(pooledVar)
	if pooledStd == 0 {
		return 0
	}

	return (stat.Mean(sample1, nil) - stat.Mean(sample2, nil)) / pooledStd
}
