// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Evaluator metrics.
	MetricEvaluations     = "drillbook_evaluations_total"
	MetricEvaluatorErrors = "drillbook_evaluator_errors_total"
	MetricEvalCacheHits   = "drillbook_eval_cache_hits_total"
	MetricEvalCacheMisses = "drillbook_eval_cache_misses_total"

	// Analysis metrics.
	MetricGamesAnalyzed   = "drillbook_games_analyzed_total"
	MetricMovesClassified = "drillbook_moves_classified_total"
	MetricMovesSkipped    = "drillbook_moves_skipped_total"
	MetricCPLoss          = "drillbook_cp_loss"
	MetricAccuracy        = "drillbook_accuracy"

	// Puzzle metrics.
	MetricPuzzlesCreated   = "drillbook_puzzles_created_total"
	MetricPuzzlesDuplicate = "drillbook_puzzles_duplicate_total"

	// Claim metrics.
	MetricClaims         = "drillbook_claims_total"
	MetricClaimConflicts = "drillbook_claim_conflicts_total"
	MetricClaimFailures  = "drillbook_claim_failures_total"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
