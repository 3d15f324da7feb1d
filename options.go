package drillbook

import (
	"go.uber.org/zap"

	"github.com/discochess/drillbook/internal/classify"
	"github.com/discochess/drillbook/internal/engine"
	"github.com/discochess/drillbook/internal/puzzle"
	"github.com/discochess/drillbook/internal/stats"
	"github.com/discochess/drillbook/internal/store"
	"github.com/discochess/drillbook/internal/trend"
)

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	evaluator     engine.Evaluator
	store         store.Store
	workers       int
	evalCacheSize int
	classifierCfg classify.Config
	puzzleCfg     puzzle.Config
	trendCfg      trend.Config
	stats         stats.Collector
	logger        *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		workers:       engine.DefaultWorkers,
		evalCacheSize: 4096,
		classifierCfg: classify.DefaultConfig(),
		puzzleCfg:     puzzle.DefaultConfig(),
		trendCfg:      trend.DefaultConfig(),
		stats:         stats.NewNoop(),
		logger:        zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithEvaluator sets the position evaluator. Required.
func WithEvaluator(e engine.Evaluator) Option {
	return optionFunc(func(o *options) {
		o.evaluator = e
	})
}

// WithStore sets the persistence backend.
// Without one the client can analyze but not persist, trend, or claim.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithWorkers sets the number of concurrent evaluator calls.
// Default is 4.
func WithWorkers(n int) Option {
	return optionFunc(func(o *options) {
		o.workers = n
	})
}

// WithEvalCacheSize sets the capacity of the evaluation cache.
// Zero disables caching. Default is 4096 positions.
func WithEvalCacheSize(n int) Option {
	return optionFunc(func(o *options) {
		o.evalCacheSize = n
	})
}

// WithClassifierConfig overrides the move classification thresholds.
func WithClassifierConfig(cfg classify.Config) Option {
	return optionFunc(func(o *options) {
		o.classifierCfg = cfg
	})
}

// WithPuzzleConfig overrides the puzzle mining thresholds.
func WithPuzzleConfig(cfg puzzle.Config) Option {
	return optionFunc(func(o *options) {
		o.puzzleCfg = cfg
	})
}

// WithTrendConfig overrides the trend detection parameters.
func WithTrendConfig(cfg trend.Config) Option {
	return optionFunc(func(o *options) {
		o.trendCfg = cfg
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
