package engine

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/drillbook/internal/fen"
	"github.com/discochess/drillbook/internal/stats"
)

// Cached wraps an Evaluator with an LRU cache keyed by normalized FEN.
// Re-analysis of a game at the same depth hits the cache instead of the
// evaluator. Safe for concurrent use.
type Cached struct {
	underlying Evaluator
	cache      *lru.Cache[string, *Evaluation]
	stats      stats.Collector
}

// Compile-time check that Cached implements Evaluator.
var _ Evaluator = (*Cached)(nil)

// NewCached creates a caching evaluator with the given capacity.
func NewCached(underlying Evaluator, capacity int, collector stats.Collector) (*Cached, error) {
	cache, err := lru.New[string, *Evaluation](capacity)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Cached{
		underlying: underlying,
		cache:      cache,
		stats:      collector,
	}, nil
}

// Evaluate returns a cached evaluation when available, consulting the
// underlying evaluator otherwise. Failures are never cached.
func (c *Cached) Evaluate(ctx context.Context, fenStr string) (*Evaluation, error) {
	key, err := fen.Normalize(fenStr)
	if err != nil {
		// Unnormalizable input still goes to the evaluator verbatim.
		key = fenStr
	}

	if eval, ok := c.cache.Get(key); ok {
		c.stats.IncCounter(stats.MetricEvalCacheHits, 1)
		return eval, nil
	}
	c.stats.IncCounter(stats.MetricEvalCacheMisses, 1)

	eval, err := c.underlying.Evaluate(ctx, fenStr)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, eval)
	return eval, nil
}

// Len returns the number of cached evaluations.
func (c *Cached) Len() int {
	return c.cache.Len()
}
