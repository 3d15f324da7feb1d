package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/discochess/drillbook/internal/stats"
)

// DefaultWorkers is the default size of the evaluation worker pool.
const DefaultWorkers = 4

// Pool fans position evaluations out to a bounded number of workers.
// Failed positions produce nil entries rather than failing the batch.
type Pool struct {
	evaluator Evaluator
	workers   int
	logger    *zap.Logger
	stats     stats.Collector
}

// NewPool creates a pool around the given evaluator.
// If workers is not positive, DefaultWorkers is used.
func NewPool(evaluator Evaluator, workers int, logger *zap.Logger, collector stats.Collector) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Pool{
		evaluator: evaluator,
		workers:   workers,
		logger:    logger,
		stats:     collector,
	}
}

// EvaluateAll evaluates every position, preserving input order in the result.
// A position whose evaluation fails yields a nil entry; the rest of the batch
// is unaffected. Only context cancellation aborts the whole batch.
func (p *Pool) EvaluateAll(ctx context.Context, fens []string) ([]*Evaluation, error) {
	results := make([]*Evaluation, len(fens))

	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for i, fen := range fens {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		default:
		}

		wg.Add(1)
		go func(idx int, position string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			p.stats.IncCounter(stats.MetricEvaluations, 1)
			eval, err := p.evaluator.Evaluate(ctx, position)
			if err != nil {
				p.stats.IncCounter(stats.MetricEvaluatorErrors, 1)
				p.logger.Debug("evaluation failed",
					zap.String("fen", position),
					zap.Error(err),
				)
				return
			}
			results[idx] = eval
		}(i, fen)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
