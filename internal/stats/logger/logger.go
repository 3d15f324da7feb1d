// Package logger provides a stats collector that writes metrics to a
// zap logger. Failure counters are logged at warn so they stand out in
// otherwise debug-level output.
package logger

import (
	"go.uber.org/zap"

	"github.com/discochess/drillbook/internal/stats"
)

// Collector implements stats.Collector by logging each observation.
type Collector struct {
	logger *zap.Logger
}

var _ stats.Collector = (*Collector)(nil)

// New creates a logger-backed collector. A nil logger disables output.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

// failureMetrics are counters that indicate something went wrong rather
// than routine throughput.
var failureMetrics = map[string]bool{
	stats.MetricEvaluatorErrors: true,
	stats.MetricClaimFailures:   true,
	stats.MetricClaimConflicts:  true,
}

// IncCounter logs a counter increment.
func (c *Collector) IncCounter(name string, delta int64) {
	fields := []zap.Field{
		zap.String("metric", name),
		zap.Int64("delta", delta),
	}
	if failureMetrics[name] {
		c.logger.Warn("counter", fields...)
		return
	}
	c.logger.Debug("counter", fields...)
}

// SetGauge logs a gauge value.
func (c *Collector) SetGauge(name string, value int64) {
	c.logger.Debug("gauge",
		zap.String("metric", name),
		zap.Int64("value", value),
	)
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.logger.Debug("histogram",
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}
