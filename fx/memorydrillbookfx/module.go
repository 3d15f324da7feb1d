// Package memorydrillbookfx provides an fx module for an in-memory
// drillbook client. Useful for testing.
package memorydrillbookfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/drillbook"
	"github.com/discochess/drillbook/internal/engine/scriptengine"
	"github.com/discochess/drillbook/internal/stats"
	"github.com/discochess/drillbook/internal/stats/logger"
	"github.com/discochess/drillbook/internal/store/memstore"
)

// Module provides an in-memory drillbook client for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memorydrillbook",
	fx.Provide(
		newStatsCollector,
		newEvaluator,
		newMemStore,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("drillbook.stats"))
}

func newEvaluator() *scriptengine.Evaluator {
	return scriptengine.New()
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Evaluator *scriptengine.Evaluator
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided client. The evaluator and store are provided
// separately; tests can fx.Populate them for scripting and assertions.
type Result struct {
	fx.Out

	Client *drillbook.Client
}

func newClient(p Params) (Result, error) {
	client, err := drillbook.New(
		drillbook.WithEvaluator(p.Evaluator),
		drillbook.WithStore(p.Store),
		drillbook.WithStats(p.Collector),
		drillbook.WithLogger(p.Logger.Named("drillbook")),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
