// Package drillbookfx provides an fx module for a production drillbook
// client backed by a UCI engine and a SQLite store.
package drillbookfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/drillbook"
	"github.com/discochess/drillbook/internal/engine/uciengine"
	"github.com/discochess/drillbook/internal/stats"
	"github.com/discochess/drillbook/internal/stats/logger"
	"github.com/discochess/drillbook/internal/store/sqlitestore"
)

// Config holds configuration for the drillbook client.
type Config struct {
	// EnginePath is the path to a UCI engine binary (e.g. stockfish).
	EnginePath string

	// Depth is the engine search depth per position.
	// Default is the engine package default.
	Depth int

	// DBPath is the SQLite database path.
	DBPath string

	// Workers is the number of concurrent evaluator calls.
	// Default is 4.
	Workers int
}

// Module provides a drillbook client.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("drillbook",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("drillbook.stats"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *drillbook.Client
}

func newClient(p Params) (Result, error) {
	depth := p.Config.Depth
	if depth <= 0 {
		depth = uciengine.DefaultDepth
	}
	eng, err := uciengine.New(p.Config.EnginePath, depth, p.Logger.Named("engine"))
	if err != nil {
		return Result{}, err
	}

	st, err := sqlitestore.New(p.Config.DBPath,
		sqlitestore.WithLogger(p.Logger.Named("store")),
	)
	if err != nil {
		eng.Close()
		return Result{}, err
	}

	opts := []drillbook.Option{
		drillbook.WithEvaluator(eng),
		drillbook.WithStore(st),
		drillbook.WithStats(p.Collector),
		drillbook.WithLogger(p.Logger.Named("drillbook")),
	}
	if p.Config.Workers > 0 {
		opts = append(opts, drillbook.WithWorkers(p.Config.Workers))
	}

	client, err := drillbook.New(opts...)
	if err != nil {
		eng.Close()
		st.Close()
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
