// Package scorerfx provides an fx module for a move-quality scorer.
package scorerfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/movequality"
	"github.com/discochess/movequality/internal/stats"
	"github.com/discochess/movequality/internal/stats/logger"
	"github.com/discochess/movequality/internal/store"
)

// Config holds configuration for the scorer.
type Config struct {
	// ArtifactPath is a local path or an s3:// or gs:// URI.
	// Default is movequality.DefaultArtifactPath.
	ArtifactPath string

	// Key is the artifact key used when a store.Store is provided.
	// Default is movequality.DefaultArtifactPath.
	Key string
}

// Module provides a *movequality.Scorer, loading its artifact on start-up
// and closing it on stop. Requires a *zap.Logger and a Config to be
// provided. If a store.Store is provided too, the artifact is read from it
// instead of ArtifactPath.
var Module = fx.Module("scorer",
	fx.Provide(
		newStatsCollector,
		newScorer,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("movequality.stats"))
}

// Params holds dependencies for creating the scorer.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Store     store.Store `optional:"true"`
	Lifecycle fx.Lifecycle
}

// Result holds the provided scorer.
type Result struct {
	fx.Out

	Scorer *movequality.Scorer
}

func newScorer(p Params) (Result, error) {
	opts := []movequality.Option{
		movequality.WithStats(p.Collector),
		movequality.WithLogger(p.Logger.Named("movequality")),
	}
	if p.Store != nil {
		opts = append(opts, movequality.WithStore(p.Store))
		if p.Config.Key != "" {
			opts = append(opts, movequality.WithKey(p.Config.Key))
		}
	} else if p.Config.ArtifactPath != "" {
		opts = append(opts, movequality.WithArtifactPath(p.Config.ArtifactPath))
	}

	scorer, err := movequality.New(context.Background(), opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if f, ok := p.Collector.(interface{ Flush() }); ok {
				f.Flush()
			}
			return scorer.Close()
		},
	})

	return Result{Scorer: scorer}, nil
}
