// Package train runs the training pipelines: the classical outcome
// classifiers, the move-identifier network and the move-quality network.
package train

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/discochess/movequality/internal/artifact"
	"github.com/discochess/movequality/internal/config"
	"github.com/discochess/movequality/internal/gamelog"
	"github.com/discochess/movequality/internal/nn"
	"github.com/discochess/movequality/internal/stats"
	"github.com/discochess/movequality/internal/store/storeuri"
)

// Env carries the ambient dependencies of a pipeline.
type Env struct {
	Logger *zap.Logger
	Stats  stats.Collector
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = zap.NewNop()
	}
	if e.Stats == nil {
		e.Stats = stats.NewNoop()
	}
	return e
}

// LoadGames loads and concatenates the game logs at paths.
func LoadGames(ctx context.Context, paths []string, env Env) ([]gamelog.Game, error) {
	env = env.withDefaults()

	games, err := gamelog.LoadAll(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("loading games: %w", err)
	}
	env.Stats.IncCounter(stats.MetricGamesLoaded, int64(len(games)))
	env.Logger.Info("games loaded",
		zap.Strings("paths", paths),
		zap.Int("games", len(games)),
	)
	return games, nil
}

// buildNetwork stacks the hidden ReLU layers of cfg on top of inputs and
// ends with the output layer matching loss.
func buildNetwork(inputs, outputs int, loss nn.Loss, cfg config.NetworkConfig, rng *rand.Rand) (*nn.Network, error) {
	layers := make([]nn.LayerSpec, 0, len(cfg.Hidden)+1)
	for _, h := range cfg.Hidden {
		layers = append(layers, nn.Dense(h, nn.ReLU))
	}
	out := nn.Sigmoid
	if loss == nn.CategoricalCrossEntropy {
		out = nn.Softmax
	}
	layers = append(layers, nn.Dense(outputs, out))
	return nn.New(inputs, loss, rng, layers...)
}

// fitNetwork trains network and reports every epoch to the logger and
// collector.
func fitNetwork(ctx context.Context, network *nn.Network, x, y *mat.Dense, cfg config.NetworkConfig, rng *rand.Rand, env Env) ([]nn.EpochStats, error) {
	return network.Fit(ctx, x, y, nn.FitConfig{
		Epochs:          cfg.Epochs,
		BatchSize:       cfg.BatchSize,
		ValidationSplit: cfg.ValidationSplit,
		LearningRate:    cfg.LearningRate,
		Rand:            rng,
		OnEpoch: func(e nn.EpochStats) {
			fields := []zap.Field{
				zap.Int("epoch", e.Epoch),
				zap.Float64("loss", e.Loss),
				zap.Float64("accuracy", e.Accuracy),
			}
			if e.HasValidation {
				fields = append(fields,
					zap.Float64("val_loss", e.ValLoss),
					zap.Float64("val_accuracy", e.ValAccuracy),
				)
			}
			env.Logger.Info("epoch", fields...)
			env.Stats.IncCounter(stats.MetricEpochs, 1)
			env.Stats.ObserveHistogram(stats.MetricEpochLoss, e.Loss)
		},
	})
}

// saveArtifact writes a to location, which may be a local path or an
// s3:// or gs:// URI.
func saveArtifact(ctx context.Context, location string, a *artifact.Artifact, env Env) error {
	s, key, err := storeuri.Open(ctx, location)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := artifact.Save(ctx, s, key, a, artifact.WithStats(env.Stats)); err != nil {
		return err
	}
	env.Logger.Info("artifact saved",
		zap.String("location", location),
		zap.String("id", a.Metadata.ID),
		zap.String("kind", a.Metadata.Kind),
	)
	return nil
}
