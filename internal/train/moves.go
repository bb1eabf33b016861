package train

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/discochess/movequality/internal/artifact"
	"github.com/discochess/movequality/internal/config"
	"github.com/discochess/movequality/internal/dataset"
	"github.com/discochess/movequality/internal/gamelog"
	"github.com/discochess/movequality/internal/nn"
	"github.com/discochess/movequality/internal/stats"
)

// MovesResult is the outcome of the move-identifier pipeline.
type MovesResult struct {
	Accuracy float64
	Loss     float64
	Classes  int
	Train    int
	Test     int
	Skipped  int
	History  []nn.EpochStats
	// Artifact is the trained network. It is only written out when the
	// configuration names a save location.
	Artifact *artifact.Artifact
}

// Moves trains the network that predicts the move played from a position,
// given the character codes of its FEN, and reports its held-out accuracy.
func Moves(ctx context.Context, games []gamelog.Game, cfg config.Config, env Env) (*MovesResult, error) {
	env = env.withDefaults()
	log := env.Logger.Named("train.moves")

	set, err := dataset.MoveSamples(games)
	if err != nil {
		return nil, err
	}
	env.Stats.IncCounter(stats.MetricSamplesBuilt, int64(len(set.Inputs)))
	env.Stats.IncCounter(stats.MetricSkippedMoves, int64(set.Skipped))
	log.Info("move samples built",
		zap.Int("samples", len(set.Inputs)),
		zap.Int("classes", set.Classes()),
		zap.Int("max_len", set.MaxLen),
		zap.Int("skipped", set.Skipped),
	)

	trainIdx, testIdx, err := dataset.Split(len(set.Inputs), cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}
	if set.MaxLen == 0 {
		return nil, fmt.Errorf("%w: empty FENs", dataset.ErrTooFewRows)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	network, err := buildNetwork(set.MaxLen, set.Classes(), nn.CategoricalCrossEntropy, cfg.Moves.NetworkConfig, rng)
	if err != nil {
		return nil, err
	}

	history, err := fitNetwork(ctx, network,
		dataset.Matrix(set.Inputs, trainIdx),
		dataset.OneHot(set.Labels, trainIdx, set.Classes()),
		cfg.Moves.NetworkConfig, rng, Env{Logger: log, Stats: env.Stats})
	if err != nil {
		return nil, fmt.Errorf("training move network: %w", err)
	}

	loss, acc, err := network.Evaluate(
		dataset.Matrix(set.Inputs, testIdx),
		dataset.OneHot(set.Labels, testIdx, set.Classes()))
	if err != nil {
		return nil, fmt.Errorf("evaluating move network: %w", err)
	}
	env.Stats.SetGauge(stats.MetricTestAccuracy, acc)
	log.Info("move network evaluated", zap.Float64("loss", loss), zap.Float64("accuracy", acc))

	a := artifact.New(artifact.KindMoveID, network)
	a.Metadata.Labels = set.Vocabulary
	a.Metadata.MaxLen = set.MaxLen
	a.Metadata.TrainSamples = len(trainIdx)
	a.Metadata.TestSamples = len(testIdx)
	a.Metadata.TestAccuracy = acc

	if cfg.Moves.Save != "" {
		if err := saveArtifact(ctx, cfg.Moves.Save, a, Env{Logger: log, Stats: env.Stats}); err != nil {
			return nil, err
		}
	}

	return &MovesResult{
		Accuracy: acc,
		Loss:     loss,
		Classes:  set.Classes(),
		Train:    len(trainIdx),
		Test:     len(testIdx),
		Skipped:  set.Skipped,
		History:  history,
		Artifact: a,
	}, nil
}
