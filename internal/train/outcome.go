package train

import (
	"context"

	"go.uber.org/zap"

	"github.com/discochess/movequality/internal/classic"
	"github.com/discochess/movequality/internal/config"
	"github.com/discochess/movequality/internal/dataset"
	"github.com/discochess/movequality/internal/gamelog"
	"github.com/discochess/movequality/internal/stats"
)

// Outcome trains the decision tree and random forest that predict whether
// White won from the length of a game and whether it ended in checkmate.
// Nothing is persisted.
func Outcome(ctx context.Context, games []gamelog.Game, cfg config.Config, env Env) (*classic.Result, error) {
	env = env.withDefaults()
	log := env.Logger.Named("train.outcome")

	rows, err := dataset.OutcomeRows(games)
	if err != nil {
		return nil, err
	}
	env.Stats.IncCounter(stats.MetricSamplesBuilt, int64(len(rows)))

	trainIdx, testIdx, err := dataset.Split(len(rows), cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := classic.Train(dataset.Select(rows, trainIdx), dataset.Select(rows, testIdx), classic.Config{
		ForestSize:     cfg.Outcome.ForestSize,
		ForestFeatures: cfg.Outcome.ForestFeatures,
		Prune:          cfg.Outcome.Prune,
	})
	if err != nil {
		return nil, err
	}

	env.Stats.SetGauge(stats.MetricTestAccuracy, res.RandomForestAccuracy)
	log.Info("outcome classifiers trained",
		zap.Int("train_rows", res.TrainRows),
		zap.Int("test_rows", res.TestRows),
		zap.Float64("decision_tree_accuracy", res.DecisionTreeAccuracy),
		zap.Float64("random_forest_accuracy", res.RandomForestAccuracy),
	)
	return res, nil
}
