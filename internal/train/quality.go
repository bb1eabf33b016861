package train

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/movequality/internal/analysis"
	"github.com/discochess/movequality/internal/artifact"
	"github.com/discochess/movequality/internal/config"
	"github.com/discochess/movequality/internal/dataset"
	"github.com/discochess/movequality/internal/fen"
	"github.com/discochess/movequality/internal/gamelog"
	"github.com/discochess/movequality/internal/nn"
	"github.com/discochess/movequality/internal/report"
	"github.com/discochess/movequality/internal/stats"
)

// QualityResult is the outcome of the move-quality pipeline.
type QualityResult struct {
	Accuracy float64
	Loss     float64
	// Games is the number of decisive games samples were taken from.
	Games   int
	Samples int
	Train   int
	Test    int
	History []nn.EpochStats
	// TestScores are the network outputs for the held-out positions, with
	// their labels in TestLabels.
	TestScores []float64
	TestLabels []int
	Separation *analysis.Separation
	Artifact   *artifact.Artifact
}

// Quality trains the network scoring a position by how likely the side to
// move is to win, evaluates it on held-out positions, and writes the
// artifact and the optional report named by the configuration.
func Quality(ctx context.Context, games []gamelog.Game, cfg config.Config, env Env) (*QualityResult, error) {
	env = env.withDefaults()
	log := env.Logger.Named("train.quality")
	penv := Env{Logger: log, Stats: env.Stats}

	enc, err := fen.NewCachedEncoder(fen.DefaultCacheSize, env.Stats)
	if err != nil {
		return nil, err
	}
	set, err := dataset.QualitySamples(games, enc)
	if err != nil {
		return nil, err
	}
	env.Stats.IncCounter(stats.MetricSamplesBuilt, int64(len(set.Inputs)))
	log.Info("quality samples built",
		zap.Int("games", set.Games),
		zap.Int("samples", len(set.Inputs)),
		zap.Int("distinct_positions", enc.Len()),
	)

	trainIdx, testIdx, err := dataset.Split(len(set.Inputs), cfg.TestFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	network, err := buildNetwork(fen.BoardSize, 1, nn.BinaryCrossEntropy, cfg.Quality.NetworkConfig, rng)
	if err != nil {
		return nil, err
	}

	history, err := fitNetwork(ctx, network,
		dataset.Matrix(set.Inputs, trainIdx),
		dataset.Column(set.Labels, trainIdx),
		cfg.Quality.NetworkConfig, rng, penv)
	if err != nil {
		return nil, fmt.Errorf("training quality network: %w", err)
	}

	testX := dataset.Matrix(set.Inputs, testIdx)
	testY := dataset.Column(set.Labels, testIdx)
	loss, acc, err := network.Evaluate(testX, testY)
	if err != nil {
		return nil, fmt.Errorf("evaluating quality network: %w", err)
	}
	out, err := network.Predict(testX)
	if err != nil {
		return nil, fmt.Errorf("scoring held-out positions: %w", err)
	}
	scores := make([]float64, len(testIdx))
	for i := range scores {
		scores[i] = out.At(i, 0)
	}
	labels := dataset.Select(set.Labels, testIdx)
	sep := analysis.Separate(scores, labels)

	env.Stats.SetGauge(stats.MetricTestAccuracy, acc)
	log.Info("quality network evaluated",
		zap.Float64("loss", loss),
		zap.Float64("accuracy", acc),
		zap.Float64("auc", sep.AUC),
		zap.Bool("separated", sep.Separated()),
	)

	a := artifact.New(artifact.KindMoveQuality, network)
	a.Metadata.TrainSamples = len(trainIdx)
	a.Metadata.TestSamples = len(testIdx)
	a.Metadata.TestAccuracy = acc

	res := &QualityResult{
		Accuracy:   acc,
		Loss:       loss,
		Games:      set.Games,
		Samples:    len(set.Inputs),
		Train:      len(trainIdx),
		Test:       len(testIdx),
		History:    history,
		TestScores: scores,
		TestLabels: labels,
		Separation: sep,
		Artifact:   a,
	}

	if cfg.Quality.Artifact != "" {
		if err := saveArtifact(ctx, cfg.Quality.Artifact, a, penv); err != nil {
			return nil, err
		}
	}
	if cfg.Quality.Report != "" {
		if err := writeReportFile(cfg.Quality.Report, cfg.Quality.Artifact, res); err != nil {
			return nil, err
		}
		log.Info("report written", zap.String("path", cfg.Quality.Report))
	}
	return res, nil
}

func writeReportFile(path, location string, res *QualityResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	WriteReport(f, location, res)
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// WriteReport writes a Markdown summary of a quality training run.
func WriteReport(w io.Writer, location string, res *QualityResult) {
	r := report.NewMarkdownReport(w)
	r.WriteHeader("Move Quality Training Report", time.Now())
	r.WriteDataset(res.Games, res.Samples, res.Train, res.Test)
	if location != "" {
		r.WriteArtifact(location, res.Artifact.Metadata)
	}
	r.WriteHistory(res.History)
	r.WriteSeparation(res.Separation)

	var won, lost []float64
	for i, s := range res.TestScores {
		if res.TestLabels[i] == 1 {
			won = append(won, s)
		} else {
			lost = append(lost, s)
		}
	}
	r.WriteDistributionChart("Won Position Score", won)
	r.WriteDistributionChart("Lost Position Score", lost)
	r.WriteFooter()
}
