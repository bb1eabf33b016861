// Package movequality scores chess positions with a trained move-quality
// network: the estimated probability that the side to move goes on to win.
//
// Example usage:
//
//	scorer, err := movequality.New(ctx,
//	    movequality.WithArtifactPath("model_move_quality.zst"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scorer.Close()
//
//	score, err := scorer.Score(ctx, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(score)
package movequality

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/discochess/movequality/internal/artifact"
	"github.com/discochess/movequality/internal/errkind"
	"github.com/discochess/movequality/internal/fen"
	"github.com/discochess/movequality/internal/nn"
	"github.com/discochess/movequality/internal/stats"
	"github.com/discochess/movequality/internal/store"
	"github.com/discochess/movequality/internal/store/storeuri"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the scorer has been closed.
	ErrClosed = errors.New("movequality: scorer closed")

	// ErrInvalidFEN is returned for positions that cannot be parsed.
	ErrInvalidFEN = fen.ErrInvalidFEN

	ErrMalformedInput       = errkind.ErrMalformedInput
	ErrMissingField         = errkind.ErrMissingField
	ErrArtifactNotFound     = errkind.ErrArtifactNotFound
	ErrArtifactIncompatible = errkind.ErrArtifactIncompatible
)

// Scorer evaluates positions with a loaded move-quality artifact.
// A Scorer is safe for concurrent use by multiple goroutines.
type Scorer struct {
	meta    artifact.Metadata
	network *nn.Network
	store   store.Store
	stats   stats.Collector
	logger  *zap.Logger
	closed  atomic.Bool
}

// New loads the artifact named by the options and returns a Scorer for it.
// Without options the artifact is read from DefaultArtifactPath.
func New(ctx context.Context, opts ...Option) (*Scorer, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	s := &Scorer{
		store:  cfg.store,
		stats:  cfg.stats,
		logger: cfg.logger,
	}

	a := cfg.artifact
	if a == nil {
		if s.store == nil {
			st, key, err := storeuri.Open(ctx, cfg.path)
			if err != nil {
				return nil, err
			}
			s.store, cfg.key = st, key
		}
		var err error
		a, err = artifact.Load(ctx, s.store, cfg.key, artifact.WithStats(s.stats))
		if err != nil {
			s.closeStore()
			return nil, err
		}
	}

	if a.Metadata.Kind != artifact.KindMoveQuality {
		s.closeStore()
		return nil, fmt.Errorf("%w: artifact kind %q, want %q",
			artifact.ErrIncompatible, a.Metadata.Kind, artifact.KindMoveQuality)
	}
	if a.Network.Inputs() != fen.BoardSize || a.Network.Outputs() != 1 {
		s.closeStore()
		return nil, fmt.Errorf("%w: network shape %dx%d, want %dx1",
			artifact.ErrIncompatible, a.Network.Inputs(), a.Network.Outputs(), fen.BoardSize)
	}
	s.meta = a.Metadata
	s.network = a.Network

	s.logger.Debug("scorer initialized",
		zap.String("artifact", s.meta.ID),
		zap.Time("createdAt", s.meta.CreatedAt),
		zap.Float64("testAccuracy", s.meta.TestAccuracy),
	)

	return s, nil
}

// Score returns the probability, in [0, 1], that the side to move in fen
// wins the game.
func (s *Scorer) Score(ctx context.Context, fenStr string) (float64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	vec, err := fen.BoardVector(fenStr)
	if err != nil {
		return 0, err
	}
	in := make([]float64, len(vec))
	for i, v := range vec {
		in[i] = float64(v)
	}
	out, err := s.network.PredictVector(in)
	if err != nil {
		return 0, fmt.Errorf("scoring position: %w", err)
	}

	s.record(out[0])
	return out[0], nil
}

// ScoreAll scores a batch of positions. It fails on the first invalid FEN.
func (s *Scorer) ScoreAll(ctx context.Context, fens []string) ([]Prediction, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(fens) == 0 {
		return nil, nil
	}

	x := mat.NewDense(len(fens), fen.BoardSize, nil)
	for i, f := range fens {
		vec, err := fen.BoardVector(f)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		row := x.RawRowView(i)
		for j, v := range vec {
			row[j] = float64(v)
		}
	}
	out, err := s.network.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("scoring positions: %w", err)
	}

	preds := make([]Prediction, len(fens))
	for i, f := range fens {
		preds[i] = Prediction{FEN: f, Score: out.At(i, 0)}
		s.record(preds[i].Score)
	}
	return preds, nil
}

func (s *Scorer) record(score float64) {
	s.stats.IncCounter(stats.MetricPredictions, 1)
	s.stats.ObserveHistogram(stats.MetricPredictionScore, score)
}

// Metadata returns the metadata of the loaded artifact.
func (s *Scorer) Metadata() artifact.Metadata {
	return s.meta
}

// Close releases all resources associated with the scorer.
// After Close, the scorer should not be used.
func (s *Scorer) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("closing store: %w", err)
		}
	}
	return nil
}

func (s *Scorer) closeStore() {
	if s.store != nil {
		s.store.Close()
	}
}
