package nn

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// FitConfig controls training.
type FitConfig struct {
	Epochs    int
	BatchSize int
	// ValidationSplit is the fraction of rows, taken from the end of x
	// before shuffling, held out for per-epoch validation.
	ValidationSplit float64
	// LearningRate defaults to DefaultLearningRate.
	LearningRate float64
	// Rand shuffles the training rows each epoch. Defaults to a fixed seed.
	Rand *rand.Rand
	// OnEpoch is called after every epoch.
	OnEpoch func(EpochStats)
}

// EpochStats summarizes one training epoch.
type EpochStats struct {
	Epoch         int
	Loss          float64
	Accuracy      float64
	ValLoss       float64
	ValAccuracy   float64
	HasValidation bool
}

// Fit trains the network on inputs x and targets y and returns the history
// of every epoch. It stops early with ctx.Err() when ctx is cancelled.
func (n *Network) Fit(ctx context.Context, x, y *mat.Dense, cfg FitConfig) ([]EpochStats, error) {
	if err := n.checkTargets(x, y); err != nil {
		return nil, err
	}
	if cfg.Epochs <= 0 || cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("nn: epochs and batch size must be positive, got %d and %d", cfg.Epochs, cfg.BatchSize)
	}
	if cfg.ValidationSplit < 0 || cfg.ValidationSplit >= 1 {
		return nil, fmt.Errorf("nn: validation split %v out of range [0, 1)", cfg.ValidationSplit)
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultLearningRate
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}

	rows, _ := x.Dims()
	nVal := int(float64(rows) * cfg.ValidationSplit)
	nTrain := rows - nVal
	if nTrain == 0 {
		return nil, fmt.Errorf("%w: no training rows after validation split", ErrShape)
	}

	var valX, valY *mat.Dense
	if nVal > 0 {
		valX = x.Slice(nTrain, rows, 0, n.Inputs()).(*mat.Dense)
		valY = y.Slice(nTrain, rows, 0, n.Outputs()).(*mat.Dense)
	}

	order := make([]int, nTrain)
	for i := range order {
		order[i] = i
	}

	history := make([]EpochStats, 0, cfg.Epochs)
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}
		cfg.Rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		for start := 0; start < nTrain; start += cfg.BatchSize {
			end := min(start+cfg.BatchSize, nTrain)
			bx, by := gather(x, order[start:end]), gather(y, order[start:end])
			loss := n.trainBatch(bx, by, cfg.LearningRate)
			if math.IsNaN(loss) {
				return history, fmt.Errorf("nn: loss diverged in epoch %d", epoch)
			}
		}

		st := EpochStats{Epoch: epoch}
		trainX := x.Slice(0, nTrain, 0, n.Inputs()).(*mat.Dense)
		trainY := y.Slice(0, nTrain, 0, n.Outputs()).(*mat.Dense)
		st.Loss, st.Accuracy, _ = n.Evaluate(trainX, trainY)
		if valX != nil {
			st.ValLoss, st.ValAccuracy, _ = n.Evaluate(valX, valY)
			st.HasValidation = true
		}
		history = append(history, st)
		if cfg.OnEpoch != nil {
			cfg.OnEpoch(st)
		}
	}
	return history, nil
}

func gather(m *mat.Dense, idx []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		copy(out.RawRowView(i), m.RawRowView(r))
	}
	return out
}
