// Package classic fits the per-game outcome classifiers: an ID3 decision
// tree and a random forest over (num_moves, is_checkmate) predicting ai_win.
package classic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
	"github.com/sjwhitworth/golearn/evaluation"
	"github.com/sjwhitworth/golearn/trees"

	"github.com/discochess/movequality/internal/dataset"
)

// Class values of the ai_win column.
const (
	ClassWon    = "won"
	ClassNotWon = "not_won"
)

// Defaults match the usual library defaults for these estimators.
const (
	DefaultForestSize = 100
	// DefaultForestFeatures is the number of features each tree sees,
	// the square root of the two available features rounded down.
	DefaultForestFeatures = 1
)

// Config controls the classifiers.
type Config struct {
	ForestSize     int
	ForestFeatures int
	// Prune is the fraction of training rows the decision tree holds out
	// for pruning. Zero grows the full tree.
	Prune float64
}

// Result holds the held-out accuracy of each classifier.
type Result struct {
	DecisionTreeAccuracy float64
	RandomForestAccuracy float64
	TrainRows            int
	TestRows             int
	// Summaries are the per-class precision/recall tables, keyed by
	// classifier name.
	Summaries map[string]string
}

// Train fits both classifiers on train and scores them on test.
func Train(train, test []dataset.OutcomeRow, cfg Config) (*Result, error) {
	if len(train) == 0 || len(test) == 0 {
		return nil, fmt.Errorf("%w: %d train and %d test rows", dataset.ErrTooFewRows, len(train), len(test))
	}
	if cfg.ForestSize <= 0 {
		cfg.ForestSize = DefaultForestSize
	}
	if cfg.ForestFeatures <= 0 {
		cfg.ForestFeatures = DefaultForestFeatures
	}

	trainData, err := Instances(train)
	if err != nil {
		return nil, fmt.Errorf("building training instances: %w", err)
	}
	testData, err := Instances(test)
	if err != nil {
		return nil, fmt.Errorf("building test instances: %w", err)
	}

	res := &Result{TrainRows: len(train), TestRows: len(test), Summaries: map[string]string{}}

	tree := trees.NewID3DecisionTree(cfg.Prune)
	res.DecisionTreeAccuracy, res.Summaries["decision_tree"], err = fitScore(tree, trainData, testData)
	if err != nil {
		return nil, fmt.Errorf("decision tree: %w", err)
	}

	forest := ensemble.NewRandomForest(cfg.ForestSize, cfg.ForestFeatures)
	res.RandomForestAccuracy, res.Summaries["random_forest"], err = fitScore(forest, trainData, testData)
	if err != nil {
		return nil, fmt.Errorf("random forest: %w", err)
	}
	return res, nil
}

type classifier interface {
	Fit(base.FixedDataGrid) error
	Predict(base.FixedDataGrid) (base.FixedDataGrid, error)
}

func fitScore(c classifier, train, test base.FixedDataGrid) (float64, string, error) {
	if err := c.Fit(train); err != nil {
		return 0, "", fmt.Errorf("fitting: %w", err)
	}
	predictions, err := c.Predict(test)
	if err != nil {
		return 0, "", fmt.Errorf("predicting: %w", err)
	}
	cm, err := evaluation.GetConfusionMatrix(test, predictions)
	if err != nil {
		return 0, "", fmt.Errorf("unable to get confusion matrix: %w", err)
	}
	return evaluation.GetAccuracy(cm), evaluation.GetSummary(cm), nil
}

// Instances converts rows to golearn instances with float attributes
// num_moves and is_checkmate and the categorical class outcome.
func Instances(rows []dataset.OutcomeRow) (base.FixedDataGrid, error) {
	if len(rows) == 0 {
		return nil, errors.New("classic: no rows")
	}
	var sb strings.Builder
	sb.WriteString("num_moves,is_checkmate,outcome\n")
	for _, r := range rows {
		class := ClassNotWon
		if r.AIWin == 1 {
			class = ClassWon
		}
		fmt.Fprintf(&sb, "%d.0,%d.0,%s\n", r.NumMoves, r.IsCheckmate, class)
	}
	grid, err := base.ParseCSVToInstancesFromReader(strings.NewReader(sb.String()), true)
	if err != nil {
		return nil, err
	}
	return grid, nil
}
