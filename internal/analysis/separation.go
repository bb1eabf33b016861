package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Defaults for the bootstrap interval of Separate.
const (
	DefaultBootstrapIterations = 1000
	DefaultConfidence          = 0.95
)

// Separation compares the scores given to positions from won games with
// the scores given to positions from lost games.
type Separation struct {
	Won         *DescriptiveStats
	Lost        *DescriptiveStats
	MannWhitney *MannWhitneyResult
	EffectSize  *EffectSize
	Bootstrap   *BootstrapResult
	// AUC is the area under the ROC curve: the probability that a random
	// won position outscores a random lost one.
	AUC float64
}

// Separate splits scores by label (1 = won) and compares the two groups.
func Separate(scores []float64, labels []int) *Separation {
	var won, lost []float64
	for i, s := range scores {
		if labels[i] == 1 {
			won = append(won, s)
		} else {
			lost = append(lost, s)
		}
	}

	return &Separation{
		Won:         Describe(won),
		Lost:        Describe(lost),
		MannWhitney: MannWhitneyU(won, lost),
		EffectSize:  ComputeEffectSize(won, lost),
		Bootstrap:   BootstrapConfidenceInterval(won, lost, DefaultBootstrapIterations, DefaultConfidence, 42),
		AUC:         AUC(scores, labels),
	}
}

// Separated reports whether won positions score significantly higher.
func (s *Separation) Separated() bool {
	return s.Won.Mean > s.Lost.Mean && s.MannWhitney.Significant
}

// Summary returns a human-readable summary of the comparison.
func (s *Separation) Summary() string {
	sig := "not statistically significant"
	if s.MannWhitney.Significant {
		sig = fmt.Sprintf("statistically significant (p=%.4f)", s.MannWhitney.PValue)
	}

	return fmt.Sprintf(
		"won vs lost positions:\n"+
			"  won:  n=%d, mean=%.4f, median=%.4f, std=%.4f\n"+
			"  lost: n=%d, mean=%.4f, median=%.4f, std=%.4f\n"+
			"  AUC: %.4f\n"+
			"  Effect size: %.2f (%s)\n"+
			"  Result: %s",
		s.Won.N, s.Won.Mean, s.Won.Median, s.Won.StdDev,
		s.Lost.N, s.Lost.Mean, s.Lost.Median, s.Lost.StdDev,
		s.AUC,
		s.EffectSize.CohensD, s.EffectSize.Interpretation,
		sig,
	)
}

// AUC returns the area under the ROC curve of scores against labels
// (1 = positive). It is 0.5 when either class is missing.
func AUC(scores []float64, labels []int) float64 {
	type pair struct {
		score float64
		pos   bool
	}
	pairs := make([]pair, len(scores))
	var npos int
	for i, s := range scores {
		pairs[i] = pair{s, labels[i] == 1}
		if pairs[i].pos {
			npos++
		}
	}
	if npos == 0 || npos == len(pairs) {
		return 0.5
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })
	y := make([]float64, len(pairs))
	classes := make([]bool, len(pairs))
	for i, p := range pairs {
		y[i], classes[i] = p.score, p.pos
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
