package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Loss is the training objective of a network.
type Loss uint8

const (
	// BinaryCrossEntropy pairs with a single sigmoid output.
	BinaryCrossEntropy Loss = iota
	// CategoricalCrossEntropy pairs with a softmax output and one-hot targets.
	CategoricalCrossEntropy
)

func (l Loss) String() string {
	switch l {
	case BinaryCrossEntropy:
		return "binary_crossentropy"
	case CategoricalCrossEntropy:
		return "categorical_crossentropy"
	default:
		return fmt.Sprintf("loss(%d)", uint8(l))
	}
}

func (l Loss) valid() bool { return l <= CategoricalCrossEntropy }

// output returns the activation the output layer must use with l.
func (l Loss) output() Activation {
	if l == CategoricalCrossEntropy {
		return Softmax
	}
	return Sigmoid
}

const epsilon = 1e-7

func clip(p float64) float64 {
	return math.Min(math.Max(p, epsilon), 1-epsilon)
}

// mean returns the average loss of predictions pred against targets y.
func (l Loss) mean(pred, y *mat.Dense) float64 {
	r, c := pred.Dims()
	if r == 0 {
		return 0
	}
	var total float64
	for i := 0; i < r; i++ {
		p := pred.RawRowView(i)
		t := y.RawRowView(i)
		for j := 0; j < c; j++ {
			switch l {
			case BinaryCrossEntropy:
				total -= t[j]*math.Log(clip(p[j])) + (1-t[j])*math.Log(1-clip(p[j]))
			case CategoricalCrossEntropy:
				if t[j] != 0 {
					total -= t[j] * math.Log(clip(p[j]))
				}
			}
		}
	}
	if l == BinaryCrossEntropy {
		return total / float64(r*c)
	}
	return total / float64(r)
}

// accuracy returns the fraction of rows predicted correctly: a 0.5
// threshold for binary outputs, the arg max for categorical ones.
func (l Loss) accuracy(pred, y *mat.Dense) float64 {
	r, _ := pred.Dims()
	if r == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < r; i++ {
		p := pred.RawRowView(i)
		t := y.RawRowView(i)
		switch l {
		case BinaryCrossEntropy:
			if (p[0] > 0.5) == (t[0] > 0.5) {
				correct++
			}
		case CategoricalCrossEntropy:
			if argmax(p) == argmax(t) {
				correct++
			}
		}
	}
	return float64(correct) / float64(r)
}

func argmax(v []float64) int {
	best := 0
	for i, x := range v {
		if x > v[best] {
			best = i
		}
	}
	return best
}
