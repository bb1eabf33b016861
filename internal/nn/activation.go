package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Activation is the non-linearity applied to a layer's output.
type Activation uint8

const (
	Linear Activation = iota
	ReLU
	Sigmoid
	Softmax
)

func (a Activation) String() string {
	switch a {
	case Linear:
		return "linear"
	case ReLU:
		return "relu"
	case Sigmoid:
		return "sigmoid"
	case Softmax:
		return "softmax"
	default:
		return fmt.Sprintf("activation(%d)", uint8(a))
	}
}

func (a Activation) valid() bool { return a <= Softmax }

// apply overwrites z with a(z), row by row.
func (a Activation) apply(z *mat.Dense) {
	r, _ := z.Dims()
	for i := 0; i < r; i++ {
		row := z.RawRowView(i)
		switch a {
		case ReLU:
			for j, v := range row {
				if v < 0 {
					row[j] = 0
				}
			}
		case Sigmoid:
			for j, v := range row {
				row[j] = sigmoid(v)
			}
		case Softmax:
			softmax(row)
		}
	}
}

// derive multiplies grad in place by the derivative of a at the layer
// output out. Softmax is only used on the output layer, where its gradient
// is folded into the loss.
func (a Activation) derive(grad, out *mat.Dense) {
	r, _ := grad.Dims()
	for i := 0; i < r; i++ {
		g := grad.RawRowView(i)
		o := out.RawRowView(i)
		switch a {
		case ReLU:
			for j := range g {
				if o[j] <= 0 {
					g[j] = 0
				}
			}
		case Sigmoid:
			for j := range g {
				g[j] *= o[j] * (1 - o[j])
			}
		}
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func softmax(row []float64) {
	hi := math.Inf(-1)
	for _, v := range row {
		if v > hi {
			hi = v
		}
	}
	var sum float64
	for j, v := range row {
		e := math.Exp(v - hi)
		row[j] = e
		sum += e
	}
	for j := range row {
		row[j] /= sum
	}
}
