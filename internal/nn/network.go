// Package nn implements small fully connected feed-forward networks trained
// with Adam on mini-batches.
package nn

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Adam hyper-parameters.
const (
	DefaultLearningRate = 0.001
	Beta1               = 0.9
	Beta2               = 0.999
)

var (
	// ErrShape is returned when inputs or targets do not match the network.
	ErrShape = errors.New("nn: shape mismatch")
	// ErrTopology is returned for an unusable layer configuration.
	ErrTopology = errors.New("nn: invalid topology")
)

// LayerSpec describes one dense layer.
type LayerSpec struct {
	Units      int
	Activation Activation
}

// Dense returns a LayerSpec.
func Dense(units int, activation Activation) LayerSpec {
	return LayerSpec{Units: units, Activation: activation}
}

// Layer is a dense layer: out = activation(in·W + b).
type Layer struct {
	Weights    *mat.Dense // inputs × units
	Biases     []float64
	Activation Activation

	// Adam moments.
	mW, vW *mat.Dense
	mB, vB []float64
}

func newLayer(in, out int, act Activation, rng *rand.Rand) *Layer {
	limit := math.Sqrt(6.0 / float64(in+out))
	w := make([]float64, in*out)
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * limit
	}
	l := &Layer{
		Weights:    mat.NewDense(in, out, w),
		Biases:     make([]float64, out),
		Activation: act,
	}
	l.resetMoments()
	return l
}

func (l *Layer) resetMoments() {
	in, out := l.Weights.Dims()
	l.mW = mat.NewDense(in, out, nil)
	l.vW = mat.NewDense(in, out, nil)
	l.mB = make([]float64, out)
	l.vB = make([]float64, out)
}

// Inputs returns the number of inputs of the layer.
func (l *Layer) Inputs() int { r, _ := l.Weights.Dims(); return r }

// Units returns the number of outputs of the layer.
func (l *Layer) Units() int { _, c := l.Weights.Dims(); return c }

func (l *Layer) forward(x *mat.Dense) *mat.Dense {
	r, _ := x.Dims()
	z := mat.NewDense(r, l.Units(), nil)
	z.Mul(x, l.Weights)
	for i := 0; i < r; i++ {
		row := z.RawRowView(i)
		for j, b := range l.Biases {
			row[j] += b
		}
	}
	l.Activation.apply(z)
	return z
}

// Network is a stack of dense layers.
type Network struct {
	Layers []*Layer
	Loss   Loss

	step int
}

// New builds a network with Glorot-uniform weights drawn from rng and zero
// biases. The last layer must use the activation matching loss: sigmoid
// for binary cross-entropy, softmax for categorical cross-entropy.
func New(inputs int, loss Loss, rng *rand.Rand, layers ...LayerSpec) (*Network, error) {
	if inputs <= 0 || len(layers) == 0 {
		return nil, fmt.Errorf("%w: %d inputs, %d layers", ErrTopology, inputs, len(layers))
	}
	if !loss.valid() {
		return nil, fmt.Errorf("%w: unknown loss %v", ErrTopology, loss)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	n := &Network{Loss: loss}
	in := inputs
	for i, spec := range layers {
		if spec.Units <= 0 || !spec.Activation.valid() {
			return nil, fmt.Errorf("%w: layer %d: %d units, %v", ErrTopology, i, spec.Units, spec.Activation)
		}
		last := i == len(layers)-1
		if last && spec.Activation != loss.output() {
			return nil, fmt.Errorf("%w: output activation %v does not match %v", ErrTopology, spec.Activation, loss)
		}
		if !last && spec.Activation == Softmax {
			return nil, fmt.Errorf("%w: softmax on hidden layer %d", ErrTopology, i)
		}
		n.Layers = append(n.Layers, newLayer(in, spec.Units, spec.Activation, rng))
		in = spec.Units
	}
	return n, nil
}

// Inputs returns the input width.
func (n *Network) Inputs() int { return n.Layers[0].Inputs() }

// Outputs returns the output width.
func (n *Network) Outputs() int { return n.Layers[len(n.Layers)-1].Units() }

// Predict runs a forward pass over the rows of x.
func (n *Network) Predict(x *mat.Dense) (*mat.Dense, error) {
	if _, c := x.Dims(); c != n.Inputs() {
		return nil, fmt.Errorf("%w: %d input columns, network takes %d", ErrShape, c, n.Inputs())
	}
	out := x
	for _, l := range n.Layers {
		out = l.forward(out)
	}
	return out, nil
}

// PredictVector runs a forward pass over a single input.
func (n *Network) PredictVector(v []float64) ([]float64, error) {
	if len(v) != n.Inputs() {
		return nil, fmt.Errorf("%w: %d inputs, network takes %d", ErrShape, len(v), n.Inputs())
	}
	x := mat.NewDense(1, len(v), append([]float64(nil), v...))
	out, err := n.Predict(x)
	if err != nil {
		return nil, err
	}
	return out.RawRowView(0), nil
}

// Evaluate returns the mean loss and the accuracy over x against targets y.
func (n *Network) Evaluate(x, y *mat.Dense) (loss, accuracy float64, err error) {
	if err := n.checkTargets(x, y); err != nil {
		return 0, 0, err
	}
	pred, err := n.Predict(x)
	if err != nil {
		return 0, 0, err
	}
	return n.Loss.mean(pred, y), n.Loss.accuracy(pred, y), nil
}

func (n *Network) checkTargets(x, y *mat.Dense) error {
	xr, xc := x.Dims()
	yr, yc := y.Dims()
	if xc != n.Inputs() {
		return fmt.Errorf("%w: %d input columns, network takes %d", ErrShape, xc, n.Inputs())
	}
	if yc != n.Outputs() || yr != xr {
		return fmt.Errorf("%w: targets are %dx%d, want %dx%d", ErrShape, yr, yc, xr, n.Outputs())
	}
	return nil
}

// trainBatch runs one forward/backward pass and one Adam update, and
// returns the batch loss before the update.
func (n *Network) trainBatch(x, y *mat.Dense, lr float64) float64 {
	acts := make([]*mat.Dense, len(n.Layers)+1)
	acts[0] = x
	for i, l := range n.Layers {
		acts[i+1] = l.forward(acts[i])
	}
	out := acts[len(acts)-1]
	loss := n.Loss.mean(out, y)

	// For sigmoid+BCE and softmax+CCE the output delta is (A - Y) / m.
	m, _ := x.Dims()
	delta := mat.NewDense(m, n.Outputs(), nil)
	delta.Sub(out, y)
	delta.Scale(1/float64(m), delta)

	n.step++
	for i := len(n.Layers) - 1; i >= 0; i-- {
		l := n.Layers[i]
		in := acts[i]

		var gradW mat.Dense
		gradW.Mul(in.T(), delta)
		gradB := make([]float64, l.Units())
		for r := 0; r < m; r++ {
			for j, v := range delta.RawRowView(r) {
				gradB[j] += v
			}
		}

		var next *mat.Dense
		if i > 0 {
			next = mat.NewDense(m, l.Inputs(), nil)
			next.Mul(delta, l.Weights.T())
			n.Layers[i-1].Activation.derive(next, in)
		}

		l.adam(&gradW, gradB, lr, n.step)
		delta = next
	}
	return loss
}

func (l *Layer) adam(gradW *mat.Dense, gradB []float64, lr float64, step int) {
	c1 := 1 - math.Pow(Beta1, float64(step))
	c2 := 1 - math.Pow(Beta2, float64(step))

	update := func(w, g, m, v []float64) {
		for i := range w {
			m[i] = Beta1*m[i] + (1-Beta1)*g[i]
			v[i] = Beta2*v[i] + (1-Beta2)*g[i]*g[i]
			w[i] -= lr * (m[i] / c1) / (math.Sqrt(v[i]/c2) + epsilon)
		}
	}

	rows := l.Inputs()
	for r := 0; r < rows; r++ {
		update(l.Weights.RawRowView(r), gradW.RawRowView(r), l.mW.RawRowView(r), l.vW.RawRowView(r))
	}
	update(l.Biases, gradB, l.mB, l.vB)
}
