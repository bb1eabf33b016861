package nn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Binary layout of a network, little-endian:
//   - magic "NN", format major and minor version (4 bytes)
//   - loss (uint8), layer count (uint32)
//   - per layer: inputs (uint32), units (uint32), activation (uint8),
//     then the weights row-major and the biases, as float64
const (
	formatMajor = 1
	formatMinor = 0

	maxUnits = 1 << 20
)

var magic = [2]byte{'N', 'N'}

// ErrFormat is returned when a network dump cannot be decoded.
var ErrFormat = errors.New("nn: unsupported network format")

// MarshalBinary encodes the network weights. Optimizer state is not saved.
func (n *Network) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{magic[0], magic[1], formatMajor, formatMinor})
	buf.WriteByte(byte(n.Loss))
	writeUint32(&buf, uint32(len(n.Layers)))

	for _, l := range n.Layers {
		writeUint32(&buf, uint32(l.Inputs()))
		writeUint32(&buf, uint32(l.Units()))
		buf.WriteByte(byte(l.Activation))
		for r := 0; r < l.Inputs(); r++ {
			writeFloats(&buf, l.Weights.RawRowView(r))
		}
		writeFloats(&buf, l.Biases)
	}
	return buf.Bytes(), nil
}

// UnmarshalNetwork decodes a network written by MarshalBinary.
func UnmarshalNetwork(data []byte) (*Network, error) {
	r := bytes.NewReader(data)

	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrFormat, err)
	}
	if header[0] != magic[0] || header[1] != magic[1] {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, header[:2])
	}
	if header[2] != formatMajor {
		return nil, fmt.Errorf("%w: version %d.%d", ErrFormat, header[2], header[3])
	}

	lossByte, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading loss: %v", ErrFormat, err)
	}
	n := &Network{Loss: Loss(lossByte)}
	if !n.Loss.valid() {
		return nil, fmt.Errorf("%w: unknown loss %d", ErrFormat, lossByte)
	}

	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if count == 0 || count > 64 {
		return nil, fmt.Errorf("%w: %d layers", ErrFormat, count)
	}

	prev := 0
	for i := 0; i < int(count); i++ {
		in, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		out, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		act, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", ErrFormat, i, err)
		}
		if in == 0 || out == 0 || in > maxUnits || out > maxUnits || !Activation(act).valid() {
			return nil, fmt.Errorf("%w: layer %d: %dx%d %v", ErrFormat, i, in, out, Activation(act))
		}
		if prev != 0 && int(in) != prev {
			return nil, fmt.Errorf("%w: layer %d takes %d inputs, previous layer has %d units", ErrFormat, i, in, prev)
		}

		w, err := readFloats(r, int(in)*int(out))
		if err != nil {
			return nil, fmt.Errorf("layer %d weights: %w", i, err)
		}
		b, err := readFloats(r, int(out))
		if err != nil {
			return nil, fmt.Errorf("layer %d biases: %w", i, err)
		}
		l := &Layer{Weights: mat.NewDense(int(in), int(out), w), Biases: b, Activation: Activation(act)}
		l.resetMoments()
		n.Layers = append(n.Layers, l)
		prev = int(out)
	}

	if last := n.Layers[len(n.Layers)-1]; last.Activation != n.Loss.output() {
		return nil, fmt.Errorf("%w: output activation %v with %v", ErrFormat, last.Activation, n.Loss)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, r.Len())
	}
	return n, nil
}

func writeUint32(w *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writeFloats(w *bytes.Buffer, vs []float64) {
	var b [8]byte
	for _, v := range vs {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		w.Write(b[:])
	}
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readFloats(r *bytes.Reader, n int) ([]float64, error) {
	if r.Len() < n*8 {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrFormat, n*8, r.Len())
	}
	out := make([]float64, n)
	var b [8]byte
	for i := range out {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[:]))
	}
	return out, nil
}
