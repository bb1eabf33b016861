// Package artifact persists trained networks together with the metadata
// needed to use them.
//
// Binary layout, before compression:
//   - magic "MQ", format major and minor version (4 bytes)
//   - metadata length (uint32, little-endian) and metadata as JSON
//   - the network, as written by nn.Network.MarshalBinary
//
// The whole stream is compressed with the codec matching the key extension
// (".zst", ".gz", or none).
package artifact

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/discochess/movequality/internal/codec"
	"github.com/discochess/movequality/internal/errkind"
	"github.com/discochess/movequality/internal/nn"
	"github.com/discochess/movequality/internal/stats"
	"github.com/discochess/movequality/internal/store"
)

// Format version written by Encode. Decode accepts any minor version of
// the same major version.
const (
	FormatMajor = 1
	FormatMinor = 0
)

// DefaultKey is the artifact written by the quality trainer and read by
// the scorer when no location is given.
const DefaultKey = "model_move_quality.zst"

// Kinds of artifact.
const (
	KindMoveQuality = "move-quality"
	KindMoveID      = "move-id"
)

var magic = [2]byte{'M', 'Q'}

var (
	// ErrIncompatible is returned for data that is not an artifact this
	// version can read.
	ErrIncompatible = fmt.Errorf("artifact: incompatible artifact: %w", errkind.ErrArtifactIncompatible)
	// ErrNotFound is returned when no artifact exists at a location.
	ErrNotFound = fmt.Errorf("artifact: %w", errkind.ErrArtifactNotFound)
)

// Metadata describes how an artifact was trained and how to feed it.
type Metadata struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	// Inputs is the input width of the network.
	Inputs int `json:"inputs"`
	// Labels is the output vocabulary of move-id networks.
	Labels []string `json:"labels,omitempty"`
	// MaxLen is the padded FEN length of move-id networks.
	MaxLen       int     `json:"max_len,omitempty"`
	TrainSamples int     `json:"train_samples"`
	TestSamples  int     `json:"test_samples"`
	TestAccuracy float64 `json:"test_accuracy"`
}

// Artifact is a trained network with its metadata.
type Artifact struct {
	Metadata Metadata
	Network  *nn.Network
}

// New wraps a trained network, assigning a fresh ID and creation time.
func New(kind string, network *nn.Network) *Artifact {
	return &Artifact{
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Kind:      kind,
			CreatedAt: time.Now().UTC(),
			Inputs:    network.Inputs(),
		},
		Network: network,
	}
}

// Encode serializes a. It is not compressed.
func Encode(a *Artifact) ([]byte, error) {
	if a == nil || a.Network == nil {
		return nil, errors.New("artifact: no network to encode")
	}
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}
	network, err := a.Network.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding network: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(8 + len(meta) + len(network))
	buf.Write([]byte{magic[0], magic[1], FormatMajor, FormatMinor})
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(meta)))
	buf.Write(n[:])
	buf.Write(meta)
	buf.Write(network)
	return buf.Bytes(), nil
}

// Decode parses data written by Encode.
func Decode(data []byte) (*Artifact, error) {
	r := bytes.NewReader(data)

	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: short header", ErrIncompatible)
	}
	if header[0] != magic[0] || header[1] != magic[1] {
		return nil, fmt.Errorf("%w: bad magic %q", ErrIncompatible, header[:2])
	}
	if header[2] != FormatMajor {
		return nil, fmt.Errorf("%w: format version %d.%d, want %d.x", ErrIncompatible, header[2], header[3], FormatMajor)
	}

	metaLen := binary.LittleEndian.Uint32(header[4:])
	if int64(metaLen) > int64(r.Len()) {
		return nil, fmt.Errorf("%w: metadata length %d exceeds artifact size", ErrIncompatible, metaLen)
	}
	meta := make([]byte, metaLen)
	if _, err := io.ReadFull(r, meta); err != nil {
		return nil, fmt.Errorf("%w: reading metadata: %v", ErrIncompatible, err)
	}

	a := &Artifact{}
	if err := json.Unmarshal(meta, &a.Metadata); err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", ErrIncompatible, err)
	}

	rest := data[len(data)-r.Len():]
	network, err := nn.UnmarshalNetwork(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	if network.Inputs() != a.Metadata.Inputs {
		return nil, fmt.Errorf("%w: network takes %d inputs, metadata says %d", ErrIncompatible, network.Inputs(), a.Metadata.Inputs)
	}
	a.Network = network
	return a, nil
}

// Option configures Save and Load.
type Option interface {
	apply(*options)
}

type options struct {
	collector stats.Collector
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithStats reports artifact bytes read and written to c.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) { o.collector = c })
}

func buildOptions(opts []Option) options {
	o := options{collector: stats.NewNoop()}
	for _, opt := range opts {
		opt.apply(&o)
	}
	if o.collector == nil {
		o.collector = stats.NewNoop()
	}
	return o
}

// Save encodes a, compresses it according to the extension of key and
// writes it to s, replacing any previous artifact.
func Save(ctx context.Context, s store.Store, key string, a *Artifact, opts ...Option) error {
	o := buildOptions(opts)

	raw, err := Encode(a)
	if err != nil {
		return err
	}
	data, err := codec.Compress(codec.ForPath(key), raw)
	if err != nil {
		return fmt.Errorf("compressing artifact: %w", err)
	}
	if err := s.Write(ctx, key, data); err != nil {
		return fmt.Errorf("writing artifact %s: %w", key, err)
	}
	o.collector.IncCounter(stats.MetricArtifactBytesWritten, int64(len(data)))
	return nil
}

// Load reads and decodes the artifact stored under key.
func Load(ctx context.Context, s store.Store, key string, opts ...Option) (*Artifact, error) {
	o := buildOptions(opts)

	data, err := s.Read(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("reading artifact %s: %w", key, err)
	}
	o.collector.IncCounter(stats.MetricArtifactBytesRead, int64(len(data)))

	raw, err := codec.Decompress(codec.ForPath(key), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIncompatible, key, err)
	}
	a, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return a, nil
}
