package codec

import "io"

// Compile-time check that None implements Codec.
var _ Codec = None{}

// None passes data through unchanged. Plain .json game logs use it.
type None struct{}

// Reader returns r as a ReadCloser. Closing it does not close r.
func (None) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Writer returns w as a WriteCloser. Closing it does not close w.
func (None) Writer(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

// Extension returns empty string.
func (None) Extension() string { return "" }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
