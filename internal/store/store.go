// Package store defines the storage backend interface for model artifacts.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/discochess/movequality/internal/errkind"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = fmt.Errorf("store: object not found: %w", errkind.ErrArtifactNotFound)

// ErrInvalidKey is returned for keys a backend cannot address.
var ErrInvalidKey = errors.New("store: invalid key")

// Store defines the interface for storage backends.
// Keys are slash-separated; each implementation maps them to its own
// namespace (a directory, a bucket prefix, a map).
type Store interface {
	// Read returns the content stored under key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores data under key, replacing any previous content.
	Write(ctx context.Context, key string, data []byte) error

	// Close releases any resources held by the store.
	Close() error
}
