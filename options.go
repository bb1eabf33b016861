package movequality

import (
	"go.uber.org/zap"

	"github.com/discochess/movequality/internal/artifact"
	"github.com/discochess/movequality/internal/stats"
	"github.com/discochess/movequality/internal/store"
)

// DefaultArtifactPath is where New looks for the artifact when no other
// source is configured.
const DefaultArtifactPath = artifact.DefaultKey

// Option configures a Scorer.
type Option interface {
	apply(*options)
}

// options holds the scorer configuration.
type options struct {
	path     string
	store    store.Store
	key      string
	artifact *artifact.Artifact
	stats    stats.Collector
	logger   *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		path:   DefaultArtifactPath,
		key:    artifact.DefaultKey,
		stats:  stats.NewNoop(),
		logger: zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithArtifactPath loads the artifact from a local path or an s3:// or
// gs:// URI.
func WithArtifactPath(path string) Option {
	return optionFunc(func(o *options) {
		o.path = path
	})
}

// WithStore loads the artifact from s. The scorer takes ownership of s and
// closes it on Close.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithKey sets the key of the artifact within the store given to WithStore.
// Default is DefaultArtifactPath.
func WithKey(key string) Option {
	return optionFunc(func(o *options) {
		o.key = key
	})
}

// WithArtifact uses an artifact already in memory. It takes precedence over
// every other source.
func WithArtifact(a *artifact.Artifact) Option {
	return optionFunc(func(o *options) {
		o.artifact = a
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
