// Package stats provides a unified interface for collecting training and
// inference metrics.
package stats

// Metric names used throughout the module.
const (
	// Dataset metrics.
	MetricGamesLoaded  = "movequality_games_loaded_total"
	MetricSamplesBuilt = "movequality_samples_built_total"
	MetricSkippedMoves = "movequality_skipped_moves_total"

	// Encoder cache metrics.
	MetricEncodeCacheHits   = "movequality_encode_cache_hits_total"
	MetricEncodeCacheMisses = "movequality_encode_cache_misses_total"

	// Training metrics.
	MetricEpochs       = "movequality_epochs_total"
	MetricEpochLoss    = "movequality_epoch_loss"
	MetricTestAccuracy = "movequality_test_accuracy"

	// Artifact and inference metrics.
	MetricArtifactBytesWritten = "movequality_artifact_bytes_written_total"
	MetricArtifactBytesRead    = "movequality_artifact_bytes_read_total"
	MetricPredictions          = "movequality_predictions_total"
	MetricPredictionScore      = "movequality_prediction_score"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value float64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}
