// Package prometheus provides a Prometheus-based stats collector.
// Batch runs have no scrape endpoint, so the registry is dumped to a
// textfile at the end of the run (node_exporter textfile collector format).
package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/movequality/internal/stats"
)

// help holds descriptions for the metrics the module emits.
// Unknown names fall back to the metric name.
var help = map[string]string{
	stats.MetricGamesLoaded:          "Game records read from game logs.",
	stats.MetricSamplesBuilt:         "Training samples derived from game records.",
	stats.MetricSkippedMoves:         "Move entries skipped for lacking a FEN or move.",
	stats.MetricEncodeCacheHits:      "Board encodings served from the LRU cache.",
	stats.MetricEncodeCacheMisses:    "Board encodings computed from scratch.",
	stats.MetricEpochs:               "Completed training epochs.",
	stats.MetricEpochLoss:            "Training loss observed at the end of each epoch.",
	stats.MetricTestAccuracy:         "Accuracy on the held-out split of the last run.",
	stats.MetricArtifactBytesWritten: "Bytes of model artifact written.",
	stats.MetricArtifactBytesRead:    "Bytes of model artifact read.",
	stats.MetricPredictions:          "Positions scored by the move-quality model.",
	stats.MetricPredictionScore:      "Distribution of move-quality scores.",
}

// Collector implements stats.Collector using Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector.
// If registry is nil, a private registry is created.
func New(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all gathered metrics to path in text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	counter := getOrCreate(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: helpFor(name)})
	})
	counter.Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value float64) {
	gauge := getOrCreate(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: helpFor(name)})
	})
	gauge.Set(value)
}

// ObserveHistogram records a value in a histogram.
// Losses and scores live mostly in [0, 1], hence the linear buckets.
func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := getOrCreate(c, c.histograms, name, func() prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    helpFor(name),
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		})
	})
	histogram.Observe(value)
}

// getOrCreate returns the metric registered under name, creating and
// registering it on first use.
func getOrCreate[M prometheus.Collector](c *Collector, metrics map[string]M, name string, create func() M) M {
	c.mu.RLock()
	m, ok := metrics[name]
	c.mu.RUnlock()
	if ok {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if m, ok = metrics[name]; ok {
		return m
	}

	m = create()
	if err := c.registry.Register(m); err != nil {
		// Reuse a metric someone else registered under the same name.
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(M); ok {
				m = existing
			}
		}
	}
	metrics[name] = m
	return m
}

func helpFor(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}
