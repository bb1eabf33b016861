// Package logger provides a zap-based stats collector that logs metrics.
//
// Every update is logged at debug level as it happens. Flush logs one
// info-level summary line per metric.
package logger

import (
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/discochess/movequality/internal/stats"
)

// Collector implements stats.Collector by logging metrics via zap.
type Collector struct {
	logger *zap.Logger

	mu         sync.Mutex
	counters   map[string]int64
	gauges     map[string]float64
	histograms map[string]*summary
}

type summary struct {
	count         int
	sum, min, max float64
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new logger-based collector.
// If logger is nil, a no-op logger is used.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		logger:     logger,
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		histograms: make(map[string]*summary),
	}
}

// IncCounter logs a counter increment.
func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	c.counters[name] += delta
	c.mu.Unlock()

	c.logger.Debug("counter",
		zap.String("metric", name),
		zap.Int64("delta", delta),
	)
}

// SetGauge logs a gauge value.
func (c *Collector) SetGauge(name string, value float64) {
	c.mu.Lock()
	c.gauges[name] = value
	c.mu.Unlock()

	c.logger.Debug("gauge",
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.mu.Lock()
	s, ok := c.histograms[name]
	if !ok {
		s = &summary{min: math.Inf(1), max: math.Inf(-1)}
		c.histograms[name] = s
	}
	s.count++
	s.sum += value
	s.min = math.Min(s.min, value)
	s.max = math.Max(s.max, value)
	c.mu.Unlock()

	c.logger.Debug("histogram",
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}

// Flush logs the totals of every metric recorded so far, sorted by name.
func (c *Collector) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range sortedKeys(c.counters) {
		c.logger.Info("metric", zap.String("metric", name), zap.Int64("total", c.counters[name]))
	}
	for _, name := range sortedKeys(c.gauges) {
		c.logger.Info("metric", zap.String("metric", name), zap.Float64("value", c.gauges[name]))
	}
	for _, name := range sortedKeys(c.histograms) {
		s := c.histograms[name]
		c.logger.Info("metric",
			zap.String("metric", name),
			zap.Int("count", s.count),
			zap.Float64("mean", s.sum/float64(s.count)),
			zap.Float64("min", s.min),
			zap.Float64("max", s.max),
		)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
