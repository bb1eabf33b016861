package fen

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/movequality/internal/stats"
)

// DefaultCacheSize is the number of positions kept by a CachedEncoder.
const DefaultCacheSize = 4096

// CachedEncoder memoizes BoardVector by the full FEN string. Opening
// positions repeat across games of a log, so most of them are encoded once.
// Only FENs that parsed are cached, so an invalid FEN always fails.
// A CachedEncoder is safe for concurrent use.
type CachedEncoder struct {
	cache     *lru.Cache[string, []int]
	collector stats.Collector
}

// NewCachedEncoder creates an encoder caching up to size positions.
// The collector is optional; if nil, a no-op collector is used.
func NewCachedEncoder(size int, collector stats.Collector) (*CachedEncoder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, []int](size)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &CachedEncoder{cache: c, collector: collector}, nil
}

// BoardVector returns the board encoding of fen. The returned slice is a
// copy and may be modified by the caller.
func (e *CachedEncoder) BoardVector(fenStr string) ([]int, error) {
	if vec, ok := e.cache.Get(fenStr); ok {
		e.collector.IncCounter(stats.MetricEncodeCacheHits, 1)
		return append([]int(nil), vec...), nil
	}
	e.collector.IncCounter(stats.MetricEncodeCacheMisses, 1)

	vec, err := BoardVector(fenStr)
	if err != nil {
		return nil, err
	}
	e.cache.Add(fenStr, vec)
	return append([]int(nil), vec...), nil
}

// Len returns the number of cached positions.
func (e *CachedEncoder) Len() int {
	return e.cache.Len()
}
