package fen

import (
	"errors"
	"reflect"
	"testing"
)

type countingCollector struct {
	counters map[string]int64
}

func (c *countingCollector) IncCounter(name string, delta int64) {
	if c.counters == nil {
		c.counters = make(map[string]int64)
	}
	c.counters[name] += delta
}
func (c *countingCollector) SetGauge(string, float64)         {}
func (c *countingCollector) ObserveHistogram(string, float64) {}

func TestCachedEncoder_MatchesBoardVector(t *testing.T) {
	enc, err := NewCachedEncoder(8, nil)
	if err != nil {
		t.Fatalf("NewCachedEncoder() error = %v", err)
	}

	fens := []string{
		startFEN,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		startFEN,
	}
	for _, f := range fens {
		want, err := BoardVector(f)
		if err != nil {
			t.Fatalf("BoardVector() error = %v", err)
		}
		got, err := enc.BoardVector(f)
		if err != nil {
			t.Fatalf("CachedEncoder.BoardVector() error = %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("CachedEncoder.BoardVector(%q) = %v, want %v", f, got, want)
		}
	}

	if enc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", enc.Len())
	}
}

func TestCachedEncoder_HitsAndMisses(t *testing.T) {
	collector := &countingCollector{}
	enc, err := NewCachedEncoder(0, collector)
	if err != nil {
		t.Fatalf("NewCachedEncoder() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := enc.BoardVector("8/8/8/8/8/8/8/4K3 w - - 0 1"); err != nil {
			t.Fatal(err)
		}
	}

	if got := collector.counters["movequality_encode_cache_misses_total"]; got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
	if got := collector.counters["movequality_encode_cache_hits_total"]; got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
}

func TestCachedEncoder_ReturnsCopies(t *testing.T) {
	enc, err := NewCachedEncoder(4, nil)
	if err != nil {
		t.Fatal(err)
	}

	first, err := enc.BoardVector(startFEN)
	if err != nil {
		t.Fatal(err)
	}
	first[0] = 99

	second, err := enc.BoardVector(startFEN)
	if err != nil {
		t.Fatal(err)
	}
	if second[0] != -4 {
		t.Errorf("cached vector was mutated through a returned slice: got %d", second[0])
	}
}

func TestCachedEncoder_Invalid(t *testing.T) {
	enc, err := NewCachedEncoder(4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.BoardVector("xyz"); err == nil {
		t.Error("BoardVector() with invalid FEN should return error")
	}
	if enc.Len() != 0 {
		t.Errorf("Len() = %d after failed encode, want 0", enc.Len())
	}
}

func TestCachedEncoder_InvalidAfterSamePlacement(t *testing.T) {
	enc, err := NewCachedEncoder(4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.BoardVector(startFEN); err != nil {
		t.Fatalf("BoardVector(start) error = %v", err)
	}

	bad := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w ZZZZ zz 0 1"
	if _, err := enc.BoardVector(bad); !errors.Is(err, ErrInvalidFEN) {
		t.Errorf("BoardVector(%q) error = %v, want %v", bad, err, ErrInvalidFEN)
	}
	if enc.Len() != 1 {
		t.Errorf("Len() = %d, want 1", enc.Len())
	}
}
