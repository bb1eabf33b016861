// Package dataset builds feature matrices and labels from game logs.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/discochess/movequality/internal/errkind"
)

// Defaults for the held-out split.
const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

// ErrTooFewRows is returned when a dataset cannot be split into non-empty
// train and test parts.
var ErrTooFewRows = fmt.Errorf("dataset: too few rows to split: %w", errkind.ErrMalformedInput)

// Split shuffles the row indices 0..n-1 with a seeded source and returns the
// train and test indices. The test part has ceil(n*testFraction) rows.
// The same (n, testFraction, seed) always gives the same split.
func Split(n int, testFraction float64, seed int64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.New("dataset: test fraction must be in (0, 1)")
	}
	if n < 2 {
		return nil, nil, fmt.Errorf("%w: %d rows", ErrTooFewRows, n)
	}

	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest >= n {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
