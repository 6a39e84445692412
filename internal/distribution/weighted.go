package distribution

import (
	"errors"

	"eventsim/internal/rng"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultPoolSize is the pool size used when none is given.
	DefaultPoolSize = 50
	// MaxPoolSize caps the pool built by WeightedRange.
	MaxPoolSize = 2000
	// MaxRejections bounds the total rejected draws of a single WeightedRange call.
	MaxRejections = 100000
)

// ErrRejectionLimit is returned when WeightedRange rejects too many draws to fill
// its pool.
var ErrRejectionLimit = errors.New("distribution: rejection limit reached")

// WeightedRange builds a pool of integers in [min, max] shaped by a skewed normal
// curve centred on the middle of the range. Draws that land outside the range
// are rejected. When MaxRejections is exceeded the partial pool is returned with
// ErrRejectionLimit.
func WeightedRange(r *rng.RNG, min, max int, skew float64, size int) ([]int, error) {
	if min > max {
		min, max = max, min
	}
	if size <= 0 {
		size = DefaultPoolSize
	}
	if size > MaxPoolSize {
		size = MaxPoolSize
	}

	mean := float64(max+min) / 2
	sd := float64(max-min) / 4

	pool := make([]int, 0, size)
	rejected := 0
	for len(pool) < size {
		normal := OptimizedBoxMuller(r)
		mapped := MapToRange(ApplySkew(normal, skew), mean, sd)
		if mapped >= min && mapped <= max {
			pool = append(pool, mapped)
			continue
		}

		rejected++
		if rejected > MaxRejections {
			log.Warn().
				Int("min", min).
				Int("max", max).
				Float64("skew", skew).
				Int("filled", len(pool)).
				Msg("Weighted range gave up after too many rejections")
			return pool, ErrRejectionLimit
		}
	}
	return pool, nil
}

// WeighArray copies every element a random number of times, between 1 and the
// slice length plus some noise, so later uniform picks favour some elements.
func WeighArray[T any](r *rng.RNG, items []T) []T {
	if len(items) == 0 {
		return nil
	}
	maxCopies := len(items) + r.IntRange(1, len(items))

	var weighted []T
	for _, item := range items {
		copies := r.IntRange(1, maxCopies)
		for i := 0; i < copies; i++ {
			weighted = append(weighted, item)
		}
	}
	return weighted
}

// Range returns the multiples of step from a*step up to b, inclusive. A zero
// step is treated as 1.
func Range(a, b, step int) []int {
	if step == 0 {
		step = 1
	}
	var out []int
	for i := a; i <= b/step; i++ {
		out = append(out, i*step)
	}
	return out
}
