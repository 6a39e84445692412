// Package shuffle reorders event sequences while pinning chosen positions.
// Every function returns a new slice; inputs are never mutated.
package shuffle

import (
	"eventsim/internal/rng"
)

// Array returns a uniformly shuffled copy of items.
func Array[T any](r *rng.RNG, items []T) []T {
	out := clone(items)
	fisherYates(r, out)
	return out
}

// ExceptFirst shuffles everything but the first element.
func ExceptFirst[T any](r *rng.RNG, items []T) []T {
	out := clone(items)
	if len(out) < 2 {
		return out
	}
	fisherYates(r, out[1:])
	return out
}

// ExceptLast shuffles everything but the last element.
func ExceptLast[T any](r *rng.RNG, items []T) []T {
	out := clone(items)
	if len(out) < 2 {
		return out
	}
	fisherYates(r, out[:len(out)-1])
	return out
}

// FixFirstAndLast shuffles the interior and pins both ends.
func FixFirstAndLast[T any](r *rng.RNG, items []T) []T {
	out := clone(items)
	if len(out) < 3 {
		return out
	}
	fisherYates(r, out[1:len(out)-1])
	return out
}

// Middle is FixFirstAndLast under the name funnels use for it.
func Middle[T any](r *rng.RNG, items []T) []T {
	return FixFirstAndLast(r, items)
}

// Outside pins the interior and shuffles only the first and last elements
// between themselves.
func Outside[T any](r *rng.RNG, items []T) []T {
	out := clone(items)
	if len(out) < 3 {
		return out
	}
	last := len(out) - 1
	if r.Intn(2) == 0 {
		out[0], out[last] = out[last], out[0]
	}
	return out
}

func fisherYates[T any](r *rng.RNG, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func clone[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
