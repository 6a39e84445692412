// Package sampling provides the weighted-selection primitives every generator
// is built from.
package sampling

import (
	"errors"
	"fmt"

	"eventsim/internal/rng"

	"github.com/rs/zerolog/log"
)

// maxThunkDepth bounds nested thunk resolution.
const maxThunkDepth = 64

var (
	// ErrEmptyList is returned when a list value has no candidates.
	ErrEmptyList = errors.New("sampling: empty list")
	// ErrNilThunk is returned when a thunk value has no function.
	ErrNilThunk = errors.New("sampling: nil thunk")
	// ErrThunkDepth is returned when thunks nest deeper than maxThunkDepth.
	ErrThunkDepth = errors.New("sampling: thunk nesting too deep")
)

// Pick returns a uniform choice from a list, invokes a thunk once (choosing from
// its result when that is a list) and returns scalars unchanged. A thunk that
// yields another thunk is not unwrapped; use Choose for that.
func Pick[T any](r *rng.RNG, v Value[T]) T {
	var zero T
	switch v.kind {
	case KindList:
		if len(v.list) == 0 {
			return zero
		}
		return v.list[r.Intn(len(v.list))]
	case KindThunk:
		if v.thunk == nil {
			return zero
		}
		res := v.thunk()
		switch res.kind {
		case KindList:
			if len(res.list) == 0 {
				return zero
			}
			return res.list[r.Intn(len(res.list))]
		case KindScalar:
			return res.scalar
		}
		return zero
	default:
		return v.scalar
	}
}

// Resolve invokes thunks until a list or scalar remains, then picks uniformly
// from a list or returns the scalar.
func Resolve[T any](r *rng.RNG, v Value[T]) (out T, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			out, err = zero, fmt.Errorf("sampling: thunk panicked: %v", p)
		}
	}()

	for depth := 0; v.kind == KindThunk; depth++ {
		if depth >= maxThunkDepth {
			return out, ErrThunkDepth
		}
		if v.thunk == nil {
			return out, ErrNilThunk
		}
		v = v.thunk()
	}

	if v.kind == KindList {
		if len(v.list) == 0 {
			return out, ErrEmptyList
		}
		return v.list[r.Intn(len(v.list))], nil
	}
	return v.scalar, nil
}

// Choose is the fail-soft form of Resolve: failures are logged and the zero
// value is returned.
func Choose[T any](r *rng.RNG, v Value[T]) T {
	out, err := Resolve(r, v)
	if err != nil {
		log.Warn().Err(err).Str("kind", v.kind.String()).Msg("Failed to resolve value, using empty value")
		var zero T
		return zero
	}
	return out
}

// Integer returns a uniform integer in [min, max], swapping inverted bounds.
func Integer(r *rng.RNG, min, max int) int {
	if min == max {
		return min
	}
	return r.IntRange(min, max)
}

// OneOf returns a uniform choice from items, or the zero value when empty.
func OneOf[T any](r *rng.RNG, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[r.Intn(len(items))]
}
