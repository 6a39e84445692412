package funnel

import (
	"eventsim/internal/rng"
	"eventsim/internal/shuffle"

	"github.com/rs/zerolog/log"
)

// DefaultInterruptPercent is the chance of replacing an interior step when a
// funnel is interrupted.
const DefaultInterruptPercent = 50

// InferFunnels derives a funnel set from the catalogue: a single-step funnel per
// first event, one funnel walking every usage event in order and one random
// subsequence funnel for each remaining usage event.
func InferFunnels(r *rng.RNG, events []EventConfig) []Funnel {
	first, usage := SplitEvents(events)
	funnels := make([]Funnel, 0, len(first)+len(usage))

	for _, event := range first {
		f := Template()
		f.Sequence = []string{event}
		f.IsFirstFunnel = true
		f.ConversionRate = 100
		funnels = append(funnels, f)
	}

	if len(usage) > 0 {
		f := Template()
		f.Sequence = append([]string(nil), usage...)
		funnels = append(funnels, f)
	}

	for i := 1; i < len(usage); i++ {
		f := Template()
		f.ConversionRate = r.IntRange(25, 75)
		f.TimeToConvert = float64(r.IntRange(1, 10))
		f.Weight = r.IntRange(1, 10)
		f.Sequence = shuffle.Array(r, usage)[:r.IntRange(2, len(usage))]
		f.Order = OrderRandom
		funnels = append(funnels, f)
	}

	log.Debug().
		Int("firstEvents", len(first)).
		Int("usageEvents", len(usage)).
		Int("funnels", len(funnels)).
		Msg("Inferred funnels from events")
	return funnels
}

// WeighFunnels appends f to acc Weight times (at least once), so a uniform pick
// over the result honours the weights. Every entry is the same pointer.
func WeighFunnels(acc []*Funnel, f *Funnel) []*Funnel {
	weight := 1
	if f != nil && f.Weight > 0 {
		weight = f.Weight
	}
	for i := 0; i < weight; i++ {
		acc = append(acc, f)
	}
	return acc
}

// PickAWinner returns a generator of ten-item lists biased toward
// items[mostChosenIndex]. A negative index picks the favourite at random. Each
// slot takes the biased branch with a fresh 10-35% chance; half of those are the
// favourite itself and half a neighbour up to ten positions away.
func PickAWinner[T any](r *rng.RNG, items []T, mostChosenIndex int) func() []T {
	if len(items) == 0 {
		return func() []T { return []T{} }
	}
	last := len(items) - 1
	if mostChosenIndex < 0 {
		mostChosenIndex = r.IntRange(0, last)
	}
	if mostChosenIndex > last {
		mostChosenIndex = last
	}

	return func() []T {
		weighted := make([]T, 0, 10)
		for i := 0; i < 10; i++ {
			if !r.Bool(float64(r.IntRange(10, 35))) {
				weighted = append(weighted, items[r.Intn(len(items))])
				continue
			}
			if r.Bool(50) {
				weighted = append(weighted, items[mostChosenIndex])
				continue
			}
			step := r.D10()
			if r.Bool(50) {
				step = -step
			}
			idx := min(max(mostChosenIndex+step, 0), last)
			weighted = append(weighted, items[idx])
		}
		return weighted
	}
}

// InterruptArray replaces each interior step with a uniform pick from possibles
// with the given percent chance. The first and last steps are never touched.
// Empty inputs are returned as they are.
func InterruptArray[T any](r *rng.RNG, steps, possibles []T, percent float64) []T {
	if len(steps) == 0 || len(possibles) == 0 {
		return steps
	}
	out := make([]T, len(steps))
	copy(out, steps)
	for i := 1; i < len(out)-1; i++ {
		if r.Bool(percent) {
			out[i] = possibles[r.Intn(len(possibles))]
		}
	}
	return out
}

// Arrange applies the funnel's order to its sequence for one run. possibles
// feeds interrupted funnels.
func Arrange(r *rng.RNG, f Funnel, possibles []string) []string {
	switch f.Order {
	case OrderRandom:
		return shuffle.Array(r, f.Sequence)
	case OrderFirstFixed:
		return shuffle.ExceptFirst(r, f.Sequence)
	case OrderLastFixed:
		return shuffle.ExceptLast(r, f.Sequence)
	case OrderFirstAndLastFixed:
		return shuffle.FixFirstAndLast(r, f.Sequence)
	case OrderMiddleFixed:
		return shuffle.Outside(r, f.Sequence)
	case OrderMiddleShuffled:
		return shuffle.Middle(r, f.Sequence)
	case OrderInterrupted:
		return InterruptArray(r, f.Sequence, possibles, DefaultInterruptPercent)
	default:
		return append([]string(nil), f.Sequence...)
	}
}
