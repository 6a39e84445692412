package temporal

import (
	"time"

	"eventsim/internal/rng"
)

// Date returns a generator of instants up to windowDays days before (isPast) or
// after now, with random hours, minutes and seconds on top. Windows longer than
// ten years are replaced by a random one of 1 to 180 days.
func Date(r *rng.RNG, clock Clock, windowDays int, isPast bool, layout string) func() string {
	if windowDays < 0 {
		windowDays = -windowDays
	}
	if windowDays > maxWindowDays {
		windowDays = r.IntRange(1, fallbackMaxDay)
	}
	now := clock.Time()

	return func() string {
		offset := time.Duration(r.IntRange(0, windowDays))*24*time.Hour +
			time.Duration(r.IntRange(0, 23))*time.Hour +
			time.Duration(r.IntRange(0, 59))*time.Minute +
			time.Duration(r.IntRange(0, 59))*time.Second
		if isPast {
			offset = -offset
		}
		return Format(now.Add(offset), layout)
	}
}

// Dates returns numPairs pairs of independent past-anchored Date generators.
func Dates(r *rng.RNG, clock Clock, windowDays, numPairs int, layout string) [][2]func() string {
	pairs := make([][2]func() string, 0, numPairs)
	for i := 0; i < numPairs; i++ {
		pairs = append(pairs, [2]func() string{
			Date(r, clock, windowDays, true, layout),
			Date(r, clock, windowDays, true, layout),
		})
	}
	return pairs
}

// DayResult is one draw of a Day generator, rendered with DayLayout.
type DayResult struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Day   string `json:"day"`
}

// Day returns a generator of calendar days between start and now. The End of
// every result is now. A valid end earlier than now only narrows the span days
// are drawn from; maxOffset narrows it further when positive.
func Day(r *rng.RNG, clock Clock, start, end string) func(minOffset, maxOffset int) DayResult {
	return func(minOffset, maxOffset int) DayResult {
		now := clock.Time()
		from, ok := parseInstant(start)
		if !ok {
			from = now
		}

		limit := now
		if to, ok := parseInstant(end); ok && to.Before(now) && to.After(from) {
			limit = to
		}

		span := int(limit.Sub(from).Hours() / 24)
		if maxOffset > 0 && maxOffset < span {
			span = maxOffset
		}
		delta := r.IntRange(minOffset, span)

		return DayResult{
			Start: Format(from, DayLayout),
			End:   Format(now, DayLayout),
			Day:   Format(from.AddDate(0, 0, delta), DayLayout),
		}
	}
}
