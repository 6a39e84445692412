package temporal

import (
	"math"

	"eventsim/internal/rng"
)

// BornCurve shapes BornDaysAgo. Zero fields default to 1.
type BornCurve struct {
	Amplitude float64
	Frequency float64
	// Skew above 1 pulls births toward the present.
	Skew float64
}

// BornDaysAgo draws how many days before now a user was created, in [1, numDays].
// A uniform draw raised to Skew is pushed through a half sine wave, which piles
// births up at both ends of the span rather than spreading them evenly.
func BornDaysAgo(r *rng.RNG, numDays int, c BornCurve) int {
	if numDays <= 1 {
		return 1
	}
	amp, freq, skew := orOne(c.Amplitude), orOne(c.Frequency), orOne(c.Skew)

	u := math.Pow(r.Float64(), skew)
	sine := (math.Sin(u*math.Pi*freq-math.Pi/2)*amp + 1) / 2
	days := int(math.Round(sine*float64(numDays-1))) + 1
	return min(max(days, 1), numDays)
}

func orOne(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}
