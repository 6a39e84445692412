// Package distribution turns uniform draws into the skewed, bell-shaped pools
// used for numeric properties and timing.
package distribution

import (
	"math"

	"eventsim/internal/rng"
)

// BoxMuller returns a standard-normal sample from two uniform draws. Draws of
// exactly zero are resampled so the logarithm stays finite.
func BoxMuller(r *rng.RNG) float64 {
	u, v := 0.0, 0.0
	for u == 0 {
		u = r.Float64()
	}
	for v == 0 {
		v = r.Float64()
	}
	return math.Sqrt(-2.0*math.Log(u)) * math.Cos(2.0*math.Pi*v)
}

// OptimizedBoxMuller feeds the Box-Muller transform with normal draws centred on
// 0.5 and clamped to [0, 1]. A draw clamped to zero yields an infinite result;
// that case falls back to a uniform float in [0, 1).
func OptimizedBoxMuller(r *rng.RNG) float64 {
	u := clamp(r.Normal(0.5, 0.25), 0, 1)
	v := clamp(r.Normal(0.5, 0.25), 0, 1)
	result := math.Sqrt(-2.0*math.Log(u)) * math.Cos(2.0*math.Pi*v)
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return r.Float64()
	}
	return result
}

// ApplySkew raises |value| to the skew power, keeping the sign. Skew below 1
// compresses values toward zero, above 1 stretches the tails.
func ApplySkew(value, skew float64) float64 {
	if skew == 1 {
		return value
	}
	sign := 1.0
	if value < 0 {
		sign = -1
	}
	return sign * math.Pow(math.Abs(value), skew)
}

// MapToRange maps a standard-normal value onto a distribution with the given
// mean and deviation, rounded to the nearest integer.
func MapToRange(value, mean, sd float64) int {
	return int(math.Round(value*sd + mean))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(math.Min(v, hi), lo)
}
