package temporal

import (
	"errors"
	"math"
	"time"

	"eventsim/internal/rng"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultPeaks is the number of chunks a window is split into.
	DefaultPeaks = 5
	// DefaultDeviation divides the chunk width to get the normal spread.
	DefaultDeviation = 2.0
	// MaxSoupIterations bounds the rejection loop of a single draw.
	MaxSoupIterations = 10000
)

// ErrTooManyIterations is returned when TimeSoup cannot land a draw inside the
// chosen chunk. Callers treat it as fatal.
var ErrTooManyIterations = errors.New("temporal: too many iterations")

// SoupOptions shapes the clustering of TimeSoup. Zero fields take the defaults.
type SoupOptions struct {
	Peaks     int
	Deviation float64
	Mean      float64
}

// SoupInstant draws a spiky, multi-modal instant from the window. The window is
// cut into Peaks equal chunks; one chunk is picked uniformly and a normal offset
// around its midpoint is resampled until it falls inside that chunk.
func SoupInstant(r *rng.RNG, clock Clock, earliest, latest int64, opts SoupOptions) (time.Time, error) {
	w := clock.Window(earliest, latest)
	peaks := opts.Peaks
	if peaks <= 0 {
		peaks = DefaultPeaks
	}
	deviation := opts.Deviation
	if deviation <= 0 {
		deviation = DefaultDeviation
	}

	if w.Latest <= w.Earliest {
		return uniformInstant(r, w), nil
	}

	chunkSize := float64(w.Latest-w.Earliest) / float64(peaks)
	peakIndex := r.IntRange(0, peaks-1)
	chunkStart := float64(w.Earliest) + float64(peakIndex)*chunkSize
	chunkEnd := chunkStart + chunkSize
	chunkMid := (chunkStart + chunkEnd) / 2

	var instant float64
	for iterations := 1; ; iterations++ {
		if iterations > MaxSoupIterations {
			log.Error().
				Int64("earliest", w.Earliest).
				Int64("latest", w.Latest).
				Int("peaks", peaks).
				Float64("mean", opts.Mean).
				Msg("Time soup rejection loop overflowed")
			return time.Time{}, ErrTooManyIterations
		}
		instant = chunkMid + r.Normal(opts.Mean, chunkSize/deviation)
		if instant >= chunkStart && instant <= chunkEnd {
			break
		}
	}

	if math.IsNaN(instant) || math.IsInf(instant, 0) {
		return uniformInstant(r, w), nil
	}
	return time.UnixMilli(int64(math.Floor(instant * 1000))).UTC(), nil
}

// TimeSoup is SoupInstant rendered as ISO-8601.
func TimeSoup(r *rng.RNG, clock Clock, earliest, latest int64, opts SoupOptions) (string, error) {
	t, err := SoupInstant(r, clock, earliest, latest, opts)
	if err != nil {
		return "", err
	}
	return Format(t, ISOLayout), nil
}

func uniformInstant(r *rng.RNG, w Window) time.Time {
	return time.Unix(int64(r.IntRange(int(w.Earliest), int(w.Latest))), 0).UTC()
}
