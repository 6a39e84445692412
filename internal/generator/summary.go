package generator

import (
	"slices"
	"time"

	"eventsim/internal/temporal"
)

// Summary describes the shape of a generated run.
type Summary struct {
	Users  int            `json:"users"`
	Events int            `json:"events"`
	ByName map[string]int `json:"byName"`
	// ByDay counts events per UTC day, with quiet days of the window at zero.
	ByDay map[string]int `json:"byDay"`
	// MedianEventsPerUser counts users with no events as zero.
	MedianEventsPerUser float64 `json:"medianEventsPerUser"`
	// MedianActiveHours is the median span between a user's creation and last event.
	MedianActiveHours float64 `json:"medianActiveHours"`
}

// Summarize computes the summary of a result.
func Summarize(res *Result) Summary {
	s := Summary{
		Users:  len(res.Users),
		Events: len(res.Events),
		ByName: make(map[string]int),
		ByDay:  make(map[string]int),
	}
	for _, noon := range temporal.DatesBetween(res.Window.Earliest, res.Window.Latest) {
		s.ByDay[noon[:len(temporal.DayLayout)]] = 0
	}

	perUser := make(map[string]int, len(res.Users))
	lastSeen := make(map[string]time.Time, len(res.Users))
	for _, e := range res.Events {
		s.ByName[e.Event]++
		if len(e.Time) >= len(temporal.DayLayout) {
			s.ByDay[e.Time[:len(temporal.DayLayout)]]++
		}
		perUser[e.DistinctID]++
		if at := e.At(); at.After(lastSeen[e.DistinctID]) {
			lastSeen[e.DistinctID] = at
		}
	}

	counts := make([]int, 0, len(res.Users))
	var active []float64
	for _, u := range res.Users {
		counts = append(counts, perUser[u.DistinctID])
		created, err := time.Parse(temporal.ISOLayout, u.Created)
		if last, ok := lastSeen[u.DistinctID]; ok && err == nil {
			active = append(active, last.Sub(created).Hours())
		}
	}

	s.MedianEventsPerUser = MedianDiscrete(counts)
	s.MedianActiveHours = MedianContinuous(active)
	return s
}

// MedianDiscrete finds the median value in a slice of integers.
func MedianDiscrete(values []int) float64 {
	if len(values) == 0 {
		return 0
	}

	// Work on a copy to avoid mutating the original
	temp := slices.Clone(values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return float64(temp[n/2])
	}
	return float64(temp[n/2-1]+temp[n/2]) / 2.0
}

// MedianContinuous finds the median value in a slice of floats.
func MedianContinuous(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	temp := slices.Clone(values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return temp[n/2]
	}
	return (temp[n/2-1] + temp[n/2]) / 2.0
}
