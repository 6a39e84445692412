// Package temporal samples instants and dates relative to a simulation clock.
package temporal

import (
	"time"
)

const (
	// ISOLayout renders instants the way downstream importers expect them.
	ISOLayout = "2006-01-02T15:04:05.000Z"
	// DayLayout renders calendar days.
	DayLayout = "2006-01-02"

	secondsPerDay  = 60 * 60 * 24
	defaultWindow  = 30 * secondsPerDay
	maxWindowDays  = 365 * 10
	fallbackMaxDay = 180
)

// Clock is the simulation's notion of "now", in unix seconds. Every relative
// date is anchored to it.
type Clock struct {
	Now int64
}

// NewClock anchors a clock at t.
func NewClock(t time.Time) Clock {
	return Clock{Now: t.Unix()}
}

// Time returns the clock's instant in UTC.
func (c Clock) Time() time.Time {
	return time.Unix(c.Now, 0).UTC()
}

// Window is a closed interval of unix seconds.
type Window struct {
	Earliest int64
	Latest   int64
}

// Window resolves zero bounds against the clock: the earliest bound defaults to
// thirty days before now and the latest to now.
func (c Clock) Window(earliest, latest int64) Window {
	if earliest == 0 {
		earliest = c.Now - defaultWindow
	}
	if latest == 0 {
		latest = c.Now
	}
	return Window{Earliest: earliest, Latest: latest}
}

// LastDays returns the window covering the given number of days up to now.
func (c Clock) LastDays(days int) Window {
	return Window{Earliest: c.Now - int64(days)*secondsPerDay, Latest: c.Now}
}

// Contains reports whether t lies inside the closed window.
func (w Window) Contains(t int64) bool {
	return t >= w.Earliest && t <= w.Latest
}

// Format renders t with layout, or ISOLayout when layout is empty. Output is
// always UTC.
func Format(t time.Time, layout string) string {
	if layout == "" {
		layout = ISOLayout
	}
	return t.UTC().Format(layout)
}
