package temporal

import (
	"testing"
	"time"

	"eventsim/internal/rng"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed point in time: 2023-01-01T00:00:00Z
var testClock = Clock{Now: 1672531200}

func TestDate_PastAndFuture(t *testing.T) {
	r := rng.New("date")
	now := testClock.Time()

	past := Date(r, testClock, 10, true, DayLayout)
	future := Date(r, testClock, 10, false, "")

	for i := 0; i < 200; i++ {
		p, err := time.Parse(DayLayout, past())
		require.NoError(t, err)
		assert.False(t, p.After(now), "past date %s after now", p)
		assert.False(t, p.Before(now.AddDate(0, 0, -11)), "past date %s outside window", p)

		f, err := time.Parse(ISOLayout, future())
		require.NoError(t, err)
		assert.True(t, f.After(now) || f.Equal(now), "future date %s before now", f)
		assert.True(t, f.Before(now.AddDate(0, 0, 11)), "future date %s outside window", f)
	}
}

func TestDate_HugeWindowIsReplaced(t *testing.T) {
	r := rng.New("huge")
	gen := Date(r, testClock, 100000, true, "")
	earliest := testClock.Time().AddDate(0, 0, -(fallbackMaxDay + 1))

	for i := 0; i < 100; i++ {
		d, err := time.Parse(ISOLayout, gen())
		require.NoError(t, err)
		assert.True(t, d.After(earliest), "date %s older than fallback window", d)
	}
}

func TestDates_Pairs(t *testing.T) {
	r := rng.New("dates")
	pairs := Dates(r, testClock, 10, 3, DayLayout)

	require.Len(t, pairs, 3)
	for _, pair := range pairs {
		for _, gen := range pair {
			_, err := time.Parse(DayLayout, gen())
			assert.NoError(t, err)
		}
	}
}

func TestDay(t *testing.T) {
	r := rng.New("day")
	gen := Day(r, testClock, "2022-12-01", "2022-12-30")

	for i := 0; i < 100; i++ {
		res := gen(0, 0)
		assert.Equal(t, "2022-12-01", res.Start)
		assert.Equal(t, "2023-01-01", res.End)

		day, err := time.Parse(DayLayout, res.Day)
		require.NoError(t, err)
		start, _ := time.Parse(DayLayout, res.Start)
		capped, _ := time.Parse(DayLayout, "2022-12-30")
		assert.False(t, day.Before(start), "day %s before start", res.Day)
		assert.False(t, day.After(capped), "day %s after the supplied end", res.Day)
	}
}

func TestDay_MaxOffset(t *testing.T) {
	r := rng.New("day-max")
	gen := Day(r, testClock, "2022-12-01", "")

	for i := 0; i < 100; i++ {
		res := gen(0, 3)
		day, _ := time.Parse(DayLayout, res.Day)
		assert.False(t, day.After(time.Date(2022, 12, 4, 0, 0, 0, 0, time.UTC)), "day %s beyond max offset", res.Day)
	}
}

func TestTimeSoup_AlwaysInWindow(t *testing.T) {
	r := rng.New("soup")
	earliest := testClock.Now - 45*secondsPerDay
	latest := testClock.Now - 5*secondsPerDay

	for i := 0; i < 10000; i++ {
		s, err := TimeSoup(r, testClock, earliest, latest, SoupOptions{})
		require.NoError(t, err)

		ts, err := time.Parse(ISOLayout, s)
		require.NoError(t, err)
		require.GreaterOrEqual(t, ts.Unix(), earliest)
		require.LessOrEqual(t, ts.Unix(), latest)
	}
}

func TestTimeSoup_Defaults(t *testing.T) {
	r := rng.New("soup-defaults")
	w := testClock.Window(0, 0)

	for i := 0; i < 1000; i++ {
		ts, err := SoupInstant(r, testClock, 0, 0, SoupOptions{})
		require.NoError(t, err)
		assert.True(t, w.Contains(ts.Unix()), "instant %s outside default window", ts)
	}
}

func TestTimeSoup_Clusters(t *testing.T) {
	r := rng.New("soup-peaks")
	w := testClock.LastDays(10)
	chunk := (w.Latest - w.Earliest) / 2

	counts := make([]int, 2)
	for i := 0; i < 2000; i++ {
		ts, err := SoupInstant(r, testClock, w.Earliest, w.Latest, SoupOptions{Peaks: 2})
		require.NoError(t, err)
		idx := int((ts.Unix() - w.Earliest) / chunk)
		if idx > 1 {
			idx = 1
		}
		counts[idx]++
	}
	assert.Greater(t, counts[0], 0)
	assert.Greater(t, counts[1], 0)
}

func TestTimeSoup_TooManyIterations(t *testing.T) {
	r := rng.New("soup-overflow")
	w := testClock.LastDays(1)

	_, err := TimeSoup(r, testClock, w.Earliest, w.Latest, SoupOptions{Mean: 1e12})
	assert.ErrorIs(t, err, ErrTooManyIterations)
}

func TestTimeSoup_EmptyWindowFallsBack(t *testing.T) {
	r := rng.New("soup-empty")
	ts, err := SoupInstant(r, testClock, testClock.Now-10, testClock.Now-10, SoupOptions{})
	require.NoError(t, err)
	assert.Equal(t, testClock.Now-10, ts.Unix())
}

func TestValidateTime(t *testing.T) {
	const day = secondsPerDay
	tests := []struct {
		name     string
		chosen   int64
		earliest int64
		latest   int64
		want     bool
	}{
		{"Between", testClock.Now - 15*day, testClock.Now - 30*day, testClock.Now, true},
		{"OutsideEarliest", testClock.Now - 31*day, testClock.Now - 30*day, testClock.Now, false},
		{"Negative", -1, testClock.Now - 30*day, testClock.Now, false},
		{"OnBoundary", testClock.Now, testClock.Now - 30*day, testClock.Now, false},
		{"InferenceIn", testClock.Now - 15*day, 0, 0, true},
		{"InferenceOut", testClock.Now - 31*day, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateTime(testClock, tt.chosen, tt.earliest, tt.latest))
		})
	}
}

func TestDatesBetween(t *testing.T) {
	unix := func(s string) int64 {
		ts, err := time.Parse(DayLayout, s)
		require.NoError(t, err)
		return ts.Unix()
	}
	june := []string{
		"2023-06-10T12:00:00.000Z",
		"2023-06-11T12:00:00.000Z",
		"2023-06-12T12:00:00.000Z",
	}

	tests := []struct {
		name  string
		start any
		end   any
		want  []string
	}{
		{"SameStartEnd", "2023-06-10", "2023-06-10", []string{}},
		{"StartAfterEnd", "2023-06-12", "2023-06-10", []string{}},
		{"Correct", "2023-06-10", "2023-06-13", june},
		{"UnixTimes", unix("2023-06-10"), unix("2023-06-13"), june},
		{"MixedFormats", "2023-06-10", unix("2023-06-13"), june},
		{"InvalidDates", "invalid-date", "2023-06-13", []string{}},
		{"SameDay", "2023-06-10T08:00:00.000Z", "2023-06-10T20:00:00.000Z", []string{}},
		{"LeapYear", "2024-02-28", "2024-03-02", []string{
			"2024-02-28T12:00:00.000Z",
			"2024-02-29T12:00:00.000Z",
			"2024-03-01T12:00:00.000Z",
		}},
		{"UnsupportedType", []int{1}, "2023-06-13", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DatesBetween(tt.start, tt.end))
		})
	}
}

func TestFixWindow(t *testing.T) {
	r := rng.New("fix")

	e, l := FixWindow(r, testClock, 0, 0)
	assert.Equal(t, testClock.Now-defaultWindow, e)
	assert.Equal(t, testClock.Now, l)

	e, l = FixWindow(r, testClock, testClock.Now-10, testClock.Now+1000)
	assert.Equal(t, testClock.Now-10, e)
	assert.Equal(t, testClock.Now, l)

	e, l = FixWindow(r, testClock, testClock.Now-10, testClock.Now-100)
	assert.Equal(t, testClock.Now-100, e)
	assert.Equal(t, testClock.Now-10, l)

	e, l = FixWindow(r, testClock, testClock.Now-10, testClock.Now-10)
	assert.Less(t, e, l)
	assert.Equal(t, testClock.Now-10, l)
}

func TestBornDaysAgo(t *testing.T) {
	r := rng.New("born")

	assert.Equal(t, 1, BornDaysAgo(r, 1, BornCurve{}))
	assert.Equal(t, 1, BornDaysAgo(r, 0, BornCurve{}))

	mean := func(c BornCurve) float64 {
		sum := 0
		for i := 0; i < 2000; i++ {
			d := BornDaysAgo(r, 30, c)
			require.GreaterOrEqual(t, d, 1)
			require.LessOrEqual(t, d, 30)
			sum += d
		}
		return float64(sum) / 2000
	}

	flat := mean(BornCurve{})
	assert.InDelta(t, 15.5, flat, 2.5, "default curve is symmetric around the middle")
	assert.Less(t, mean(BornCurve{Skew: 4}), flat, "skew pulls births toward the present")
	mean(BornCurve{Amplitude: 3, Frequency: 2})
}
