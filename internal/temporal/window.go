package temporal

import (
	"encoding/json"
	"strings"
	"time"

	"eventsim/internal/rng"
)

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	ISOLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DayLayout,
}

// ValidateTime reports whether chosen is positive and strictly inside
// (earliest, latest). Zero bounds default to the last thirty days.
func ValidateTime(clock Clock, chosen, earliest, latest int64) bool {
	w := clock.Window(earliest, latest)
	return chosen > 0 && chosen > w.Earliest && chosen < w.Latest
}

// DatesBetween lists noon UTC of every whole day strictly between start and
// end. Either bound may be a date string or unix seconds. Invalid, equal,
// inverted or less than a day apart bounds give an empty list.
func DatesBetween(start, end any) []string {
	from, ok := toInstant(start)
	if !ok {
		return []string{}
	}
	to, ok := toInstant(end)
	if !ok {
		return []string{}
	}
	if to.Sub(from) < 24*time.Hour {
		return []string{}
	}

	dates := []string{}
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for noon := day.Add(12 * time.Hour); noon.Before(to); noon = noon.AddDate(0, 0, 1) {
		if noon.After(from) {
			dates = append(dates, Format(noon, ISOLayout))
		}
	}
	return dates
}

// FixWindow repairs a caller-supplied window: missing bounds default to the
// last thirty days, a latest bound past now is pulled back to now, inverted
// bounds are swapped and an empty window is widened into the past by a random
// amount.
func FixWindow(r *rng.RNG, clock Clock, earliest, latest int64) (int64, int64) {
	if earliest == 0 {
		earliest = clock.Now - defaultWindow
	}
	if latest == 0 || latest > clock.Now {
		latest = clock.Now
	}
	if earliest > latest {
		earliest, latest = latest, earliest
	}
	if earliest == latest {
		earliest -= int64(r.IntRange(1, 14))*secondsPerDay +
			int64(r.IntRange(1, 23))*60*60 +
			int64(r.IntRange(1, 59))*60 +
			int64(r.IntRange(1, 59))
	}
	return earliest, latest
}

func toInstant(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), !x.IsZero()
	case string:
		return parseInstant(x)
	case int:
		return time.Unix(int64(x), 0).UTC(), true
	case int64:
		return time.Unix(x, 0).UTC(), true
	case float64:
		return time.UnixMilli(int64(x * 1000)).UTC(), true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(n, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

func parseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
