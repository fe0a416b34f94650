package searcher

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateRange is a closed [Start, End] interval
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the interval
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

var lastNDaysPattern = regexp.MustCompile(`^last\s+(\d+)\s+days?$`)

// ParseDateRange resolves a date-range token against the given anchor
// time. Recognized tokens (case-insensitive): "today", "yesterday",
// "week"/"last week", "month"/"last month", and "last N days" for a
// positive integer N. Every range runs from the start of the day the
// token reaches back to, through the end of the anchor's day (except
// "yesterday", which ends at the end of that single day).
//
// The second return value is false for an empty or unrecognized token;
// callers treat that as "no filter", never as an error.
func ParseDateRange(token string, anchor time.Time) (DateRange, bool) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" {
		return DateRange{}, false
	}

	switch normalized {
	case "today":
		return DateRange{Start: startOfDay(anchor), End: endOfDay(anchor)}, true
	case "yesterday":
		y := anchor.AddDate(0, 0, -1)
		return DateRange{Start: startOfDay(y), End: endOfDay(y)}, true
	case "week", "last week":
		return DateRange{Start: startOfDay(anchor.AddDate(0, 0, -7)), End: endOfDay(anchor)}, true
	case "month", "last month":
		return DateRange{Start: startOfDay(anchor.AddDate(0, -1, 0)), End: endOfDay(anchor)}, true
	}

	if m := lastNDaysPattern.FindStringSubmatch(normalized); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return DateRange{Start: startOfDay(anchor.AddDate(0, 0, -n)), End: endOfDay(anchor)}, true
		}
	}

	return DateRange{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
