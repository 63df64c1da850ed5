package dispatch

import (
	"fmt"
	"time"
)

// KST is the fixed reference timezone for temporal defaults. Using a
// fixed offset keeps behaviour deterministic regardless of where the
// process runs.
var KST = time.FixedZone("KST", 9*60*60)

const defaultRangeDays = 7

// DefaultRange returns the window used when a tool call omits its time
// range: today at 00:00 KST through seven days later.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	local := now.In(KST)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, KST)
	return start, start.AddDate(0, 0, defaultRangeDays)
}

// timeLayouts are accepted on input, most specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses a timestamp in one of the accepted layouts.
// Layouts without an explicit offset are interpreted in KST.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, KST); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q: use RFC3339 or YYYY-MM-DD", s)
}

// ResolveRange fills in the window for a tool call. Empty start and
// end fall back to DefaultRange; an empty end with a given start
// extends seven days from the start.
func ResolveRange(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	if startStr == "" && endStr == "" {
		start, end := DefaultRange(now)
		return start, end, nil
	}

	var start, end time.Time
	var err error

	if startStr != "" {
		start, err = ParseTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
		}
	} else {
		start, _ = DefaultRange(now)
	}

	if endStr != "" {
		end, err = ParseTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
		}
	} else {
		end = start.AddDate(0, 0, defaultRangeDays)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return start, end, nil
}
