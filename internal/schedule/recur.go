package schedule

import (
	"strings"
	"time"
)

// ParseWeekday maps a full weekday name (any case) onto time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	default:
		return time.Sunday, false
	}
}

// NextOccurrence finds the first instant at or after now that lands on
// the given weekday and local clock time in the zone. When today is the
// target weekday but the time has already passed, the result rolls
// forward one week.
func NextOccurrence(now time.Time, weekday time.Weekday, clock string, z Zone) (time.Time, bool) {
	hour, minute, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}

	local := now.In(z.Location())
	daysAhead := (int(weekday) - int(local.Weekday()) + 7) % 7
	candidate := time.Date(
		local.Year(), local.Month(), local.Day()+daysAhead,
		hour, minute, 0, 0,
		z.Location(),
	)
	if candidate.Before(now) {
		candidate = time.Date(
			local.Year(), local.Month(), local.Day()+daysAhead+7,
			hour, minute, 0, 0,
			z.Location(),
		)
	}
	return candidate, true
}

// AddWeek advances an instant by seven calendar days keeping the same
// local wall clock in the zone. Across a DST transition this is not
// exactly 168 hours, which is what a weekly-recurring slot wants.
func AddWeek(t time.Time, z Zone) time.Time {
	local := t.In(z.Location())
	return time.Date(
		local.Year(), local.Month(), local.Day()+7,
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(),
		z.Location(),
	)
}
