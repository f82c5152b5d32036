package schedule

import (
	"strings"
	"time"
)

const endOfDayMinutes = 23*60 + 59

func parseClock(value string) (hour, minute int, ok bool) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, false
	}
	return parsed.Hour(), parsed.Minute(), true
}

// OnWorkingDay reports whether the instant falls on one of the trainer's
// working days when viewed in the given zone, and returns the local
// weekday name for diagnostics.
func OnWorkingDay(start time.Time, workingDays []string, z Zone) (bool, string) {
	dayName := strings.ToLower(start.In(z.Location()).Weekday().String())
	for _, day := range workingDays {
		if strings.EqualFold(strings.TrimSpace(day), dayName) {
			return true, dayName
		}
	}
	return false, dayName
}

// WithinShift reports whether the local window [start, start+hours) sits
// fully inside the trainer's shift. A shift end of "00:00" means end of
// day, not a midnight start; otherwise a trainer working until midnight
// could never be booked.
func WithinShift(start time.Time, hours int, shiftStart, shiftEnd string, z Zone) bool {
	startHour, startMinute, ok := parseClock(shiftStart)
	if !ok {
		return false
	}
	endHour, endMinute, ok := parseClock(shiftEnd)
	if !ok {
		return false
	}

	shiftStartMinutes := startHour*60 + startMinute
	shiftEndMinutes := endHour*60 + endMinute
	if shiftEndMinutes == 0 {
		shiftEndMinutes = endOfDayMinutes
	}

	local := start.In(z.Location())
	sessionStart := local.Hour()*60 + local.Minute()
	sessionEnd := sessionStart + hours*60

	return sessionStart >= shiftStartMinutes && sessionEnd <= shiftEndMinutes
}
