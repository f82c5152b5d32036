package schedule

import "time"

// Overlaps reports whether two half-open windows [start, start+hours)
// intersect. Back-to-back sessions, one ending exactly when the other
// starts, do not overlap.
func Overlaps(aStart time.Time, aHours int, bStart time.Time, bHours int) bool {
	aEnd := aStart.Add(time.Duration(aHours) * time.Hour)
	bEnd := bStart.Add(time.Duration(bHours) * time.Hour)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DistinctMembers counts the union of member ids across a session set.
// A group session with three members counts as three; the same member
// booked twice counts once.
func DistinctMembers(entries []Entry) int {
	seen := make(map[int64]struct{})
	for _, entry := range entries {
		for _, memberID := range entry.MemberIDs {
			seen[memberID] = struct{}{}
		}
	}
	return len(seen)
}
