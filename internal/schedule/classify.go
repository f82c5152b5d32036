package schedule

import "time"

type Status string

const (
	StatusUpcoming    Status = "Upcoming"
	StatusCompleted   Status = "Completed"
	StatusCancelled   Status = "Cancelled"
	StatusUnscheduled Status = "No date"
)

// Classify buckets a session for listing and export. Cancellation wins
// regardless of date; a dated session is completed once its comparable
// instant is at or before now under the same zone policy the comparator
// uses.
func Classify(entry Entry, now time.Time, z Zone) Status {
	if entry.Cancelled {
		return StatusCancelled
	}
	at, dated := entry.Timing.Instant()
	if !dated {
		return StatusUnscheduled
	}
	if z.Comparable(at) <= z.Comparable(now) {
		return StatusCompleted
	}
	return StatusUpcoming
}
