package schedule

import "time"

// PurchaseWindow is the [Start, End) validity interval of the training
// package a session was created against.
type PurchaseWindow struct {
	Start time.Time
	End   time.Time
}

// Timing states whether a session has a date. The zero value is
// unscheduled with no purchase window. Keeping this as a closed variant
// forces every consumer to handle the unscheduled case explicitly
// instead of branching on a nullable date.
type Timing struct {
	at        time.Time
	window    *PurchaseWindow
	scheduled bool
}

func ScheduledAt(at time.Time) Timing {
	return Timing{at: at, scheduled: true}
}

func Unscheduled(window *PurchaseWindow) Timing {
	return Timing{window: window}
}

// Instant returns the absolute instant of a scheduled session. The
// second return is false for unscheduled sessions.
func (t Timing) Instant() (time.Time, bool) {
	return t.at, t.scheduled
}

// Window returns the purchase window of an unscheduled session, when one
// is linked.
func (t Timing) Window() (PurchaseWindow, bool) {
	if t.scheduled || t.window == nil {
		return PurchaseWindow{}, false
	}
	return *t.window, true
}

// Entry is the scheduler's view of a session: just the fields the
// ordering, grouping, and capacity logic reason about.
type Entry struct {
	ID        int64
	TrainerID int64
	MemberIDs []int64
	Timing    Timing
	Hours     int
	Price     float64
	PtNumber  int
	Cancelled bool
}
