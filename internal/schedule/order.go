package schedule

import "sort"

// Less is the primary ascending session comparator used by every
// listing, calendar, and export path. Dated sessions order by their
// comparable instant and always precede undated ones. Undated sessions
// order by purchase-window end descending (farthest expiry first), then
// window start ascending, then pt session number; sessions with no
// linked purchase come last.
func Less(a, b Entry, z Zone) bool {
	aAt, aDated := a.Timing.Instant()
	bAt, bDated := b.Timing.Instant()

	switch {
	case aDated && bDated:
		return z.Comparable(aAt) < z.Comparable(bAt)
	case aDated:
		return true
	case bDated:
		return false
	}

	aWindow, aLinked := a.Timing.Window()
	bWindow, bLinked := b.Timing.Window()

	switch {
	case aLinked && bLinked:
		if !aWindow.End.Equal(bWindow.End) {
			return aWindow.End.After(bWindow.End)
		}
		if !aWindow.Start.Equal(bWindow.Start) {
			return aWindow.Start.Before(bWindow.Start)
		}
		return a.PtNumber < b.PtNumber
	case aLinked:
		return true
	case bLinked:
		return false
	default:
		return a.PtNumber < b.PtNumber
	}
}

// SortEntries orders entries in place with Less. The sort is stable so
// equal sessions keep their repository order.
func SortEntries(entries []Entry, z Zone) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i], entries[j], z)
	})
}
