package schedule

import (
	"strings"
	"time"
)

// Zone wraps an IANA timezone so wall-clock reasoning (shift hours,
// working days, display formatting) goes through one tested conversion
// path instead of ad-hoc offset arithmetic.
type Zone struct {
	loc *time.Location
}

// LoadZone resolves an IANA timezone name. An empty name means UTC.
func LoadZone(name string) (Zone, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Zone{loc: time.UTC}, nil
	}
	loc, err := time.LoadLocation(trimmed)
	if err != nil {
		return Zone{}, err
	}
	return Zone{loc: loc}, nil
}

func UTC() Zone {
	return Zone{loc: time.UTC}
}

func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// naiveLayouts are accepted for timestamps that carry no zone marker.
// Such timestamps are interpreted as already-absolute instants (UTC).
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ToInstant parses a raw timestamp into an absolute instant. Strings
// carrying explicit zone or offset information are parsed natively;
// naive strings are treated as UTC. Malformed input returns false,
// never an error or panic; callers treat false as "date unknown".
func (z Zone) ToInstant(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format renders an instant as a wall-clock string in the zone. Display
// only; the result is never stored.
func (z Zone) Format(t time.Time) string {
	return t.In(z.Location()).Format("2006-01-02T15:04:05")
}

// Comparable maps an instant to a number such that two instants showing
// the same wall clock in this zone compare equal. Used for "is this in
// the past" checks that must agree across timezones.
func (z Zone) Comparable(t time.Time) int64 {
	local := t.In(z.Location())
	_, offset := local.Zone()
	return local.Unix() + int64(offset)
}
