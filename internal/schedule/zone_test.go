package schedule

import (
	"testing"
	"time"
)

func mustZone(t *testing.T, name string) Zone {
	t.Helper()
	z, err := LoadZone(name)
	if err != nil {
		t.Fatalf("LoadZone(%q): %v", name, err)
	}
	return z
}

func TestLoadZoneDefaultsToUTC(t *testing.T) {
	z := mustZone(t, "")
	if z.Location() != time.UTC {
		t.Fatalf("expected UTC for empty name, got %v", z.Location())
	}
}

func TestLoadZoneRejectsUnknownName(t *testing.T) {
	if _, err := LoadZone("Mars/Olympus_Mons"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestToInstantParsesOffsetTimestamps(t *testing.T) {
	z := mustZone(t, "Asia/Beirut")
	got, ok := z.ToInstant("2026-07-01T12:00:00+03:00")
	if !ok {
		t.Fatal("expected offset timestamp to parse")
	}
	want := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestToInstantTreatsNaiveTimestampsAsUTC(t *testing.T) {
	z := mustZone(t, "Asia/Beirut")
	got, ok := z.ToInstant("2026-07-01T12:00:00")
	if !ok {
		t.Fatal("expected naive timestamp to parse")
	}
	want := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected naive string treated as UTC instant %v, got %v", want, got)
	}
}

func TestToInstantReturnsFalseOnGarbage(t *testing.T) {
	z := UTC()
	for _, raw := range []string{"", "   ", "next tuesday", "2026-13-40T99:00:00"} {
		if _, ok := z.ToInstant(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestFormatRendersWallClockInZone(t *testing.T) {
	z := mustZone(t, "Asia/Beirut")
	instant := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	// Beirut is UTC+2 in January.
	if got := z.Format(instant); got != "2026-01-15T11:30:00" {
		t.Fatalf("expected 2026-01-15T11:30:00, got %q", got)
	}
}

func TestFormatThenToInstantRoundTripsWallClock(t *testing.T) {
	z := mustZone(t, "America/New_York")
	instant := time.Date(2026, 6, 10, 18, 45, 30, 0, time.UTC)

	rendered := z.Format(instant)
	parsed, ok := z.ToInstant(rendered)
	if !ok {
		t.Fatalf("expected %q to parse back", rendered)
	}
	if got := UTC().Format(parsed); got != rendered {
		t.Fatalf("round trip lost wall clock fields: %q vs %q", got, rendered)
	}
}

func TestComparableEqualForSameWallClockAcrossZones(t *testing.T) {
	beirut := mustZone(t, "Asia/Beirut")

	// 12:00 Beirut summer time expressed two ways.
	a := time.Date(2026, 7, 1, 12, 0, 0, 0, beirut.Location())
	b := a.UTC()

	if beirut.Comparable(a) != beirut.Comparable(b) {
		t.Fatal("expected equal comparables for the same instant")
	}
}

func TestComparableOrdersByWallClock(t *testing.T) {
	z := mustZone(t, "Asia/Beirut")
	earlier := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	later := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	if z.Comparable(earlier) >= z.Comparable(later) {
		t.Fatal("expected comparable values to preserve ordering")
	}
}
