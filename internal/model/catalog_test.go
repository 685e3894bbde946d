package model

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWithinWindow(t *testing.T) {
	start := day(2025, 5, 1)
	end := day(2025, 6, 30)

	cases := []struct {
		name string
		d    time.Time
		want bool
	}{
		{"inside", day(2025, 6, 1), true},
		{"start inclusive", day(2025, 5, 1), true},
		{"end inclusive", day(2025, 6, 30), true},
		{"before", day(2025, 4, 30), false},
		{"after", day(2025, 7, 1), false},
	}
	for _, c := range cases {
		if got := WithinWindow(c.d, start, end); got != c.want {
			t.Errorf("%s: WithinWindow(%v) = %v, want %v", c.name, c.d, got, c.want)
		}
	}
}

// The comparison is day-granular: a checkin carrying a time-of-day still
// matches a window that ends on the same date.
func TestWithinWindowIgnoresTimeOfDay(t *testing.T) {
	end := day(2025, 6, 30)
	checkin := time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)
	if !WithinWindow(checkin, day(2025, 5, 1), end) {
		t.Error("checkin on the end date with a time-of-day should match")
	}
}

func TestRoomPriceValidOn(t *testing.T) {
	p := RoomPrice{StartDate: day(2025, 5, 1), EndDate: day(2025, 6, 30)}
	if !p.ValidOn(day(2025, 6, 1)) {
		t.Error("fare should cover 2025-06-01")
	}
	if p.ValidOn(day(2025, 7, 1)) {
		t.Error("fare should not cover 2025-07-01")
	}
}

func TestRentalRouteValidOn(t *testing.T) {
	r := RentalRoute{StartDate: day(2025, 1, 1), EndDate: day(2025, 12, 31)}
	if !r.ValidOn(day(2025, 8, 15)) {
		t.Error("rental fare should cover 2025-08-15")
	}
	if r.ValidOn(day(2026, 1, 1)) {
		t.Error("rental fare should not cover 2026-01-01")
	}
}
