package models

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, time.September, d, 0, 0, 0, 0, time.UTC)
}

func TestReservationOverlaps(t *testing.T) {
	r := Reservation{StartDate: day(3), EndDate: day(7)}

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical", day(3), day(7), true},
		{"straddles start", day(1), day(4), true},
		{"straddles end", day(6), day(10), true},
		{"contained", day(4), day(5), true},
		{"ends at start", day(1), day(3), false},
		{"starts at end", day(7), day(9), false},
	}
	for _, tc := range cases {
		if got := r.Overlaps(tc.start, tc.end); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestReservationNights(t *testing.T) {
	r := Reservation{StartDate: day(3), EndDate: day(7)}
	if got := r.Nights(); got != 4 {
		t.Fatalf("Nights = %d, want 4", got)
	}
}

func TestBedCapacity(t *testing.T) {
	if got := (Bed{BedType: BedTypeSingle}).Capacity(); got != 1 {
		t.Fatalf("single capacity = %d, want 1", got)
	}
	for _, bt := range []BedType{BedTypeDouble, BedTypeQueen, BedTypeKing} {
		if got := (Bed{BedType: bt}).Capacity(); got != 2 {
			t.Fatalf("%s capacity = %d, want 2", bt, got)
		}
	}

	room := Room{Beds: []Bed{{BedType: BedTypeQueen}, {BedType: BedTypeSingle}}}
	if got := room.Capacity(); got != 3 {
		t.Fatalf("room capacity = %d, want 3", got)
	}
}
