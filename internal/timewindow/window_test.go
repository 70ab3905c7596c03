package timewindow

import (
	"testing"
	"time"
)

func naive(y int, mo time.Month, d, h, mi int) time.Time {
	return time.Date(y, mo, d, h, mi, 0, 0, time.UTC)
}

func TestReconstructAppliesCivilOffset(t *testing.T) {
	date := naive(2026, time.March, 2, 0, 0)
	start := naive(2026, time.March, 2, 10, 0)

	got := Reconstruct(date, start, 9*time.Hour)
	want := time.Date(2026, time.March, 2, 1, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestReconstructIgnoresDatePartOfTimeField(t *testing.T) {
	date := naive(2026, time.March, 2, 0, 0)
	// time-of-day field carries a bogus calendar date, only H/M/S count
	start := naive(1970, time.January, 1, 10, 30)

	got := Reconstruct(date, start, 9*time.Hour)
	want := time.Date(2026, time.March, 2, 1, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestOpenBoundaries(t *testing.T) {
	// Lesson 10:00-11:00 civil time on 2026-03-02, offset +9h, window ±1h.
	gate := Gate{Offset: 9 * time.Hour, Lead: time.Hour, Trail: time.Hour}
	date := naive(2026, time.March, 2, 0, 0)
	start := naive(2026, time.March, 2, 10, 0)
	end := naive(2026, time.March, 2, 11, 0)

	civil := func(h, mi int) time.Time {
		return time.Date(2026, time.March, 2, h, mi, 0, 0, time.UTC).Add(-9 * time.Hour)
	}

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one minute before window opens", civil(8, 59), false},
		{"window opens", civil(9, 0), true},
		{"mid lesson", civil(10, 30), true},
		{"window closes", civil(12, 0), true},
		{"one minute after window closes", civil(12, 1), false},
	}

	for _, tc := range cases {
		if got := gate.Open(tc.now, date, start, end); got != tc.want {
			t.Errorf("%s: expected open=%v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestWindowCrossingMidnight(t *testing.T) {
	// End-of-day lesson 23:30-00:30; the naive end is not after the naive
	// start, so the end instant rolls forward a day.
	gate := Gate{Offset: 9 * time.Hour, Lead: time.Hour, Trail: time.Hour}
	date := naive(2026, time.March, 2, 0, 0)
	start := naive(2026, time.March, 2, 23, 30)
	end := naive(2026, time.March, 2, 0, 30)

	from, to := gate.Window(date, start, end)

	wantFrom := time.Date(2026, time.March, 2, 22, 30, 0, 0, time.UTC).Add(-9 * time.Hour)
	wantTo := time.Date(2026, time.March, 3, 1, 30, 0, 0, time.UTC).Add(-9 * time.Hour)
	if !from.Equal(wantFrom) {
		t.Errorf("expected window open %v, got %v", wantFrom, from)
	}
	if !to.Equal(wantTo) {
		t.Errorf("expected window close %v, got %v", wantTo, to)
	}

	// 00:15 civil next day is mid-lesson and must be inside the window.
	now := time.Date(2026, time.March, 3, 0, 15, 0, 0, time.UTC).Add(-9 * time.Hour)
	if !gate.Open(now, date, start, end) {
		t.Error("expected window to be open mid-lesson after midnight")
	}
}
