package model

import (
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	if DeriveStatus(1) != PackageStatusActive {
		t.Error("remaining credits must derive active")
	}
	if DeriveStatus(0) != PackageStatusExhausted {
		t.Error("zero remaining must derive exhausted")
	}
	if DeriveStatus(-1) != PackageStatusExhausted {
		t.Error("negative remaining must derive exhausted")
	}
}

func TestEarliestExpiringPicksSoonestEndDate(t *testing.T) {
	later := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)
	sooner := time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC)

	pkgs := []*Package{
		{ID: 1, EndDate: later},
		{ID: 2, EndDate: sooner},
	}
	if got := EarliestExpiring(pkgs); got == nil || got.ID != 2 {
		t.Fatalf("expected package 2, got %+v", got)
	}
}

func TestEarliestExpiringTieBreaksOnID(t *testing.T) {
	end := time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC)
	pkgs := []*Package{
		{ID: 7, EndDate: end},
		{ID: 3, EndDate: end},
		{ID: 5, EndDate: end},
	}
	if got := EarliestExpiring(pkgs); got == nil || got.ID != 3 {
		t.Fatalf("expected package 3, got %+v", got)
	}
}

func TestEarliestExpiringEmpty(t *testing.T) {
	if EarliestExpiring(nil) != nil {
		t.Error("expected nil for empty slice")
	}
}
