package model

import "time"

type PackageStatus string

const (
	PackageStatusActive    PackageStatus = "active"
	PackageStatusExhausted PackageStatus = "exhausted"
	PackageStatusExpired   PackageStatus = "expired"
)

// Package is a prepaid batch of lesson credits scoped to one member and one
// payment type. used_lessons + remaining_lessons == total_lessons always
// holds; the schema enforces it with a CHECK constraint.
type Package struct {
	ID               int64         `json:"id"`
	MemberID         int64         `json:"member_id"`
	PaymentTypeID    int64         `json:"payment_type_id"`
	TotalLessons     int           `json:"total_lessons"`
	UsedLessons      int           `json:"used_lessons"`
	RemainingLessons int           `json:"remaining_lessons"`
	Status           PackageStatus `json:"status"`
	StartDate        time.Time     `json:"start_date"`
	EndDate          time.Time     `json:"end_date"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// DeriveStatus returns exhausted when no credits remain, active otherwise.
// Expiry by date is not derived here.
func DeriveStatus(remaining int) PackageStatus {
	if remaining <= 0 {
		return PackageStatusExhausted
	}
	return PackageStatusActive
}

// EarliestExpiring picks the package whose credits lapse soonest, so credits
// about to expire are consumed first. Ties break on the lowest id.
func EarliestExpiring(pkgs []*Package) *Package {
	var best *Package
	for _, p := range pkgs {
		if best == nil ||
			p.EndDate.Before(best.EndDate) ||
			(p.EndDate.Equal(best.EndDate) && p.ID < best.ID) {
			best = p
		}
	}
	return best
}
