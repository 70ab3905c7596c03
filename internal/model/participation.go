package model

import "time"

// AttendanceMark is the tri-state attendance flag. It is persisted as a
// nullable boolean: NULL=unmarked, true=present, false=absent.
type AttendanceMark string

const (
	MarkUnmarked AttendanceMark = "unmarked"
	MarkPresent  AttendanceMark = "present"
	MarkAbsent   AttendanceMark = "absent"
)

// NextMark computes the next state of the two-way toggle:
// unmarked→present, present→absent, absent→present.
// A mark returns to unmarked only through lesson cancellation.
func NextMark(cur AttendanceMark) AttendanceMark {
	if cur == MarkPresent {
		return MarkAbsent
	}
	return MarkPresent
}

// MarkFromBool converts the stored nullable boolean to a mark.
func MarkFromBool(b *bool) AttendanceMark {
	switch {
	case b == nil:
		return MarkUnmarked
	case *b:
		return MarkPresent
	default:
		return MarkAbsent
	}
}

// Bool converts the mark back to its stored nullable-boolean form.
func (m AttendanceMark) Bool() *bool {
	switch m {
	case MarkPresent:
		v := true
		return &v
	case MarkAbsent:
		v := false
		return &v
	default:
		return nil
	}
}

// Participation records one member's attendance mark and credit charge for
// one lesson. CreditPackageID attributes the outstanding charge and is nil
// unless the mark is present. PreassignedPackageID is the non-binding pick
// made at booking time for reporting. SpentPackageID remembers a charge that
// was consumed but not refunded while the row sits at absent, so a later
// return to present can reuse it instead of charging again.
type Participation struct {
	LessonID             int64          `json:"lesson_id"`
	MemberID             int64          `json:"member_id"`
	Attended             AttendanceMark `json:"attended"`
	CheckInTime          *time.Time     `json:"check_in_time"`
	CreditPackageID      *int64         `json:"credit_package_id"`
	PreassignedPackageID *int64         `json:"preassigned_package_id"`
	SpentPackageID       *int64         `json:"spent_package_id,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`

	// Filled by the read model
	Member *Member `json:"member,omitempty"`
}
