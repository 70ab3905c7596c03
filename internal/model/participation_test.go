package model

import "testing"

func TestNextMarkIsTwoWayToggle(t *testing.T) {
	cases := []struct {
		cur  AttendanceMark
		want AttendanceMark
	}{
		{MarkUnmarked, MarkPresent},
		{MarkPresent, MarkAbsent},
		{MarkAbsent, MarkPresent},
	}
	for _, tc := range cases {
		if got := NextMark(tc.cur); got != tc.want {
			t.Errorf("NextMark(%s): expected %s, got %s", tc.cur, tc.want, got)
		}
	}
}

func TestMarkNullableBooleanMapping(t *testing.T) {
	if MarkFromBool(nil) != MarkUnmarked {
		t.Error("nil must map to unmarked")
	}
	yes, no := true, false
	if MarkFromBool(&yes) != MarkPresent {
		t.Error("true must map to present")
	}
	if MarkFromBool(&no) != MarkAbsent {
		t.Error("false must map to absent")
	}

	if MarkUnmarked.Bool() != nil {
		t.Error("unmarked must store as NULL")
	}
	if b := MarkPresent.Bool(); b == nil || !*b {
		t.Error("present must store as true")
	}
	if b := MarkAbsent.Bool(); b == nil || *b {
		t.Error("absent must store as false")
	}
}
