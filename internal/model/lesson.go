package model

import "time"

type LessonStatus string

const (
	LessonStatusScheduled LessonStatus = "scheduled"
	LessonStatusCompleted LessonStatus = "completed"
	LessonStatusCancelled LessonStatus = "cancelled"
)

// Lesson is one scheduled class instance. LessonDate carries the calendar
// date and StartTime/EndTime carry the time of day; all three are stored as
// timezone-naive values meaning civil time at the studio's fixed offset.
type Lesson struct {
	ID            int64        `json:"id"`
	LessonDate    time.Time    `json:"lesson_date"`
	StartTime     time.Time    `json:"start_time"`
	EndTime       time.Time    `json:"end_time"`
	PaymentTypeID int64        `json:"payment_type_id"`
	InstructorID  int64        `json:"instructor_id"`
	LessonTypeID  int64        `json:"lesson_type_id"`
	Status        LessonStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// Filled by the read model, not from the lessons table
	Participations []*Participation `json:"participations,omitempty"`
}
