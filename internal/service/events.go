package service

type EventKind string

const (
	EventLessonBooked      EventKind = "lesson_booked"
	EventAttendanceToggled EventKind = "attendance_toggled"
	EventLessonCompleted   EventKind = "lesson_completed"
	EventLessonCancelled   EventKind = "lesson_cancelled"
)

// Event describes a successful mutation. Events are published after commit,
// fire-and-forget, so read views and staff notifications can refresh without
// being part of the transaction.
type Event struct {
	Kind     EventKind
	LessonID int64
	MemberID int64
}

// Hook receives events. Publish must not block the request path.
type Hook interface {
	Publish(e Event)
}
