package service

import "errors"

// Expected business conditions. Everything else that escapes a service call
// is an unclassified persistence failure and, thanks to the one-transaction
// design, always means zero rows changed.
var (
	ErrLessonNotFound        = errors.New("lesson not found")
	ErrParticipationNotFound = errors.New("participation not found")
	ErrOutsideEditWindow     = errors.New("outside the self-service edit window")
	ErrLessonCancelled       = errors.New("lesson is cancelled")
	ErrNoActivePackage       = errors.New("no active package with remaining credits")
)
