package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jinhajunho/luel-note-sub000/internal/model"
	"github.com/jinhajunho/luel-note-sub000/internal/repository"
)

// BookingService creates lessons with their rosters and assembles the
// lesson read model.
type BookingService struct {
	db     repository.DB
	stores repository.Stores
	logger *zap.Logger
	hook   Hook
}

func NewBookingService(db repository.DB, stores repository.Stores, logger *zap.Logger, hook Hook) *BookingService {
	return &BookingService{
		db:     db,
		stores: stores,
		logger: logger,
		hook:   hook,
	}
}

type CreateLessonInput struct {
	Date          time.Time
	StartTime     time.Time
	EndTime       time.Time
	PaymentTypeID int64
	InstructorID  int64
	LessonTypeID  int64
	MemberIDs     []int64
}

// CreateLesson books a lesson for a set of participants. For each
// participant the selector picks an active package and records it as a
// non-binding pre-assignment for reporting; nothing is decremented here.
// Members without an eligible package are still bookable, they just cannot
// go present until one exists.
func (s *BookingService) CreateLesson(ctx context.Context, input CreateLessonInput) (*model.Lesson, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stores := s.stores.WithTx(tx)

	lesson := &model.Lesson{
		LessonDate:    input.Date,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		PaymentTypeID: input.PaymentTypeID,
		InstructorID:  input.InstructorID,
		LessonTypeID:  input.LessonTypeID,
		Status:        model.LessonStatusScheduled,
	}

	if err := stores.Lessons().Create(ctx, lesson); err != nil {
		return nil, err
	}

	for _, memberID := range input.MemberIDs {
		// unlocked read: the pick is a hint, charging re-selects under a lock
		pkgs, err := stores.Packages().ListChargeable(ctx, memberID, input.PaymentTypeID)
		if err != nil {
			return nil, fmt.Errorf("preselect package for member %d: %w", memberID, err)
		}

		p := &model.Participation{
			LessonID: lesson.ID,
			MemberID: memberID,
			Attended: model.MarkUnmarked,
		}
		if pkg := model.EarliestExpiring(pkgs); pkg != nil {
			p.PreassignedPackageID = &pkg.ID
		}

		if err := stores.Participations().Create(ctx, p); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Lesson booked",
		zap.Int64("lesson_id", lesson.ID),
		zap.Time("date", lesson.LessonDate),
		zap.Int("participants", len(input.MemberIDs)),
	)
	if s.hook != nil {
		s.hook.Publish(Event{Kind: EventLessonBooked, LessonID: lesson.ID})
	}

	return lesson, nil
}

// GetLesson returns a lesson with its roster.
func (s *BookingService) GetLesson(ctx context.Context, lessonID int64) (*model.Lesson, error) {
	lesson, err := s.stores.Lessons().GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	parts, err := s.stores.Participations().ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	lesson.Participations = parts

	return lesson, nil
}

// ListLessonsByDate returns all lessons on a calendar date.
func (s *BookingService) ListLessonsByDate(ctx context.Context, date time.Time) ([]*model.Lesson, error) {
	return s.stores.Lessons().ListByDate(ctx, date)
}
