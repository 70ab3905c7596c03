package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jinhajunho/luel-note-sub000/internal/metrics"
	"github.com/jinhajunho/luel-note-sub000/internal/model"
	"github.com/jinhajunho/luel-note-sub000/internal/repository"
	"github.com/jinhajunho/luel-note-sub000/internal/timewindow"
)

// Policy resolves the two behaviors the original system left ambiguous.
type Policy struct {
	// RefundOnAbsent refunds the outstanding charge when a present mark is
	// toggled to absent. Off by default: an absent mark after check-in is
	// treated as a no-show penalty and the credit stays consumed.
	RefundOnAbsent bool

	// RechargeOnReturn charges a fresh credit on every absent→present
	// transition. Off by default: a consumed-but-unrefunded charge is
	// remembered and reused, capping consumption at one credit per
	// participation.
	RechargeOnReturn bool
}

// AttendanceService is the engine behind the three attendance operations.
// Each call runs as a single database transaction; a failure of any step
// leaves zero rows changed.
type AttendanceService struct {
	db     repository.DB
	stores repository.Stores
	gate   timewindow.Gate
	policy Policy
	logger *zap.Logger
	hook   Hook
	clock  func() time.Time
}

func NewAttendanceService(
	db repository.DB,
	stores repository.Stores,
	gate timewindow.Gate,
	policy Policy,
	logger *zap.Logger,
	hook Hook,
) *AttendanceService {
	return &AttendanceService{
		db:     db,
		stores: stores,
		gate:   gate,
		policy: policy,
		logger: logger,
		hook:   hook,
		clock:  time.Now,
	}
}

type ToggleResult struct {
	NewMark          model.AttendanceMark `json:"new_mark"`
	CheckInTime      *time.Time           `json:"check_in_time,omitempty"`
	ChargedPackageID *int64               `json:"charged_package_id,omitempty"`
}

// Toggle flips one member's attendance mark for a lesson. Self-service
// callers are gated by the edit window; staff bypass it. The stored row is
// the source of truth for the current mark.
func (s *AttendanceService) Toggle(ctx context.Context, lessonID, memberID int64, actor model.ActorRole) (*ToggleResult, error) {
	defer s.observe("toggle")()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stores := s.stores.WithTx(tx)

	lesson, err := stores.Lessons().GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	if lesson.Status == model.LessonStatusCancelled {
		// a cancelled lesson's charges were already compensated; marking it
		// again would decrement a credit nothing will refund
		return nil, ErrLessonCancelled
	}

	now := s.clock()
	if actor != model.ActorStaff &&
		!s.gate.Open(now, lesson.LessonDate, lesson.StartTime, lesson.EndTime) {
		return nil, ErrOutsideEditWindow
	}

	// lock the row so concurrent toggles of the same pair serialize here and
	// the second one sees the committed mark, not the stale one
	p, err := stores.Participations().GetForUpdate(ctx, lessonID, memberID)
	if err != nil {
		return nil, fmt.Errorf("get participation: %w", err)
	}
	if p == nil {
		return nil, ErrParticipationNotFound
	}

	var charged, refunded bool
	switch model.NextMark(p.Attended) {
	case model.MarkPresent:
		charged, err = s.markPresent(ctx, stores, lesson, p, now)
		if err != nil {
			return nil, err
		}
	case model.MarkAbsent:
		refunded, err = s.markAbsent(ctx, stores, p)
		if err != nil {
			return nil, err
		}
	}

	if err := stores.Participations().UpdateMark(ctx, p); err != nil {
		return nil, fmt.Errorf("update mark: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	metrics.ToggleTotal.WithLabelValues(string(p.Attended)).Inc()
	if charged {
		metrics.ChargesTotal.Inc()
	}
	if refunded {
		metrics.RefundsTotal.Inc()
	}

	s.logger.Info("Attendance toggled",
		zap.Int64("lesson_id", lessonID),
		zap.Int64("member_id", memberID),
		zap.String("mark", string(p.Attended)),
		zap.String("actor", string(actor)),
		zap.Bool("charged", charged),
	)
	s.publish(Event{Kind: EventAttendanceToggled, LessonID: lessonID, MemberID: memberID})

	return &ToggleResult{
		NewMark:          p.Attended,
		CheckInTime:      p.CheckInTime,
		ChargedPackageID: p.CreditPackageID,
	}, nil
}

// markPresent applies the →present transition. It reports whether a fresh
// credit was charged.
func (s *AttendanceService) markPresent(
	ctx context.Context,
	stores repository.Stores,
	lesson *model.Lesson,
	p *model.Participation,
	now time.Time,
) (bool, error) {
	charged := false
	if p.Attended == model.MarkAbsent && !s.policy.RechargeOnReturn && p.SpentPackageID != nil {
		// the credit consumed before the absent flip is still outstanding;
		// re-attach it instead of charging twice for one lesson
		p.CreditPackageID = p.SpentPackageID
	} else {
		pkgID, err := s.charge(ctx, stores, p.MemberID, lesson.PaymentTypeID)
		if err != nil {
			return false, err
		}
		p.CreditPackageID = &pkgID
		charged = true
	}
	p.SpentPackageID = nil
	p.Attended = model.MarkPresent
	checkIn := now
	p.CheckInTime = &checkIn
	return charged, nil
}

// markAbsent applies the present→absent transition. It reports whether the
// outstanding charge was refunded.
func (s *AttendanceService) markAbsent(
	ctx context.Context,
	stores repository.Stores,
	p *model.Participation,
) (bool, error) {
	refunded := false
	if p.CreditPackageID != nil {
		if s.policy.RefundOnAbsent {
			if err := stores.Packages().Refund(ctx, *p.CreditPackageID); err != nil {
				return false, fmt.Errorf("refund package: %w", err)
			}
			refunded = true
		} else {
			// no-show penalty: the charge stays consumed, but remember it so
			// a later return to present does not charge again
			p.SpentPackageID = p.CreditPackageID
		}
	}
	p.Attended = model.MarkAbsent
	p.CheckInTime = nil
	p.CreditPackageID = nil
	return refunded, nil
}

// charge selects the soonest-expiring eligible package under a row lock and
// consumes one credit from it.
func (s *AttendanceService) charge(ctx context.Context, stores repository.Stores, memberID, paymentTypeID int64) (int64, error) {
	pkgs, err := stores.Packages().ListChargeableForUpdate(ctx, memberID, paymentTypeID)
	if err != nil {
		return 0, fmt.Errorf("select package: %w", err)
	}

	pkg := model.EarliestExpiring(pkgs)
	if pkg == nil {
		return 0, ErrNoActivePackage
	}

	if err := stores.Packages().Charge(ctx, pkg.ID); err != nil {
		if errors.Is(err, repository.ErrNoCredits) {
			return 0, ErrNoActivePackage
		}
		return 0, fmt.Errorf("charge package: %w", err)
	}

	return pkg.ID, nil
}

type CompleteResult struct {
	Absented int64 `json:"absented"`
}

// Complete defaults every still-unmarked participation to absent and sets
// the lesson status. Calling it twice is a no-op on the marks. Completing an
// already-cancelled lesson changes nothing and reports success.
func (s *AttendanceService) Complete(ctx context.Context, lessonID int64) (*CompleteResult, error) {
	defer s.observe("complete")()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stores := s.stores.WithTx(tx)

	lesson, err := stores.Lessons().GetByIDForUpdate(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	if lesson.Status == model.LessonStatusCancelled {
		return &CompleteResult{}, nil
	}

	absented, err := stores.Participations().MarkAbsentWhereUnmarked(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("default no-shows to absent: %w", err)
	}

	if err := stores.Lessons().UpdateStatus(ctx, lessonID, model.LessonStatusCompleted); err != nil {
		return nil, fmt.Errorf("set lesson completed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	metrics.CompleteTotal.Inc()
	s.logger.Info("Lesson completed",
		zap.Int64("lesson_id", lessonID),
		zap.Int64("absented", absented),
	)
	s.publish(Event{Kind: EventLessonCompleted, LessonID: lessonID})

	return &CompleteResult{Absented: absented}, nil
}

type CancelResult struct {
	ResultingStatus model.LessonStatus `json:"resulting_status"`
	Refunded        int                `json:"refunded"`
}

// Cancel is the engine's compensating path. A completed lesson only reverts
// to scheduled (status undo, not a financial undo); a scheduled lesson
// refunds every outstanding charge exactly once and resets the roster to
// unmarked; a cancelled lesson is a no-op. A full refund-cancel of a
// completed lesson therefore takes two calls.
func (s *AttendanceService) Cancel(ctx context.Context, lessonID int64) (*CancelResult, error) {
	defer s.observe("cancel")()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stores := s.stores.WithTx(tx)

	lesson, err := stores.Lessons().GetByIDForUpdate(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}

	switch lesson.Status {
	case model.LessonStatusCancelled:
		metrics.CancelTotal.WithLabelValues("noop").Inc()
		return &CancelResult{ResultingStatus: model.LessonStatusCancelled}, nil

	case model.LessonStatusCompleted:
		if err := stores.Lessons().UpdateStatus(ctx, lessonID, model.LessonStatusScheduled); err != nil {
			return nil, fmt.Errorf("revert lesson to scheduled: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit transaction: %w", err)
		}
		metrics.CancelTotal.WithLabelValues("revert").Inc()
		s.logger.Info("Completed lesson reverted to scheduled", zap.Int64("lesson_id", lessonID))
		s.publish(Event{Kind: EventLessonCancelled, LessonID: lessonID})
		return &CancelResult{ResultingStatus: model.LessonStatusScheduled}, nil
	}

	parts, err := stores.Participations().ListByLessonForUpdate(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}

	refunded := 0
	for _, p := range parts {
		if p.Attended == model.MarkPresent && p.CreditPackageID != nil {
			if err := stores.Packages().Refund(ctx, *p.CreditPackageID); err != nil {
				return nil, fmt.Errorf("refund package %d: %w", *p.CreditPackageID, err)
			}
			refunded++
		}
	}

	if err := stores.Participations().ResetByLesson(ctx, lessonID); err != nil {
		return nil, fmt.Errorf("reset participations: %w", err)
	}

	if err := stores.Lessons().UpdateStatus(ctx, lessonID, model.LessonStatusCancelled); err != nil {
		return nil, fmt.Errorf("set lesson cancelled: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	metrics.CancelTotal.WithLabelValues("cancel").Inc()
	metrics.RefundsTotal.Add(float64(refunded))
	s.logger.Info("Lesson cancelled",
		zap.Int64("lesson_id", lessonID),
		zap.Int("refunded", refunded),
	)
	s.publish(Event{Kind: EventLessonCancelled, LessonID: lessonID})

	return &CancelResult{ResultingStatus: model.LessonStatusCancelled, Refunded: refunded}, nil
}

func (s *AttendanceService) publish(e Event) {
	if s.hook != nil {
		s.hook.Publish(e)
	}
}

func (s *AttendanceService) observe(op string) func() {
	start := time.Now()
	return func() {
		metrics.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
