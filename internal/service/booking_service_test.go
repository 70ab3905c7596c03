package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jinhajunho/luel-note-sub000/internal/model"
)

func newBookingFixture(t *testing.T) (*BookingService, *fakeStores, *fakeDB) {
	t.Helper()
	stores := newFakeStores()
	db := &fakeDB{}
	svc := NewBookingService(db, stores, zap.NewNop(), nil)
	return svc, stores, db
}

func TestCreateLessonPreassignsWithoutCharging(t *testing.T) {
	svc, stores, db := newBookingFixture(t)
	ctx := context.Background()

	if err := stores.pkgs.Create(ctx, &model.Package{
		MemberID:         10,
		PaymentTypeID:    1,
		TotalLessons:     5,
		RemainingLessons: 5,
		Status:           model.PackageStatusActive,
		EndDate:          time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed package: %v", err)
	}

	lesson, err := svc.CreateLesson(ctx, CreateLessonInput{
		Date:          time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		StartTime:     time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC),
		PaymentTypeID: 1,
		InstructorID:  2,
		LessonTypeID:  3,
		MemberIDs:     []int64{10, 20},
	})
	if err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	if lesson.ID == 0 || lesson.Status != model.LessonStatusScheduled {
		t.Fatalf("expected scheduled lesson with id, got %+v", lesson)
	}
	if !db.tx.committed {
		t.Error("expected transaction commit")
	}

	// member 10 gets a non-binding pre-assignment, nothing decremented
	p, _ := stores.parts.Get(ctx, lesson.ID, 10)
	if p == nil {
		t.Fatal("participation for member 10 missing")
	}
	if p.Attended != model.MarkUnmarked {
		t.Errorf("expected unmarked, got %s", p.Attended)
	}
	if p.PreassignedPackageID == nil || *p.PreassignedPackageID != 1 {
		t.Errorf("expected pre-assignment to package 1, got %v", p.PreassignedPackageID)
	}
	if p.CreditPackageID != nil {
		t.Error("booking must not attribute a charge")
	}
	pkg, _ := stores.pkgs.GetByID(ctx, 1)
	if pkg.RemainingLessons != 5 || pkg.UsedLessons != 0 {
		t.Errorf("booking must not decrement, got remaining=%d used=%d",
			pkg.RemainingLessons, pkg.UsedLessons)
	}
	// the pick is a hint; it must not lock package rows against charges
	if stores.pkgs.lockedLists != 0 {
		t.Errorf("booking must not take package row locks, got %d", stores.pkgs.lockedLists)
	}

	// member 20 has no package and is still bookable
	p, _ = stores.parts.Get(ctx, lesson.ID, 20)
	if p == nil {
		t.Fatal("participation for member 20 missing")
	}
	if p.PreassignedPackageID != nil {
		t.Errorf("expected no pre-assignment, got %v", p.PreassignedPackageID)
	}
}

func TestGetLessonAssemblesRoster(t *testing.T) {
	svc, stores, _ := newBookingFixture(t)
	ctx := context.Background()

	stores.lessons.lessons[1] = &model.Lesson{ID: 1, Status: model.LessonStatusScheduled}
	stores.lessons.nextID = 2
	stores.parts.put(&model.Participation{LessonID: 1, MemberID: 10})
	stores.parts.put(&model.Participation{LessonID: 1, MemberID: 20})

	lesson, err := svc.GetLesson(ctx, 1)
	if err != nil {
		t.Fatalf("get lesson: %v", err)
	}
	if len(lesson.Participations) != 2 {
		t.Fatalf("expected 2 roster rows, got %d", len(lesson.Participations))
	}
}

func TestGetLessonNotFound(t *testing.T) {
	svc, _, _ := newBookingFixture(t)

	_, err := svc.GetLesson(context.Background(), 42)
	if !errors.Is(err, ErrLessonNotFound) {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}
}
