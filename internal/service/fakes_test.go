package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jinhajunho/luel-note-sub000/internal/model"
	"github.com/jinhajunho/luel-note-sub000/internal/repository"
)

// fakeTx tracks transaction outcome; the embedded interface panics on
// anything the engine should never call on it directly.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx *fakeTx
}

func (d *fakeDB) Begin(_ context.Context) (pgx.Tx, error) {
	d.tx = &fakeTx{}
	return d.tx, nil
}

type fakeLessonStore struct {
	nextID  int64
	lessons map[int64]*model.Lesson
}

func newFakeLessonStore() *fakeLessonStore {
	return &fakeLessonStore{nextID: 1, lessons: map[int64]*model.Lesson{}}
}

func (s *fakeLessonStore) Create(_ context.Context, lesson *model.Lesson) error {
	lesson.ID = s.nextID
	s.nextID++
	cp := *lesson
	s.lessons[lesson.ID] = &cp
	return nil
}

func (s *fakeLessonStore) GetByID(_ context.Context, id int64) (*model.Lesson, error) {
	lesson, ok := s.lessons[id]
	if !ok {
		return nil, nil
	}
	cp := *lesson
	return &cp, nil
}

func (s *fakeLessonStore) GetByIDForUpdate(ctx context.Context, id int64) (*model.Lesson, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeLessonStore) UpdateStatus(_ context.Context, id int64, status model.LessonStatus) error {
	lesson, ok := s.lessons[id]
	if !ok {
		return fmt.Errorf("lesson not found")
	}
	lesson.Status = status
	return nil
}

func (s *fakeLessonStore) ListByDate(_ context.Context, date time.Time) ([]*model.Lesson, error) {
	var out []*model.Lesson
	for _, lesson := range s.lessons {
		if lesson.LessonDate.Equal(date) {
			cp := *lesson
			out = append(out, &cp)
		}
	}
	return out, nil
}

type partKey struct {
	lessonID, memberID int64
}

type fakeParticipationStore struct {
	rows       map[partKey]*model.Participation
	lockedGets int
}

func newFakeParticipationStore() *fakeParticipationStore {
	return &fakeParticipationStore{rows: map[partKey]*model.Participation{}}
}

func (s *fakeParticipationStore) put(p *model.Participation) {
	cp := *p
	s.rows[partKey{p.LessonID, p.MemberID}] = &cp
}

func (s *fakeParticipationStore) Create(_ context.Context, p *model.Participation) error {
	s.put(p)
	return nil
}

// Get returns a copy so service-side mutation only lands via UpdateMark,
// matching how rows behave behind a real transaction.
func (s *fakeParticipationStore) Get(_ context.Context, lessonID, memberID int64) (*model.Participation, error) {
	p, ok := s.rows[partKey{lessonID, memberID}]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// GetForUpdate serves the committed row like Get; lockedGets records that the
// caller asked for the lock.
func (s *fakeParticipationStore) GetForUpdate(ctx context.Context, lessonID, memberID int64) (*model.Participation, error) {
	s.lockedGets++
	return s.Get(ctx, lessonID, memberID)
}

func (s *fakeParticipationStore) ListByLesson(_ context.Context, lessonID int64) ([]*model.Participation, error) {
	return s.ListByLessonForUpdate(context.Background(), lessonID)
}

func (s *fakeParticipationStore) ListByLessonForUpdate(_ context.Context, lessonID int64) ([]*model.Participation, error) {
	var out []*model.Participation
	for _, p := range s.rows {
		if p.LessonID == lessonID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeParticipationStore) UpdateMark(_ context.Context, p *model.Participation) error {
	if _, ok := s.rows[partKey{p.LessonID, p.MemberID}]; !ok {
		return fmt.Errorf("participation not found")
	}
	s.put(p)
	return nil
}

func (s *fakeParticipationStore) MarkAbsentWhereUnmarked(_ context.Context, lessonID int64) (int64, error) {
	var n int64
	for _, p := range s.rows {
		if p.LessonID == lessonID && p.Attended == model.MarkUnmarked {
			p.Attended = model.MarkAbsent
			n++
		}
	}
	return n, nil
}

func (s *fakeParticipationStore) ResetByLesson(_ context.Context, lessonID int64) error {
	for _, p := range s.rows {
		if p.LessonID == lessonID {
			p.Attended = model.MarkUnmarked
			p.CheckInTime = nil
			p.CreditPackageID = nil
			p.SpentPackageID = nil
		}
	}
	return nil
}

type fakePackageStore struct {
	nextID      int64
	packages    map[int64]*model.Package
	charges     int
	refunds     int
	lockedLists int
}

func newFakePackageStore() *fakePackageStore {
	return &fakePackageStore{nextID: 1, packages: map[int64]*model.Package{}}
}

func (s *fakePackageStore) put(pkg *model.Package) {
	cp := *pkg
	s.packages[pkg.ID] = &cp
}

func (s *fakePackageStore) Create(_ context.Context, pkg *model.Package) error {
	pkg.ID = s.nextID
	s.nextID++
	s.put(pkg)
	return nil
}

func (s *fakePackageStore) GetByID(_ context.Context, id int64) (*model.Package, error) {
	pkg, ok := s.packages[id]
	if !ok {
		return nil, nil
	}
	cp := *pkg
	return &cp, nil
}

func (s *fakePackageStore) ListByMember(_ context.Context, memberID int64) ([]*model.Package, error) {
	var out []*model.Package
	for _, pkg := range s.packages {
		if pkg.MemberID == memberID {
			cp := *pkg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakePackageStore) ListChargeable(_ context.Context, memberID, paymentTypeID int64) ([]*model.Package, error) {
	var out []*model.Package
	for _, pkg := range s.packages {
		if pkg.MemberID == memberID && pkg.PaymentTypeID == paymentTypeID &&
			pkg.Status == model.PackageStatusActive && pkg.RemainingLessons > 0 {
			cp := *pkg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakePackageStore) ListChargeableForUpdate(ctx context.Context, memberID, paymentTypeID int64) ([]*model.Package, error) {
	s.lockedLists++
	return s.ListChargeable(ctx, memberID, paymentTypeID)
}

func (s *fakePackageStore) Charge(_ context.Context, id int64) error {
	pkg, ok := s.packages[id]
	if !ok || pkg.RemainingLessons <= 0 {
		return repository.ErrNoCredits
	}
	pkg.UsedLessons++
	pkg.RemainingLessons--
	pkg.Status = model.DeriveStatus(pkg.RemainingLessons)
	s.charges++
	return nil
}

func (s *fakePackageStore) Refund(_ context.Context, id int64) error {
	pkg, ok := s.packages[id]
	if !ok {
		return fmt.Errorf("package not found")
	}
	pkg.UsedLessons--
	pkg.RemainingLessons++
	pkg.Status = model.PackageStatusActive
	s.refunds++
	return nil
}

type fakeStores struct {
	lessons *fakeLessonStore
	parts   *fakeParticipationStore
	pkgs    *fakePackageStore
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		lessons: newFakeLessonStore(),
		parts:   newFakeParticipationStore(),
		pkgs:    newFakePackageStore(),
	}
}

func (f *fakeStores) Lessons() repository.LessonStore               { return f.lessons }
func (f *fakeStores) Participations() repository.ParticipationStore { return f.parts }
func (f *fakeStores) Packages() repository.PackageStore             { return f.pkgs }
func (f *fakeStores) WithTx(_ pgx.Tx) repository.Stores             { return f }

type recordingHook struct {
	events []Event
}

func (h *recordingHook) Publish(e Event) {
	h.events = append(h.events, e)
}
