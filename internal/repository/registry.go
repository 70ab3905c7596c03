package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jinhajunho/luel-note-sub000/internal/model"
	"github.com/jinhajunho/luel-note-sub000/internal/repository/base"
)

// DB is what services need to open a transaction. *pgxpool.Pool satisfies it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LessonStore is the lesson persistence surface used by the services.
type LessonStore interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	GetByID(ctx context.Context, id int64) (*model.Lesson, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Lesson, error)
	UpdateStatus(ctx context.Context, id int64, status model.LessonStatus) error
	ListByDate(ctx context.Context, date time.Time) ([]*model.Lesson, error)
}

type ParticipationStore interface {
	Create(ctx context.Context, p *model.Participation) error
	Get(ctx context.Context, lessonID, memberID int64) (*model.Participation, error)
	GetForUpdate(ctx context.Context, lessonID, memberID int64) (*model.Participation, error)
	ListByLesson(ctx context.Context, lessonID int64) ([]*model.Participation, error)
	ListByLessonForUpdate(ctx context.Context, lessonID int64) ([]*model.Participation, error)
	UpdateMark(ctx context.Context, p *model.Participation) error
	MarkAbsentWhereUnmarked(ctx context.Context, lessonID int64) (int64, error)
	ResetByLesson(ctx context.Context, lessonID int64) error
}

type PackageStore interface {
	Create(ctx context.Context, pkg *model.Package) error
	GetByID(ctx context.Context, id int64) (*model.Package, error)
	ListByMember(ctx context.Context, memberID int64) ([]*model.Package, error)
	ListChargeable(ctx context.Context, memberID, paymentTypeID int64) ([]*model.Package, error)
	ListChargeableForUpdate(ctx context.Context, memberID, paymentTypeID int64) ([]*model.Package, error)
	Charge(ctx context.Context, id int64) error
	Refund(ctx context.Context, id int64) error
}

// Stores bundles the repositories so a service can run the same logic on the
// pool, inside a transaction via WithTx, or against fakes in tests.
type Stores interface {
	Lessons() LessonStore
	Participations() ParticipationStore
	Packages() PackageStore
	WithTx(tx pgx.Tx) Stores
}

// Registry is the pgx-backed Stores implementation.
type Registry struct {
	db base.Querier
}

func NewRegistry(db base.Querier) *Registry {
	return &Registry{db: db}
}

// WithTx rebinds every repository to the transaction.
func (r *Registry) WithTx(tx pgx.Tx) Stores {
	return &Registry{db: tx}
}

func (r *Registry) Lessons() LessonStore {
	return NewLessonRepository(r.db)
}

func (r *Registry) Participations() ParticipationStore {
	return NewParticipationRepository(r.db)
}

func (r *Registry) Packages() PackageStore {
	return NewPackageRepository(r.db)
}
