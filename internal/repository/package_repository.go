package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinhajunho/luel-note-sub000/internal/model"
	"github.com/jinhajunho/luel-note-sub000/internal/repository/base"
)

// ErrNoCredits is returned when a charge finds no remaining credits on the
// package, e.g. a concurrent transaction consumed the last one.
var ErrNoCredits = errors.New("packages: no remaining credits")

type PackageRepository struct {
	db base.Querier
}

func NewPackageRepository(db base.Querier) *PackageRepository {
	return &PackageRepository{db: db}
}

const packageColumns = `id, member_id, payment_type_id, total_lessons, used_lessons,
	       remaining_lessons, status, start_date, end_date, created_at, updated_at`

// Create inserts a granted package.
func (r *PackageRepository) Create(ctx context.Context, pkg *model.Package) error {
	query := `
		INSERT INTO packages (member_id, payment_type_id, total_lessons, used_lessons,
		                      remaining_lessons, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		pkg.MemberID,
		pkg.PaymentTypeID,
		pkg.TotalLessons,
		pkg.UsedLessons,
		pkg.RemainingLessons,
		pkg.Status,
		pkg.StartDate,
		pkg.EndDate,
	).Scan(&pkg.ID, &pkg.CreatedAt, &pkg.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create package: %w", err)
	}

	return nil
}

// GetByID returns a package or nil when it does not exist.
func (r *PackageRepository) GetByID(ctx context.Context, id int64) (*model.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1`

	pkg, err := scanPackage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get package by id: %w", err)
	}

	return pkg, nil
}

// ListByMember returns all packages of a member, soonest-expiring first.
func (r *PackageRepository) ListByMember(ctx context.Context, memberID int64) ([]*model.Package, error) {
	query := `
		SELECT ` + packageColumns + `
		FROM packages
		WHERE member_id = $1
		ORDER BY end_date, id
	`

	return r.list(ctx, query, memberID)
}

const chargeableFilter = `
		FROM packages
		WHERE member_id = $1 AND payment_type_id = $2
		  AND status = 'active' AND remaining_lessons > 0
		ORDER BY end_date, id
	`

// ListChargeable returns the packages eligible to be charged for the member
// and payment type, without locking. For the non-binding booking-time pick.
func (r *PackageRepository) ListChargeable(ctx context.Context, memberID, paymentTypeID int64) ([]*model.Package, error) {
	query := `SELECT ` + packageColumns + chargeableFilter

	return r.list(ctx, query, memberID, paymentTypeID)
}

// ListChargeableForUpdate is the locking variant for charge time. The row
// lock closes the select-then-decrement race between concurrent toggles
// sharing a package.
func (r *PackageRepository) ListChargeableForUpdate(ctx context.Context, memberID, paymentTypeID int64) ([]*model.Package, error) {
	query := `SELECT ` + packageColumns + chargeableFilter + ` FOR UPDATE`

	return r.list(ctx, query, memberID, paymentTypeID)
}

// Charge consumes one credit. The remaining_lessons guard keeps the ledger
// from going below zero even if a caller skipped the row lock.
func (r *PackageRepository) Charge(ctx context.Context, id int64) error {
	query := `
		UPDATE packages
		SET used_lessons = used_lessons + 1,
		    remaining_lessons = remaining_lessons - 1,
		    status = CASE WHEN remaining_lessons - 1 <= 0 THEN 'exhausted' ELSE 'active' END,
		    updated_at = now()
		WHERE id = $1 AND remaining_lessons > 0
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("charge package: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNoCredits
	}

	return nil
}

// Refund restores one credit and always un-exhausts the package.
func (r *PackageRepository) Refund(ctx context.Context, id int64) error {
	query := `
		UPDATE packages
		SET used_lessons = used_lessons - 1,
		    remaining_lessons = remaining_lessons + 1,
		    status = 'active',
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("refund package: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("package not found")
	}

	return nil
}

func (r *PackageRepository) list(ctx context.Context, query string, args ...any) ([]*model.Package, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	var out []*model.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		out = append(out, pkg)
	}

	return out, rows.Err()
}

type packageScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row packageScanner) (*model.Package, error) {
	var pkg model.Package
	err := row.Scan(
		&pkg.ID,
		&pkg.MemberID,
		&pkg.PaymentTypeID,
		&pkg.TotalLessons,
		&pkg.UsedLessons,
		&pkg.RemainingLessons,
		&pkg.Status,
		&pkg.StartDate,
		&pkg.EndDate,
		&pkg.CreatedAt,
		&pkg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}
