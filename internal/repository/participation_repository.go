package repository

import (
	"context"
	"fmt"

	"github.com/jinhajunho/luel-note-sub000/internal/model"
	"github.com/jinhajunho/luel-note-sub000/internal/repository/base"
)

type ParticipationRepository struct {
	db base.Querier
}

func NewParticipationRepository(db base.Querier) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// Create inserts an unmarked participation row, optionally carrying the
// non-binding package pre-assignment made at booking time.
func (r *ParticipationRepository) Create(ctx context.Context, p *model.Participation) error {
	query := `
		INSERT INTO participations (lesson_id, member_id, attended, preassigned_package_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		p.LessonID,
		p.MemberID,
		p.Attended.Bool(),
		p.PreassignedPackageID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create participation: %w", err)
	}

	return nil
}

// Get returns one participation row or nil when the pair does not exist.
func (r *ParticipationRepository) Get(ctx context.Context, lessonID, memberID int64) (*model.Participation, error) {
	return r.get(ctx, lessonID, memberID, false)
}

// GetForUpdate locks the row for the rest of the transaction so concurrent
// toggles of the same participation serialize on it instead of both reading
// the stale mark and charging twice.
func (r *ParticipationRepository) GetForUpdate(ctx context.Context, lessonID, memberID int64) (*model.Participation, error) {
	return r.get(ctx, lessonID, memberID, true)
}

func (r *ParticipationRepository) get(ctx context.Context, lessonID, memberID int64, forUpdate bool) (*model.Participation, error) {
	query := `
		SELECT lesson_id, member_id, attended, check_in_time, credit_package_id,
		       preassigned_package_id, spent_package_id, created_at, updated_at
		FROM participations
		WHERE lesson_id = $1 AND member_id = $2
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	p, err := scanParticipation(r.db.QueryRow(ctx, query, lessonID, memberID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get participation: %w", err)
	}

	return p, nil
}

// ListByLesson returns the roster with member details for the read model.
func (r *ParticipationRepository) ListByLesson(ctx context.Context, lessonID int64) ([]*model.Participation, error) {
	query := `
		SELECT p.lesson_id, p.member_id, p.attended, p.check_in_time, p.credit_package_id,
		       p.preassigned_package_id, p.spent_package_id, p.created_at, p.updated_at,
		       m.id, m.name, m.phone, m.role, m.created_at
		FROM participations p
		JOIN members m ON m.id = p.member_id
		WHERE p.lesson_id = $1
		ORDER BY m.name, m.id
	`

	rows, err := r.db.Query(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var out []*model.Participation
	for rows.Next() {
		var (
			p        model.Participation
			attended *bool
			member   model.Member
		)
		err := rows.Scan(
			&p.LessonID,
			&p.MemberID,
			&attended,
			&p.CheckInTime,
			&p.CreditPackageID,
			&p.PreassignedPackageID,
			&p.SpentPackageID,
			&p.CreatedAt,
			&p.UpdatedAt,
			&member.ID,
			&member.Name,
			&member.Phone,
			&member.Role,
			&member.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		p.Attended = model.MarkFromBool(attended)
		p.Member = &member
		out = append(out, &p)
	}

	return out, rows.Err()
}

// ListByLessonForUpdate locks and returns all rows of a lesson, for the
// cancel path that refunds each outstanding charge exactly once.
func (r *ParticipationRepository) ListByLessonForUpdate(ctx context.Context, lessonID int64) ([]*model.Participation, error) {
	query := `
		SELECT lesson_id, member_id, attended, check_in_time, credit_package_id,
		       preassigned_package_id, spent_package_id, created_at, updated_at
		FROM participations
		WHERE lesson_id = $1
		ORDER BY member_id
		FOR UPDATE
	`

	rows, err := r.db.Query(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list participations for update: %w", err)
	}
	defer rows.Close()

	var out []*model.Participation
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// UpdateMark writes the attendance mark and its charge bookkeeping.
func (r *ParticipationRepository) UpdateMark(ctx context.Context, p *model.Participation) error {
	query := `
		UPDATE participations
		SET attended = $3, check_in_time = $4, credit_package_id = $5,
		    spent_package_id = $6, updated_at = now()
		WHERE lesson_id = $1 AND member_id = $2
	`

	tag, err := r.db.Exec(
		ctx, query,
		p.LessonID,
		p.MemberID,
		p.Attended.Bool(),
		p.CheckInTime,
		p.CreditPackageID,
		p.SpentPackageID,
	)
	if err != nil {
		return fmt.Errorf("update participation mark: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participation not found")
	}

	return nil
}

// MarkAbsentWhereUnmarked defaults every unmarked no-show to absent when a
// lesson completes. Unmarked rows never held a charge, so no refund is due.
func (r *ParticipationRepository) MarkAbsentWhereUnmarked(ctx context.Context, lessonID int64) (int64, error) {
	query := `
		UPDATE participations
		SET attended = FALSE, updated_at = now()
		WHERE lesson_id = $1 AND attended IS NULL
	`

	tag, err := r.db.Exec(ctx, query, lessonID)
	if err != nil {
		return 0, fmt.Errorf("mark unmarked absent: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ResetByLesson returns every row of a cancelled lesson to unmarked and
// clears all charge attribution. The booking-time pre-assignment survives.
func (r *ParticipationRepository) ResetByLesson(ctx context.Context, lessonID int64) error {
	query := `
		UPDATE participations
		SET attended = NULL, check_in_time = NULL, credit_package_id = NULL,
		    spent_package_id = NULL, updated_at = now()
		WHERE lesson_id = $1
	`

	if _, err := r.db.Exec(ctx, query, lessonID); err != nil {
		return fmt.Errorf("reset participations: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanParticipation(row rowScanner) (*model.Participation, error) {
	var (
		p        model.Participation
		attended *bool
	)
	err := row.Scan(
		&p.LessonID,
		&p.MemberID,
		&attended,
		&p.CheckInTime,
		&p.CreditPackageID,
		&p.PreassignedPackageID,
		&p.SpentPackageID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Attended = model.MarkFromBool(attended)
	return &p, nil
}
