package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jinhajunho/luel-note-sub000/internal/model"
	"github.com/jinhajunho/luel-note-sub000/internal/repository/base"
)

type LessonRepository struct {
	db base.Querier
}

func NewLessonRepository(db base.Querier) *LessonRepository {
	return &LessonRepository{db: db}
}

const lessonColumns = `id, lesson_date, start_time, end_time, payment_type_id,
	       instructor_id, lesson_type_id, status, created_at, updated_at`

// Create inserts a new scheduled lesson.
func (r *LessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	query := `
		INSERT INTO lessons (lesson_date, start_time, end_time, payment_type_id,
		                     instructor_id, lesson_type_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		lesson.LessonDate,
		lesson.StartTime,
		lesson.EndTime,
		lesson.PaymentTypeID,
		lesson.InstructorID,
		lesson.LessonTypeID,
		lesson.Status,
	).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}

	return nil
}

// GetByID returns a lesson or nil when it does not exist.
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate locks the lesson row for the rest of the transaction so
// concurrent complete/cancel calls serialize on it.
func (r *LessonRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Lesson, error) {
	return r.getByID(ctx, id, true)
}

func (r *LessonRepository) getByID(ctx context.Context, id int64, forUpdate bool) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var lesson model.Lesson
	err := r.db.QueryRow(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.LessonDate,
		&lesson.StartTime,
		&lesson.EndTime,
		&lesson.PaymentTypeID,
		&lesson.InstructorID,
		&lesson.LessonTypeID,
		&lesson.Status,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}

	return &lesson, nil
}

// UpdateStatus sets the lesson lifecycle status.
func (r *LessonRepository) UpdateStatus(ctx context.Context, id int64, status model.LessonStatus) error {
	query := `
		UPDATE lessons
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update lesson status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lesson not found")
	}

	return nil
}

// ListByDate returns all lessons on the given calendar date ordered by start time.
func (r *LessonRepository) ListByDate(ctx context.Context, date time.Time) ([]*model.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE lesson_date = $1
		ORDER BY start_time, id
	`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list lessons by date: %w", err)
	}
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		var lesson model.Lesson
		err := rows.Scan(
			&lesson.ID,
			&lesson.LessonDate,
			&lesson.StartTime,
			&lesson.EndTime,
			&lesson.PaymentTypeID,
			&lesson.InstructorID,
			&lesson.LessonTypeID,
			&lesson.Status,
			&lesson.CreatedAt,
			&lesson.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, &lesson)
	}

	return lessons, rows.Err()
}
