package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-recommender-api/internal/models"
)

// SavedTimetableRepository persists saved timetables and their course order.
type SavedTimetableRepository struct {
	db *sqlx.DB
}

// NewSavedTimetableRepository constructs the repository.
func NewSavedTimetableRepository(db *sqlx.DB) *SavedTimetableRepository {
	return &SavedTimetableRepository{db: db}
}

func (r *SavedTimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts the timetable header row, assigning id and timestamp.
func (r *SavedTimetableRepository) Create(ctx context.Context, exec sqlx.ExtContext, timetable *models.SavedTimetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = time.Now().UTC()
	}
	if len(timetable.Meta) == 0 {
		timetable.Meta = []byte("{}")
	}

	const query = `INSERT INTO saved_timetables (id, student_id, name, total_credits, course_count, meta, created_at)
VALUES (:id, :student_id, :name, :total_credits, :course_count, :meta, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, timetable); err != nil {
		return fmt.Errorf("create saved timetable: %w", err)
	}
	return nil
}

// InsertCourses stores the selected course ids in order.
func (r *SavedTimetableRepository) InsertCourses(ctx context.Context, exec sqlx.ExtContext, courses []models.SavedTimetableCourse) error {
	const query = `INSERT INTO saved_timetable_courses (timetable_id, course_id, position) VALUES (:timetable_id, :course_id, :position)`
	target := r.exec(exec)
	for i := range courses {
		if _, err := sqlx.NamedExecContext(ctx, target, query, courses[i]); err != nil {
			return fmt.Errorf("insert saved timetable course: %w", err)
		}
	}
	return nil
}

// ListByStudent returns a page of the student's timetables, newest first.
func (r *SavedTimetableRepository) ListByStudent(ctx context.Context, studentID string, page, size int) ([]models.SavedTimetable, int, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	query := fmt.Sprintf(`SELECT id, student_id, name, total_credits, course_count, meta, created_at
FROM saved_timetables WHERE student_id = $1 ORDER BY created_at DESC LIMIT %d OFFSET %d`, size, (page-1)*size)
	var items []models.SavedTimetable
	if err := r.db.SelectContext(ctx, &items, query, studentID); err != nil {
		return nil, 0, fmt.Errorf("list saved timetables: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM saved_timetables WHERE student_id = $1`, studentID); err != nil {
		return nil, 0, fmt.Errorf("count saved timetables: %w", err)
	}
	return items, total, nil
}

// FindByID returns a timetable with its course ids. sql.ErrNoRows is
// returned unwrapped when it does not exist.
func (r *SavedTimetableRepository) FindByID(ctx context.Context, id string) (*models.SavedTimetable, error) {
	const query = `SELECT id, student_id, name, total_credits, course_count, meta, created_at FROM saved_timetables WHERE id = $1`
	var timetable models.SavedTimetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}

	const coursesQuery = `SELECT course_id FROM saved_timetable_courses WHERE timetable_id = $1 ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &timetable.CourseIDs, coursesQuery, id); err != nil {
		return nil, fmt.Errorf("list saved timetable courses: %w", err)
	}
	return &timetable, nil
}

// Delete removes a timetable owned by the student. Course rows cascade.
func (r *SavedTimetableRepository) Delete(ctx context.Context, id, studentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_timetables WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return fmt.Errorf("delete saved timetable: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete saved timetable: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
