package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-recommender-api/internal/models"
)

const courseColumns = `id, course_code, section, name, professor, room, credits, category, department, grade, capacity, enrolled, created_at, updated_at`

// CourseRepository reads the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListCatalog returns every course with its meetings attached, ordered by id.
func (r *CourseRepository) ListCatalog(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses ORDER BY id ASC", courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list catalog courses: %w", err)
	}

	const meetingQuery = `SELECT id, course_id, day_of_week, start_time, end_time, position FROM course_meetings ORDER BY course_id ASC, position ASC`
	var meetings []models.CourseMeeting
	if err := r.db.SelectContext(ctx, &meetings, meetingQuery); err != nil {
		return nil, fmt.Errorf("list catalog meetings: %w", err)
	}

	return attachMeetings(courses, meetings), nil
}

// List returns courses matching filters with the total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base := "FROM courses WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if len(filter.Categories) > 0 {
		conditions = append(conditions, fmt.Sprintf("category = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(filter.Categories))
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(course_code) LIKE $%d OR LOWER(name) LIKE $%d OR LOWER(professor) LIKE $%d)", n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Professor != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(professor) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Professor)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY course_code ASC, section ASC LIMIT %d OFFSET %d", courseColumns, base, size, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	if len(courses) == 0 {
		return courses, total, nil
	}
	meetings, err := r.meetingsFor(ctx, courseIDs(courses))
	if err != nil {
		return nil, 0, err
	}
	return attachMeetings(courses, meetings), total, nil
}

// FindByIDs returns the requested courses with meetings. Missing ids are
// silently absent from the result.
func (r *CourseRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = ANY($1) ORDER BY id ASC", courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find courses by ids: %w", err)
	}
	if len(courses) == 0 {
		return courses, nil
	}
	meetings, err := r.meetingsFor(ctx, courseIDs(courses))
	if err != nil {
		return nil, err
	}
	return attachMeetings(courses, meetings), nil
}

func (r *CourseRepository) meetingsFor(ctx context.Context, ids []string) ([]models.CourseMeeting, error) {
	const query = `SELECT id, course_id, day_of_week, start_time, end_time, position FROM course_meetings WHERE course_id = ANY($1) ORDER BY course_id ASC, position ASC`
	var meetings []models.CourseMeeting
	if err := r.db.SelectContext(ctx, &meetings, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list course meetings: %w", err)
	}
	return meetings, nil
}

func courseIDs(courses []models.Course) []string {
	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	return ids
}

func attachMeetings(courses []models.Course, meetings []models.CourseMeeting) []models.Course {
	byCourse := make(map[string][]models.CourseMeeting, len(courses))
	for _, m := range meetings {
		byCourse[m.CourseID] = append(byCourse[m.CourseID], m)
	}
	for i := range courses {
		courses[i].Meetings = byCourse[courses[i].ID]
	}
	return courses
}
