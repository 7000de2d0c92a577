package models

import "time"

// Course is one offered section in the catalog.
type Course struct {
	ID         string    `db:"id" json:"id"`
	CourseCode string    `db:"course_code" json:"course_code"`
	Section    string    `db:"section" json:"section"`
	Name       string    `db:"name" json:"name"`
	Professor  string    `db:"professor" json:"professor"`
	Room       string    `db:"room" json:"room"`
	Credits    int       `db:"credits" json:"credits"`
	Category   string    `db:"category" json:"category"`
	Department string    `db:"department" json:"department"`
	Grade      int       `db:"grade" json:"grade"`
	Capacity   int       `db:"capacity" json:"capacity"`
	Enrolled   int       `db:"enrolled" json:"enrolled"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`

	Meetings []CourseMeeting `db:"-" json:"meetings,omitempty"`
}

// CourseMeeting is one weekly meeting of a course. Times are "HH:MM".
type CourseMeeting struct {
	ID        int64  `db:"id" json:"id"`
	CourseID  string `db:"course_id" json:"course_id"`
	DayOfWeek string `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	Position  int    `db:"position" json:"position"`
}

// CourseFilter captures supported filters for listing courses.
type CourseFilter struct {
	Department string
	Categories []string
	Search     string
	Professor  string
	Page       int
	PageSize   int
}
