package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SavedTimetable is a candidate a student chose to keep.
type SavedTimetable struct {
	ID           string         `db:"id" json:"id"`
	StudentID    string         `db:"student_id" json:"student_id"`
	Name         string         `db:"name" json:"name"`
	TotalCredits int            `db:"total_credits" json:"total_credits"`
	CourseCount  int            `db:"course_count" json:"course_count"`
	Meta         types.JSONText `db:"meta" json:"meta"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`

	CourseIDs []string `db:"-" json:"course_ids,omitempty"`
}

// SavedTimetableCourse links a saved timetable to a course in selection order.
type SavedTimetableCourse struct {
	TimetableID string `db:"timetable_id" json:"timetable_id"`
	CourseID    string `db:"course_id" json:"course_id"`
	Position    int    `db:"position" json:"position"`
}
