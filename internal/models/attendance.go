package models

import "time"

// AttendCode is the integer attendance marker stored per day. Its meaning is
// owned by the client; the backend persists and echoes it unchanged.
type AttendCode int

// Attendance represents a course group attendance row for one enrollment and day.
type Attendance struct {
	ID                   int64      `db:"id" json:"id"`
	CourseGroupStudentID int64      `db:"course_group_student_id" json:"courseGroupStudentId"`
	Partial              int        `db:"partial" json:"partial"`
	Date                 time.Time  `db:"date" json:"date"`
	Attend               AttendCode `db:"attend" json:"attend"`
	IsDeleted            bool       `db:"is_deleted" json:"-"`
}

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"
