package models

import "time"

// PartialGrade is the consolidated grade of an enrollment for one partial.
type PartialGrade struct {
	ID                   int64     `db:"id" json:"id"`
	CourseGroupStudentID int64     `db:"course_group_student_id" json:"courseGroupStudentId"`
	Partial              int       `db:"partial" json:"partial"`
	Grade                float64   `db:"grade" json:"grade"`
	Date                 time.Time `db:"date" json:"date"`
	IsDeleted            bool      `db:"is_deleted" json:"-"`
}

// FinalGrade is the term-end grade of an enrollment.
type FinalGrade struct {
	ID                   int64     `db:"id" json:"id"`
	CourseGroupStudentID int64     `db:"course_group_student_id" json:"courseGroupStudentId"`
	Grade                int       `db:"grade" json:"grade"`
	GradeOrdinary        *int      `db:"grade_ordinary" json:"gradeOrdinary"`
	GradeExtraordinary   *int      `db:"grade_extraordinary" json:"gradeExtraordinary"`
	Date                 time.Time `db:"date" json:"date"`
	Type                 string    `db:"type" json:"type"`
	IsDeleted            bool      `db:"is_deleted" json:"-"`
}

// PartialCount is the number of partials in a period.
const PartialCount = 3

// ValidPartial reports whether p is between 1 and PartialCount.
func ValidPartial(p int) bool {
	return p >= 1 && p <= PartialCount
}
