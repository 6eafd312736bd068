package models

import "time"

// EnrolledStudentRow is a live student joined with its enrollment id.
type EnrolledStudentRow struct {
	StudentID            int64  `db:"student_id"`
	FullName             string `db:"full_name"`
	RegistrationNumber   string `db:"registration_number"`
	Semester             int    `db:"semester"`
	CourseGroupStudentID int64  `db:"course_group_student_id"`
}

// EvaluationGradeRow is an evaluation grade with its evaluation inlined.
type EvaluationGradeRow struct {
	ID                   int64   `db:"id"`
	Grade                float64 `db:"grade"`
	CourseGroupStudentID int64   `db:"course_group_student_id"`
	PartialEvaluationID  int64   `db:"partial_evaluation_id"`
	EvaluationName       *string `db:"evaluation_name"`
	EvaluationType       string  `db:"evaluation_type"`
	EvaluationSlot       int     `db:"evaluation_slot"`
	EvaluationPartial    int     `db:"evaluation_partial"`
}

// PeriodReportRow is one partial grade in a period with its group and course.
type PeriodReportRow struct {
	GroupID              int64      `db:"group_id"`
	GroupName            string     `db:"group_name"`
	Semester             int        `db:"semester"`
	CourseID             int64      `db:"course_id"`
	CourseName           string     `db:"course_name"`
	CourseGroupStudentID int64      `db:"course_group_student_id"`
	StudentID            int64      `db:"student_id"`
	PartialGradeID       int64      `db:"partial_grade_id"`
	Grade                float64    `db:"grade"`
	Date                 *time.Time `db:"date"`
}

// BoletaHeaderRow identifies the group a boleta belongs to.
type BoletaHeaderRow struct {
	GroupID    int64  `db:"group_id"`
	GroupName  string `db:"group_name"`
	Semester   int    `db:"semester"`
	PeriodID   int64  `db:"period_id"`
	PeriodName string `db:"period_name"`
}

// BoletaGradeRow is one grade of a student in a course of a group. Partial
// rows carry Partial and PartialGrade; final rows carry the final columns.
type BoletaGradeRow struct {
	StudentID            int64      `db:"student_id"`
	FullName             string     `db:"full_name"`
	RegistrationNumber   string     `db:"registration_number"`
	StudentSemester      int        `db:"student_semester"`
	CourseID             int64      `db:"course_id"`
	CourseName           string     `db:"course_name"`
	CourseGroupStudentID int64      `db:"course_group_student_id"`
	Partial              *int       `db:"partial"`
	PartialGrade         *float64   `db:"partial_grade"`
	FinalGrade           *int       `db:"final_grade"`
	GradeOrdinary        *int       `db:"grade_ordinary"`
	GradeExtraordinary   *int       `db:"grade_extraordinary"`
	FinalType            *string    `db:"final_type"`
	Date                 *time.Time `db:"date"`
}

// DetailedEnrollmentRow is one enrollment in the grouped detailed listing.
type DetailedEnrollmentRow struct {
	GroupID              int64  `db:"group_id"`
	GroupName            string `db:"group_name"`
	GroupSemester        int    `db:"group_semester"`
	PeriodID             int64  `db:"period_id"`
	PeriodName           string `db:"period_name"`
	StudentID            int64  `db:"student_id"`
	FullName             string `db:"full_name"`
	RegistrationNumber   string `db:"registration_number"`
	CourseID             int64  `db:"course_id"`
	CourseName           string `db:"course_name"`
	CourseGroupID        int64  `db:"course_group_id"`
	CourseGroupStudentID int64  `db:"course_group_student_id"`
}

// DetailedEvaluationRow is an evaluation of a course group with the grade an
// enrollment obtained on it, if any.
type DetailedEvaluationRow struct {
	CourseGroupStudentID int64    `db:"course_group_student_id"`
	EvaluationID         int64    `db:"evaluation_id"`
	Name                 *string  `db:"name"`
	Partial              int      `db:"partial"`
	Type                 string   `db:"type"`
	Slot                 int      `db:"slot"`
	GradeID              *int64   `db:"grade_id"`
	Grade                *float64 `db:"grade"`
}
