package models

import "strings"

// Evaluation types understood by the gradebook fold. Matching is case-insensitive.
const (
	EvaluationTypeActividades = "actividades"
	EvaluationTypeEvidencias  = "evidencias"
	EvaluationTypeProducto    = "producto"
	EvaluationTypeExamen      = "examen"
)

// MaxEvaluationSlot is the highest actividades/evidencias slot a gradebook row
// can carry. Request validation uses the same bound.
const MaxEvaluationSlot = 50

// NormalizeEvaluationType lower-cases and trims an evaluation type.
func NormalizeEvaluationType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// PartialEvaluation is a graded activity of a course group within a partial.
type PartialEvaluation struct {
	ID            int64   `db:"id" json:"id"`
	CourseGroupID int64   `db:"course_group_id" json:"courseGroupId"`
	Name          *string `db:"name" json:"name"`
	Type          string  `db:"type" json:"type"`
	Slot          int     `db:"slot" json:"slot"`
	Partial       int     `db:"partial" json:"partial"`
	IsDeleted     bool    `db:"is_deleted" json:"-"`
}

// PartialEvaluationGrade stores the grade of one enrollment on one evaluation.
type PartialEvaluationGrade struct {
	ID                   int64   `db:"id" json:"id"`
	PartialEvaluationID  int64   `db:"partial_evaluation_id" json:"partialEvaluationId"`
	CourseGroupStudentID int64   `db:"course_group_student_id" json:"courseGroupStudentId"`
	Grade                float64 `db:"grade" json:"grade"`
	IsDeleted            bool    `db:"is_deleted" json:"-"`
}

// GradingScheme is the weight assigned to an evaluation type in a course group.
type GradingScheme struct {
	ID            int64  `db:"id" json:"id"`
	CourseGroupID int64  `db:"course_group_id" json:"courseGroupId"`
	Type          string `db:"type" json:"type"`
	Percentage    int    `db:"percentage" json:"percentage"`
	IsDeleted     bool   `db:"is_deleted" json:"-"`
}
