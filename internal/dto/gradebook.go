package dto

import "github.com/noah-isme/academic-records-api/internal/models"

// EvaluationsDataResponse is the flattened gradebook of one course group.
type EvaluationsDataResponse struct {
	CourseGroup             CourseGroupSummary        `json:"courseGroup"`
	Students                []GradebookStudent        `json:"students"`
	PartialGrades           []GradebookPartialGrade   `json:"partialGrades"`
	Attendances             []GradebookAttendance     `json:"attendances"`
	PartialEvaluations      []GradebookEvaluation     `json:"partialEvaluations"`
	GradingSchemes          []GradebookGradingScheme  `json:"gradingSchemes"`
	PartialEvaluationGrades []GradebookEvaluationMark `json:"partialEvaluationGrades"`
	StudentGrades           []StudentGrades           `json:"studentGrades"`
	StudentAttendances      []StudentAttendances      `json:"studentAttendances"`
}

// CourseGroupSummary nests course and group identity.
type CourseGroupSummary struct {
	ID       int64        `json:"id"`
	Schedule string       `json:"schedule"`
	Course   CourseRef    `json:"course"`
	Group    GroupSummary `json:"group"`
}

type CourseRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type GroupSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Semester int    `json:"semester"`
}

// GradebookStudent is an enrolled student with the enrollment id inlined.
type GradebookStudent struct {
	ID                   int64  `json:"id"`
	FullName             string `json:"fullName"`
	RegistrationNumber   string `json:"registrationNumber"`
	Semester             int    `json:"semester"`
	CourseGroupStudentID int64  `json:"courseGroupStudentId"`
}

type GradebookPartialGrade struct {
	ID                   int64   `json:"id"`
	CourseGroupStudentID int64   `json:"courseGroupStudentId"`
	Partial              int     `json:"partial"`
	Grade                float64 `json:"grade"`
	Date                 string  `json:"date"`
}

type GradebookAttendance struct {
	ID                   int64             `json:"id"`
	CourseGroupStudentID int64             `json:"courseGroupStudentId"`
	Partial              int               `json:"partial"`
	Date                 string            `json:"date"`
	Attend               models.AttendCode `json:"attend"`
}

type GradebookEvaluation struct {
	ID            int64   `json:"id"`
	Name          *string `json:"name"`
	Type          string  `json:"type"`
	Slot          int     `json:"slot"`
	Partial       int     `json:"partial"`
	CourseGroupID int64   `json:"courseGroupId"`
}

type GradebookGradingScheme struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	Percentage int    `json:"percentage"`
}

// GradebookEvaluationMark is an evaluation grade with its evaluation inlined.
type GradebookEvaluationMark struct {
	ID                   int64   `json:"id"`
	Grade                float64 `json:"grade"`
	CourseGroupStudentID int64   `json:"courseGroupStudentId"`
	PartialEvaluationID  int64   `json:"partialEvaluationId"`
	EvaluationName       *string `json:"evaluationName"`
	EvaluationType       string  `json:"evaluationType"`
	EvaluationSlot       int     `json:"evaluationSlot"`
	EvaluationPartial    int     `json:"evaluationPartial"`
}

// StudentGrades buckets evaluation grades by type for one enrollment and partial.
// Actividades and Evidencias are indexed by slot-1 and carry nulls for gaps.
type StudentGrades struct {
	CourseGroupStudentID int64      `json:"courseGroupStudentId"`
	Partial              int        `json:"partial"`
	Actividades          []*float64 `json:"actividades"`
	Evidencias           []*float64 `json:"evidencias"`
	Producto             *float64   `json:"producto"`
	Examen               *float64   `json:"examen"`
}

type StudentAttendances struct {
	CourseGroupStudentID int64                 `json:"courseGroupStudentId"`
	Partial              int                   `json:"partial"`
	Attendances          []GradebookAttendance `json:"attendances"`
}

// CompleteDataResponse is the unshaped snapshot of a course group.
type CompleteDataResponse struct {
	Students           []GradebookStudent      `json:"students"`
	PartialGrades      []GradebookPartialGrade `json:"partialGrades"`
	Attendances        []GradebookAttendance   `json:"attendances"`
	FinalGrades        []GradebookFinalGrade   `json:"finalGrades"`
	PartialEvaluations []GradebookEvaluation   `json:"partialEvaluations"`
}

type GradebookFinalGrade struct {
	ID                   int64  `json:"id"`
	CourseGroupStudentID int64  `json:"courseGroupStudentId"`
	Grade                int    `json:"grade"`
	GradeOrdinary        *int   `json:"gradeOrdinary"`
	GradeExtraordinary   *int   `json:"gradeExtraordinary"`
	Date                 string `json:"date"`
	Type                 string `json:"type"`
}

// FinalDataResponse carries the per-student final snapshot.
type FinalDataResponse struct {
	Students []FinalDataStudent `json:"students"`
}

type FinalDataStudent struct {
	ID                   int64                   `json:"id"`
	FullName             string                  `json:"fullName"`
	RegistrationNumber   string                  `json:"registrationNumber"`
	Semester             int                     `json:"semester"`
	CourseGroupStudentID int64                   `json:"courseGroupStudentId"`
	Attendances          []GradebookAttendance   `json:"attendances"`
	PartialGrades        []GradebookPartialGrade `json:"partialGrades"`
	FinalGrade           *GradebookFinalGrade    `json:"finalGrade"`
}
