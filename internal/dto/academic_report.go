package dto

// PeriodReportResponse summarises a period's active partial.
type PeriodReportResponse struct {
	PeriodID        int64             `json:"periodId"`
	Partial         int               `json:"partial"`
	GeneralAverages []SemesterAverage `json:"generalAverages"`
	Groups          []GroupReport     `json:"groups"`
	FailureRates    []FailureRate     `json:"failureRates"`
}

type SemesterAverage struct {
	Semester      int     `json:"semester"`
	AverageGrade  float64 `json:"averageGrade"`
	TotalStudents int     `json:"totalStudents"`
}

type GroupReport struct {
	GroupID       int64           `json:"groupId"`
	Key           string          `json:"key"`
	GroupName     string          `json:"groupName"`
	Semester      int             `json:"semester"`
	AverageGrade  float64         `json:"averageGrade"`
	TotalStudents int             `json:"totalStudents"`
	Subjects      []SubjectReport `json:"subjects"`
}

type SubjectReport struct {
	CourseID      int64   `json:"courseId"`
	CourseName    string  `json:"courseName"`
	AverageGrade  float64 `json:"averageGrade"`
	TotalStudents int     `json:"totalStudents"`
}

type FailureRate struct {
	CourseID       int64  `json:"courseId"`
	CourseName     string `json:"courseName"`
	Semester       int    `json:"semester"`
	FailedStudents int    `json:"failedStudents"`
	TotalStudents  int    `json:"totalStudents"`
}

// BoletasResponse is the report-card projection of a group.
type BoletasResponse struct {
	Group    BoletaGroup     `json:"group"`
	Students []BoletaStudent `json:"students"`
}

type BoletaGroup struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Semester int       `json:"semester"`
	Period   PeriodRef `json:"period"`
}

type PeriodRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BoletaStudent struct {
	ID                 int64          `json:"id"`
	FullName           string         `json:"fullName"`
	RegistrationNumber string         `json:"registrationNumber"`
	Semester           int            `json:"semester"`
	Courses            []BoletaCourse `json:"courses"`
}

type BoletaCourse struct {
	CourseID             int64                `json:"courseId"`
	CourseName           string               `json:"courseName"`
	CourseGroupStudentID int64                `json:"courseGroupStudentId"`
	PartialGrades        []BoletaPartialGrade `json:"partialGrades"`
	FinalGrade           *BoletaFinalGrade    `json:"finalGrade"`
}

type BoletaPartialGrade struct {
	Partial int     `json:"partial"`
	Grade   float64 `json:"grade"`
	Date    string  `json:"date"`
}

type BoletaFinalGrade struct {
	Grade              int    `json:"grade"`
	GradeOrdinary      *int   `json:"gradeOrdinary"`
	GradeExtraordinary *int   `json:"gradeExtraordinary"`
	Date               string `json:"date"`
	Type               string `json:"type"`
}

// GroupsDetailedQuery filters the detailed listing.
type GroupsDetailedQuery struct {
	PeriodID *int64
	Limit    int
	Offset   int
}

// GroupsDetailedResponse is the paged detailed listing.
type GroupsDetailedResponse struct {
	Groups []DetailedGroup `json:"groups"`
	Total  int             `json:"total"`
}

type DetailedGroup struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Semester int               `json:"semester"`
	Period   PeriodRef         `json:"period"`
	Students []DetailedStudent `json:"students"`
}

type DetailedStudent struct {
	ID                 int64            `json:"id"`
	FullName           string           `json:"fullName"`
	RegistrationNumber string           `json:"registrationNumber"`
	Courses            []DetailedCourse `json:"courses"`
}

type DetailedCourse struct {
	ID                 int64                `json:"id"`
	Name               string               `json:"name"`
	Semester           int                  `json:"semester"`
	PartialGrades      []DetailedGrade      `json:"partialGrades"`
	PartialEvaluations []DetailedEvaluation `json:"partialEvaluations"`
}

type DetailedGrade struct {
	ID      int64   `json:"id"`
	Partial int     `json:"partial"`
	Grade   float64 `json:"grade"`
	Date    string  `json:"date"`
}

type DetailedEvaluation struct {
	ID      int64                     `json:"id"`
	Name    *string                   `json:"name"`
	Partial int                       `json:"partial"`
	Type    string                    `json:"type"`
	Slot    int                       `json:"slot"`
	Grades  []DetailedEvaluationGrade `json:"grades"`
}

type DetailedEvaluationGrade struct {
	ID    int64   `json:"id"`
	Grade float64 `json:"grade"`
}
