package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records-api/internal/models"
)

func reportRow(group int64, semester int, course int64, student int64, grade float64) models.PeriodReportRow {
	return models.PeriodReportRow{
		GroupID:              group,
		GroupName:            "Grupo " + string(rune('A'+group-1)),
		Semester:             semester,
		CourseID:             course,
		CourseName:           "Curso",
		CourseGroupStudentID: student*100 + course,
		StudentID:            student,
		Grade:                grade,
	}
}

func TestFoldPeriodReportAveragesSecondPartial(t *testing.T) {
	rows := []models.PeriodReportRow{
		reportRow(1, 2, 10, 1, 4),
		reportRow(1, 2, 10, 2, 9),
	}

	report := FoldPeriodReport(1, 2, rows)

	assert.Equal(t, 2, report.Partial)
	require.Len(t, report.GeneralAverages, 1)
	assert.Equal(t, 2, report.GeneralAverages[0].Semester)
	assert.Equal(t, 6.5, report.GeneralAverages[0].AverageGrade)
	assert.Equal(t, 2, report.GeneralAverages[0].TotalStudents)

	require.Len(t, report.Groups, 1)
	assert.Equal(t, "grupo_a", report.Groups[0].Key)
	assert.Equal(t, 6.5, report.Groups[0].AverageGrade)
	require.Len(t, report.Groups[0].Subjects, 1)
	assert.Equal(t, 2, report.Groups[0].Subjects[0].TotalStudents)
}

func TestFoldPeriodReportCountsFailuresBelowThreshold(t *testing.T) {
	rows := []models.PeriodReportRow{
		reportRow(1, 1, 10, 1, 3),
		reportRow(1, 1, 10, 2, 4),
		reportRow(1, 1, 10, 3, 6),
		reportRow(1, 1, 10, 4, 8),
	}

	report := FoldPeriodReport(1, 1, rows)

	require.Len(t, report.FailureRates, 1)
	assert.Equal(t, 2, report.FailureRates[0].FailedStudents)
	assert.Equal(t, 4, report.FailureRates[0].TotalStudents)
	assert.Equal(t, 5.25, report.GeneralAverages[0].AverageGrade)
}

func TestFoldPeriodReportCountsDistinctStudents(t *testing.T) {
	rows := []models.PeriodReportRow{
		reportRow(1, 1, 10, 1, 7),
		reportRow(1, 1, 11, 1, 9),
		reportRow(2, 3, 10, 2, 5),
	}

	report := FoldPeriodReport(1, 1, rows)

	require.Len(t, report.GeneralAverages, 2)
	assert.Equal(t, 1, report.GeneralAverages[0].Semester)
	assert.Equal(t, 1, report.GeneralAverages[0].TotalStudents)
	assert.Equal(t, 8.0, report.GeneralAverages[0].AverageGrade)

	require.Len(t, report.Groups, 2)
	assert.Equal(t, int64(1), report.Groups[0].GroupID)
	assert.Equal(t, 1, report.Groups[0].TotalStudents)
	assert.Len(t, report.Groups[0].Subjects, 2)

	require.Len(t, report.FailureRates, 3)
	assert.Equal(t, 0, report.FailureRates[0].FailedStudents)
	assert.Equal(t, int64(11), report.FailureRates[1].CourseID)
	assert.Equal(t, 3, report.FailureRates[2].Semester)
	assert.Equal(t, 0, report.FailureRates[2].FailedStudents)
}

func TestFoldPeriodReportEmpty(t *testing.T) {
	report := FoldPeriodReport(9, 3, nil)
	assert.NotNil(t, report.GeneralAverages)
	assert.NotNil(t, report.Groups)
	assert.NotNil(t, report.FailureRates)
}

func TestGroupKey(t *testing.T) {
	assert.Equal(t, "1_a", GroupKey(" 1-A "))
	assert.Equal(t, "tercero_b_matutino", GroupKey("Tercero B (Matutino)"))
}

func ptr[T any](v T) *T { return &v }

func day(d int) *time.Time {
	t := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func boletaRow(student, cgs int64, course string) models.BoletaGradeRow {
	return models.BoletaGradeRow{
		StudentID:            student,
		FullName:             "Alumno",
		RegistrationNumber:   "R" + course,
		StudentSemester:      2,
		CourseID:             cgs,
		CourseName:           course,
		CourseGroupStudentID: cgs,
	}
}

func TestFoldBoletasKeepsLatestGrades(t *testing.T) {
	header := models.BoletaHeaderRow{GroupID: 3, GroupName: "2B", Semester: 2, PeriodID: 1, PeriodName: "2024A"}

	older := boletaRow(1, 10, "Matematicas")
	older.Partial, older.PartialGrade, older.Date = ptr(1), ptr(6.0), day(1)
	newer := boletaRow(1, 10, "Matematicas")
	newer.Partial, newer.PartialGrade, newer.Date = ptr(1), ptr(8.0), day(5)
	tie := boletaRow(1, 10, "Matematicas")
	tie.Partial, tie.PartialGrade, tie.Date = ptr(1), ptr(2.0), day(5)
	second := boletaRow(1, 10, "Matematicas")
	second.Partial, second.PartialGrade, second.Date = ptr(2), ptr(9.5), day(2)
	other := boletaRow(1, 11, "Historia")

	finalOld := boletaRow(1, 10, "Matematicas")
	finalOld.FinalGrade, finalOld.FinalType, finalOld.Date = ptr(6), ptr("ordinario"), day(10)
	finalNew := boletaRow(1, 10, "Matematicas")
	finalNew.FinalGrade, finalNew.GradeExtraordinary, finalNew.FinalType, finalNew.Date = ptr(8), ptr(8), ptr("extraordinario"), day(20)

	out := FoldBoletas(header, []models.BoletaGradeRow{second, older, newer, tie, other}, []models.BoletaGradeRow{finalNew, finalOld})

	assert.Equal(t, "2024A", out.Group.Period.Name)
	require.Len(t, out.Students, 1)
	courses := out.Students[0].Courses
	require.Len(t, courses, 2)

	math := courses[0]
	assert.Equal(t, "Matematicas", math.CourseName)
	require.Len(t, math.PartialGrades, 2)
	assert.Equal(t, 1, math.PartialGrades[0].Partial)
	assert.Equal(t, 8.0, math.PartialGrades[0].Grade)
	assert.Equal(t, "2024-03-05", math.PartialGrades[0].Date)
	assert.Equal(t, 9.5, math.PartialGrades[1].Grade)
	require.NotNil(t, math.FinalGrade)
	assert.Equal(t, 8, math.FinalGrade.Grade)
	assert.Equal(t, "extraordinario", math.FinalGrade.Type)

	history := courses[1]
	assert.Empty(t, history.PartialGrades)
	assert.NotNil(t, history.PartialGrades)
	assert.Nil(t, history.FinalGrade)
}

func TestFoldBoletasFinalesLeavesPartialsEmpty(t *testing.T) {
	final := boletaRow(4, 20, "Quimica")
	final.FinalGrade, final.Date = ptr(10), day(3)

	out := FoldBoletas(models.BoletaHeaderRow{GroupID: 1}, nil, []models.BoletaGradeRow{final})

	require.Len(t, out.Students, 1)
	course := out.Students[0].Courses[0]
	assert.Empty(t, course.PartialGrades)
	require.NotNil(t, course.FinalGrade)
	assert.Equal(t, 10, course.FinalGrade.Grade)
}

func TestFoldGroupsDetailed(t *testing.T) {
	enrollment := func(group, student, course, cgs int64) models.DetailedEnrollmentRow {
		return models.DetailedEnrollmentRow{
			GroupID:              group,
			GroupName:            "G",
			GroupSemester:        4,
			PeriodID:             1,
			PeriodName:           "2024A",
			StudentID:            student,
			FullName:             "S",
			CourseID:             course,
			CourseName:           "C",
			CourseGroupID:        course,
			CourseGroupStudentID: cgs,
		}
	}
	enrollments := []models.DetailedEnrollmentRow{
		enrollment(1, 1, 10, 100),
		enrollment(1, 1, 11, 101),
		enrollment(1, 2, 10, 102),
		enrollment(2, 3, 12, 103),
	}
	partials := []models.PartialGrade{
		{ID: 1, CourseGroupStudentID: 100, Partial: 1, Grade: 6, Date: *day(1)},
		{ID: 2, CourseGroupStudentID: 100, Partial: 1, Grade: 9, Date: *day(4)},
		{ID: 3, CourseGroupStudentID: 999, Partial: 1, Grade: 9, Date: *day(4)},
	}
	evaluations := []models.DetailedEvaluationRow{
		{CourseGroupStudentID: 100, EvaluationID: 50, Type: "examen", Partial: 1, GradeID: ptr(int64(7)), Grade: ptr(8.0)},
		{CourseGroupStudentID: 102, EvaluationID: 50, Type: "examen", Partial: 1},
	}

	out := FoldGroupsDetailed(enrollments, partials, evaluations, 1, 0)

	assert.Equal(t, 2, out.Total)
	require.Len(t, out.Groups, 1)
	group := out.Groups[0]
	require.Len(t, group.Students, 2)
	first := group.Students[0]
	require.Len(t, first.Courses, 2)
	assert.Equal(t, 4, first.Courses[0].Semester)
	require.Len(t, first.Courses[0].PartialGrades, 1)
	assert.Equal(t, int64(2), first.Courses[0].PartialGrades[0].ID)
	require.Len(t, first.Courses[0].PartialEvaluations, 1)
	assert.Equal(t, 8.0, first.Courses[0].PartialEvaluations[0].Grades[0].Grade)

	ungraded := group.Students[1].Courses[0].PartialEvaluations
	require.Len(t, ungraded, 1)
	assert.Empty(t, ungraded[0].Grades)

	page := FoldGroupsDetailed(enrollments, partials, evaluations, 10, 5)
	assert.Equal(t, 2, page.Total)
	assert.Empty(t, page.Groups)
}

func TestPageBounds(t *testing.T) {
	cases := []struct {
		total, limit, offset int
		start, end           int
	}{
		{10, 3, 0, 0, 3},
		{10, 3, 9, 9, 10},
		{10, 0, 4, 4, 10},
		{10, 5, 20, 10, 10},
		{10, 5, -2, 0, 5},
	}
	for _, tc := range cases {
		start, end := pageBounds(tc.total, tc.limit, tc.offset)
		assert.Equal(t, tc.start, start)
		assert.Equal(t, tc.end, end)
	}
}

func TestFoldPeriodReportCountsLatestGradePerEnrollment(t *testing.T) {
	older := reportRow(1, 1, 10, 100, 3)
	older.Date = day(1)
	latest := reportRow(1, 1, 10, 100, 9)
	latest.Date = day(5)
	other := reportRow(1, 1, 10, 101, 9)
	other.Date = day(2)
	tied := reportRow(1, 1, 10, 101, 2)
	tied.Date = day(2)

	report := FoldPeriodReport(1, 1, []models.PeriodReportRow{older, latest, other, tied})

	require.Len(t, report.GeneralAverages, 1)
	assert.Equal(t, 9.0, report.GeneralAverages[0].AverageGrade)
	assert.Equal(t, 2, report.GeneralAverages[0].TotalStudents)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, 9.0, report.Groups[0].AverageGrade)
	require.Len(t, report.FailureRates, 1)
	assert.Equal(t, 0, report.FailureRates[0].FailedStudents)
	assert.Equal(t, 2, report.FailureRates[0].TotalStudents)
}
