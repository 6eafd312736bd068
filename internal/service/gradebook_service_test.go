package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type gradebookRepoStub struct {
	students    []models.EnrolledStudentRow
	partials    []models.PartialGrade
	attendances []models.Attendance
	finals      []models.FinalGrade
	evaluations []models.PartialEvaluation
	schemes     []models.GradingScheme
	marks       []models.EvaluationGradeRow
	finalsErr   error
}

func (r *gradebookRepoStub) Students(ctx context.Context, courseGroupID int64) ([]models.EnrolledStudentRow, error) {
	return r.students, nil
}

func (r *gradebookRepoStub) PartialGrades(ctx context.Context, courseGroupID int64) ([]models.PartialGrade, error) {
	return r.partials, nil
}

func (r *gradebookRepoStub) Attendances(ctx context.Context, courseGroupID int64) ([]models.Attendance, error) {
	return r.attendances, nil
}

func (r *gradebookRepoStub) FinalGrades(ctx context.Context, courseGroupID int64) ([]models.FinalGrade, error) {
	return r.finals, r.finalsErr
}

func (r *gradebookRepoStub) Evaluations(ctx context.Context, courseGroupID int64) ([]models.PartialEvaluation, error) {
	return r.evaluations, nil
}

func (r *gradebookRepoStub) GradingSchemes(ctx context.Context, courseGroupID int64) ([]models.GradingScheme, error) {
	return r.schemes, nil
}

func (r *gradebookRepoStub) EvaluationGrades(ctx context.Context, courseGroupID int64) ([]models.EvaluationGradeRow, error) {
	return r.marks, nil
}

type courseGroupDetailStub struct {
	details map[int64]*models.CourseGroupDetail
}

func (s *courseGroupDetailStub) FindByID(ctx context.Context, id int64) (*models.CourseGroupDetail, error) {
	if d, ok := s.details[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func gradebookFixture() (*gradebookRepoStub, *courseGroupDetailStub, *lookupStub) {
	repo := &gradebookRepoStub{
		students: []models.EnrolledStudentRow{
			{StudentID: 5, FullName: "Ana", RegistrationNumber: "A1", Semester: 2, CourseGroupStudentID: 100},
		},
		partials: []models.PartialGrade{
			{ID: 1, CourseGroupStudentID: 100, Partial: 1, Grade: 8, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
		attendances: []models.Attendance{
			{ID: 1, CourseGroupStudentID: 100, Partial: 1, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Attend: 1},
		},
		evaluations: []models.PartialEvaluation{{ID: 50, CourseGroupID: 10, Type: "actividades", Slot: 1, Partial: 1}},
		schemes: []models.GradingScheme{
			{ID: 1, CourseGroupID: 10, Type: "Actividades", Percentage: 40},
			{ID: 2, CourseGroupID: 10, Type: "EXAMEN", Percentage: 60},
		},
		marks: []models.EvaluationGradeRow{
			{ID: 9, Grade: 7.5, CourseGroupStudentID: 100, PartialEvaluationID: 50, EvaluationType: "actividades", EvaluationSlot: 1, EvaluationPartial: 1},
		},
	}
	details := &courseGroupDetailStub{details: map[int64]*models.CourseGroupDetail{
		10: {
			CourseGroup:   models.CourseGroup{ID: 10, CourseID: 3, GroupID: 1, UserID: 7, Schedule: "Lunes 8:00"},
			CourseName:    "Matematicas",
			GroupName:     "2A",
			GroupSemester: 2,
		},
	}}
	lookup := newLookupStub().withCourseGroup(10, 7, 1)
	lookup.groups[1] = &models.Group{ID: 1, Name: "2A", Semester: 2, PeriodID: 1}
	return repo, details, lookup
}

func TestGetEvaluationsData(t *testing.T) {
	repo, details, lookup := gradebookFixture()
	svc := NewGradebookService(repo, details, lookup, nil, zap.NewNop())

	out, err := svc.GetEvaluationsData(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, "Matematicas", out.CourseGroup.Course.Name)
	assert.Equal(t, 2, out.CourseGroup.Group.Semester)
	assert.Equal(t, "Lunes 8:00", out.CourseGroup.Schedule)
	require.Len(t, out.Students, 1)
	assert.Equal(t, int64(100), out.Students[0].CourseGroupStudentID)
	assert.Equal(t, "2024-03-01", out.PartialGrades[0].Date)
	require.Len(t, out.GradingSchemes, 2)
	assert.Equal(t, "Actividades", out.GradingSchemes[0].Type)
	assert.Equal(t, "EXAMEN", out.GradingSchemes[1].Type)
	require.Len(t, out.StudentGrades, 1)
	assert.Equal(t, 7.5, *out.StudentGrades[0].Actividades[0])
	require.Len(t, out.StudentAttendances, 1)
	assert.Len(t, out.PartialEvaluationGrades, 1)
}

func TestGetEvaluationsDataUnknownCourseGroup(t *testing.T) {
	repo, details, lookup := gradebookFixture()
	svc := NewGradebookService(repo, details, lookup, nil, zap.NewNop())

	_, err := svc.GetEvaluationsData(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestGetEvaluationsDataEmptyCollections(t *testing.T) {
	_, details, lookup := gradebookFixture()
	svc := NewGradebookService(&gradebookRepoStub{}, details, lookup, nil, zap.NewNop())

	out, err := svc.GetEvaluationsData(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, out.Students)
	assert.NotNil(t, out.GradingSchemes)
	assert.NotNil(t, out.StudentGrades)
	assert.NotNil(t, out.StudentAttendances)
}

func TestGetCompleteData(t *testing.T) {
	repo, details, lookup := gradebookFixture()
	repo.finals = []models.FinalGrade{{ID: 3, CourseGroupStudentID: 100, Grade: 9, Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Type: "ordinario"}}
	svc := NewGradebookService(repo, details, lookup, NewMetricsService(), zap.NewNop())

	out, err := svc.GetCompleteData(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, out.Students, 1)
	assert.Len(t, out.PartialGrades, 1)
	assert.Len(t, out.Attendances, 1)
	require.Len(t, out.FinalGrades, 1)
	assert.Equal(t, "2024-06-01", out.FinalGrades[0].Date)
	assert.Len(t, out.PartialEvaluations, 1)
}

func TestGetCompleteDataPropagatesQueryFailure(t *testing.T) {
	repo, details, lookup := gradebookFixture()
	repo.finalsErr = errors.New("connection reset")
	svc := NewGradebookService(repo, details, lookup, nil, zap.NewNop())

	_, err := svc.GetCompleteData(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrorCode(t, err))
}

func TestGetFinalDataUnknownCourseGroup(t *testing.T) {
	repo, details, lookup := gradebookFixture()
	svc := NewGradebookService(repo, details, lookup, nil, zap.NewNop())

	_, err := svc.GetFinalData(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestGetFinalDataNestsLatestGrades(t *testing.T) {
	repo, details, lookup := gradebookFixture()
	repo.finals = []models.FinalGrade{
		{ID: 3, CourseGroupStudentID: 100, Grade: 6, Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 4, CourseGroupStudentID: 100, Grade: 9, Date: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	svc := NewGradebookService(repo, details, lookup, nil, zap.NewNop())

	out, err := svc.GetFinalData(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, out.Students, 1)
	require.NotNil(t, out.Students[0].FinalGrade)
	assert.Equal(t, 9, out.Students[0].FinalGrade.Grade)
	assert.Len(t, out.Students[0].PartialGrades, 1)
}
