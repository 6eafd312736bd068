package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type academicReportRepoStub struct {
	rows        []models.PeriodReportRow
	rowCalls    int
	lastPartial int
	header      *models.BoletaHeaderRow
	partials    []models.BoletaGradeRow
	finals      []models.BoletaGradeRow
	enrollments []models.DetailedEnrollmentRow
	lastPeriod  *int64
}

func (r *academicReportRepoStub) PeriodReportRows(ctx context.Context, periodID int64, partial int) ([]models.PeriodReportRow, error) {
	r.rowCalls++
	r.lastPartial = partial
	return r.rows, nil
}

func (r *academicReportRepoStub) BoletaHeader(ctx context.Context, groupID int64) (*models.BoletaHeaderRow, error) {
	if r.header == nil {
		return nil, sql.ErrNoRows
	}
	return r.header, nil
}

func (r *academicReportRepoStub) BoletaPartialRows(ctx context.Context, groupID int64) ([]models.BoletaGradeRow, error) {
	return r.partials, nil
}

func (r *academicReportRepoStub) BoletaFinalRows(ctx context.Context, groupID int64) ([]models.BoletaGradeRow, error) {
	return r.finals, nil
}

func (r *academicReportRepoStub) DetailedEnrollments(ctx context.Context, periodID *int64) ([]models.DetailedEnrollmentRow, error) {
	r.lastPeriod = periodID
	return r.enrollments, nil
}

func (r *academicReportRepoStub) DetailedPartialGrades(ctx context.Context, periodID *int64) ([]models.PartialGrade, error) {
	return nil, nil
}

func (r *academicReportRepoStub) DetailedEvaluations(ctx context.Context, periodID *int64) ([]models.DetailedEvaluationRow, error) {
	return nil, nil
}

// memoryCache round-trips values through JSON like the Redis repository does.
type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	return nil
}

func reportLookup(period *models.Period) *lookupStub {
	lookup := newLookupStub()
	lookup.periods[period.ID] = period
	return lookup
}

func TestGenerateReportsUsesActivePartial(t *testing.T) {
	lookup := reportLookup(&models.Period{ID: 1, SecondPartialActive: true})
	repo := &academicReportRepoStub{rows: []models.PeriodReportRow{
		reportRow(1, 2, 10, 1, 4),
		reportRow(1, 2, 10, 2, 9),
	}}
	svc := NewAcademicReportService(repo, lookup, DefaultPolicy(), nil, nil, zap.NewNop())

	report, err := svc.GenerateReports(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lastPartial)
	assert.Equal(t, []dto.SemesterAverage{{Semester: 2, AverageGrade: 6.5, TotalStudents: 2}}, report.GeneralAverages)
}

func TestGenerateReportsWithoutSingleActivePartial(t *testing.T) {
	cases := []struct {
		name   string
		period *models.Period
	}{
		{"none open", &models.Period{ID: 1}},
		{"two open", &models.Period{ID: 1, FirstPartialActive: true, ThirdPartialActive: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &academicReportRepoStub{}
			svc := NewAcademicReportService(repo, reportLookup(tc.period), DefaultPolicy(), nil, nil, zap.NewNop())

			_, err := svc.GenerateReports(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrNoActivePartial.Code, appErrorCode(t, err))
			assert.Zero(t, repo.rowCalls)
		})
	}
}

func TestGenerateReportsLegacyErrorIsUntyped(t *testing.T) {
	policy := DefaultPolicy()
	policy.LegacyReportError = true
	svc := NewAcademicReportService(&academicReportRepoStub{}, reportLookup(&models.Period{ID: 4}), policy, nil, nil, zap.NewNop())

	_, err := svc.GenerateReports(context.Background(), 4)
	require.Error(t, err)
	var appErr *appErrors.Error
	assert.False(t, errors.As(err, &appErr))
	assert.Contains(t, err.Error(), "no active partial")
}

func TestGenerateReportsUnknownPeriod(t *testing.T) {
	svc := NewAcademicReportService(&academicReportRepoStub{}, newLookupStub(), DefaultPolicy(), nil, nil, zap.NewNop())

	_, err := svc.GenerateReports(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestGenerateReportsServesCacheForSamePartial(t *testing.T) {
	period := &models.Period{ID: 1, FirstPartialActive: true}
	lookup := reportLookup(period)
	repo := &academicReportRepoStub{rows: []models.PeriodReportRow{reportRow(1, 1, 10, 1, 7)}}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), true)
	svc := NewAcademicReportService(repo, lookup, DefaultPolicy(), cache, nil, zap.NewNop())

	first, err := svc.GenerateReports(context.Background(), 1)
	require.NoError(t, err)
	second, err := svc.GenerateReports(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.rowCalls)
	assert.Equal(t, first.GeneralAverages, second.GeneralAverages)

	period.FirstPartialActive = false
	period.SecondPartialActive = true
	third, err := svc.GenerateReports(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.rowCalls)
	assert.Equal(t, 2, third.Partial)
}

func TestFindBoletasUnknownGroup(t *testing.T) {
	svc := NewAcademicReportService(&academicReportRepoStub{}, newLookupStub(), DefaultPolicy(), nil, nil, zap.NewNop())

	_, err := svc.FindBoletas(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))

	_, err = svc.FindBoletasFinales(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestFindBoletasFinalesIgnoresPartialRows(t *testing.T) {
	row := boletaRow(1, 10, "Fisica")
	withPartial := row
	withPartial.Partial, withPartial.PartialGrade, withPartial.Date = ptr(1), ptr(7.0), day(1)
	withFinal := row
	withFinal.FinalGrade, withFinal.Date = ptr(9), day(9)
	repo := &academicReportRepoStub{
		header:   &models.BoletaHeaderRow{GroupID: 2, GroupName: "3C", Semester: 3, PeriodID: 1, PeriodName: "2024A"},
		partials: []models.BoletaGradeRow{withPartial},
		finals:   []models.BoletaGradeRow{withFinal},
	}
	svc := NewAcademicReportService(repo, newLookupStub(), DefaultPolicy(), nil, nil, zap.NewNop())

	full, err := svc.FindBoletas(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, full.Students[0].Courses[0].PartialGrades, 1)

	finals, err := svc.FindBoletasFinales(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "3C", finals.Group.Name)
	course := finals.Students[0].Courses[0]
	assert.Empty(t, course.PartialGrades)
	require.NotNil(t, course.FinalGrade)
	assert.Equal(t, 9, course.FinalGrade.Grade)
}

func TestFindGroupsWithStudentsDetailedPassesPeriodFilter(t *testing.T) {
	repo := &academicReportRepoStub{enrollments: []models.DetailedEnrollmentRow{
		{GroupID: 1, StudentID: 1, CourseGroupStudentID: 100},
		{GroupID: 2, StudentID: 2, CourseGroupStudentID: 101},
	}}
	svc := NewAcademicReportService(repo, newLookupStub(), DefaultPolicy(), nil, nil, zap.NewNop())
	period := int64(3)

	out, err := svc.FindGroupsWithStudentsDetailed(context.Background(), dto.GroupsDetailedQuery{PeriodID: &period, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.NotNil(t, repo.lastPeriod)
	assert.Equal(t, int64(3), *repo.lastPeriod)
	assert.Equal(t, 2, out.Total)
	require.Len(t, out.Groups, 1)
	assert.Equal(t, int64(2), out.Groups[0].ID)
}
