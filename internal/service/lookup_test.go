package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

// lookupStub is an in-memory RecordLookup shared by the service tests.
type lookupStub struct {
	periods       map[int64]*models.Period
	groups        map[int64]*models.Group
	students      map[int64]*models.Student
	courses       map[int64]*models.Course
	users         map[int64]*models.User
	courseGroups  map[int64]*models.CourseGroup
	enrollments   map[int64]*models.CourseGroupStudent
	evaluations   map[int64]*models.PartialEvaluation
	periodOfGroup map[int64]*models.Period
}

func newLookupStub() *lookupStub {
	return &lookupStub{
		periods:       map[int64]*models.Period{},
		groups:        map[int64]*models.Group{},
		students:      map[int64]*models.Student{},
		courses:       map[int64]*models.Course{},
		users:         map[int64]*models.User{},
		courseGroups:  map[int64]*models.CourseGroup{},
		enrollments:   map[int64]*models.CourseGroupStudent{},
		evaluations:   map[int64]*models.PartialEvaluation{},
		periodOfGroup: map[int64]*models.Period{},
	}
}

// withCourseGroup registers a course group owned by teacherID whose period has
// the given partial gates open.
func (l *lookupStub) withCourseGroup(id, teacherID int64, open ...int) *lookupStub {
	l.courseGroups[id] = &models.CourseGroup{ID: id, CourseID: 1, GroupID: 1, UserID: teacherID, Schedule: models.DefaultSchedule}
	period := &models.Period{ID: 1, Name: "2024A"}
	for _, partial := range open {
		switch partial {
		case 1:
			period.FirstPartialActive = true
		case 2:
			period.SecondPartialActive = true
		case 3:
			period.ThirdPartialActive = true
		}
	}
	l.periodOfGroup[id] = period
	return l
}

func (l *lookupStub) withEnrollment(id, courseGroupID, studentID int64) *lookupStub {
	l.enrollments[id] = &models.CourseGroupStudent{ID: id, CourseGroupID: courseGroupID, StudentID: studentID}
	return l
}

func stubGet[T any](m map[int64]*T, id int64, what string) (*T, error) {
	if v, ok := m[id]; ok {
		return v, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, what+" not found")
}

func (l *lookupStub) Period(ctx context.Context, id int64) (*models.Period, error) {
	return stubGet(l.periods, id, "period")
}

func (l *lookupStub) Group(ctx context.Context, id int64) (*models.Group, error) {
	return stubGet(l.groups, id, "group")
}

func (l *lookupStub) Student(ctx context.Context, id int64) (*models.Student, error) {
	return stubGet(l.students, id, "student")
}

func (l *lookupStub) Course(ctx context.Context, id int64) (*models.Course, error) {
	return stubGet(l.courses, id, "course")
}

func (l *lookupStub) User(ctx context.Context, id int64) (*models.User, error) {
	return stubGet(l.users, id, "user")
}

func (l *lookupStub) CourseGroup(ctx context.Context, id int64) (*models.CourseGroup, error) {
	return stubGet(l.courseGroups, id, "course group")
}

func (l *lookupStub) Enrollment(ctx context.Context, id int64) (*models.CourseGroupStudent, error) {
	return stubGet(l.enrollments, id, "course group student")
}

func (l *lookupStub) PartialEvaluation(ctx context.Context, id int64) (*models.PartialEvaluation, error) {
	return stubGet(l.evaluations, id, "partial evaluation")
}

func (l *lookupStub) PeriodOfCourseGroup(ctx context.Context, courseGroupID int64) (*models.Period, error) {
	return stubGet(l.periodOfGroup, courseGroupID, "period of course group")
}

var (
	adminClaims   = &models.JWTClaims{UserID: 1, Role: models.RoleAdministrador, Email: "admin@example.com"}
	teacherClaims = &models.JWTClaims{UserID: 7, Role: models.RoleMaestro, Email: "maestro@example.com"}
)

func appErrorCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected app error, got %v", err)
	return appErr.Code
}

type lookupStoreStub struct {
	lookupStub
	err error
}

func (s *lookupStoreStub) Group(ctx context.Context, id int64) (*models.Group, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Group{ID: id, Name: "1A"}, nil
}

func TestRecordLookupTranslatesMissingRows(t *testing.T) {
	lookup := NewRecordLookup(&lookupStoreStub{err: sql.ErrNoRows}, zap.NewNop())

	_, err := lookup.Group(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
	assert.Contains(t, err.Error(), "group not found")
}

func TestRecordLookupWrapsDriverErrors(t *testing.T) {
	lookup := NewRecordLookup(&lookupStoreStub{err: errors.New("connection reset")}, zap.NewNop())

	_, err := lookup.Group(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrorCode(t, err))
}

func TestEnsureEnrollmentOwner(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7).withEnrollment(100, 10, 5)

	enrollment, err := ensureEnrollmentOwner(context.Background(), lookup, teacherClaims, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(10), enrollment.CourseGroupID)

	other := &models.JWTClaims{UserID: 8, Role: models.RoleMaestro}
	_, err = ensureEnrollmentOwner(context.Background(), lookup, other, 100)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))

	_, err = ensureEnrollmentOwner(context.Background(), lookup, adminClaims, 100)
	require.NoError(t, err)
}
