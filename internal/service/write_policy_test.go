package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type partialGradeRepoStub struct {
	exists  bool
	created []*models.PartialGrade
	rows    map[int64]*models.PartialGrade
	updated []*models.PartialGrade
	deleted map[int64]bool
}

func (r *partialGradeRepoStub) Exists(ctx context.Context, courseGroupStudentID int64, partial int, excludeID int64) (bool, error) {
	return r.exists, nil
}

func (r *partialGradeRepoStub) Create(ctx context.Context, grade *models.PartialGrade) error {
	grade.ID = int64(len(r.created) + 1)
	r.created = append(r.created, grade)
	return nil
}

func (r *partialGradeRepoStub) FindByID(ctx context.Context, id int64) (*models.PartialGrade, error) {
	if g, ok := r.rows[id]; ok && !r.deleted[id] {
		clone := *g
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (r *partialGradeRepoStub) List(ctx context.Context, courseGroupStudentID int64, partial *int) ([]models.PartialGrade, error) {
	return nil, nil
}

func (r *partialGradeRepoStub) Update(ctx context.Context, grade *models.PartialGrade) error {
	r.updated = append(r.updated, grade)
	return nil
}

// SoftDelete mirrors the repository: deleted rows still match.
func (r *partialGradeRepoStub) SoftDelete(ctx context.Context, id int64) (int64, error) {
	g, ok := r.rows[id]
	if !ok {
		return 0, sql.ErrNoRows
	}
	if r.deleted == nil {
		r.deleted = map[int64]bool{}
	}
	r.deleted[id] = true
	return g.CourseGroupStudentID, nil
}

type cacheRepoRecorder struct {
	deleted []string
}

func (c *cacheRepoRecorder) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (c *cacheRepoRecorder) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (c *cacheRepoRecorder) Delete(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *cacheRepoRecorder) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	return nil
}

func gradeRequest(partial int) CreatePartialGradeRequest {
	date := "2024-03-01"
	return CreatePartialGradeRequest{CourseGroupStudentID: 100, Partial: partial, Grade: 8.5, Date: &date}
}

func TestPartialGradeCreateWithPeriodGateRejectsClosedPartial(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 1).withEnrollment(100, 10, 5)
	repo := &partialGradeRepoStub{}
	svc := NewPartialGradeService(repo, lookup, DefaultPolicy(), nil, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims, gradeRequest(2))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))
	assert.Contains(t, err.Error(), "the partial 2 is closed")
	assert.Empty(t, repo.created)

	grade, err := svc.Create(context.Background(), teacherClaims, gradeRequest(1))
	require.NoError(t, err)
	assert.Equal(t, 8.5, grade.Grade)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), grade.Date)
}

func TestPartialGradeCreateWithoutPeriodGateAcceptsClosedPartial(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7).withEnrollment(100, 10, 5)
	policy := DefaultPolicy()
	policy.PeriodGate = false
	repo := &partialGradeRepoStub{}
	svc := NewPartialGradeService(repo, lookup, policy, nil, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims, gradeRequest(3))
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

func TestPartialGradeCreateWithDuplicatePolicyRejectsSecondGrade(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 1).withEnrollment(100, 10, 5)
	repo := &partialGradeRepoStub{exists: true}
	svc := NewPartialGradeService(repo, lookup, DefaultPolicy(), nil, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims, gradeRequest(1))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrorCode(t, err))
	assert.Empty(t, repo.created)
}

func TestPartialGradeCreateWithoutDuplicatePolicyStoresSecondGrade(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 1).withEnrollment(100, 10, 5)
	policy := DefaultPolicy()
	policy.DuplicatePartialGrade = false
	repo := &partialGradeRepoStub{exists: true}
	svc := NewPartialGradeService(repo, lookup, policy, nil, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims, gradeRequest(1))
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

func TestPartialGradeCreateRejectsForeignTeacher(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 8, 1).withEnrollment(100, 10, 5)
	svc := NewPartialGradeService(&partialGradeRepoStub{}, lookup, DefaultPolicy(), nil, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims, gradeRequest(1))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))
}

func TestPartialGradeCreateDefaultsDateToToday(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 1).withEnrollment(100, 10, 5)
	svc := NewPartialGradeService(&partialGradeRepoStub{}, lookup, DefaultPolicy(), nil, nil, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 23, 30, 0, 0, time.UTC) }

	grade, err := svc.Create(context.Background(), adminClaims, CreatePartialGradeRequest{CourseGroupStudentID: 100, Partial: 1, Grade: 7})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), grade.Date)
}

func TestPartialGradeWritesInvalidatePeriodReport(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 1).withEnrollment(100, 10, 5)
	cacheRepo := &cacheRepoRecorder{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	repo := &partialGradeRepoStub{rows: map[int64]*models.PartialGrade{
		3: {ID: 3, CourseGroupStudentID: 100, Partial: 1, Grade: 6},
	}}
	svc := NewPartialGradeService(repo, lookup, DefaultPolicy(), cache, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims, gradeRequest(1))
	require.NoError(t, err)

	value := 9.0
	updated, err := svc.Update(context.Background(), 3, UpdatePartialGradeRequest{Grade: &value})
	require.NoError(t, err)
	assert.Equal(t, 9.0, updated.Grade)

	assert.Equal(t, []string{PeriodReportKey(1), PeriodReportKey(1)}, cacheRepo.deleted)
}

func TestPartialGradeDeleteTwiceSucceeds(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 1).withEnrollment(100, 10, 5)
	cacheRepo := &cacheRepoRecorder{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	repo := &partialGradeRepoStub{rows: map[int64]*models.PartialGrade{
		9: {ID: 9, CourseGroupStudentID: 100, Partial: 1, Grade: 6},
	}}
	svc := NewPartialGradeService(repo, lookup, DefaultPolicy(), cache, nil, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), 9))
	require.NoError(t, svc.Delete(context.Background(), 9))
	assert.Equal(t, []string{PeriodReportKey(1), PeriodReportKey(1)}, cacheRepo.deleted)

	_, err := svc.Get(context.Background(), 9)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))

	err = svc.Delete(context.Background(), 404)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestPartialGradeUpdateWithPeriodGateRejectsMoveToClosedPartial(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 1).withEnrollment(100, 10, 5)
	repo := &partialGradeRepoStub{rows: map[int64]*models.PartialGrade{
		3: {ID: 3, CourseGroupStudentID: 100, Partial: 1, Grade: 6},
	}}
	svc := NewPartialGradeService(repo, lookup, DefaultPolicy(), nil, nil, nil, zap.NewNop())

	partial := 2
	_, err := svc.Update(context.Background(), 3, UpdatePartialGradeRequest{Partial: &partial})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))
	assert.Empty(t, repo.updated)
}

func TestPartialGradeListRejectsOutOfRangePartial(t *testing.T) {
	svc := NewPartialGradeService(&partialGradeRepoStub{}, newLookupStub(), DefaultPolicy(), nil, nil, nil, zap.NewNop())

	partial := 4
	_, err := svc.List(context.Background(), 100, &partial)
	require.Error(t, err)

	items, err := svc.List(context.Background(), 100, nil)
	require.NoError(t, err)
	assert.NotNil(t, items)
}

type finalGradeRepoStub struct {
	exists  bool
	created []*models.FinalGrade
	known   map[int64]bool
	deleted map[int64]bool
}

func (r *finalGradeRepoStub) Exists(ctx context.Context, courseGroupStudentID, excludeID int64) (bool, error) {
	return r.exists, nil
}

func (r *finalGradeRepoStub) Create(ctx context.Context, grade *models.FinalGrade) error {
	r.created = append(r.created, grade)
	return nil
}

func (r *finalGradeRepoStub) FindByID(ctx context.Context, id int64) (*models.FinalGrade, error) {
	return nil, sql.ErrNoRows
}

func (r *finalGradeRepoStub) List(ctx context.Context, courseGroupStudentID int64) ([]models.FinalGrade, error) {
	return nil, nil
}

func (r *finalGradeRepoStub) Update(ctx context.Context, grade *models.FinalGrade) error {
	return nil
}

// SoftDelete matches deleted rows too, like the shared repository helper.
func (r *finalGradeRepoStub) SoftDelete(ctx context.Context, id int64) error {
	if !r.known[id] {
		return sql.ErrNoRows
	}
	if r.deleted == nil {
		r.deleted = map[int64]bool{}
	}
	r.deleted[id] = true
	return nil
}

func TestFinalGradeCreateIgnoresPeriodGate(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7).withEnrollment(100, 10, 5)
	repo := &finalGradeRepoStub{}
	svc := NewFinalGradeService(repo, lookup, DefaultPolicy(), nil, nil, zap.NewNop())

	ordinary := 9
	grade, err := svc.Create(context.Background(), teacherClaims, CreateFinalGradeRequest{
		CourseGroupStudentID: 100,
		Grade:                9,
		GradeOrdinary:        &ordinary,
		Type:                 "ordinario",
	})
	require.NoError(t, err)
	assert.Equal(t, 9, grade.Grade)
	assert.Len(t, repo.created, 1)
}

func TestFinalGradeCreateWithDuplicatePolicy(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7).withEnrollment(100, 10, 5)
	req := CreateFinalGradeRequest{CourseGroupStudentID: 100, Grade: 6, Type: "ordinario"}

	svc := NewFinalGradeService(&finalGradeRepoStub{exists: true}, lookup, DefaultPolicy(), nil, nil, zap.NewNop())
	_, err := svc.Create(context.Background(), adminClaims, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrorCode(t, err))

	policy := DefaultPolicy()
	policy.DuplicateFinalGrade = false
	repo := &finalGradeRepoStub{exists: true}
	svc = NewFinalGradeService(repo, lookup, policy, nil, nil, zap.NewNop())
	_, err = svc.Create(context.Background(), adminClaims, req)
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

func TestFinalGradeDeleteMissingRow(t *testing.T) {
	svc := NewFinalGradeService(&finalGradeRepoStub{}, newLookupStub(), DefaultPolicy(), nil, nil, zap.NewNop())

	err := svc.Delete(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestFinalGradeDeleteTwiceSucceeds(t *testing.T) {
	repo := &finalGradeRepoStub{known: map[int64]bool{5: true}}
	svc := NewFinalGradeService(repo, newLookupStub(), DefaultPolicy(), nil, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), 5))
	require.NoError(t, svc.Delete(context.Background(), 5))
	assert.True(t, repo.deleted[5])
}

type enrollmentRepoStub struct {
	exists  bool
	created []*models.CourseGroupStudent
	deleted map[int64]bool
	missing map[int64]bool
}

func (r *enrollmentRepoStub) Exists(ctx context.Context, courseGroupID, studentID int64) (bool, error) {
	return r.exists, nil
}

func (r *enrollmentRepoStub) Create(ctx context.Context, enrollment *models.CourseGroupStudent) error {
	enrollment.ID = int64(100 + len(r.created))
	r.created = append(r.created, enrollment)
	return nil
}

func (r *enrollmentRepoStub) FindByID(ctx context.Context, id int64) (*models.CourseGroupStudentDetail, error) {
	for _, e := range r.created {
		if e.ID == id {
			return &models.CourseGroupStudentDetail{CourseGroupStudent: *e}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *enrollmentRepoStub) ListByCourseGroup(ctx context.Context, courseGroupID int64, limit, offset int) ([]models.CourseGroupStudentDetail, int, error) {
	return nil, 0, nil
}

func (r *enrollmentRepoStub) ListStudentsByGroup(ctx context.Context, groupID int64) ([]models.Student, error) {
	return nil, nil
}

// SoftDelete matches deleted rows too; only ids listed in missing fail.
func (r *enrollmentRepoStub) SoftDelete(ctx context.Context, id int64) error {
	if r.missing[id] {
		return sql.ErrNoRows
	}
	if r.deleted == nil {
		r.deleted = map[int64]bool{}
	}
	r.deleted[id] = true
	return nil
}

func TestEnrollmentCreateWithDuplicatePolicy(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7)
	lookup.students[5] = &models.Student{ID: 5, FullName: "Maria"}
	req := EnrollStudentRequest{CourseGroupID: 10, StudentID: 5}

	svc := NewCourseGroupStudentService(&enrollmentRepoStub{exists: true}, lookup, DefaultPolicy(), nil, nil, zap.NewNop())
	_, err := svc.Create(context.Background(), teacherClaims, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrorCode(t, err))

	policy := DefaultPolicy()
	policy.DuplicateEnrollment = false
	repo := &enrollmentRepoStub{exists: true}
	svc = NewCourseGroupStudentService(repo, lookup, policy, nil, nil, zap.NewNop())
	detail, err := svc.Create(context.Background(), teacherClaims, req)
	require.NoError(t, err)
	assert.Equal(t, int64(5), detail.StudentID)
}

func TestEnrollmentCreateRejectsMissingStudent(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7)
	svc := NewCourseGroupStudentService(&enrollmentRepoStub{}, lookup, DefaultPolicy(), nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), adminClaims, EnrollStudentRequest{CourseGroupID: 10, StudentID: 99})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestEnrollmentDeleteIsSoftAndRepeatable(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7).withEnrollment(100, 10, 5)
	repo := &enrollmentRepoStub{missing: map[int64]bool{404: true}}
	svc := NewCourseGroupStudentService(repo, lookup, DefaultPolicy(), nil, nil, zap.NewNop())

	other := &models.JWTClaims{UserID: 8, Role: models.RoleMaestro}
	err := svc.Delete(context.Background(), other, 100)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))

	require.NoError(t, svc.Delete(context.Background(), teacherClaims, 100))
	require.NoError(t, svc.Delete(context.Background(), teacherClaims, 100))
	assert.True(t, repo.deleted[100])

	err = svc.Delete(context.Background(), teacherClaims, 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

type attendanceRepoStub struct {
	taken      map[string]bool
	created    []*models.Attendance
	listedDate time.Time
}

func (r *attendanceRepoStub) ExistsForDate(ctx context.Context, courseGroupStudentID int64, date time.Time, excludeID int64) (bool, error) {
	return r.taken[date.Format(models.DateLayout)], nil
}

func (r *attendanceRepoStub) Create(ctx context.Context, attendance *models.Attendance) error {
	r.created = append(r.created, attendance)
	return nil
}

func (r *attendanceRepoStub) FindByID(ctx context.Context, id int64) (*models.Attendance, error) {
	return nil, sql.ErrNoRows
}

func (r *attendanceRepoStub) ListByCourseGroupAndDate(ctx context.Context, courseGroupID int64, date time.Time) ([]models.Attendance, error) {
	r.listedDate = date
	return nil, nil
}

func (r *attendanceRepoStub) ListByEnrollment(ctx context.Context, courseGroupStudentID int64, partial int) ([]models.Attendance, error) {
	return nil, nil
}

func (r *attendanceRepoStub) Update(ctx context.Context, attendance *models.Attendance) error {
	return nil
}

func (r *attendanceRepoStub) SoftDelete(ctx context.Context, id int64) error {
	return nil
}

func TestAttendanceCreateWithDuplicatePolicyRejectsSameDay(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7).withEnrollment(100, 10, 5)
	repo := &attendanceRepoStub{taken: map[string]bool{"2024-03-01": true}}
	svc := NewAttendanceService(repo, lookup, DefaultPolicy(), nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims, CreateAttendanceRequest{CourseGroupStudentID: 100, Partial: 1, Date: "2024-03-01", Attend: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrorCode(t, err))

	attendance, err := svc.Create(context.Background(), teacherClaims, CreateAttendanceRequest{CourseGroupStudentID: 100, Partial: 1, Date: "2024-03-02", Attend: 2})
	require.NoError(t, err)
	assert.Equal(t, models.AttendCode(2), attendance.Attend)
}

func TestAttendanceListDefaultsToToday(t *testing.T) {
	repo := &attendanceRepoStub{}
	svc := NewAttendanceService(repo, newLookupStub().withCourseGroup(10, 7), DefaultPolicy(), nil, nil, zap.NewNop())

	_, err := svc.ListByCourseGroupAndDate(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format(models.DateLayout), repo.listedDate.Format(models.DateLayout))
}

func TestAttendanceQueriesValidateInput(t *testing.T) {
	svc := NewAttendanceService(&attendanceRepoStub{}, newLookupStub().withCourseGroup(10, 7), DefaultPolicy(), nil, nil, zap.NewNop())

	_, err := svc.ListByCourseGroupAndDate(context.Background(), 10, "01/03/2024")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorCode(t, err))

	items, err := svc.ListByCourseGroupAndDate(context.Background(), 10, "2024-03-01")
	require.NoError(t, err)
	assert.NotNil(t, items)

	_, err = svc.ListByEnrollment(context.Background(), 100, 0)
	require.Error(t, err)
}

type evaluationRepoStub struct {
	created     []*models.PartialEvaluation
	deletedWith []bool
}

func (r *evaluationRepoStub) Create(ctx context.Context, evaluation *models.PartialEvaluation) error {
	r.created = append(r.created, evaluation)
	return nil
}

func (r *evaluationRepoStub) FindByID(ctx context.Context, id int64) (*models.PartialEvaluation, error) {
	return nil, sql.ErrNoRows
}

func (r *evaluationRepoStub) ListByCourseGroup(ctx context.Context, courseGroupID int64) ([]models.PartialEvaluation, error) {
	return nil, nil
}

func (r *evaluationRepoStub) Update(ctx context.Context, evaluation *models.PartialEvaluation) error {
	return nil
}

func (r *evaluationRepoStub) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	r.deletedWith = append(r.deletedWith, deleted)
	return nil
}

func TestPartialEvaluationDeleteMarksRowDeleted(t *testing.T) {
	repo := &evaluationRepoStub{}
	svc := NewPartialEvaluationService(repo, newLookupStub(), DefaultPolicy(), nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), 4))
	assert.Equal(t, []bool{true}, repo.deletedWith)
}

func TestPartialEvaluationDeleteWithLegacyRemoveKeepsRowLive(t *testing.T) {
	policy := DefaultPolicy()
	policy.LegacyEvaluationRemove = true
	repo := &evaluationRepoStub{}
	svc := NewPartialEvaluationService(repo, newLookupStub(), policy, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), 4))
	assert.Equal(t, []bool{false}, repo.deletedWith)
}

func TestPartialEvaluationCreateWithPeriodGate(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 3)
	repo := &evaluationRepoStub{}
	svc := NewPartialEvaluationService(repo, lookup, DefaultPolicy(), nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreatePartialEvaluationRequest{CourseGroupID: 10, Type: "Examen", Slot: 0, Partial: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "the partial 1 is closed")

	evaluation, err := svc.Create(context.Background(), CreatePartialEvaluationRequest{CourseGroupID: 10, Type: "Examen", Slot: 0, Partial: 3})
	require.NoError(t, err)
	assert.Equal(t, "Examen", evaluation.Type)
}

func TestPartialEvaluationRejectsSlotAboveLimit(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 3)
	repo := &evaluationRepoStub{}
	svc := NewPartialEvaluationService(repo, lookup, DefaultPolicy(), nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreatePartialEvaluationRequest{CourseGroupID: 10, Type: "actividades", Slot: models.MaxEvaluationSlot + 1, Partial: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorCode(t, err))
	assert.Empty(t, repo.created)

	slot := 50_000_000
	_, err = svc.Update(context.Background(), 4, UpdatePartialEvaluationRequest{Slot: &slot})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorCode(t, err))

	_, err = svc.Create(context.Background(), CreatePartialEvaluationRequest{CourseGroupID: 10, Type: "actividades", Slot: models.MaxEvaluationSlot, Partial: 3})
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

type evaluationGradeRepoStub struct {
	exists  bool
	created []*models.PartialEvaluationGrade
}

func (r *evaluationGradeRepoStub) Exists(ctx context.Context, partialEvaluationID, courseGroupStudentID, excludeID int64) (bool, error) {
	return r.exists, nil
}

func (r *evaluationGradeRepoStub) Create(ctx context.Context, grade *models.PartialEvaluationGrade) error {
	r.created = append(r.created, grade)
	return nil
}

func (r *evaluationGradeRepoStub) FindByID(ctx context.Context, id int64) (*models.PartialEvaluationGrade, error) {
	return nil, sql.ErrNoRows
}

func (r *evaluationGradeRepoStub) ListByEnrollment(ctx context.Context, courseGroupStudentID int64) ([]models.PartialEvaluationGrade, error) {
	return nil, nil
}

func (r *evaluationGradeRepoStub) Update(ctx context.Context, grade *models.PartialEvaluationGrade) error {
	return nil
}

func (r *evaluationGradeRepoStub) SoftDelete(ctx context.Context, id int64) error {
	return nil
}

func TestEvaluationGradeCreateUsesEvaluationPartialForGate(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 2).withEnrollment(100, 10, 5)
	lookup.evaluations[40] = &models.PartialEvaluation{ID: 40, CourseGroupID: 10, Type: "actividades", Slot: 1, Partial: 1}
	lookup.evaluations[41] = &models.PartialEvaluation{ID: 41, CourseGroupID: 10, Type: "actividades", Slot: 1, Partial: 2}
	repo := &evaluationGradeRepoStub{}
	svc := NewPartialEvaluationGradeService(repo, lookup, DefaultPolicy(), nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims, CreatePartialEvaluationGradeRequest{PartialEvaluationID: 40, CourseGroupStudentID: 100, Grade: 9})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))

	_, err = svc.Create(context.Background(), teacherClaims, CreatePartialEvaluationGradeRequest{PartialEvaluationID: 41, CourseGroupStudentID: 100, Grade: 9})
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

func TestEvaluationGradeCreateRejectsEvaluationOfAnotherCourseGroup(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 1).withCourseGroup(20, 7, 1).withEnrollment(100, 10, 5)
	lookup.evaluations[40] = &models.PartialEvaluation{ID: 40, CourseGroupID: 20, Type: "examen", Partial: 1}
	repo := &evaluationGradeRepoStub{}
	svc := NewPartialEvaluationGradeService(repo, lookup, DefaultPolicy(), nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), teacherClaims, CreatePartialEvaluationGradeRequest{PartialEvaluationID: 40, CourseGroupStudentID: 100, Grade: 9})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrorCode(t, err))
	assert.Empty(t, repo.created)
}

func TestEvaluationGradeCreateWithDuplicatePolicy(t *testing.T) {
	lookup := newLookupStub().withCourseGroup(10, 7, 1).withEnrollment(100, 10, 5)
	lookup.evaluations[40] = &models.PartialEvaluation{ID: 40, CourseGroupID: 10, Type: "examen", Partial: 1}
	svc := NewPartialEvaluationGradeService(&evaluationGradeRepoStub{exists: true}, lookup, DefaultPolicy(), nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), adminClaims, CreatePartialEvaluationGradeRequest{PartialEvaluationID: 40, CourseGroupStudentID: 100, Grade: 9})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrorCode(t, err))
}
