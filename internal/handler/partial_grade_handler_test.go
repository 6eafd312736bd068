package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records-api/internal/middleware"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type partialGradeServiceMock struct {
	claims      *models.JWTClaims
	listPartial *int
	createErr   error
}

func (m *partialGradeServiceMock) Create(ctx context.Context, claims *models.JWTClaims, req service.CreatePartialGradeRequest) (*models.PartialGrade, error) {
	m.claims = claims
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.PartialGrade{ID: 1, CourseGroupStudentID: req.CourseGroupStudentID, Partial: req.Partial, Grade: req.Grade}, nil
}

func (m *partialGradeServiceMock) List(ctx context.Context, courseGroupStudentID int64, partial *int) ([]models.PartialGrade, error) {
	m.listPartial = partial
	return []models.PartialGrade{}, nil
}

func (m *partialGradeServiceMock) Get(ctx context.Context, id int64) (*models.PartialGrade, error) {
	return &models.PartialGrade{ID: id}, nil
}

func (m *partialGradeServiceMock) Update(ctx context.Context, id int64, req service.UpdatePartialGradeRequest) (*models.PartialGrade, error) {
	return &models.PartialGrade{ID: id}, nil
}

func (m *partialGradeServiceMock) Delete(ctx context.Context, id int64) error { return nil }

func TestPartialGradeHandlerCreatePassesClaims(t *testing.T) {
	grades := &partialGradeServiceMock{}
	handler := NewPartialGradeHandler(grades)

	payload, _ := json.Marshal(map[string]interface{}{"courseGroupStudentId": 100, "partial": 1, "grade": 8.5})
	c, w := newGinContext(http.MethodPost, "/partial-grades", payload)
	c.Set(middleware.ContextUserKey, adminClaims)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Same(t, adminClaims, grades.claims)
}

func TestPartialGradeHandlerCreateClosedPartial(t *testing.T) {
	grades := &partialGradeServiceMock{createErr: appErrors.Clone(appErrors.ErrUnauthorized, "the partial 2 is closed")}
	handler := NewPartialGradeHandler(grades)

	payload, _ := json.Marshal(map[string]interface{}{"courseGroupStudentId": 100, "partial": 2, "grade": 8})
	c, w := newGinContext(http.MethodPost, "/partial-grades", payload)
	c.Set(middleware.ContextUserKey, adminClaims)

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "the partial 2 is closed")
}

func TestPartialGradeHandlerListPartialFilter(t *testing.T) {
	grades := &partialGradeServiceMock{}
	handler := NewPartialGradeHandler(grades)

	c, w := newGinContext(http.MethodGet, "/partial-grades/findAll/100?partial=3", nil)
	c.Params = gin.Params{{Key: "courseGroupStudentId", Value: "100"}}
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, grades.listPartial)
	assert.Equal(t, 3, *grades.listPartial)

	c, w = newGinContext(http.MethodGet, "/partial-grades/findAll/100", nil)
	c.Params = gin.Params{{Key: "courseGroupStudentId", Value: "100"}}
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, grades.listPartial)

	c, w = newGinContext(http.MethodGet, "/partial-grades/findAll/100?partial=4", nil)
	c.Params = gin.Params{{Key: "courseGroupStudentId", Value: "100"}}
	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

type attendanceServiceStub struct {
	partial int
}

func (s *attendanceServiceStub) Create(ctx context.Context, claims *models.JWTClaims, req service.CreateAttendanceRequest) (*models.Attendance, error) {
	return &models.Attendance{}, nil
}

func (s *attendanceServiceStub) ListByCourseGroupAndDate(ctx context.Context, courseGroupID int64, rawDate string) ([]models.Attendance, error) {
	return []models.Attendance{}, nil
}

func (s *attendanceServiceStub) ListByEnrollment(ctx context.Context, courseGroupStudentID int64, partial int) ([]models.Attendance, error) {
	s.partial = partial
	return []models.Attendance{}, nil
}

func (s *attendanceServiceStub) Get(ctx context.Context, id int64) (*models.Attendance, error) {
	return &models.Attendance{}, nil
}

func (s *attendanceServiceStub) Update(ctx context.Context, id int64, req service.UpdateAttendanceRequest) (*models.Attendance, error) {
	return &models.Attendance{}, nil
}

func (s *attendanceServiceStub) Delete(ctx context.Context, id int64) error { return nil }

func TestAttendanceHandlerListByStudentRequiresPartial(t *testing.T) {
	attendance := &attendanceServiceStub{}
	handler := NewAttendanceHandler(attendance)

	c, w := newGinContext(http.MethodGet, "/courses-groups-attendances/student/100", nil)
	c.Params = gin.Params{{Key: "courseGroupStudentId", Value: "100"}}
	handler.ListByStudent(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/courses-groups-attendances/student/100?partial=2", nil)
	c.Params = gin.Params{{Key: "courseGroupStudentId", Value: "100"}}
	handler.ListByStudent(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, attendance.partial)
}
