package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

type attendanceService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req service.CreateAttendanceRequest) (*models.Attendance, error)
	ListByCourseGroupAndDate(ctx context.Context, courseGroupID int64, rawDate string) ([]models.Attendance, error)
	ListByEnrollment(ctx context.Context, courseGroupStudentID int64, partial int) ([]models.Attendance, error)
	Get(ctx context.Context, id int64) (*models.Attendance, error)
	Update(ctx context.Context, id int64, req service.UpdateAttendanceRequest) (*models.Attendance, error)
	Delete(ctx context.Context, id int64) error
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Create godoc
// @Summary Record attendance
// @Tags Attendances
// @Accept json
// @Produce json
// @Param payload body service.CreateAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /courses-groups-attendances [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	var req service.CreateAttendanceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	attendance, err := h.attendance.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attendance)
}

// ListByCourseGroup godoc
// @Summary Attendance of a course group on a date
// @Tags Attendances
// @Produce json
// @Param courseGroupId path int true "Course group ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-attendances/{courseGroupId} [get]
func (h *AttendanceHandler) ListByCourseGroup(c *gin.Context) {
	courseGroupID, err := pathID(c, "courseGroupId")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.attendance.ListByCourseGroupAndDate(c.Request.Context(), courseGroupID, c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// ListByStudent godoc
// @Summary Attendance of an enrollment in a partial
// @Tags Attendances
// @Produce json
// @Param courseGroupStudentId path int true "Enrollment ID"
// @Param partial query int true "Partial (1-3)"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-attendances/student/{courseGroupStudentId} [get]
func (h *AttendanceHandler) ListByStudent(c *gin.Context) {
	enrollmentID, err := pathID(c, "courseGroupStudentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	partial, err := partialQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if partial == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "partial is required"))
		return
	}
	items, err := h.attendance.ListByEnrollment(c.Request.Context(), enrollmentID, *partial)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Update godoc
// @Summary Update attendance
// @Tags Attendances
// @Accept json
// @Produce json
// @Param id path int true "Attendance ID"
// @Param payload body service.UpdateAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-attendances/{id} [patch]
func (h *AttendanceHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateAttendanceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	attendance, err := h.attendance.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendance, nil)
}

// Delete godoc
// @Summary Remove attendance
// @Tags Attendances
// @Produce json
// @Param id path int true "Attendance ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-attendances/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.attendance.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed(id, "attendance"), nil)
}
