package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

type enrollmentService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req service.EnrollStudentRequest) (*models.CourseGroupStudentDetail, error)
	ListByCourseGroup(ctx context.Context, claims *models.JWTClaims, courseGroupID int64, q models.PageQuery) ([]models.CourseGroupStudentDetail, *models.Pagination, error)
	ListStudentsByGroup(ctx context.Context, groupID int64) ([]models.Student, error)
	Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.CourseGroupStudentDetail, error)
	Delete(ctx context.Context, claims *models.JWTClaims, id int64) error
}

// CourseGroupStudentHandler exposes enrollment endpoints.
type CourseGroupStudentHandler struct {
	enrollments enrollmentService
}

// NewCourseGroupStudentHandler constructs CourseGroupStudentHandler.
func NewCourseGroupStudentHandler(enrollments enrollmentService) *CourseGroupStudentHandler {
	return &CourseGroupStudentHandler{enrollments: enrollments}
}

// Create godoc
// @Summary Enroll a student in a course group
// @Tags CourseGroupStudents
// @Accept json
// @Produce json
// @Param payload body service.EnrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /courses-groups-students [post]
func (h *CourseGroupStudentHandler) Create(c *gin.Context) {
	var req service.EnrollStudentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// ListByCourseGroup godoc
// @Summary Enrollments of a course group
// @Tags CourseGroupStudents
// @Produce json
// @Param courseGroupId path int true "Course group ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-students/findAll/{courseGroupId} [get]
func (h *CourseGroupStudentHandler) ListByCourseGroup(c *gin.Context) {
	courseGroupID, err := pathID(c, "courseGroupId")
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := pageQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.enrollments.ListByCourseGroup(c.Request.Context(), claimsFromContext(c), courseGroupID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// ListByGroup godoc
// @Summary Distinct students enrolled anywhere in a group
// @Tags CourseGroupStudents
// @Produce json
// @Param groupId path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-students/byGroup/{groupId} [get]
func (h *CourseGroupStudentHandler) ListByGroup(c *gin.Context) {
	groupID, err := pathID(c, "groupId")
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.enrollments.ListStudentsByGroup(c.Request.Context(), groupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Get godoc
// @Summary Get enrollment
// @Tags CourseGroupStudents
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-students/{id} [get]
func (h *CourseGroupStudentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.Get(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Delete godoc
// @Summary Remove enrollment
// @Tags CourseGroupStudents
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-students/{id} [delete]
func (h *CourseGroupStudentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.enrollments.Delete(c.Request.Context(), claimsFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed(id, "course group student"), nil)
}
