package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

type courseGroupService interface {
	Create(ctx context.Context, req service.CreateCourseGroupRequest) (*models.CourseGroupDetail, error)
	ListByCourse(ctx context.Context, courseID int64, q models.PageQuery) ([]models.CourseGroupDetail, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.CourseGroupDetail, error)
	Update(ctx context.Context, id int64, req service.UpdateCourseGroupRequest) (*models.CourseGroupDetail, error)
	Delete(ctx context.Context, id int64) error
}

type gradebookService interface {
	GetEvaluationsData(ctx context.Context, courseGroupID int64) (*dto.EvaluationsDataResponse, error)
	GetCompleteData(ctx context.Context, courseGroupID int64) (*dto.CompleteDataResponse, error)
	GetFinalData(ctx context.Context, courseGroupID int64) (*dto.FinalDataResponse, error)
}

// CourseGroupHandler exposes teacher assignments and their gradebook views.
type CourseGroupHandler struct {
	courseGroups courseGroupService
	gradebook    gradebookService
}

// NewCourseGroupHandler constructs CourseGroupHandler.
func NewCourseGroupHandler(courseGroups courseGroupService, gradebook gradebookService) *CourseGroupHandler {
	return &CourseGroupHandler{courseGroups: courseGroups, gradebook: gradebook}
}

// Create godoc
// @Summary Assign a teacher to a course in a group
// @Tags CourseGroups
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseGroupRequest true "Course group payload"
// @Success 201 {object} response.Envelope
// @Router /courses-groups [post]
func (h *CourseGroupHandler) Create(c *gin.Context) {
	var req service.CreateCourseGroupRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	cg, err := h.courseGroups.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cg)
}

// ListByCourse godoc
// @Summary Course groups of a course
// @Tags CourseGroups
// @Produce json
// @Param courseId path int true "Course ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /courses-groups/by-course/{courseId} [get]
func (h *CourseGroupHandler) ListByCourse(c *gin.Context) {
	courseID, err := pathID(c, "courseId")
	if err != nil {
		response.Error(c, err)
		return
	}
	q, err := pageQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.courseGroups.ListByCourse(c.Request.Context(), courseID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get course group
// @Tags CourseGroups
// @Produce json
// @Param id path int true "Course group ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups/{id} [get]
func (h *CourseGroupHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	cg, err := h.courseGroups.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cg, nil)
}

// Update godoc
// @Summary Update course group
// @Tags CourseGroups
// @Accept json
// @Produce json
// @Param id path int true "Course group ID"
// @Param payload body service.UpdateCourseGroupRequest true "Course group payload"
// @Success 200 {object} response.Envelope
// @Router /courses-groups/{id} [patch]
func (h *CourseGroupHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateCourseGroupRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	cg, err := h.courseGroups.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cg, nil)
}

// Delete godoc
// @Summary Remove course group
// @Tags CourseGroups
// @Produce json
// @Param id path int true "Course group ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups/{id} [delete]
func (h *CourseGroupHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.courseGroups.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed(id, "course group"), nil)
}

// EvaluationsData godoc
// @Summary Evaluation gradebook of a course group
// @Tags CourseGroups
// @Produce json
// @Param id path int true "Course group ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups/{id}/evaluations-data [get]
func (h *CourseGroupHandler) EvaluationsData(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.gradebook.GetEvaluationsData(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

// CompleteData godoc
// @Summary Full snapshot of a course group
// @Tags CourseGroups
// @Produce json
// @Param id path int true "Course group ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups/{id}/complete-data [get]
func (h *CourseGroupHandler) CompleteData(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.gradebook.GetCompleteData(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

// FinalData godoc
// @Summary Final grade sheet of a course group
// @Tags CourseGroups
// @Produce json
// @Param id path int true "Course group ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups/{id}/final-data [get]
func (h *CourseGroupHandler) FinalData(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.gradebook.GetFinalData(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}
