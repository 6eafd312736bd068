package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

type evaluationGradeService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req service.CreatePartialEvaluationGradeRequest) (*models.PartialEvaluationGrade, error)
	ListByEnrollment(ctx context.Context, courseGroupStudentID int64) ([]models.PartialEvaluationGrade, error)
	Update(ctx context.Context, id int64, req service.UpdatePartialEvaluationGradeRequest) (*models.PartialEvaluationGrade, error)
	Delete(ctx context.Context, id int64) error
}

// PartialEvaluationGradeHandler exposes per-evaluation grade endpoints.
type PartialEvaluationGradeHandler struct {
	grades evaluationGradeService
}

// NewPartialEvaluationGradeHandler constructs PartialEvaluationGradeHandler.
func NewPartialEvaluationGradeHandler(grades evaluationGradeService) *PartialEvaluationGradeHandler {
	return &PartialEvaluationGradeHandler{grades: grades}
}

// Create godoc
// @Summary Grade a student on an evaluation
// @Tags PartialEvaluationGrades
// @Accept json
// @Produce json
// @Param payload body service.CreatePartialEvaluationGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /partial-evaluation-grades [post]
func (h *PartialEvaluationGradeHandler) Create(c *gin.Context) {
	var req service.CreatePartialEvaluationGradeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	grade, err := h.grades.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// ListByEnrollment godoc
// @Summary Evaluation grades of an enrollment
// @Tags PartialEvaluationGrades
// @Produce json
// @Param courseGroupStudentId path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /partial-evaluation-grades/findAll/{courseGroupStudentId} [get]
func (h *PartialEvaluationGradeHandler) ListByEnrollment(c *gin.Context) {
	enrollmentID, err := pathID(c, "courseGroupStudentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.grades.ListByEnrollment(c.Request.Context(), enrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Update godoc
// @Summary Update an evaluation grade
// @Tags PartialEvaluationGrades
// @Accept json
// @Produce json
// @Param id path int true "Grade ID"
// @Param payload body service.UpdatePartialEvaluationGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /partial-evaluation-grades/{id} [patch]
func (h *PartialEvaluationGradeHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdatePartialEvaluationGradeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	grade, err := h.grades.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Remove an evaluation grade
// @Tags PartialEvaluationGrades
// @Produce json
// @Param id path int true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /partial-evaluation-grades/{id} [delete]
func (h *PartialEvaluationGradeHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.grades.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed(id, "partial evaluation grade"), nil)
}
