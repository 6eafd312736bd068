package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

type partialEvaluationService interface {
	Create(ctx context.Context, req service.CreatePartialEvaluationRequest) (*models.PartialEvaluation, error)
	ListByCourseGroup(ctx context.Context, courseGroupID int64) ([]models.PartialEvaluation, error)
	Get(ctx context.Context, id int64) (*models.PartialEvaluation, error)
	Update(ctx context.Context, id int64, req service.UpdatePartialEvaluationRequest) (*models.PartialEvaluation, error)
	Delete(ctx context.Context, id int64) error
}

// PartialEvaluationHandler exposes evaluation slot endpoints.
type PartialEvaluationHandler struct {
	evaluations partialEvaluationService
}

// NewPartialEvaluationHandler constructs PartialEvaluationHandler.
func NewPartialEvaluationHandler(evaluations partialEvaluationService) *PartialEvaluationHandler {
	return &PartialEvaluationHandler{evaluations: evaluations}
}

// Create godoc
// @Summary Create partial evaluation
// @Tags PartialEvaluations
// @Accept json
// @Produce json
// @Param payload body service.CreatePartialEvaluationRequest true "Evaluation payload"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /partial-evaluations [post]
func (h *PartialEvaluationHandler) Create(c *gin.Context) {
	var req service.CreatePartialEvaluationRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	evaluation, err := h.evaluations.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, evaluation)
}

// ListByCourseGroup godoc
// @Summary Partial evaluations of a course group
// @Tags PartialEvaluations
// @Produce json
// @Param courseGroupId path int true "Course group ID"
// @Success 200 {object} response.Envelope
// @Router /partial-evaluations/by-course-group/{courseGroupId} [get]
func (h *PartialEvaluationHandler) ListByCourseGroup(c *gin.Context) {
	courseGroupID, err := pathID(c, "courseGroupId")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.evaluations.ListByCourseGroup(c.Request.Context(), courseGroupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get partial evaluation
// @Tags PartialEvaluations
// @Produce json
// @Param id path int true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /partial-evaluations/{id} [get]
func (h *PartialEvaluationHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	evaluation, err := h.evaluations.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation, nil)
}

// Update godoc
// @Summary Update partial evaluation
// @Tags PartialEvaluations
// @Accept json
// @Produce json
// @Param id path int true "Evaluation ID"
// @Param payload body service.UpdatePartialEvaluationRequest true "Evaluation payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /partial-evaluations/{id} [patch]
func (h *PartialEvaluationHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdatePartialEvaluationRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	evaluation, err := h.evaluations.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation, nil)
}

// Delete godoc
// @Summary Remove partial evaluation
// @Tags PartialEvaluations
// @Produce json
// @Param id path int true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /partial-evaluations/{id} [delete]
func (h *PartialEvaluationHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.evaluations.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed(id, "partial evaluation"), nil)
}
