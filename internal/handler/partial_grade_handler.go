package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

type partialGradeService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req service.CreatePartialGradeRequest) (*models.PartialGrade, error)
	List(ctx context.Context, courseGroupStudentID int64, partial *int) ([]models.PartialGrade, error)
	Get(ctx context.Context, id int64) (*models.PartialGrade, error)
	Update(ctx context.Context, id int64, req service.UpdatePartialGradeRequest) (*models.PartialGrade, error)
	Delete(ctx context.Context, id int64) error
}

// PartialGradeHandler exposes partial grade endpoints.
type PartialGradeHandler struct {
	grades partialGradeService
}

// NewPartialGradeHandler constructs PartialGradeHandler.
func NewPartialGradeHandler(grades partialGradeService) *PartialGradeHandler {
	return &PartialGradeHandler{grades: grades}
}

// Create godoc
// @Summary Record a partial grade
// @Tags PartialGrades
// @Accept json
// @Produce json
// @Param payload body service.CreatePartialGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /partial-grades [post]
func (h *PartialGradeHandler) Create(c *gin.Context) {
	var req service.CreatePartialGradeRequest
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

// List godoc
// @Summary Partial grades of an enrollment
// @Tags PartialGrades
// @Produce json
// @Param courseGroupStudentId path int true "Enrollment ID"
// @Param partial query int false "Partial (1-3)"
// @Success 200 {object} response.Envelope
// @Router /partial-grades/findAll/{courseGroupStudentId} [get]
func (h *PartialGradeHandler) List(c *gin.Context) {
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
	items, err := h.grades.List(c.Request.Context(), enrollmentID, partial)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get partial grade
// @Tags PartialGrades
// @Produce json
// @Param id path int true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /partial-grades/{id} [get]
func (h *PartialGradeHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	grade, err := h.grades.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Update godoc
// @Summary Update partial grade
// @Tags PartialGrades
// @Accept json
// @Produce json
// @Param id path int true "Grade ID"
// @Param payload body service.UpdatePartialGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /partial-grades/{id} [patch]
func (h *PartialGradeHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdatePartialGradeRequest
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
// @Summary Remove partial grade
// @Tags PartialGrades
// @Produce json
// @Param id path int true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /partial-grades/{id} [delete]
func (h *PartialGradeHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.grades.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed(id, "partial grade"), nil)
}
