package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

type finalGradeService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req service.CreateFinalGradeRequest) (*models.FinalGrade, error)
	List(ctx context.Context, courseGroupStudentID int64) ([]models.FinalGrade, error)
	Get(ctx context.Context, id int64) (*models.FinalGrade, error)
	Update(ctx context.Context, id int64, req service.UpdateFinalGradeRequest) (*models.FinalGrade, error)
	Delete(ctx context.Context, id int64) error
}

// FinalGradeHandler exposes final grade endpoints.
type FinalGradeHandler struct {
	grades finalGradeService
}

// NewFinalGradeHandler constructs FinalGradeHandler.
func NewFinalGradeHandler(grades finalGradeService) *FinalGradeHandler {
	return &FinalGradeHandler{grades: grades}
}

// Create godoc
// @Summary Record the final grade of an enrollment
// @Tags FinalGrades
// @Accept json
// @Produce json
// @Param payload body service.CreateFinalGradeRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /final-grades [post]
func (h *FinalGradeHandler) Create(c *gin.Context) {
	var req service.CreateFinalGradeRequest
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
// @Summary Final grades of an enrollment
// @Tags FinalGrades
// @Produce json
// @Param courseGroupStudentId path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /final-grades/findAll/{courseGroupStudentId} [get]
func (h *FinalGradeHandler) List(c *gin.Context) {
	enrollmentID, err := pathID(c, "courseGroupStudentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.grades.List(c.Request.Context(), enrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get final grade
// @Tags FinalGrades
// @Produce json
// @Param id path int true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /final-grades/{id} [get]
func (h *FinalGradeHandler) Get(c *gin.Context) {
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
// @Summary Update final grade
// @Tags FinalGrades
// @Accept json
// @Produce json
// @Param id path int true "Grade ID"
// @Param payload body service.UpdateFinalGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /final-grades/{id} [patch]
func (h *FinalGradeHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateFinalGradeRequest
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
// @Summary Remove final grade
// @Tags FinalGrades
// @Produce json
// @Param id path int true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /final-grades/{id} [delete]
func (h *FinalGradeHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.grades.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed(id, "final grade"), nil)
}
