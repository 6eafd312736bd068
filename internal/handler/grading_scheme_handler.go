package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

type gradingSchemeService interface {
	Create(ctx context.Context, req service.CreateGradingSchemeRequest) (*models.GradingScheme, error)
	ListByCourseGroup(ctx context.Context, courseGroupID int64) ([]models.GradingScheme, error)
	Get(ctx context.Context, id int64) (*models.GradingScheme, error)
	Update(ctx context.Context, id int64, req service.UpdateGradingSchemeRequest) (*models.GradingScheme, error)
	Delete(ctx context.Context, id int64) error
}

// GradingSchemeHandler exposes grading scheme endpoints.
type GradingSchemeHandler struct {
	schemes gradingSchemeService
}

// NewGradingSchemeHandler constructs GradingSchemeHandler.
func NewGradingSchemeHandler(schemes gradingSchemeService) *GradingSchemeHandler {
	return &GradingSchemeHandler{schemes: schemes}
}

// Create godoc
// @Summary Create grading scheme entry
// @Tags GradingSchemes
// @Accept json
// @Produce json
// @Param payload body service.CreateGradingSchemeRequest true "Scheme payload"
// @Success 201 {object} response.Envelope
// @Router /courses-groups-gradingschemes [post]
func (h *GradingSchemeHandler) Create(c *gin.Context) {
	var req service.CreateGradingSchemeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	scheme, err := h.schemes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, scheme)
}

// ListByCourseGroup godoc
// @Summary Grading scheme of a course group
// @Tags GradingSchemes
// @Produce json
// @Param courseGroupId path int true "Course group ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-gradingschemes/by-course-group/{courseGroupId} [get]
func (h *GradingSchemeHandler) ListByCourseGroup(c *gin.Context) {
	courseGroupID, err := pathID(c, "courseGroupId")
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.schemes.ListByCourseGroup(c.Request.Context(), courseGroupID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get grading scheme entry
// @Tags GradingSchemes
// @Produce json
// @Param id path int true "Scheme ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-gradingschemes/{id} [get]
func (h *GradingSchemeHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	scheme, err := h.schemes.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scheme, nil)
}

// Update godoc
// @Summary Update grading scheme entry
// @Tags GradingSchemes
// @Accept json
// @Produce json
// @Param id path int true "Scheme ID"
// @Param payload body service.UpdateGradingSchemeRequest true "Scheme payload"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-gradingschemes/{id} [patch]
func (h *GradingSchemeHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateGradingSchemeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	scheme, err := h.schemes.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scheme, nil)
}

// Delete godoc
// @Summary Remove grading scheme entry
// @Tags GradingSchemes
// @Produce json
// @Param id path int true "Scheme ID"
// @Success 200 {object} response.Envelope
// @Router /courses-groups-gradingschemes/{id} [delete]
func (h *GradingSchemeHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.schemes.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed(id, "grading scheme"), nil)
}
