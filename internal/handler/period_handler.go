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

type periodService interface {
	Create(ctx context.Context, req service.CreatePeriodRequest) (*models.Period, error)
	List(ctx context.Context, q models.PageQuery) ([]models.Period, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.Period, error)
	Update(ctx context.Context, id int64, req service.UpdatePeriodRequest) (*models.Period, error)
	Delete(ctx context.Context, id int64) error
}

type periodReporter interface {
	GenerateReports(ctx context.Context, periodID int64) (*dto.PeriodReportResponse, error)
}

// PeriodHandler exposes period endpoints and the period report.
type PeriodHandler struct {
	periods periodService
	reports periodReporter
}

// NewPeriodHandler constructs PeriodHandler.
func NewPeriodHandler(periods periodService, reports periodReporter) *PeriodHandler {
	return &PeriodHandler{periods: periods, reports: reports}
}

// Create godoc
// @Summary Create period
// @Tags Periods
// @Accept json
// @Produce json
// @Param payload body service.CreatePeriodRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Router /periods [post]
func (h *PeriodHandler) Create(c *gin.Context) {
	var req service.CreatePeriodRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	period, err := h.periods.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// List godoc
// @Summary List periods
// @Tags Periods
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *PeriodHandler) List(c *gin.Context) {
	q, err := pageQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	periods, pagination, err := h.periods.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, pagination)
}

// Get godoc
// @Summary Get period
// @Tags Periods
// @Produce json
// @Param id path int true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /periods/{id} [get]
func (h *PeriodHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	period, err := h.periods.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Update godoc
// @Summary Update period
// @Tags Periods
// @Accept json
// @Produce json
// @Param id path int true "Period ID"
// @Param payload body service.UpdatePeriodRequest true "Period payload"
// @Success 200 {object} response.Envelope
// @Router /periods/{id} [patch]
func (h *PeriodHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdatePeriodRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	period, err := h.periods.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// Delete godoc
// @Summary Remove period
// @Tags Periods
// @Produce json
// @Param id path int true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /periods/{id} [delete]
func (h *PeriodHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.periods.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed(id, "period"), nil)
}

// Reports godoc
// @Summary Academic report of a period for its active partial
// @Tags Periods
// @Produce json
// @Param id path int true "Period ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /periods/{id}/reports [get]
func (h *PeriodHandler) Reports(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reports.GenerateReports(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
