package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

type groupService interface {
	Create(ctx context.Context, req service.CreateGroupRequest) (*models.GroupDetail, error)
	List(ctx context.Context, q models.PageQuery) ([]models.GroupDetail, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.GroupDetail, error)
	Update(ctx context.Context, id int64, req service.UpdateGroupRequest) (*models.GroupDetail, error)
	Delete(ctx context.Context, id int64) error
}

type groupReporter interface {
	FindBoletas(ctx context.Context, groupID int64) (*dto.BoletasResponse, error)
	FindBoletasFinales(ctx context.Context, groupID int64) (*dto.BoletasResponse, error)
	FindGroupsWithStudentsDetailed(ctx context.Context, q dto.GroupsDetailedQuery) (*dto.GroupsDetailedResponse, error)
}

// GroupHandler exposes group endpoints, boletas and the detailed listing.
type GroupHandler struct {
	groups  groupService
	reports groupReporter
}

// NewGroupHandler constructs GroupHandler.
func NewGroupHandler(groups groupService, reports groupReporter) *GroupHandler {
	return &GroupHandler{groups: groups, reports: reports}
}

// Create godoc
// @Summary Create group
// @Tags Groups
// @Accept json
// @Produce json
// @Param payload body service.CreateGroupRequest true "Group payload"
// @Success 201 {object} response.Envelope
// @Router /groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var req service.CreateGroupRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	group, err := h.groups.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, group)
}

// List godoc
// @Summary List groups with their period
// @Tags Groups
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /groups [get]
func (h *GroupHandler) List(c *gin.Context) {
	q, err := pageQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	groups, pagination, err := h.groups.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, pagination)
}

// Get godoc
// @Summary Get group with its course groups
// @Tags Groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	group, err := h.groups.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Update godoc
// @Summary Update group
// @Tags Groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param payload body service.UpdateGroupRequest true "Group payload"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [patch]
func (h *GroupHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateGroupRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	group, err := h.groups.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}

// Delete godoc
// @Summary Remove group
// @Tags Groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.groups.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed(id, "group"), nil)
}

// Detailed godoc
// @Summary Groups with their students, courses and grades
// @Tags Groups
// @Produce json
// @Param periodId query int false "Period filter"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /groups/detailed [get]
func (h *GroupHandler) Detailed(c *gin.Context) {
	page, err := pageQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	q := dto.GroupsDetailedQuery{Limit: page.Limit, Offset: page.Offset}
	if raw := c.Query("periodId"); raw != "" {
		periodID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || periodID <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "periodId must be a positive integer"))
			return
		}
		q.PeriodID = &periodID
	}
	listing, err := h.reports.FindGroupsWithStudentsDetailed(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, listing, nil)
}

// Boletas godoc
// @Summary Partial report cards of a group
// @Tags Groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/boletas [get]
func (h *GroupHandler) Boletas(c *gin.Context) {
	h.boletas(c, h.reports.FindBoletas)
}

// BoletasFinales godoc
// @Summary Final report cards of a group
// @Tags Groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/boletas-finales [get]
func (h *GroupHandler) BoletasFinales(c *gin.Context) {
	h.boletas(c, h.reports.FindBoletasFinales)
}

func (h *GroupHandler) boletas(c *gin.Context, find func(context.Context, int64) (*dto.BoletasResponse, error)) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	boletas, err := find(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, boletas, nil)
}
