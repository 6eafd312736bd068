package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type periodRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.Period, int, error)
	FindByID(ctx context.Context, id int64) (*models.Period, error)
	Create(ctx context.Context, period *models.Period) error
	Update(ctx context.Context, period *models.Period) error
	SoftDelete(ctx context.Context, id int64) error
}

// CreatePeriodRequest holds payload for creating periods. Omitted partial
// flags default to the first partial open.
type CreatePeriodRequest struct {
	Name                string    `json:"name" validate:"required,max=100"`
	StartDate           time.Time `json:"startDate" validate:"required"`
	EndDate             time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	FirstPartialActive  *bool     `json:"firstPartialActive"`
	SecondPartialActive *bool     `json:"secondPartialActive"`
	ThirdPartialActive  *bool     `json:"thirdPartialActive"`
	IsActive            *bool     `json:"isActive"`
}

// UpdatePeriodRequest merges the provided fields into the period.
type UpdatePeriodRequest struct {
	Name                *string    `json:"name" validate:"omitempty,max=100"`
	StartDate           *time.Time `json:"startDate"`
	EndDate             *time.Time `json:"endDate"`
	FirstPartialActive  *bool      `json:"firstPartialActive"`
	SecondPartialActive *bool      `json:"secondPartialActive"`
	ThirdPartialActive  *bool      `json:"thirdPartialActive"`
	IsActive            *bool      `json:"isActive"`
}

// PeriodService handles period use-cases.
type PeriodService struct {
	repo      periodRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService constructs the period service.
func NewPeriodService(repo periodRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{repo: repo, cache: cache, validator: validate, logger: logger}
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// Create registers a new period.
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*models.Period, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid period payload")
	}
	period := &models.Period{
		Name:                req.Name,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		FirstPartialActive:  boolOr(req.FirstPartialActive, true),
		SecondPartialActive: boolOr(req.SecondPartialActive, false),
		ThirdPartialActive:  boolOr(req.ThirdPartialActive, false),
		IsActive:            boolOr(req.IsActive, true),
	}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, translateDBError(s.logger, "create period", err)
	}
	return period, nil
}

// List returns periods and pagination metadata.
func (s *PeriodService) List(ctx context.Context, q models.PageQuery) ([]models.Period, *models.Pagination, error) {
	q = q.Normalize()
	periods, total, err := s.repo.List(ctx, q.Limit, q.Offset)
	if err != nil {
		return nil, nil, translateDBError(s.logger, "list periods", err)
	}
	return periods, pageOf(q, total), nil
}

// Get returns a single period.
func (s *PeriodService) Get(ctx context.Context, id int64) (*models.Period, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find period", err, "period not found")
	}
	return period, nil
}

// Update merges the request into the stored period. Toggling partial flags
// drops the cached report of the period.
func (s *PeriodService) Update(ctx context.Context, id int64, req UpdatePeriodRequest) (*models.Period, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid period payload")
	}
	period, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		period.Name = *req.Name
	}
	if req.StartDate != nil {
		period.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		period.EndDate = *req.EndDate
	}
	if period.EndDate.Before(period.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate")
	}
	period.FirstPartialActive = boolOr(req.FirstPartialActive, period.FirstPartialActive)
	period.SecondPartialActive = boolOr(req.SecondPartialActive, period.SecondPartialActive)
	period.ThirdPartialActive = boolOr(req.ThirdPartialActive, period.ThirdPartialActive)
	period.IsActive = boolOr(req.IsActive, period.IsActive)

	if err := s.repo.Update(ctx, period); err != nil {
		return nil, translateDBError(s.logger, "update period", err)
	}
	_ = s.cache.Invalidate(ctx, PeriodReportKey(id))
	return period, nil
}

// Delete soft deletes a period.
func (s *PeriodService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete period", err, "period not found")
	}
	_ = s.cache.Invalidate(ctx, PeriodReportKey(id))
	return nil
}
