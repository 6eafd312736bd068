package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type partialEvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.PartialEvaluation) error
	FindByID(ctx context.Context, id int64) (*models.PartialEvaluation, error)
	ListByCourseGroup(ctx context.Context, courseGroupID int64) ([]models.PartialEvaluation, error)
	Update(ctx context.Context, evaluation *models.PartialEvaluation) error
	SetDeleted(ctx context.Context, id int64, deleted bool) error
}

// CreatePartialEvaluationRequest declares a graded activity in a partial.
type CreatePartialEvaluationRequest struct {
	CourseGroupID int64   `json:"courseGroupId" validate:"required,min=1"`
	Name          *string `json:"name" validate:"omitempty,max=150"`
	Type          string  `json:"type" validate:"required,max=50"`
	Slot          int     `json:"slot" validate:"min=0,max=50"`
	Partial       int     `json:"partial" validate:"required,min=1,max=3"`
}

// UpdatePartialEvaluationRequest merges the provided fields into the row.
type UpdatePartialEvaluationRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=150"`
	Type    *string `json:"type" validate:"omitempty,max=50"`
	Slot    *int    `json:"slot" validate:"omitempty,min=0,max=50"`
	Partial *int    `json:"partial" validate:"omitempty,min=1,max=3"`
}

// PartialEvaluationService manages evaluations declared per course group.
type PartialEvaluationService struct {
	repo      partialEvaluationRepository
	lookup    RecordLookup
	policy    EnforcementPolicy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPartialEvaluationService constructs the service.
func NewPartialEvaluationService(repo partialEvaluationRepository, lookup RecordLookup, policy EnforcementPolicy, validate *validator.Validate, logger *zap.Logger) *PartialEvaluationService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartialEvaluationService{repo: repo, lookup: lookup, policy: policy, validator: validate, logger: logger}
}

// Create stores an evaluation while its partial is open.
func (s *PartialEvaluationService) Create(ctx context.Context, req CreatePartialEvaluationRequest) (*models.PartialEvaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid partial evaluation payload")
	}
	if _, err := s.lookup.CourseGroup(ctx, req.CourseGroupID); err != nil {
		return nil, err
	}
	if err := ensurePartialOpen(ctx, s.lookup, s.policy, req.CourseGroupID, req.Partial); err != nil {
		return nil, err
	}
	evaluation := &models.PartialEvaluation{
		CourseGroupID: req.CourseGroupID,
		Name:          req.Name,
		Type:          req.Type,
		Slot:          req.Slot,
		Partial:       req.Partial,
	}
	if err := s.repo.Create(ctx, evaluation); err != nil {
		return nil, translateDBError(s.logger, "create partial evaluation", err)
	}
	return evaluation, nil
}

// ListByCourseGroup returns the evaluations of a course group.
func (s *PartialEvaluationService) ListByCourseGroup(ctx context.Context, courseGroupID int64) ([]models.PartialEvaluation, error) {
	items, err := s.repo.ListByCourseGroup(ctx, courseGroupID)
	if err != nil {
		return nil, translateDBError(s.logger, "list partial evaluations", err)
	}
	if items == nil {
		items = []models.PartialEvaluation{}
	}
	return items, nil
}

// Get returns an evaluation.
func (s *PartialEvaluationService) Get(ctx context.Context, id int64) (*models.PartialEvaluation, error) {
	evaluation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find partial evaluation", err, "partial evaluation not found")
	}
	return evaluation, nil
}

// Update merges the request while the target partial is open.
func (s *PartialEvaluationService) Update(ctx context.Context, id int64, req UpdatePartialEvaluationRequest) (*models.PartialEvaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid partial evaluation payload")
	}
	evaluation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Partial != nil {
		evaluation.Partial = *req.Partial
	}
	if err := ensurePartialOpen(ctx, s.lookup, s.policy, evaluation.CourseGroupID, evaluation.Partial); err != nil {
		return nil, err
	}
	if req.Name != nil {
		evaluation.Name = req.Name
	}
	if req.Type != nil {
		evaluation.Type = *req.Type
	}
	if req.Slot != nil {
		evaluation.Slot = *req.Slot
	}
	if err := s.repo.Update(ctx, evaluation); err != nil {
		return nil, translateDBError(s.logger, "update partial evaluation", err)
	}
	return evaluation, nil
}

// Delete soft deletes an evaluation. Under LegacyEvaluationRemove the row
// keeps is_deleted = false, matching historic clients.
func (s *PartialEvaluationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SetDeleted(ctx, id, !s.policy.LegacyEvaluationRemove); err != nil {
		return notFoundOr(s.logger, "delete partial evaluation", err, "partial evaluation not found")
	}
	return nil
}
