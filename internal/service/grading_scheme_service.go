package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type gradingSchemeRepository interface {
	Create(ctx context.Context, scheme *models.GradingScheme) error
	FindByID(ctx context.Context, id int64) (*models.GradingScheme, error)
	ListByCourseGroup(ctx context.Context, courseGroupID int64) ([]models.GradingScheme, error)
	Update(ctx context.Context, scheme *models.GradingScheme) error
	SoftDelete(ctx context.Context, id int64) error
}

// CreateGradingSchemeRequest weights an evaluation type in a course group.
// Percentages of a course group are not required to add up to 100.
type CreateGradingSchemeRequest struct {
	CourseGroupID int64  `json:"courseGroupId" validate:"required,min=1"`
	Type          string `json:"type" validate:"required,max=50"`
	Percentage    int    `json:"percentage" validate:"min=0,max=100"`
}

// UpdateGradingSchemeRequest merges the provided fields into the row.
type UpdateGradingSchemeRequest struct {
	CourseGroupID *int64  `json:"courseGroupId" validate:"omitempty,min=1"`
	Type          *string `json:"type" validate:"omitempty,max=50"`
	Percentage    *int    `json:"percentage" validate:"omitempty,min=0,max=100"`
}

// GradingSchemeService handles grading scheme use-cases.
type GradingSchemeService struct {
	repo      gradingSchemeRepository
	lookup    RecordLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradingSchemeService constructs the grading scheme service.
func NewGradingSchemeService(repo gradingSchemeRepository, lookup RecordLookup, validate *validator.Validate, logger *zap.Logger) *GradingSchemeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingSchemeService{repo: repo, lookup: lookup, validator: validate, logger: logger}
}

// Create stores a scheme row for an existing course group.
func (s *GradingSchemeService) Create(ctx context.Context, req CreateGradingSchemeRequest) (*models.GradingScheme, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid grading scheme payload")
	}
	if _, err := s.lookup.CourseGroup(ctx, req.CourseGroupID); err != nil {
		return nil, err
	}
	scheme := &models.GradingScheme{CourseGroupID: req.CourseGroupID, Type: req.Type, Percentage: req.Percentage}
	if err := s.repo.Create(ctx, scheme); err != nil {
		return nil, translateDBError(s.logger, "create grading scheme", err)
	}
	return scheme, nil
}

// ListByCourseGroup returns the scheme rows of a course group.
func (s *GradingSchemeService) ListByCourseGroup(ctx context.Context, courseGroupID int64) ([]models.GradingScheme, error) {
	items, err := s.repo.ListByCourseGroup(ctx, courseGroupID)
	if err != nil {
		return nil, translateDBError(s.logger, "list grading schemes", err)
	}
	if items == nil {
		items = []models.GradingScheme{}
	}
	return items, nil
}

// Get returns a scheme row.
func (s *GradingSchemeService) Get(ctx context.Context, id int64) (*models.GradingScheme, error) {
	scheme, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find grading scheme", err, "grading scheme not found")
	}
	return scheme, nil
}

// Update merges the request into the scheme row.
func (s *GradingSchemeService) Update(ctx context.Context, id int64, req UpdateGradingSchemeRequest) (*models.GradingScheme, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid grading scheme payload")
	}
	scheme, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CourseGroupID != nil && *req.CourseGroupID != scheme.CourseGroupID {
		if _, err := s.lookup.CourseGroup(ctx, *req.CourseGroupID); err != nil {
			return nil, err
		}
		scheme.CourseGroupID = *req.CourseGroupID
	}
	if req.Type != nil {
		scheme.Type = *req.Type
	}
	if req.Percentage != nil {
		scheme.Percentage = *req.Percentage
	}
	if err := s.repo.Update(ctx, scheme); err != nil {
		return nil, translateDBError(s.logger, "update grading scheme", err)
	}
	return scheme, nil
}

// Delete soft deletes a scheme row.
func (s *GradingSchemeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete grading scheme", err, "grading scheme not found")
	}
	return nil
}
