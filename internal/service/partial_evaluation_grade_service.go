package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type partialEvaluationGradeRepository interface {
	Exists(ctx context.Context, partialEvaluationID, courseGroupStudentID, excludeID int64) (bool, error)
	Create(ctx context.Context, grade *models.PartialEvaluationGrade) error
	FindByID(ctx context.Context, id int64) (*models.PartialEvaluationGrade, error)
	ListByEnrollment(ctx context.Context, courseGroupStudentID int64) ([]models.PartialEvaluationGrade, error)
	Update(ctx context.Context, grade *models.PartialEvaluationGrade) error
	SoftDelete(ctx context.Context, id int64) error
}

// CreatePartialEvaluationGradeRequest grades one enrollment on one evaluation.
type CreatePartialEvaluationGradeRequest struct {
	PartialEvaluationID  int64   `json:"partialEvaluationId" validate:"required,min=1"`
	CourseGroupStudentID int64   `json:"courseGroupStudentId" validate:"required,min=1"`
	Grade                float64 `json:"grade" validate:"min=0,max=10"`
}

// UpdatePartialEvaluationGradeRequest changes the grade value.
type UpdatePartialEvaluationGradeRequest struct {
	Grade *float64 `json:"grade" validate:"required,min=0,max=10"`
}

// PartialEvaluationGradeService manages per-evaluation grades.
type PartialEvaluationGradeService struct {
	repo      partialEvaluationGradeRepository
	lookup    RecordLookup
	policy    EnforcementPolicy
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPartialEvaluationGradeService constructs the service.
func NewPartialEvaluationGradeService(repo partialEvaluationGradeRepository, lookup RecordLookup, policy EnforcementPolicy, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PartialEvaluationGradeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartialEvaluationGradeService{repo: repo, lookup: lookup, policy: policy, metrics: metrics, validator: validate, logger: logger}
}

// Create grades an enrollment the caller owns while the evaluation's partial is open.
func (s *PartialEvaluationGradeService) Create(ctx context.Context, claims *models.JWTClaims, req CreatePartialEvaluationGradeRequest) (*models.PartialEvaluationGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid partial evaluation grade payload")
	}
	enrollment, err := ensureEnrollmentOwner(ctx, s.lookup, claims, req.CourseGroupStudentID)
	if err != nil {
		return nil, err
	}
	evaluation, err := s.lookup.PartialEvaluation(ctx, req.PartialEvaluationID)
	if err != nil {
		return nil, err
	}
	if evaluation.CourseGroupID != enrollment.CourseGroupID {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, "the evaluation does not belong to the student's course group")
	}
	if err := ensurePartialOpen(ctx, s.lookup, s.policy, evaluation.CourseGroupID, evaluation.Partial); err != nil {
		return nil, err
	}
	if s.policy.DuplicateEvaluationGrade {
		taken, err := s.repo.Exists(ctx, req.PartialEvaluationID, req.CourseGroupStudentID, 0)
		if err != nil {
			return nil, translateDBError(s.logger, "check partial evaluation grade", err)
		}
		if taken {
			return nil, duplicate("the student already has a grade for this evaluation")
		}
	}
	grade := &models.PartialEvaluationGrade{
		PartialEvaluationID:  req.PartialEvaluationID,
		CourseGroupStudentID: req.CourseGroupStudentID,
		Grade:                req.Grade,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, translateDBError(s.logger, "create partial evaluation grade", err)
	}
	s.metrics.RecordGradeWrite("evaluation_grade", "create")
	return grade, nil
}

// ListByEnrollment returns the evaluation grades of an enrollment.
func (s *PartialEvaluationGradeService) ListByEnrollment(ctx context.Context, courseGroupStudentID int64) ([]models.PartialEvaluationGrade, error) {
	items, err := s.repo.ListByEnrollment(ctx, courseGroupStudentID)
	if err != nil {
		return nil, translateDBError(s.logger, "list partial evaluation grades", err)
	}
	if items == nil {
		items = []models.PartialEvaluationGrade{}
	}
	return items, nil
}

// Update changes a grade while the evaluation's partial is open.
func (s *PartialEvaluationGradeService) Update(ctx context.Context, id int64, req UpdatePartialEvaluationGradeRequest) (*models.PartialEvaluationGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid partial evaluation grade payload")
	}
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find partial evaluation grade", err, "partial evaluation grade not found")
	}
	evaluation, err := s.lookup.PartialEvaluation(ctx, grade.PartialEvaluationID)
	if err != nil {
		return nil, err
	}
	if err := ensurePartialOpen(ctx, s.lookup, s.policy, evaluation.CourseGroupID, evaluation.Partial); err != nil {
		return nil, err
	}
	grade.Grade = *req.Grade
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, translateDBError(s.logger, "update partial evaluation grade", err)
	}
	s.metrics.RecordGradeWrite("evaluation_grade", "update")
	return grade, nil
}

// Delete soft deletes an evaluation grade.
func (s *PartialEvaluationGradeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete partial evaluation grade", err, "partial evaluation grade not found")
	}
	s.metrics.RecordGradeWrite("evaluation_grade", "delete")
	return nil
}
