package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type partialGradeRepository interface {
	Exists(ctx context.Context, courseGroupStudentID int64, partial int, excludeID int64) (bool, error)
	Create(ctx context.Context, grade *models.PartialGrade) error
	FindByID(ctx context.Context, id int64) (*models.PartialGrade, error)
	List(ctx context.Context, courseGroupStudentID int64, partial *int) ([]models.PartialGrade, error)
	Update(ctx context.Context, grade *models.PartialGrade) error
	SoftDelete(ctx context.Context, id int64) (int64, error)
}

// CreatePartialGradeRequest records the consolidated grade of a partial.
// Date defaults to the current day.
type CreatePartialGradeRequest struct {
	CourseGroupStudentID int64   `json:"courseGroupStudentId" validate:"required,min=1"`
	Partial              int     `json:"partial" validate:"required,min=1,max=3"`
	Grade                float64 `json:"grade" validate:"min=0,max=10"`
	Date                 *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdatePartialGradeRequest merges the provided fields into the row.
type UpdatePartialGradeRequest struct {
	Partial *int     `json:"partial" validate:"omitempty,min=1,max=3"`
	Grade   *float64 `json:"grade" validate:"omitempty,min=0,max=10"`
	Date    *string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// PartialGradeService manages consolidated partial grades. Every write drops
// the cached report of the affected period.
type PartialGradeService struct {
	repo      partialGradeRepository
	lookup    RecordLookup
	policy    EnforcementPolicy
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPartialGradeService constructs the service.
func NewPartialGradeService(repo partialGradeRepository, lookup RecordLookup, policy EnforcementPolicy, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *PartialGradeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartialGradeService{
		repo:      repo,
		lookup:    lookup,
		policy:    policy,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *PartialGradeService) dateOrToday(raw *string) (time.Time, error) {
	if raw == nil {
		today := s.now().UTC()
		return time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return parseDate(*raw)
}

func (s *PartialGradeService) invalidateReport(ctx context.Context, courseGroupID int64, op string) {
	s.metrics.RecordGradeWrite("partial_grade", op)
	if !s.cache.Enabled() {
		return
	}
	period, err := s.lookup.PeriodOfCourseGroup(ctx, courseGroupID)
	if err != nil {
		s.logger.Warn("resolve period for report invalidation", zap.Int64("course_group_id", courseGroupID), zap.Error(err))
		return
	}
	if err := s.cache.Invalidate(ctx, PeriodReportKey(period.ID)); err != nil {
		s.logger.Warn("invalidate period report", zap.Int64("period_id", period.ID), zap.Error(err))
	}
}

// Create stores a partial grade for an enrollment the caller owns.
func (s *PartialGradeService) Create(ctx context.Context, claims *models.JWTClaims, req CreatePartialGradeRequest) (*models.PartialGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid partial grade payload")
	}
	date, err := s.dateOrToday(req.Date)
	if err != nil {
		return nil, invalidPayload(err, "invalid partial grade date")
	}
	enrollment, err := ensureEnrollmentOwner(ctx, s.lookup, claims, req.CourseGroupStudentID)
	if err != nil {
		return nil, err
	}
	if err := ensurePartialOpen(ctx, s.lookup, s.policy, enrollment.CourseGroupID, req.Partial); err != nil {
		return nil, err
	}
	if s.policy.DuplicatePartialGrade {
		taken, err := s.repo.Exists(ctx, req.CourseGroupStudentID, req.Partial, 0)
		if err != nil {
			return nil, translateDBError(s.logger, "check partial grade", err)
		}
		if taken {
			return nil, duplicate("the student already has a grade for this partial")
		}
	}
	grade := &models.PartialGrade{
		CourseGroupStudentID: req.CourseGroupStudentID,
		Partial:              req.Partial,
		Grade:                req.Grade,
		Date:                 date,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, translateDBError(s.logger, "create partial grade", err)
	}
	s.invalidateReport(ctx, enrollment.CourseGroupID, "create")
	return grade, nil
}

// List returns an enrollment's partial grades, optionally for one partial.
func (s *PartialGradeService) List(ctx context.Context, courseGroupStudentID int64, partial *int) ([]models.PartialGrade, error) {
	if partial != nil && !models.ValidPartial(*partial) {
		return nil, invalidPayload(nil, "partial must be between 1 and 3")
	}
	items, err := s.repo.List(ctx, courseGroupStudentID, partial)
	if err != nil {
		return nil, translateDBError(s.logger, "list partial grades", err)
	}
	if items == nil {
		items = []models.PartialGrade{}
	}
	return items, nil
}

// Get returns a partial grade.
func (s *PartialGradeService) Get(ctx context.Context, id int64) (*models.PartialGrade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find partial grade", err, "partial grade not found")
	}
	return grade, nil
}

// Update merges the request while the target partial is open.
func (s *PartialGradeService) Update(ctx context.Context, id int64, req UpdatePartialGradeRequest) (*models.PartialGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid partial grade payload")
	}
	grade, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.lookup.Enrollment(ctx, grade.CourseGroupStudentID)
	if err != nil {
		return nil, err
	}
	if req.Partial != nil && *req.Partial != grade.Partial {
		if s.policy.DuplicatePartialGrade {
			taken, err := s.repo.Exists(ctx, grade.CourseGroupStudentID, *req.Partial, id)
			if err != nil {
				return nil, translateDBError(s.logger, "check partial grade", err)
			}
			if taken {
				return nil, duplicate("the student already has a grade for this partial")
			}
		}
		grade.Partial = *req.Partial
	}
	if err := ensurePartialOpen(ctx, s.lookup, s.policy, enrollment.CourseGroupID, grade.Partial); err != nil {
		return nil, err
	}
	if req.Grade != nil {
		grade.Grade = *req.Grade
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, invalidPayload(err, "invalid partial grade date")
		}
		grade.Date = date
	}
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, translateDBError(s.logger, "update partial grade", err)
	}
	s.invalidateReport(ctx, enrollment.CourseGroupID, "update")
	return grade, nil
}

// Delete soft deletes a partial grade. Removing it again is not an error.
// The report is only invalidated while the enrollment is still live.
func (s *PartialGradeService) Delete(ctx context.Context, id int64) error {
	courseGroupStudentID, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return notFoundOr(s.logger, "delete partial grade", err, "partial grade not found")
	}
	if enrollment, err := s.lookup.Enrollment(ctx, courseGroupStudentID); err == nil {
		s.invalidateReport(ctx, enrollment.CourseGroupID, "delete")
	}
	return nil
}
