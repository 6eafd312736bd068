package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type finalGradeRepository interface {
	Exists(ctx context.Context, courseGroupStudentID, excludeID int64) (bool, error)
	Create(ctx context.Context, grade *models.FinalGrade) error
	FindByID(ctx context.Context, id int64) (*models.FinalGrade, error)
	List(ctx context.Context, courseGroupStudentID int64) ([]models.FinalGrade, error)
	Update(ctx context.Context, grade *models.FinalGrade) error
	SoftDelete(ctx context.Context, id int64) error
}

// CreateFinalGradeRequest records the term-end grade of an enrollment.
type CreateFinalGradeRequest struct {
	CourseGroupStudentID int64   `json:"courseGroupStudentId" validate:"required,min=1"`
	Grade                int     `json:"grade" validate:"min=0,max=10"`
	GradeOrdinary        *int    `json:"gradeOrdinary" validate:"omitempty,min=0,max=10"`
	GradeExtraordinary   *int    `json:"gradeExtraordinary" validate:"omitempty,min=0,max=10"`
	Date                 *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Type                 string  `json:"type" validate:"required,max=50"`
}

// UpdateFinalGradeRequest merges the provided fields into the row.
type UpdateFinalGradeRequest struct {
	Grade              *int    `json:"grade" validate:"omitempty,min=0,max=10"`
	GradeOrdinary      *int    `json:"gradeOrdinary" validate:"omitempty,min=0,max=10"`
	GradeExtraordinary *int    `json:"gradeExtraordinary" validate:"omitempty,min=0,max=10"`
	Date               *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Type               *string `json:"type" validate:"omitempty,max=50"`
}

// FinalGradeService manages final grades. Final grades are not partial
// scoped, so the period gate does not apply.
type FinalGradeService struct {
	repo      finalGradeRepository
	lookup    RecordLookup
	policy    EnforcementPolicy
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewFinalGradeService constructs the service.
func NewFinalGradeService(repo finalGradeRepository, lookup RecordLookup, policy EnforcementPolicy, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *FinalGradeService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinalGradeService{repo: repo, lookup: lookup, policy: policy, metrics: metrics, validator: validate, logger: logger, now: time.Now}
}

// Create stores the final grade of an enrollment the caller owns.
func (s *FinalGradeService) Create(ctx context.Context, claims *models.JWTClaims, req CreateFinalGradeRequest) (*models.FinalGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid final grade payload")
	}
	date := s.now().UTC().Truncate(24 * time.Hour)
	if req.Date != nil {
		parsed, err := parseDate(*req.Date)
		if err != nil {
			return nil, invalidPayload(err, "invalid final grade date")
		}
		date = parsed
	}
	if _, err := ensureEnrollmentOwner(ctx, s.lookup, claims, req.CourseGroupStudentID); err != nil {
		return nil, err
	}
	if s.policy.DuplicateFinalGrade {
		taken, err := s.repo.Exists(ctx, req.CourseGroupStudentID, 0)
		if err != nil {
			return nil, translateDBError(s.logger, "check final grade", err)
		}
		if taken {
			return nil, duplicate("the student already has a final grade")
		}
	}
	grade := &models.FinalGrade{
		CourseGroupStudentID: req.CourseGroupStudentID,
		Grade:                req.Grade,
		GradeOrdinary:        req.GradeOrdinary,
		GradeExtraordinary:   req.GradeExtraordinary,
		Date:                 date,
		Type:                 req.Type,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, translateDBError(s.logger, "create final grade", err)
	}
	s.metrics.RecordGradeWrite("final_grade", "create")
	return grade, nil
}

// List returns the final grades of an enrollment, newest first.
func (s *FinalGradeService) List(ctx context.Context, courseGroupStudentID int64) ([]models.FinalGrade, error) {
	items, err := s.repo.List(ctx, courseGroupStudentID)
	if err != nil {
		return nil, translateDBError(s.logger, "list final grades", err)
	}
	if items == nil {
		items = []models.FinalGrade{}
	}
	return items, nil
}

// Get returns a final grade.
func (s *FinalGradeService) Get(ctx context.Context, id int64) (*models.FinalGrade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find final grade", err, "final grade not found")
	}
	return grade, nil
}

// Update merges the request into a final grade.
func (s *FinalGradeService) Update(ctx context.Context, id int64, req UpdateFinalGradeRequest) (*models.FinalGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid final grade payload")
	}
	grade, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Grade != nil {
		grade.Grade = *req.Grade
	}
	if req.GradeOrdinary != nil {
		grade.GradeOrdinary = req.GradeOrdinary
	}
	if req.GradeExtraordinary != nil {
		grade.GradeExtraordinary = req.GradeExtraordinary
	}
	if req.Type != nil {
		grade.Type = *req.Type
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, invalidPayload(err, "invalid final grade date")
		}
		grade.Date = date
	}
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, translateDBError(s.logger, "update final grade", err)
	}
	s.metrics.RecordGradeWrite("final_grade", "update")
	return grade, nil
}

// Delete soft deletes a final grade.
func (s *FinalGradeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete final grade", err, "final grade not found")
	}
	s.metrics.RecordGradeWrite("final_grade", "delete")
	return nil
}
