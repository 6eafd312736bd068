package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type courseGroupStudentRepository interface {
	Exists(ctx context.Context, courseGroupID, studentID int64) (bool, error)
	Create(ctx context.Context, enrollment *models.CourseGroupStudent) error
	FindByID(ctx context.Context, id int64) (*models.CourseGroupStudentDetail, error)
	ListByCourseGroup(ctx context.Context, courseGroupID int64, limit, offset int) ([]models.CourseGroupStudentDetail, int, error)
	ListStudentsByGroup(ctx context.Context, groupID int64) ([]models.Student, error)
	SoftDelete(ctx context.Context, id int64) error
}

// EnrollStudentRequest enrolls a student in a course group.
type EnrollStudentRequest struct {
	CourseGroupID int64 `json:"courseGroupId" validate:"required,min=1"`
	StudentID     int64 `json:"studentId" validate:"required,min=1"`
}

// CourseGroupStudentService handles enrollment use-cases.
type CourseGroupStudentService struct {
	repo      courseGroupStudentRepository
	lookup    RecordLookup
	policy    EnforcementPolicy
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseGroupStudentService constructs the enrollment service.
func NewCourseGroupStudentService(repo courseGroupStudentRepository, lookup RecordLookup, policy EnforcementPolicy, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseGroupStudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseGroupStudentService{repo: repo, lookup: lookup, policy: policy, cache: cache, validator: validate, logger: logger}
}

// Create enrolls a student. With the duplicate enrollment policy on, a second
// live enrollment of the same student in the course group is rejected.
func (s *CourseGroupStudentService) Create(ctx context.Context, claims *models.JWTClaims, req EnrollStudentRequest) (*models.CourseGroupStudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid enrollment payload")
	}
	cg, err := s.lookup.CourseGroup(ctx, req.CourseGroupID)
	if err != nil {
		return nil, err
	}
	if err := ensureCourseGroupOwner(claims, cg); err != nil {
		return nil, err
	}
	if _, err := s.lookup.Student(ctx, req.StudentID); err != nil {
		return nil, err
	}
	if s.policy.DuplicateEnrollment {
		taken, err := s.repo.Exists(ctx, req.CourseGroupID, req.StudentID)
		if err != nil {
			return nil, translateDBError(s.logger, "check enrollment", err)
		}
		if taken {
			return nil, duplicate("the student is already enrolled in this course group")
		}
	}
	enrollment := &models.CourseGroupStudent{CourseGroupID: req.CourseGroupID, StudentID: req.StudentID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, translateDBError(s.logger, "create enrollment", err)
	}
	return s.find(ctx, enrollment.ID)
}

func (s *CourseGroupStudentService) find(ctx context.Context, id int64) (*models.CourseGroupStudentDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find enrollment", err, "course group student not found")
	}
	return detail, nil
}

// ListByCourseGroup returns the enrollments of a course group the caller may see.
func (s *CourseGroupStudentService) ListByCourseGroup(ctx context.Context, claims *models.JWTClaims, courseGroupID int64, q models.PageQuery) ([]models.CourseGroupStudentDetail, *models.Pagination, error) {
	q = q.Normalize()
	cg, err := s.lookup.CourseGroup(ctx, courseGroupID)
	if err != nil {
		return nil, nil, err
	}
	if err := ensureCourseGroupOwner(claims, cg); err != nil {
		return nil, nil, err
	}
	items, total, err := s.repo.ListByCourseGroup(ctx, courseGroupID, q.Limit, q.Offset)
	if err != nil {
		return nil, nil, translateDBError(s.logger, "list enrollments", err)
	}
	return items, pageOf(q, total), nil
}

// ListStudentsByGroup returns the unique students enrolled anywhere in the group.
func (s *CourseGroupStudentService) ListStudentsByGroup(ctx context.Context, groupID int64) ([]models.Student, error) {
	if _, err := s.lookup.Group(ctx, groupID); err != nil {
		return nil, err
	}
	students, err := s.repo.ListStudentsByGroup(ctx, groupID)
	if err != nil {
		return nil, translateDBError(s.logger, "list students by group", err)
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// Get returns an enrollment the caller may see.
func (s *CourseGroupStudentService) Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.CourseGroupStudentDetail, error) {
	detail, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureCourseGroupOwner(claims, &detail.CourseGroup.CourseGroup); err != nil {
		return nil, err
	}
	return detail, nil
}

// Delete soft deletes an enrollment the caller owns.
func (s *CourseGroupStudentService) Delete(ctx context.Context, claims *models.JWTClaims, id int64) error {
	enrollment, err := s.lookup.Enrollment(ctx, id)
	if err != nil && !isNotFound(err) {
		return err
	}
	if err == nil {
		cg, err := s.lookup.CourseGroup(ctx, enrollment.CourseGroupID)
		if err != nil {
			return err
		}
		if err := ensureCourseGroupOwner(claims, cg); err != nil {
			return err
		}
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete enrollment", err, "course group student not found")
	}
	_ = s.cache.InvalidatePattern(ctx, "reports:period:*")
	return nil
}
