package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type courseGroupRepository interface {
	Exists(ctx context.Context, cg models.CourseGroup) (bool, error)
	Create(ctx context.Context, cg *models.CourseGroup) error
	FindByID(ctx context.Context, id int64) (*models.CourseGroupDetail, error)
	ListByCourse(ctx context.Context, courseID int64, limit, offset int) ([]models.CourseGroupDetail, int, error)
	ListAllByCourse(ctx context.Context, courseID int64) ([]models.CourseGroupDetail, error)
	Update(ctx context.Context, cg *models.CourseGroup) error
	SoftDelete(ctx context.Context, id int64) error
	SoftDeleteByCourse(ctx context.Context, courseID int64) (int64, error)
}

// CreateCourseGroupRequest assigns a teacher to teach a course to a group.
type CreateCourseGroupRequest struct {
	CourseID int64  `json:"courseId" validate:"required,min=1"`
	GroupID  int64  `json:"groupId" validate:"required,min=1"`
	UserID   int64  `json:"userId" validate:"required,min=1"`
	Schedule string `json:"schedule" validate:"max=150"`
}

// UpdateCourseGroupRequest merges the provided fields into the assignment.
type UpdateCourseGroupRequest struct {
	CourseID *int64  `json:"courseId" validate:"omitempty,min=1"`
	GroupID  *int64  `json:"groupId" validate:"omitempty,min=1"`
	UserID   *int64  `json:"userId" validate:"omitempty,min=1"`
	Schedule *string `json:"schedule" validate:"omitempty,max=150"`
}

// CourseGroupService handles teacher assignment use-cases.
type CourseGroupService struct {
	repo      courseGroupRepository
	lookup    RecordLookup
	policy    EnforcementPolicy
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseGroupService constructs the course group service.
func NewCourseGroupService(repo courseGroupRepository, lookup RecordLookup, policy EnforcementPolicy, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseGroupService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseGroupService{repo: repo, lookup: lookup, policy: policy, cache: cache, validator: validate, logger: logger}
}

func (s *CourseGroupService) ensureUnique(ctx context.Context, cg models.CourseGroup) error {
	if !s.policy.DuplicateAssignment {
		return nil
	}
	taken, err := s.repo.Exists(ctx, cg)
	if err != nil {
		return translateDBError(s.logger, "check course group", err)
	}
	if taken {
		return duplicate("the course is already assigned to this group, teacher and schedule")
	}
	return nil
}

// Create assigns a course to a group and teacher.
func (s *CourseGroupService) Create(ctx context.Context, req CreateCourseGroupRequest) (*models.CourseGroupDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid course group payload")
	}
	if _, err := s.lookup.Course(ctx, req.CourseID); err != nil {
		return nil, err
	}
	if _, err := s.lookup.Group(ctx, req.GroupID); err != nil {
		return nil, err
	}
	if _, err := s.lookup.User(ctx, req.UserID); err != nil {
		return nil, err
	}
	schedule := strings.TrimSpace(req.Schedule)
	if schedule == "" {
		schedule = models.DefaultSchedule
	}
	cg := models.CourseGroup{CourseID: req.CourseID, GroupID: req.GroupID, UserID: req.UserID, Schedule: schedule}
	if err := s.ensureUnique(ctx, cg); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &cg); err != nil {
		return nil, translateDBError(s.logger, "create course group", err)
	}
	return s.Get(ctx, cg.ID)
}

// ListByCourse returns the assignments of a course.
func (s *CourseGroupService) ListByCourse(ctx context.Context, courseID int64, q models.PageQuery) ([]models.CourseGroupDetail, *models.Pagination, error) {
	q = q.Normalize()
	items, total, err := s.repo.ListByCourse(ctx, courseID, q.Limit, q.Offset)
	if err != nil {
		return nil, nil, translateDBError(s.logger, "list course groups", err)
	}
	return items, pageOf(q, total), nil
}

// ListAllByCourse returns every live assignment of a course.
func (s *CourseGroupService) ListAllByCourse(ctx context.Context, courseID int64) ([]models.CourseGroupDetail, error) {
	items, err := s.repo.ListAllByCourse(ctx, courseID)
	if err != nil {
		return nil, translateDBError(s.logger, "list course groups", err)
	}
	return items, nil
}

// Get returns an assignment with course, group, period and teacher names.
func (s *CourseGroupService) Get(ctx context.Context, id int64) (*models.CourseGroupDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find course group", err, "course group not found")
	}
	return detail, nil
}

// Update merges the request into the assignment, resolving changed references.
func (s *CourseGroupService) Update(ctx context.Context, id int64, req UpdateCourseGroupRequest) (*models.CourseGroupDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid course group payload")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cg := current.CourseGroup
	if req.CourseID != nil && *req.CourseID != cg.CourseID {
		if _, err := s.lookup.Course(ctx, *req.CourseID); err != nil {
			return nil, err
		}
		cg.CourseID = *req.CourseID
	}
	if req.GroupID != nil && *req.GroupID != cg.GroupID {
		if _, err := s.lookup.Group(ctx, *req.GroupID); err != nil {
			return nil, err
		}
		cg.GroupID = *req.GroupID
	}
	if req.UserID != nil && *req.UserID != cg.UserID {
		if _, err := s.lookup.User(ctx, *req.UserID); err != nil {
			return nil, err
		}
		cg.UserID = *req.UserID
	}
	if req.Schedule != nil {
		cg.Schedule = strings.TrimSpace(*req.Schedule)
		if cg.Schedule == "" {
			cg.Schedule = models.DefaultSchedule
		}
	}
	if cg != current.CourseGroup {
		if err := s.ensureUnique(ctx, cg); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, &cg); err != nil {
		return nil, translateDBError(s.logger, "update course group", err)
	}
	_ = s.cache.Invalidate(ctx, PeriodReportKey(current.PeriodID))
	return s.Get(ctx, id)
}

// Delete soft deletes an assignment.
func (s *CourseGroupService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete course group", err, "course group not found")
	}
	_ = s.cache.InvalidatePattern(ctx, "reports:period:*")
	return nil
}

// RemoveByCourseID soft deletes every assignment of a course.
func (s *CourseGroupService) RemoveByCourseID(ctx context.Context, courseID int64) error {
	removed, err := s.repo.SoftDeleteByCourse(ctx, courseID)
	if err != nil {
		return translateDBError(s.logger, "delete course groups by course", err)
	}
	if removed > 0 {
		_ = s.cache.InvalidatePattern(ctx, "reports:period:*")
	}
	return nil
}
