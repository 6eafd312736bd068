package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type groupRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.GroupDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.GroupDetail, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	SoftDelete(ctx context.Context, id int64) error
}

type groupCourseGroupReader interface {
	ListByGroup(ctx context.Context, groupID int64) ([]models.CourseGroupDetail, error)
}

// CreateGroupRequest holds payload for creating groups.
type CreateGroupRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Semester int    `json:"semester" validate:"required,min=1"`
	PeriodID int64  `json:"periodId" validate:"required,min=1"`
}

// UpdateGroupRequest merges the provided fields into the group.
type UpdateGroupRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=50"`
	Semester *int    `json:"semester" validate:"omitempty,min=1"`
	PeriodID *int64  `json:"periodId" validate:"omitempty,min=1"`
}

// GroupService handles group use-cases.
type GroupService struct {
	repo         groupRepository
	courseGroups groupCourseGroupReader
	lookup       RecordLookup
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewGroupService constructs the group service.
func NewGroupService(repo groupRepository, courseGroups groupCourseGroupReader, lookup RecordLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{repo: repo, courseGroups: courseGroups, lookup: lookup, cache: cache, validator: validate, logger: logger}
}

// Create registers a group under an existing period.
func (s *GroupService) Create(ctx context.Context, req CreateGroupRequest) (*models.GroupDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid group payload")
	}
	period, err := s.lookup.Period(ctx, req.PeriodID)
	if err != nil {
		return nil, err
	}
	group := &models.Group{Name: req.Name, Semester: req.Semester, PeriodID: period.ID}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, translateDBError(s.logger, "create group", err)
	}
	detail := &models.GroupDetail{Group: *group, PeriodName: period.Name}
	detail.Hydrate()
	return detail, nil
}

// List returns groups with their period.
func (s *GroupService) List(ctx context.Context, q models.PageQuery) ([]models.GroupDetail, *models.Pagination, error) {
	q = q.Normalize()
	groups, total, err := s.repo.List(ctx, q.Limit, q.Offset)
	if err != nil {
		return nil, nil, translateDBError(s.logger, "list groups", err)
	}
	return groups, pageOf(q, total), nil
}

// Get returns a group with its period and live course groups.
func (s *GroupService) Get(ctx context.Context, id int64) (*models.GroupDetail, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find group", err, "group not found")
	}
	courseGroups, err := s.courseGroups.ListByGroup(ctx, id)
	if err != nil {
		return nil, translateDBError(s.logger, "list group course groups", err)
	}
	group.CourseGroups = courseGroups
	return group, nil
}

// Update merges the request into the group. A changed periodId is resolved
// against live periods.
func (s *GroupService) Update(ctx context.Context, id int64, req UpdateGroupRequest) (*models.GroupDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid group payload")
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find group", err, "group not found")
	}
	group := current.Group
	periodName := current.PeriodName
	previousPeriod := group.PeriodID
	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Semester != nil {
		group.Semester = *req.Semester
	}
	if req.PeriodID != nil && *req.PeriodID != group.PeriodID {
		period, err := s.lookup.Period(ctx, *req.PeriodID)
		if err != nil {
			return nil, err
		}
		group.PeriodID = period.ID
		periodName = period.Name
	}
	if err := s.repo.Update(ctx, &group); err != nil {
		return nil, translateDBError(s.logger, "update group", err)
	}
	_ = s.cache.Invalidate(ctx, PeriodReportKey(previousPeriod))
	if previousPeriod != group.PeriodID {
		_ = s.cache.Invalidate(ctx, PeriodReportKey(group.PeriodID))
	}
	detail := &models.GroupDetail{Group: group, PeriodName: periodName}
	detail.Hydrate()
	return detail, nil
}

// Delete soft deletes a group.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete group", err, "group not found")
	}
	_ = s.cache.InvalidatePattern(ctx, "reports:period:*")
	return nil
}
