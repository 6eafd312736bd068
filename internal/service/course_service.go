package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type courseRepository interface {
	List(ctx context.Context, teacherID *int64, limit, offset int) ([]models.Course, int, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	SoftDelete(ctx context.Context, id int64) error
}

// courseGroupCascade is the slice of course group behaviour a course needs.
type courseGroupCascade interface {
	ListAllByCourse(ctx context.Context, courseID int64) ([]models.CourseGroupDetail, error)
	RemoveByCourseID(ctx context.Context, courseID int64) error
}

// CourseRequest holds payload for creating or renaming courses.
type CourseRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CourseService handles course use-cases.
type CourseService struct {
	repo         courseRepository
	courseGroups courseGroupCascade
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, courseGroups courseGroupCascade, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, courseGroups: courseGroups, cache: cache, validator: validate, logger: logger}
}

// Create registers a course.
func (s *CourseService) Create(ctx context.Context, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid course payload")
	}
	course := &models.Course{Name: req.Name}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, translateDBError(s.logger, "create course", err)
	}
	return course, nil
}

// List returns courses visible to the caller. A maestro only sees courses
// with a course group assigned to them.
func (s *CourseService) List(ctx context.Context, claims *models.JWTClaims, q models.PageQuery) ([]models.Course, *models.Pagination, error) {
	q = q.Normalize()
	var teacherID *int64
	if claims != nil && claims.Role == models.RoleMaestro {
		id := claims.UserID
		teacherID = &id
	}
	courses, total, err := s.repo.List(ctx, teacherID, q.Limit, q.Offset)
	if err != nil {
		return nil, nil, translateDBError(s.logger, "list courses", err)
	}
	return courses, pageOf(q, total), nil
}

// Get returns a course with its live course groups.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find course", err, "course not found")
	}
	courseGroups, err := s.courseGroups.ListAllByCourse(ctx, id)
	if err != nil {
		return nil, translateDBError(s.logger, "list course groups of course", err)
	}
	if courseGroups == nil {
		courseGroups = []models.CourseGroupDetail{}
	}
	return &models.CourseDetail{Course: *course, CourseGroups: courseGroups}, nil
}

// Update renames a course. Cached period reports carry course names, so all
// of them are dropped.
func (s *CourseService) Update(ctx context.Context, id int64, req CourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid course payload")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find course", err, "course not found")
	}
	course.Name = req.Name
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, translateDBError(s.logger, "update course", err)
	}
	_ = s.cache.InvalidatePattern(ctx, "reports:period:*")
	return course, nil
}

// Delete removes the course's course groups and then soft deletes the course.
// The two steps are not transactional.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if err := s.courseGroups.RemoveByCourseID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete course", err, "course not found")
	}
	_ = s.cache.InvalidatePattern(ctx, "reports:period:*")
	return nil
}
