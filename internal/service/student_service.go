package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListNotInCourseGroup(ctx context.Context, courseGroupID int64, search string, limit, offset int) ([]models.Student, int, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	ExistsByRegistrationNumber(ctx context.Context, registrationNumber string, excludeID int64) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	SoftDelete(ctx context.Context, id int64) error
}

// CreateStudentRequest holds payload for creating students.
type CreateStudentRequest struct {
	FullName           string `json:"fullName" validate:"required,max=100"`
	Semester           int    `json:"semester" validate:"required,min=1"`
	RegistrationNumber string `json:"registrationNumber" validate:"required,max=20"`
}

// UpdateStudentRequest merges the provided fields into the student.
type UpdateStudentRequest struct {
	FullName           *string `json:"fullName" validate:"omitempty,max=100"`
	Semester           *int    `json:"semester" validate:"omitempty,min=1"`
	RegistrationNumber *string `json:"registrationNumber" validate:"omitempty,max=20"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	lookup    RecordLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, lookup RecordLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, lookup: lookup, cache: cache, validator: validate, logger: logger}
}

func (s *StudentService) ensureRegistrationFree(ctx context.Context, registrationNumber string, excludeID int64) error {
	taken, err := s.repo.ExistsByRegistrationNumber(ctx, registrationNumber, excludeID)
	if err != nil {
		return translateDBError(s.logger, "check registration number", err)
	}
	if taken {
		return duplicate(fmt.Sprintf("registrationNumber %s is already in use", registrationNumber))
	}
	return nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid student payload")
	}
	if err := s.ensureRegistrationFree(ctx, req.RegistrationNumber, 0); err != nil {
		return nil, err
	}
	student := &models.Student{FullName: req.FullName, Semester: req.Semester, RegistrationNumber: req.RegistrationNumber}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, translateDBError(s.logger, "create student", err)
	}
	return student, nil
}

// List returns students visible to the caller. A maestro only sees students
// enrolled in their own course groups.
func (s *StudentService) List(ctx context.Context, claims *models.JWTClaims, q models.PageQuery) ([]models.Student, *models.Pagination, error) {
	q = q.Normalize()
	filter := models.StudentFilter{Search: q.Search, Limit: q.Limit, Offset: q.Offset}
	if claims != nil && claims.Role == models.RoleMaestro {
		teacherID := claims.UserID
		filter.TeacherID = &teacherID
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, translateDBError(s.logger, "list students", err)
	}
	return students, pageOf(q, total), nil
}

// ListNotInCourseGroup returns students that can still be enrolled in the course group.
func (s *StudentService) ListNotInCourseGroup(ctx context.Context, courseGroupID int64, q models.PageQuery) ([]models.Student, *models.Pagination, error) {
	q = q.Normalize()
	if _, err := s.lookup.CourseGroup(ctx, courseGroupID); err != nil {
		return nil, nil, err
	}
	students, total, err := s.repo.ListNotInCourseGroup(ctx, courseGroupID, q.Search, q.Limit, q.Offset)
	if err != nil {
		return nil, nil, translateDBError(s.logger, "list students not in course group", err)
	}
	return students, pageOf(q, total), nil
}

// Get returns a student.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find student", err, "student not found")
	}
	return student, nil
}

// Update merges the request into the student.
func (s *StudentService) Update(ctx context.Context, id int64, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RegistrationNumber != nil && *req.RegistrationNumber != student.RegistrationNumber {
		if err := s.ensureRegistrationFree(ctx, *req.RegistrationNumber, id); err != nil {
			return nil, err
		}
		student.RegistrationNumber = *req.RegistrationNumber
	}
	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Semester != nil {
		student.Semester = *req.Semester
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, translateDBError(s.logger, "update student", err)
	}
	return student, nil
}

// Delete soft deletes a student and drops every cached period report.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete student", err, "student not found")
	}
	_ = s.cache.InvalidatePattern(ctx, "reports:period:*")
	return nil
}
