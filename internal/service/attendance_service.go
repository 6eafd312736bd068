package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
)

type attendanceRepository interface {
	ExistsForDate(ctx context.Context, courseGroupStudentID int64, date time.Time, excludeID int64) (bool, error)
	Create(ctx context.Context, attendance *models.Attendance) error
	FindByID(ctx context.Context, id int64) (*models.Attendance, error)
	ListByCourseGroupAndDate(ctx context.Context, courseGroupID int64, date time.Time) ([]models.Attendance, error)
	ListByEnrollment(ctx context.Context, courseGroupStudentID int64, partial int) ([]models.Attendance, error)
	Update(ctx context.Context, attendance *models.Attendance) error
	SoftDelete(ctx context.Context, id int64) error
}

// CreateAttendanceRequest records attendance for one enrollment and day.
type CreateAttendanceRequest struct {
	CourseGroupStudentID int64             `json:"courseGroupStudentId" validate:"required,min=1"`
	Partial              int               `json:"partial" validate:"required,min=1,max=3"`
	Date                 string            `json:"date" validate:"required,datetime=2006-01-02"`
	Attend               models.AttendCode `json:"attend"`
}

// UpdateAttendanceRequest merges the provided fields into the row.
type UpdateAttendanceRequest struct {
	Partial *int               `json:"partial" validate:"omitempty,min=1,max=3"`
	Date    *string            `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Attend  *models.AttendCode `json:"attend"`
}

// AttendanceService handles course group attendance use-cases.
type AttendanceService struct {
	repo      attendanceRepository
	lookup    RecordLookup
	policy    EnforcementPolicy
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, lookup RecordLookup, policy EnforcementPolicy, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, lookup: lookup, policy: policy, metrics: metrics, validator: validate, logger: logger}
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse(models.DateLayout, raw)
}

func (s *AttendanceService) ensureFreeDay(ctx context.Context, courseGroupStudentID int64, date time.Time, excludeID int64) error {
	if !s.policy.DuplicateAttendance {
		return nil
	}
	taken, err := s.repo.ExistsForDate(ctx, courseGroupStudentID, date, excludeID)
	if err != nil {
		return translateDBError(s.logger, "check attendance", err)
	}
	if taken {
		return duplicate("attendance already recorded for " + date.Format(models.DateLayout))
	}
	return nil
}

// Create records attendance for an enrollment the caller owns.
func (s *AttendanceService) Create(ctx context.Context, claims *models.JWTClaims, req CreateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid attendance payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, invalidPayload(err, "invalid attendance date")
	}
	if _, err := ensureEnrollmentOwner(ctx, s.lookup, claims, req.CourseGroupStudentID); err != nil {
		return nil, err
	}
	if err := s.ensureFreeDay(ctx, req.CourseGroupStudentID, date, 0); err != nil {
		return nil, err
	}
	attendance := &models.Attendance{
		CourseGroupStudentID: req.CourseGroupStudentID,
		Partial:              req.Partial,
		Date:                 date,
		Attend:               req.Attend,
	}
	if err := s.repo.Create(ctx, attendance); err != nil {
		return nil, translateDBError(s.logger, "create attendance", err)
	}
	s.metrics.RecordGradeWrite("attendance", "create")
	return attendance, nil
}

// ListByCourseGroupAndDate returns the attendance of a course group on a day.
func (s *AttendanceService) ListByCourseGroupAndDate(ctx context.Context, courseGroupID int64, rawDate string) ([]models.Attendance, error) {
	if strings.TrimSpace(rawDate) == "" {
		rawDate = time.Now().UTC().Format(models.DateLayout)
	}
	date, err := parseDate(rawDate)
	if err != nil {
		return nil, invalidPayload(err, "date must be YYYY-MM-DD")
	}
	if _, err := s.lookup.CourseGroup(ctx, courseGroupID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByCourseGroupAndDate(ctx, courseGroupID, date)
	if err != nil {
		return nil, translateDBError(s.logger, "list attendance by course group", err)
	}
	if items == nil {
		items = []models.Attendance{}
	}
	return items, nil
}

// ListByEnrollment returns an enrollment's attendance for a partial.
func (s *AttendanceService) ListByEnrollment(ctx context.Context, courseGroupStudentID int64, partial int) ([]models.Attendance, error) {
	if !models.ValidPartial(partial) {
		return nil, invalidPayload(nil, "partial must be between 1 and 3")
	}
	if _, err := s.lookup.Enrollment(ctx, courseGroupStudentID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByEnrollment(ctx, courseGroupStudentID, partial)
	if err != nil {
		return nil, translateDBError(s.logger, "list attendance by enrollment", err)
	}
	if items == nil {
		items = []models.Attendance{}
	}
	return items, nil
}

// Get returns an attendance row.
func (s *AttendanceService) Get(ctx context.Context, id int64) (*models.Attendance, error) {
	attendance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find attendance", err, "attendance not found")
	}
	return attendance, nil
}

// Update merges the request into an attendance row.
func (s *AttendanceService) Update(ctx context.Context, id int64, req UpdateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid attendance payload")
	}
	attendance, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, invalidPayload(err, "invalid attendance date")
		}
		if !date.Equal(attendance.Date) {
			if err := s.ensureFreeDay(ctx, attendance.CourseGroupStudentID, date, id); err != nil {
				return nil, err
			}
		}
		attendance.Date = date
	}
	if req.Partial != nil {
		attendance.Partial = *req.Partial
	}
	if req.Attend != nil {
		attendance.Attend = *req.Attend
	}
	if err := s.repo.Update(ctx, attendance); err != nil {
		return nil, translateDBError(s.logger, "update attendance", err)
	}
	s.metrics.RecordGradeWrite("attendance", "update")
	return attendance, nil
}

// Delete soft deletes an attendance row.
func (s *AttendanceService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete attendance", err, "attendance not found")
	}
	s.metrics.RecordGradeWrite("attendance", "delete")
	return nil
}
