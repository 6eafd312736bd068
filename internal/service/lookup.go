package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

// RecordLookup resolves foreign keys for write-path services without the
// services depending on one another. Missing or deleted rows yield NotFound.
type RecordLookup interface {
	Period(ctx context.Context, id int64) (*models.Period, error)
	Group(ctx context.Context, id int64) (*models.Group, error)
	Student(ctx context.Context, id int64) (*models.Student, error)
	Course(ctx context.Context, id int64) (*models.Course, error)
	User(ctx context.Context, id int64) (*models.User, error)
	CourseGroup(ctx context.Context, id int64) (*models.CourseGroup, error)
	Enrollment(ctx context.Context, id int64) (*models.CourseGroupStudent, error)
	PartialEvaluation(ctx context.Context, id int64) (*models.PartialEvaluation, error)
	PeriodOfCourseGroup(ctx context.Context, courseGroupID int64) (*models.Period, error)
}

type lookupStore interface {
	Period(ctx context.Context, id int64) (*models.Period, error)
	Group(ctx context.Context, id int64) (*models.Group, error)
	Student(ctx context.Context, id int64) (*models.Student, error)
	Course(ctx context.Context, id int64) (*models.Course, error)
	User(ctx context.Context, id int64) (*models.User, error)
	CourseGroup(ctx context.Context, id int64) (*models.CourseGroup, error)
	Enrollment(ctx context.Context, id int64) (*models.CourseGroupStudent, error)
	PartialEvaluation(ctx context.Context, id int64) (*models.PartialEvaluation, error)
	PeriodOfCourseGroup(ctx context.Context, courseGroupID int64) (*models.Period, error)
}

type recordLookup struct {
	store  lookupStore
	logger *zap.Logger
}

// NewRecordLookup wraps a lookup store with error translation.
func NewRecordLookup(store lookupStore, logger *zap.Logger) RecordLookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &recordLookup{store: store, logger: logger}
}

func (l *recordLookup) resolve(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return translateDBError(l.logger, "lookup "+what, err)
}

func (l *recordLookup) Period(ctx context.Context, id int64) (*models.Period, error) {
	period, err := l.store.Period(ctx, id)
	if err != nil {
		return nil, l.resolve(err, "period")
	}
	return period, nil
}

func (l *recordLookup) Group(ctx context.Context, id int64) (*models.Group, error) {
	group, err := l.store.Group(ctx, id)
	if err != nil {
		return nil, l.resolve(err, "group")
	}
	return group, nil
}

func (l *recordLookup) Student(ctx context.Context, id int64) (*models.Student, error) {
	student, err := l.store.Student(ctx, id)
	if err != nil {
		return nil, l.resolve(err, "student")
	}
	return student, nil
}

func (l *recordLookup) Course(ctx context.Context, id int64) (*models.Course, error) {
	course, err := l.store.Course(ctx, id)
	if err != nil {
		return nil, l.resolve(err, "course")
	}
	return course, nil
}

func (l *recordLookup) User(ctx context.Context, id int64) (*models.User, error) {
	user, err := l.store.User(ctx, id)
	if err != nil {
		return nil, l.resolve(err, "user")
	}
	return user, nil
}

func (l *recordLookup) CourseGroup(ctx context.Context, id int64) (*models.CourseGroup, error) {
	cg, err := l.store.CourseGroup(ctx, id)
	if err != nil {
		return nil, l.resolve(err, "course group")
	}
	return cg, nil
}

func (l *recordLookup) Enrollment(ctx context.Context, id int64) (*models.CourseGroupStudent, error) {
	enrollment, err := l.store.Enrollment(ctx, id)
	if err != nil {
		return nil, l.resolve(err, "course group student")
	}
	return enrollment, nil
}

func (l *recordLookup) PartialEvaluation(ctx context.Context, id int64) (*models.PartialEvaluation, error) {
	evaluation, err := l.store.PartialEvaluation(ctx, id)
	if err != nil {
		return nil, l.resolve(err, "partial evaluation")
	}
	return evaluation, nil
}

func (l *recordLookup) PeriodOfCourseGroup(ctx context.Context, courseGroupID int64) (*models.Period, error) {
	period, err := l.store.PeriodOfCourseGroup(ctx, courseGroupID)
	if err != nil {
		return nil, l.resolve(err, "period of course group")
	}
	return period, nil
}

// ensureCourseGroupOwner lets administrators and directors through and
// requires a maestro to be the course group's assigned teacher.
func ensureCourseGroupOwner(claims *models.JWTClaims, cg *models.CourseGroup) error {
	if claims == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication")
	}
	if claims.Role != models.RoleMaestro {
		return nil
	}
	if cg.UserID != claims.UserID {
		return appErrors.Clone(appErrors.ErrUnauthorized, "you are not assigned to this course group")
	}
	return nil
}

// ensureEnrollmentOwner resolves the enrollment's course group and checks ownership.
func ensureEnrollmentOwner(ctx context.Context, lookup RecordLookup, claims *models.JWTClaims, courseGroupStudentID int64) (*models.CourseGroupStudent, error) {
	enrollment, err := lookup.Enrollment(ctx, courseGroupStudentID)
	if err != nil {
		return nil, err
	}
	cg, err := lookup.CourseGroup(ctx, enrollment.CourseGroupID)
	if err != nil {
		return nil, err
	}
	if err := ensureCourseGroupOwner(claims, cg); err != nil {
		return nil, err
	}
	return enrollment, nil
}
