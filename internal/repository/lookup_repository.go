package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

// LookupRepository resolves foreign keys across modules with narrow,
// read-only queries. Every method filters deleted rows and passes
// sql.ErrNoRows through untouched.
type LookupRepository struct {
	db *sqlx.DB
}

// NewLookupRepository constructs a LookupRepository.
func NewLookupRepository(db *sqlx.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

func (r *LookupRepository) get(ctx context.Context, dest interface{}, what, query string, args ...interface{}) error {
	if err := r.db.GetContext(ctx, dest, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("lookup %s: %w", what, err)
	}
	return nil
}

// Period fetches a live period.
func (r *LookupRepository) Period(ctx context.Context, id int64) (*models.Period, error) {
	var period models.Period
	if err := r.get(ctx, &period, "period", "SELECT "+periodColumns+" FROM periods WHERE id = $1 AND is_deleted = FALSE", id); err != nil {
		return nil, err
	}
	return &period, nil
}

// Group fetches a live group.
func (r *LookupRepository) Group(ctx context.Context, id int64) (*models.Group, error) {
	var group models.Group
	if err := r.get(ctx, &group, "group", `SELECT id, name, semester, period_id, is_deleted FROM groups WHERE id = $1 AND is_deleted = FALSE`, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// Student fetches a live student.
func (r *LookupRepository) Student(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	if err := r.get(ctx, &student, "student", `SELECT id, full_name, semester, registration_number, is_deleted FROM students WHERE id = $1 AND is_deleted = FALSE`, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Course fetches a live course.
func (r *LookupRepository) Course(ctx context.Context, id int64) (*models.Course, error) {
	var course models.Course
	if err := r.get(ctx, &course, "course", `SELECT id, name, is_deleted FROM courses WHERE id = $1 AND is_deleted = FALSE`, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// User fetches a live user.
func (r *LookupRepository) User(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.get(ctx, &user, "user", "SELECT "+userColumns+" FROM users WHERE id = $1 AND is_deleted = FALSE", id); err != nil {
		return nil, err
	}
	return &user, nil
}

// CourseGroup fetches a live course group.
func (r *LookupRepository) CourseGroup(ctx context.Context, id int64) (*models.CourseGroup, error) {
	var cg models.CourseGroup
	if err := r.get(ctx, &cg, "course group", `SELECT id, course_id, group_id, user_id, schedule, is_deleted FROM course_group WHERE id = $1 AND is_deleted = FALSE`, id); err != nil {
		return nil, err
	}
	return &cg, nil
}

// Enrollment fetches a live course group enrollment.
func (r *LookupRepository) Enrollment(ctx context.Context, id int64) (*models.CourseGroupStudent, error) {
	var enrollment models.CourseGroupStudent
	if err := r.get(ctx, &enrollment, "enrollment", `SELECT id, course_group_id, student_id, is_deleted FROM course_group_student WHERE id = $1 AND is_deleted = FALSE`, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// PartialEvaluation fetches a live evaluation.
func (r *LookupRepository) PartialEvaluation(ctx context.Context, id int64) (*models.PartialEvaluation, error) {
	var evaluation models.PartialEvaluation
	if err := r.get(ctx, &evaluation, "partial evaluation", "SELECT "+partialEvaluationColumns+" FROM partial_evaluations WHERE id = $1 AND is_deleted = FALSE", id); err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// PeriodOfCourseGroup walks course group, group and period.
func (r *LookupRepository) PeriodOfCourseGroup(ctx context.Context, courseGroupID int64) (*models.Period, error) {
	query := `SELECT p.id, p.name, p.start_date, p.end_date, p.first_partial_active, p.second_partial_active,
        p.third_partial_active, p.is_active, p.is_deleted
        FROM course_group cg
        JOIN groups g ON g.id = cg.group_id
        JOIN periods p ON p.id = g.period_id
        WHERE cg.id = $1`
	var period models.Period
	if err := r.get(ctx, &period, "period of course group", query, courseGroupID); err != nil {
		return nil, err
	}
	return &period, nil
}
