package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

const enrollmentDetailSelect = `SELECT cgs.id, cgs.course_group_id, cgs.student_id, cgs.is_deleted,
        cg.id AS "cg.id", cg.course_id AS "cg.course_id", cg.group_id AS "cg.group_id", cg.user_id AS "cg.user_id",
        cg.schedule AS "cg.schedule", cg.is_deleted AS "cg.is_deleted",
        c.name AS "cg.course_name", g.name AS "cg.group_name", g.semester AS "cg.group_semester",
        g.period_id AS "cg.period_id", p.name AS "cg.period_name", u.full_name AS "cg.user_full_name",
        s.id AS "s.id", s.full_name AS "s.full_name", s.semester AS "s.semester",
        s.registration_number AS "s.registration_number", s.is_deleted AS "s.is_deleted"
        FROM course_group_student cgs
        JOIN course_group cg ON cg.id = cgs.course_group_id
        JOIN courses c ON c.id = cg.course_id
        JOIN groups g ON g.id = cg.group_id
        JOIN periods p ON p.id = g.period_id
        JOIN users u ON u.id = cg.user_id
        JOIN students s ON s.id = cgs.student_id`

// CourseGroupStudentRepository manages enrollments of students in course groups.
type CourseGroupStudentRepository struct {
	db *sqlx.DB
}

// NewCourseGroupStudentRepository constructs a CourseGroupStudentRepository.
func NewCourseGroupStudentRepository(db *sqlx.DB) *CourseGroupStudentRepository {
	return &CourseGroupStudentRepository{db: db}
}

// Exists reports whether the student holds a live enrollment in the course group.
func (r *CourseGroupStudentRepository) Exists(ctx context.Context, courseGroupID, studentID int64) (bool, error) {
	found, err := exists(ctx, r.db, `SELECT 1 FROM course_group_student WHERE course_group_id = $1 AND student_id = $2 AND is_deleted = FALSE`, courseGroupID, studentID)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return found, nil
}

// Create inserts an enrollment.
func (r *CourseGroupStudentRepository) Create(ctx context.Context, enrollment *models.CourseGroupStudent) error {
	const query = `INSERT INTO course_group_student (course_group_id, student_id) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, enrollment.CourseGroupID, enrollment.StudentID).Scan(&enrollment.ID); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID fetches a live enrollment with course group and student.
func (r *CourseGroupStudentRepository) FindByID(ctx context.Context, id int64) (*models.CourseGroupStudentDetail, error) {
	var detail models.CourseGroupStudentDetail
	if err := r.db.GetContext(ctx, &detail, enrollmentDetailSelect+" WHERE cgs.id = $1 AND cgs.is_deleted = FALSE", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &detail, nil
}

// ListByCourseGroup returns live enrollments of live students in a course group.
func (r *CourseGroupStudentRepository) ListByCourseGroup(ctx context.Context, courseGroupID int64, limit, offset int) ([]models.CourseGroupStudentDetail, int, error) {
	where := " WHERE cgs.course_group_id = $1 AND cgs.is_deleted = FALSE AND s.is_deleted = FALSE"
	var items []models.CourseGroupStudentDetail
	if err := r.db.SelectContext(ctx, &items, enrollmentDetailSelect+where+" ORDER BY s.full_name LIMIT $2 OFFSET $3", courseGroupID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}
	var total int
	const countQuery = `SELECT COUNT(*) FROM course_group_student cgs JOIN students s ON s.id = cgs.student_id
        WHERE cgs.course_group_id = $1 AND cgs.is_deleted = FALSE AND s.is_deleted = FALSE`
	if err := r.db.GetContext(ctx, &total, countQuery, courseGroupID); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return items, total, nil
}

// ListStudentsByGroup returns the distinct live students enrolled in any live
// course group of the group.
func (r *CourseGroupStudentRepository) ListStudentsByGroup(ctx context.Context, groupID int64) ([]models.Student, error) {
	const query = `SELECT DISTINCT s.id, s.full_name, s.semester, s.registration_number, s.is_deleted
        FROM course_group_student cgs
        JOIN course_group cg ON cg.id = cgs.course_group_id AND cg.is_deleted = FALSE
        JOIN students s ON s.id = cgs.student_id AND s.is_deleted = FALSE
        WHERE cg.group_id = $1 AND cgs.is_deleted = FALSE
        ORDER BY s.full_name`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, groupID); err != nil {
		return nil, fmt.Errorf("list students by group: %w", err)
	}
	return students, nil
}

// SoftDelete marks an enrollment deleted.
func (r *CourseGroupStudentRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "course_group_student", id)
}
