package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns live courses. A non-nil teacherID restricts the result to
// courses with a live course group assigned to that user.
func (r *CourseRepository) List(ctx context.Context, teacherID *int64, limit, offset int) ([]models.Course, int, error) {
	base := "FROM courses c WHERE c.is_deleted = FALSE"
	args := []interface{}{}
	if teacherID != nil {
		base += " AND EXISTS (SELECT 1 FROM course_group cg WHERE cg.course_id = c.id AND cg.is_deleted = FALSE AND cg.user_id = $1)"
		args = append(args, *teacherID)
	}

	query := fmt.Sprintf("SELECT c.id, c.name, c.is_deleted %s ORDER BY c.name LIMIT %d OFFSET %d", base, limit, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID fetches a live course.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course, `SELECT id, name, is_deleted FROM courses WHERE id = $1 AND is_deleted = FALSE`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if err := r.db.QueryRowxContext(ctx, `INSERT INTO courses (name) VALUES ($1) RETURNING id`, course.Name).Scan(&course.ID); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update renames a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE courses SET name = $2 WHERE id = $1 AND is_deleted = FALSE`, course.ID, course.Name); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// SoftDelete marks the course deleted.
func (r *CourseRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "courses", id)
}
