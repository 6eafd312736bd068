package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academic-records-api/internal/models"
)

const courseGroupDetailSelect = `SELECT cg.id, cg.course_id, cg.group_id, cg.user_id, cg.schedule, cg.is_deleted,
        c.name AS course_name, g.name AS group_name, g.semester AS group_semester, g.period_id, p.name AS period_name,
        u.full_name AS user_full_name
        FROM course_group cg
        JOIN courses c ON c.id = cg.course_id
        JOIN groups g ON g.id = cg.group_id
        JOIN periods p ON p.id = g.period_id
        JOIN users u ON u.id = cg.user_id`

// CourseGroupRepository manages course-to-group teacher assignments.
type CourseGroupRepository struct {
	db *sqlx.DB
}

// NewCourseGroupRepository constructs a CourseGroupRepository.
func NewCourseGroupRepository(db *sqlx.DB) *CourseGroupRepository {
	return &CourseGroupRepository{db: db}
}

// Exists reports whether a live assignment with the same tuple exists.
func (r *CourseGroupRepository) Exists(ctx context.Context, cg models.CourseGroup) (bool, error) {
	query := `SELECT 1 FROM course_group WHERE course_id = $1 AND group_id = $2 AND user_id = $3 AND schedule = $4 AND is_deleted = FALSE`
	args := []interface{}{cg.CourseID, cg.GroupID, cg.UserID, cg.Schedule}
	if cg.ID > 0 {
		query += " AND id <> $5"
		args = append(args, cg.ID)
	}
	found, err := exists(ctx, r.db, query, args...)
	if err != nil {
		return false, fmt.Errorf("check course group: %w", err)
	}
	return found, nil
}

// Create inserts an assignment.
func (r *CourseGroupRepository) Create(ctx context.Context, cg *models.CourseGroup) error {
	const query = `INSERT INTO course_group (course_id, group_id, user_id, schedule) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, cg.CourseID, cg.GroupID, cg.UserID, cg.Schedule).Scan(&cg.ID); err != nil {
		return fmt.Errorf("create course group: %w", err)
	}
	return nil
}

// FindByID fetches a live assignment with its joined names.
func (r *CourseGroupRepository) FindByID(ctx context.Context, id int64) (*models.CourseGroupDetail, error) {
	var detail models.CourseGroupDetail
	if err := r.db.GetContext(ctx, &detail, courseGroupDetailSelect+" WHERE cg.id = $1 AND cg.is_deleted = FALSE", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course group: %w", err)
	}
	return &detail, nil
}

// ListByCourse returns the live assignments of a course.
func (r *CourseGroupRepository) ListByCourse(ctx context.Context, courseID int64, limit, offset int) ([]models.CourseGroupDetail, int, error) {
	query := courseGroupDetailSelect + " WHERE cg.course_id = $1 AND cg.is_deleted = FALSE ORDER BY cg.id LIMIT $2 OFFSET $3"
	var items []models.CourseGroupDetail
	if err := r.db.SelectContext(ctx, &items, query, courseID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list course groups by course: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM course_group WHERE course_id = $1 AND is_deleted = FALSE", courseID); err != nil {
		return nil, 0, fmt.Errorf("count course groups by course: %w", err)
	}
	return items, total, nil
}

// ListAllByCourse returns every live assignment of a course.
func (r *CourseGroupRepository) ListAllByCourse(ctx context.Context, courseID int64) ([]models.CourseGroupDetail, error) {
	var items []models.CourseGroupDetail
	if err := r.db.SelectContext(ctx, &items, courseGroupDetailSelect+" WHERE cg.course_id = $1 AND cg.is_deleted = FALSE ORDER BY cg.id", courseID); err != nil {
		return nil, fmt.Errorf("list all course groups by course: %w", err)
	}
	return items, nil
}

// ListByGroup returns every live assignment of a group.
func (r *CourseGroupRepository) ListByGroup(ctx context.Context, groupID int64) ([]models.CourseGroupDetail, error) {
	var items []models.CourseGroupDetail
	if err := r.db.SelectContext(ctx, &items, courseGroupDetailSelect+" WHERE cg.group_id = $1 AND cg.is_deleted = FALSE ORDER BY c.name", groupID); err != nil {
		return nil, fmt.Errorf("list course groups by group: %w", err)
	}
	return items, nil
}

// ListByUsers returns the live assignments of the given teachers.
func (r *CourseGroupRepository) ListByUsers(ctx context.Context, userIDs []int64) ([]models.CourseGroupDetail, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var items []models.CourseGroupDetail
	if err := r.db.SelectContext(ctx, &items, courseGroupDetailSelect+" WHERE cg.user_id = ANY($1) AND cg.is_deleted = FALSE ORDER BY cg.id", pq.Array(userIDs)); err != nil {
		return nil, fmt.Errorf("list course groups by users: %w", err)
	}
	return items, nil
}

// Update persists assignment columns.
func (r *CourseGroupRepository) Update(ctx context.Context, cg *models.CourseGroup) error {
	const query = `UPDATE course_group SET course_id = :course_id, group_id = :group_id, user_id = :user_id, schedule = :schedule WHERE id = :id AND is_deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, cg); err != nil {
		return fmt.Errorf("update course group: %w", err)
	}
	return nil
}

// SoftDelete marks an assignment deleted.
func (r *CourseGroupRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "course_group", id)
}

// SoftDeleteByCourse marks every assignment of a course deleted.
func (r *CourseGroupRepository) SoftDeleteByCourse(ctx context.Context, courseID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE course_group SET is_deleted = TRUE WHERE course_id = $1 AND is_deleted = FALSE`, courseID)
	if err != nil {
		return 0, fmt.Errorf("delete course groups by course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete course groups by course: %w", err)
	}
	return affected, nil
}
