package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

// GradingSchemeRepository persists evaluation-type weights per course group.
type GradingSchemeRepository struct {
	db *sqlx.DB
}

// NewGradingSchemeRepository constructs a GradingSchemeRepository.
func NewGradingSchemeRepository(db *sqlx.DB) *GradingSchemeRepository {
	return &GradingSchemeRepository{db: db}
}

// Create inserts a scheme row.
func (r *GradingSchemeRepository) Create(ctx context.Context, scheme *models.GradingScheme) error {
	const query = `INSERT INTO course_group_gradingschemes (course_group_id, type, percentage) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, scheme.CourseGroupID, scheme.Type, scheme.Percentage).Scan(&scheme.ID); err != nil {
		return fmt.Errorf("create grading scheme: %w", err)
	}
	return nil
}

// FindByID fetches a live scheme row.
func (r *GradingSchemeRepository) FindByID(ctx context.Context, id int64) (*models.GradingScheme, error) {
	const query = `SELECT id, course_group_id, type, percentage, is_deleted FROM course_group_gradingschemes WHERE id = $1 AND is_deleted = FALSE`
	var scheme models.GradingScheme
	if err := r.db.GetContext(ctx, &scheme, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grading scheme: %w", err)
	}
	return &scheme, nil
}

// ListByCourseGroup returns the live scheme rows of a course group.
func (r *GradingSchemeRepository) ListByCourseGroup(ctx context.Context, courseGroupID int64) ([]models.GradingScheme, error) {
	const query = `SELECT id, course_group_id, type, percentage, is_deleted FROM course_group_gradingschemes WHERE course_group_id = $1 AND is_deleted = FALSE ORDER BY id`
	var items []models.GradingScheme
	if err := r.db.SelectContext(ctx, &items, query, courseGroupID); err != nil {
		return nil, fmt.Errorf("list grading schemes: %w", err)
	}
	return items, nil
}

// Update persists scheme columns.
func (r *GradingSchemeRepository) Update(ctx context.Context, scheme *models.GradingScheme) error {
	const query = `UPDATE course_group_gradingschemes SET course_group_id = :course_group_id, type = :type, percentage = :percentage WHERE id = :id AND is_deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, scheme); err != nil {
		return fmt.Errorf("update grading scheme: %w", err)
	}
	return nil
}

// SoftDelete marks a scheme row deleted.
func (r *GradingSchemeRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "course_group_gradingschemes", id)
}
