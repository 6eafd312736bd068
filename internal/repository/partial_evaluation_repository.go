package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

const partialEvaluationColumns = `id, course_group_id, name, type, slot, partial, is_deleted`

// PartialEvaluationRepository persists course group evaluations.
type PartialEvaluationRepository struct {
	db *sqlx.DB
}

// NewPartialEvaluationRepository constructs a PartialEvaluationRepository.
func NewPartialEvaluationRepository(db *sqlx.DB) *PartialEvaluationRepository {
	return &PartialEvaluationRepository{db: db}
}

// Create inserts an evaluation.
func (r *PartialEvaluationRepository) Create(ctx context.Context, evaluation *models.PartialEvaluation) error {
	const query = `INSERT INTO partial_evaluations (course_group_id, name, type, slot, partial) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, evaluation.CourseGroupID, evaluation.Name, evaluation.Type, evaluation.Slot, evaluation.Partial).Scan(&evaluation.ID); err != nil {
		return fmt.Errorf("create partial evaluation: %w", err)
	}
	return nil
}

// FindByID fetches a live evaluation.
func (r *PartialEvaluationRepository) FindByID(ctx context.Context, id int64) (*models.PartialEvaluation, error) {
	var evaluation models.PartialEvaluation
	if err := r.db.GetContext(ctx, &evaluation, "SELECT "+partialEvaluationColumns+" FROM partial_evaluations WHERE id = $1 AND is_deleted = FALSE", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find partial evaluation: %w", err)
	}
	return &evaluation, nil
}

// ListByCourseGroup returns the live evaluations of a course group.
func (r *PartialEvaluationRepository) ListByCourseGroup(ctx context.Context, courseGroupID int64) ([]models.PartialEvaluation, error) {
	var items []models.PartialEvaluation
	query := "SELECT " + partialEvaluationColumns + " FROM partial_evaluations WHERE course_group_id = $1 AND is_deleted = FALSE ORDER BY partial, type, slot"
	if err := r.db.SelectContext(ctx, &items, query, courseGroupID); err != nil {
		return nil, fmt.Errorf("list partial evaluations: %w", err)
	}
	return items, nil
}

// Update persists evaluation columns.
func (r *PartialEvaluationRepository) Update(ctx context.Context, evaluation *models.PartialEvaluation) error {
	const query = `UPDATE partial_evaluations SET course_group_id = :course_group_id, name = :name, type = :type, slot = :slot, partial = :partial WHERE id = :id AND is_deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, evaluation); err != nil {
		return fmt.Errorf("update partial evaluation: %w", err)
	}
	return nil
}

// SetDeleted writes the is_deleted flag. It returns sql.ErrNoRows when the id
// never existed.
func (r *PartialEvaluationRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE partial_evaluations SET is_deleted = $2 WHERE id = $1`, id, deleted)
	if err != nil {
		return fmt.Errorf("delete partial evaluation: %w", err)
	}
	return expectAffected(res)
}
