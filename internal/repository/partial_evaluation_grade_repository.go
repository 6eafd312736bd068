package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

// PartialEvaluationGradeRepository persists per-enrollment evaluation grades.
type PartialEvaluationGradeRepository struct {
	db *sqlx.DB
}

// NewPartialEvaluationGradeRepository constructs a PartialEvaluationGradeRepository.
func NewPartialEvaluationGradeRepository(db *sqlx.DB) *PartialEvaluationGradeRepository {
	return &PartialEvaluationGradeRepository{db: db}
}

// Exists reports whether a live grade exists for the evaluation and enrollment.
func (r *PartialEvaluationGradeRepository) Exists(ctx context.Context, partialEvaluationID, courseGroupStudentID, excludeID int64) (bool, error) {
	query := `SELECT 1 FROM partial_evaluation_grades WHERE partial_evaluation_id = $1 AND course_group_student_id = $2 AND is_deleted = FALSE`
	args := []interface{}{partialEvaluationID, courseGroupStudentID}
	if excludeID > 0 {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	found, err := exists(ctx, r.db, query, args...)
	if err != nil {
		return false, fmt.Errorf("check partial evaluation grade: %w", err)
	}
	return found, nil
}

// Create inserts a grade.
func (r *PartialEvaluationGradeRepository) Create(ctx context.Context, grade *models.PartialEvaluationGrade) error {
	const query = `INSERT INTO partial_evaluation_grades (partial_evaluation_id, course_group_student_id, grade) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, grade.PartialEvaluationID, grade.CourseGroupStudentID, grade.Grade).Scan(&grade.ID); err != nil {
		return fmt.Errorf("create partial evaluation grade: %w", err)
	}
	return nil
}

// FindByID fetches a live grade.
func (r *PartialEvaluationGradeRepository) FindByID(ctx context.Context, id int64) (*models.PartialEvaluationGrade, error) {
	const query = `SELECT id, partial_evaluation_id, course_group_student_id, grade, is_deleted FROM partial_evaluation_grades WHERE id = $1 AND is_deleted = FALSE`
	var grade models.PartialEvaluationGrade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find partial evaluation grade: %w", err)
	}
	return &grade, nil
}

// ListByEnrollment returns live grades of an enrollment on live evaluations.
func (r *PartialEvaluationGradeRepository) ListByEnrollment(ctx context.Context, courseGroupStudentID int64) ([]models.PartialEvaluationGrade, error) {
	const query = `SELECT peg.id, peg.partial_evaluation_id, peg.course_group_student_id, peg.grade, peg.is_deleted
        FROM partial_evaluation_grades peg
        JOIN partial_evaluations pe ON pe.id = peg.partial_evaluation_id AND pe.is_deleted = FALSE
        WHERE peg.course_group_student_id = $1 AND peg.is_deleted = FALSE ORDER BY pe.partial, pe.type, pe.slot`
	var items []models.PartialEvaluationGrade
	if err := r.db.SelectContext(ctx, &items, query, courseGroupStudentID); err != nil {
		return nil, fmt.Errorf("list partial evaluation grades: %w", err)
	}
	return items, nil
}

// Update persists grade columns.
func (r *PartialEvaluationGradeRepository) Update(ctx context.Context, grade *models.PartialEvaluationGrade) error {
	const query = `UPDATE partial_evaluation_grades SET partial_evaluation_id = :partial_evaluation_id, course_group_student_id = :course_group_student_id, grade = :grade WHERE id = :id AND is_deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update partial evaluation grade: %w", err)
	}
	return nil
}

// SoftDelete marks a grade deleted.
func (r *PartialEvaluationGradeRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "partial_evaluation_grades", id)
}
