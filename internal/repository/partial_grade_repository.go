package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

const partialGradeColumns = `id, course_group_student_id, partial, grade, date, is_deleted`

// PartialGradeRepository persists consolidated partial grades.
type PartialGradeRepository struct {
	db *sqlx.DB
}

// NewPartialGradeRepository constructs a PartialGradeRepository.
func NewPartialGradeRepository(db *sqlx.DB) *PartialGradeRepository {
	return &PartialGradeRepository{db: db}
}

// Exists reports whether the enrollment already has a live grade for the partial.
func (r *PartialGradeRepository) Exists(ctx context.Context, courseGroupStudentID int64, partial int, excludeID int64) (bool, error) {
	query := `SELECT 1 FROM partial_grades WHERE course_group_student_id = $1 AND partial = $2 AND is_deleted = FALSE`
	args := []interface{}{courseGroupStudentID, partial}
	if excludeID > 0 {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	found, err := exists(ctx, r.db, query, args...)
	if err != nil {
		return false, fmt.Errorf("check partial grade: %w", err)
	}
	return found, nil
}

// Create inserts a partial grade.
func (r *PartialGradeRepository) Create(ctx context.Context, grade *models.PartialGrade) error {
	const query = `INSERT INTO partial_grades (course_group_student_id, partial, grade, date) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, grade.CourseGroupStudentID, grade.Partial, grade.Grade, grade.Date).Scan(&grade.ID); err != nil {
		return fmt.Errorf("create partial grade: %w", err)
	}
	return nil
}

// FindByID fetches a live partial grade.
func (r *PartialGradeRepository) FindByID(ctx context.Context, id int64) (*models.PartialGrade, error) {
	var grade models.PartialGrade
	if err := r.db.GetContext(ctx, &grade, "SELECT "+partialGradeColumns+" FROM partial_grades WHERE id = $1 AND is_deleted = FALSE", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find partial grade: %w", err)
	}
	return &grade, nil
}

// List returns live grades of an enrollment, optionally for one partial.
func (r *PartialGradeRepository) List(ctx context.Context, courseGroupStudentID int64, partial *int) ([]models.PartialGrade, error) {
	query := "SELECT " + partialGradeColumns + " FROM partial_grades WHERE course_group_student_id = $1 AND is_deleted = FALSE"
	args := []interface{}{courseGroupStudentID}
	if partial != nil {
		query += " AND partial = $2"
		args = append(args, *partial)
	}
	var items []models.PartialGrade
	if err := r.db.SelectContext(ctx, &items, query+" ORDER BY partial, date DESC", args...); err != nil {
		return nil, fmt.Errorf("list partial grades: %w", err)
	}
	return items, nil
}

// Update persists partial grade columns.
func (r *PartialGradeRepository) Update(ctx context.Context, grade *models.PartialGrade) error {
	const query = `UPDATE partial_grades SET course_group_student_id = :course_group_student_id, partial = :partial, grade = :grade, date = :date WHERE id = :id AND is_deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update partial grade: %w", err)
	}
	return nil
}

// SoftDelete marks a partial grade deleted and returns its enrollment id.
// Already deleted rows still match; sql.ErrNoRows means the id never existed.
func (r *PartialGradeRepository) SoftDelete(ctx context.Context, id int64) (int64, error) {
	var courseGroupStudentID int64
	err := r.db.QueryRowxContext(ctx, `UPDATE partial_grades SET is_deleted = TRUE WHERE id = $1 RETURNING course_group_student_id`, id).Scan(&courseGroupStudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("delete partial grade: %w", err)
	}
	return courseGroupStudentID, nil
}
