package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

const finalGradeColumns = `id, course_group_student_id, grade, grade_ordinary, grade_extraordinary, date, type, is_deleted`

// FinalGradeRepository persists term-end grades.
type FinalGradeRepository struct {
	db *sqlx.DB
}

// NewFinalGradeRepository constructs a FinalGradeRepository.
func NewFinalGradeRepository(db *sqlx.DB) *FinalGradeRepository {
	return &FinalGradeRepository{db: db}
}

// Exists reports whether the enrollment already has a live final grade.
func (r *FinalGradeRepository) Exists(ctx context.Context, courseGroupStudentID, excludeID int64) (bool, error) {
	query := `SELECT 1 FROM final_grades WHERE course_group_student_id = $1 AND is_deleted = FALSE`
	args := []interface{}{courseGroupStudentID}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	found, err := exists(ctx, r.db, query, args...)
	if err != nil {
		return false, fmt.Errorf("check final grade: %w", err)
	}
	return found, nil
}

// Create inserts a final grade.
func (r *FinalGradeRepository) Create(ctx context.Context, grade *models.FinalGrade) error {
	const query = `INSERT INTO final_grades (course_group_student_id, grade, grade_ordinary, grade_extraordinary, date, type)
        VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		grade.CourseGroupStudentID, grade.Grade, grade.GradeOrdinary, grade.GradeExtraordinary, grade.Date, grade.Type,
	).Scan(&grade.ID); err != nil {
		return fmt.Errorf("create final grade: %w", err)
	}
	return nil
}

// FindByID fetches a live final grade.
func (r *FinalGradeRepository) FindByID(ctx context.Context, id int64) (*models.FinalGrade, error) {
	var grade models.FinalGrade
	if err := r.db.GetContext(ctx, &grade, "SELECT "+finalGradeColumns+" FROM final_grades WHERE id = $1 AND is_deleted = FALSE", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find final grade: %w", err)
	}
	return &grade, nil
}

// List returns live final grades of an enrollment, newest first.
func (r *FinalGradeRepository) List(ctx context.Context, courseGroupStudentID int64) ([]models.FinalGrade, error) {
	var items []models.FinalGrade
	query := "SELECT " + finalGradeColumns + " FROM final_grades WHERE course_group_student_id = $1 AND is_deleted = FALSE ORDER BY date DESC"
	if err := r.db.SelectContext(ctx, &items, query, courseGroupStudentID); err != nil {
		return nil, fmt.Errorf("list final grades: %w", err)
	}
	return items, nil
}

// Update persists final grade columns.
func (r *FinalGradeRepository) Update(ctx context.Context, grade *models.FinalGrade) error {
	const query = `UPDATE final_grades SET course_group_student_id = :course_group_student_id, grade = :grade, grade_ordinary = :grade_ordinary,
        grade_extraordinary = :grade_extraordinary, date = :date, type = :type WHERE id = :id AND is_deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update final grade: %w", err)
	}
	return nil
}

// SoftDelete marks a final grade deleted.
func (r *FinalGradeRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "final_grades", id)
}
