package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

// GradebookRepository runs the flat, course-group-scoped reads that feed the
// gradebook folds. Each method returns rows of live records only.
type GradebookRepository struct {
	db *sqlx.DB
}

// NewGradebookRepository constructs a GradebookRepository.
func NewGradebookRepository(db *sqlx.DB) *GradebookRepository {
	return &GradebookRepository{db: db}
}

// Students returns the live students enrolled in the course group ordered by student id.
func (r *GradebookRepository) Students(ctx context.Context, courseGroupID int64) ([]models.EnrolledStudentRow, error) {
	const query = `SELECT s.id AS student_id, s.full_name, s.registration_number, s.semester, cgs.id AS course_group_student_id
        FROM course_group_student cgs
        JOIN students s ON s.id = cgs.student_id AND s.is_deleted = FALSE
        WHERE cgs.course_group_id = $1 AND cgs.is_deleted = FALSE
        ORDER BY s.id`
	var rows []models.EnrolledStudentRow
	if err := r.db.SelectContext(ctx, &rows, query, courseGroupID); err != nil {
		return nil, fmt.Errorf("gradebook students: %w", err)
	}
	return rows, nil
}

// PartialGrades returns the partial grades of the course group's live enrollments, newest first.
func (r *GradebookRepository) PartialGrades(ctx context.Context, courseGroupID int64) ([]models.PartialGrade, error) {
	const query = `SELECT pg.id, pg.course_group_student_id, pg.partial, pg.grade, pg.date, pg.is_deleted
        FROM partial_grades pg
        JOIN course_group_student cgs ON cgs.id = pg.course_group_student_id AND cgs.is_deleted = FALSE
        WHERE cgs.course_group_id = $1 AND pg.is_deleted = FALSE
        ORDER BY pg.date DESC, pg.id`
	var rows []models.PartialGrade
	if err := r.db.SelectContext(ctx, &rows, query, courseGroupID); err != nil {
		return nil, fmt.Errorf("gradebook partial grades: %w", err)
	}
	return rows, nil
}

// Attendances returns the attendance rows of the course group's live enrollments by date.
func (r *GradebookRepository) Attendances(ctx context.Context, courseGroupID int64) ([]models.Attendance, error) {
	const query = `SELECT a.id, a.course_group_student_id, a.partial, a.date, a.attend, a.is_deleted
        FROM course_group_attendance a
        JOIN course_group_student cgs ON cgs.id = a.course_group_student_id AND cgs.is_deleted = FALSE
        WHERE cgs.course_group_id = $1 AND a.is_deleted = FALSE
        ORDER BY a.date, a.id`
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, courseGroupID); err != nil {
		return nil, fmt.Errorf("gradebook attendances: %w", err)
	}
	return rows, nil
}

// FinalGrades returns the final grades of the course group's live enrollments, newest first.
func (r *GradebookRepository) FinalGrades(ctx context.Context, courseGroupID int64) ([]models.FinalGrade, error) {
	const query = `SELECT fg.id, fg.course_group_student_id, fg.grade, fg.grade_ordinary, fg.grade_extraordinary, fg.date, fg.type, fg.is_deleted
        FROM final_grades fg
        JOIN course_group_student cgs ON cgs.id = fg.course_group_student_id AND cgs.is_deleted = FALSE
        WHERE cgs.course_group_id = $1 AND fg.is_deleted = FALSE
        ORDER BY fg.date DESC, fg.id`
	var rows []models.FinalGrade
	if err := r.db.SelectContext(ctx, &rows, query, courseGroupID); err != nil {
		return nil, fmt.Errorf("gradebook final grades: %w", err)
	}
	return rows, nil
}

// Evaluations returns the live evaluations of the course group.
func (r *GradebookRepository) Evaluations(ctx context.Context, courseGroupID int64) ([]models.PartialEvaluation, error) {
	const query = `SELECT id, course_group_id, name, type, slot, partial, is_deleted
        FROM partial_evaluations WHERE course_group_id = $1 AND is_deleted = FALSE ORDER BY partial, slot, id`
	var rows []models.PartialEvaluation
	if err := r.db.SelectContext(ctx, &rows, query, courseGroupID); err != nil {
		return nil, fmt.Errorf("gradebook evaluations: %w", err)
	}
	return rows, nil
}

// GradingSchemes returns the live scheme rows of the course group.
func (r *GradebookRepository) GradingSchemes(ctx context.Context, courseGroupID int64) ([]models.GradingScheme, error) {
	const query = `SELECT id, course_group_id, type, percentage, is_deleted
        FROM course_group_gradingschemes WHERE course_group_id = $1 AND is_deleted = FALSE ORDER BY id`
	var rows []models.GradingScheme
	if err := r.db.SelectContext(ctx, &rows, query, courseGroupID); err != nil {
		return nil, fmt.Errorf("gradebook grading schemes: %w", err)
	}
	return rows, nil
}

// EvaluationGrades returns evaluation grades of live enrollments on live
// evaluations of the course group. Grades whose enrollment belongs to another
// course group are left out.
func (r *GradebookRepository) EvaluationGrades(ctx context.Context, courseGroupID int64) ([]models.EvaluationGradeRow, error) {
	const query = `SELECT peg.id, peg.grade, peg.course_group_student_id, peg.partial_evaluation_id,
        pe.name AS evaluation_name, pe.type AS evaluation_type, pe.slot AS evaluation_slot, pe.partial AS evaluation_partial
        FROM partial_evaluation_grades peg
        JOIN partial_evaluations pe ON pe.id = peg.partial_evaluation_id AND pe.is_deleted = FALSE
        JOIN course_group_student cgs ON cgs.id = peg.course_group_student_id AND cgs.is_deleted = FALSE
        WHERE pe.course_group_id = $1 AND cgs.course_group_id = $1 AND peg.is_deleted = FALSE
        ORDER BY peg.id`
	var rows []models.EvaluationGradeRow
	if err := r.db.SelectContext(ctx, &rows, query, courseGroupID); err != nil {
		return nil, fmt.Errorf("gradebook evaluation grades: %w", err)
	}
	return rows, nil
}
