package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

// AcademicReportRepository issues the flat period- and group-scoped queries
// behind reports, boletas and the detailed group listing.
type AcademicReportRepository struct {
	db *sqlx.DB
}

// NewAcademicReportRepository constructs an AcademicReportRepository.
func NewAcademicReportRepository(db *sqlx.DB) *AcademicReportRepository {
	return &AcademicReportRepository{db: db}
}

// PeriodReportRows returns the live partial grades of the period for the
// partial, newest first within each enrollment.
func (r *AcademicReportRepository) PeriodReportRows(ctx context.Context, periodID int64, partial int) ([]models.PeriodReportRow, error) {
	const query = `SELECT g.id AS group_id, g.name AS group_name, g.semester, c.id AS course_id, c.name AS course_name,
        cgs.id AS course_group_student_id, cgs.student_id, pg.id AS partial_grade_id, pg.grade, pg.date
        FROM partial_grades pg
        JOIN course_group_student cgs ON cgs.id = pg.course_group_student_id AND cgs.is_deleted = FALSE
        JOIN students s ON s.id = cgs.student_id AND s.is_deleted = FALSE
        JOIN course_group cg ON cg.id = cgs.course_group_id AND cg.is_deleted = FALSE
        JOIN courses c ON c.id = cg.course_id AND c.is_deleted = FALSE
        JOIN groups g ON g.id = cg.group_id AND g.is_deleted = FALSE
        WHERE g.period_id = $1 AND pg.partial = $2 AND pg.is_deleted = FALSE
        ORDER BY g.semester, g.id, c.id, cgs.student_id, pg.date DESC NULLS LAST, pg.id`
	var rows []models.PeriodReportRow
	if err := r.db.SelectContext(ctx, &rows, query, periodID, partial); err != nil {
		return nil, fmt.Errorf("period report rows: %w", err)
	}
	return rows, nil
}

// BoletaHeader returns the group and period identity of a live group.
func (r *AcademicReportRepository) BoletaHeader(ctx context.Context, groupID int64) (*models.BoletaHeaderRow, error) {
	const query = `SELECT g.id AS group_id, g.name AS group_name, g.semester, p.id AS period_id, p.name AS period_name
        FROM groups g JOIN periods p ON p.id = g.period_id
        WHERE g.id = $1 AND g.is_deleted = FALSE`
	var header models.BoletaHeaderRow
	if err := r.db.GetContext(ctx, &header, query, groupID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("boleta header: %w", err)
	}
	return &header, nil
}

const boletaFrom = `FROM course_group cg
        JOIN courses c ON c.id = cg.course_id AND c.is_deleted = FALSE
        JOIN course_group_student cgs ON cgs.course_group_id = cg.id AND cgs.is_deleted = FALSE
        JOIN students s ON s.id = cgs.student_id AND s.is_deleted = FALSE`

// BoletaPartialRows returns one row per enrollment of the group, carrying a
// live partial grade when one exists, newest first.
func (r *AcademicReportRepository) BoletaPartialRows(ctx context.Context, groupID int64) ([]models.BoletaGradeRow, error) {
	query := `SELECT s.id AS student_id, s.full_name, s.registration_number, s.semester AS student_semester,
        c.id AS course_id, c.name AS course_name, cgs.id AS course_group_student_id,
        pg.partial, pg.grade AS partial_grade, pg.date
        ` + boletaFrom + `
        LEFT JOIN partial_grades pg ON pg.course_group_student_id = cgs.id AND pg.is_deleted = FALSE
        WHERE cg.group_id = $1 AND cg.is_deleted = FALSE
        ORDER BY s.full_name, c.name, pg.date DESC NULLS LAST`
	var rows []models.BoletaGradeRow
	if err := r.db.SelectContext(ctx, &rows, query, groupID); err != nil {
		return nil, fmt.Errorf("boleta partial rows: %w", err)
	}
	return rows, nil
}

// BoletaFinalRows returns one row per enrollment of the group, carrying a
// live final grade when one exists, newest first.
func (r *AcademicReportRepository) BoletaFinalRows(ctx context.Context, groupID int64) ([]models.BoletaGradeRow, error) {
	query := `SELECT s.id AS student_id, s.full_name, s.registration_number, s.semester AS student_semester,
        c.id AS course_id, c.name AS course_name, cgs.id AS course_group_student_id,
        fg.grade AS final_grade, fg.grade_ordinary, fg.grade_extraordinary, fg.type AS final_type, fg.date
        ` + boletaFrom + `
        LEFT JOIN final_grades fg ON fg.course_group_student_id = cgs.id AND fg.is_deleted = FALSE
        WHERE cg.group_id = $1 AND cg.is_deleted = FALSE
        ORDER BY s.full_name, c.name, fg.date DESC NULLS LAST`
	var rows []models.BoletaGradeRow
	if err := r.db.SelectContext(ctx, &rows, query, groupID); err != nil {
		return nil, fmt.Errorf("boleta final rows: %w", err)
	}
	return rows, nil
}

func periodFilter(periodID *int64) (string, []interface{}) {
	if periodID == nil {
		return "", nil
	}
	return " AND g.period_id = $1", []interface{}{*periodID}
}

// DetailedEnrollments returns every live enrollment joined with its group,
// period, student and course.
func (r *AcademicReportRepository) DetailedEnrollments(ctx context.Context, periodID *int64) ([]models.DetailedEnrollmentRow, error) {
	filter, args := periodFilter(periodID)
	query := `SELECT g.id AS group_id, g.name AS group_name, g.semester AS group_semester, p.id AS period_id, p.name AS period_name,
        s.id AS student_id, s.full_name, s.registration_number, c.id AS course_id, c.name AS course_name,
        cg.id AS course_group_id, cgs.id AS course_group_student_id
        FROM groups g
        JOIN periods p ON p.id = g.period_id AND p.is_deleted = FALSE
        JOIN course_group cg ON cg.group_id = g.id AND cg.is_deleted = FALSE
        JOIN courses c ON c.id = cg.course_id AND c.is_deleted = FALSE
        JOIN course_group_student cgs ON cgs.course_group_id = cg.id AND cgs.is_deleted = FALSE
        JOIN students s ON s.id = cgs.student_id AND s.is_deleted = FALSE
        WHERE g.is_deleted = FALSE` + filter + `
        ORDER BY g.id, s.full_name, c.name`
	var rows []models.DetailedEnrollmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("detailed enrollments: %w", err)
	}
	return rows, nil
}

// DetailedPartialGrades returns the live partial grades of the listing's enrollments, newest first.
func (r *AcademicReportRepository) DetailedPartialGrades(ctx context.Context, periodID *int64) ([]models.PartialGrade, error) {
	filter, args := periodFilter(periodID)
	query := `SELECT pg.id, pg.course_group_student_id, pg.partial, pg.grade, pg.date, pg.is_deleted
        FROM partial_grades pg
        JOIN course_group_student cgs ON cgs.id = pg.course_group_student_id AND cgs.is_deleted = FALSE
        JOIN course_group cg ON cg.id = cgs.course_group_id AND cg.is_deleted = FALSE
        JOIN groups g ON g.id = cg.group_id
        WHERE pg.is_deleted = FALSE AND g.is_deleted = FALSE` + filter + `
        ORDER BY pg.date DESC, pg.id`
	var rows []models.PartialGrade
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("detailed partial grades: %w", err)
	}
	return rows, nil
}

// DetailedEvaluations returns each live evaluation of an enrollment's course
// group with the enrollment's grade on it, if any.
func (r *AcademicReportRepository) DetailedEvaluations(ctx context.Context, periodID *int64) ([]models.DetailedEvaluationRow, error) {
	filter, args := periodFilter(periodID)
	query := `SELECT cgs.id AS course_group_student_id, pe.id AS evaluation_id, pe.name, pe.partial, pe.type, pe.slot,
        peg.id AS grade_id, peg.grade
        FROM course_group_student cgs
        JOIN course_group cg ON cg.id = cgs.course_group_id AND cg.is_deleted = FALSE
        JOIN groups g ON g.id = cg.group_id
        JOIN partial_evaluations pe ON pe.course_group_id = cg.id AND pe.is_deleted = FALSE
        LEFT JOIN partial_evaluation_grades peg ON peg.partial_evaluation_id = pe.id
            AND peg.course_group_student_id = cgs.id AND peg.is_deleted = FALSE
        WHERE cgs.is_deleted = FALSE AND g.is_deleted = FALSE` + filter + `
        ORDER BY cgs.id, pe.partial, pe.type, pe.slot, peg.id`
	var rows []models.DetailedEvaluationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("detailed evaluations: %w", err)
	}
	return rows, nil
}
