package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

const attendanceColumns = `a.id, a.course_group_student_id, a.partial, a.date, a.attend, a.is_deleted`

// AttendanceRepository persists daily attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ExistsForDate reports whether the enrollment already has a live row for the date.
func (r *AttendanceRepository) ExistsForDate(ctx context.Context, courseGroupStudentID int64, date time.Time, excludeID int64) (bool, error) {
	query := `SELECT 1 FROM course_group_attendance WHERE course_group_student_id = $1 AND date = $2 AND is_deleted = FALSE`
	args := []interface{}{courseGroupStudentID, date}
	if excludeID > 0 {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	found, err := exists(ctx, r.db, query, args...)
	if err != nil {
		return false, fmt.Errorf("check attendance: %w", err)
	}
	return found, nil
}

// Create inserts an attendance row.
func (r *AttendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	const query = `INSERT INTO course_group_attendance (course_group_student_id, partial, date, attend) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, attendance.CourseGroupStudentID, attendance.Partial, attendance.Date, attendance.Attend).Scan(&attendance.ID); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// FindByID fetches a live attendance row.
func (r *AttendanceRepository) FindByID(ctx context.Context, id int64) (*models.Attendance, error) {
	var attendance models.Attendance
	if err := r.db.GetContext(ctx, &attendance, "SELECT "+attendanceColumns+" FROM course_group_attendance a WHERE a.id = $1 AND a.is_deleted = FALSE", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &attendance, nil
}

// ListByCourseGroupAndDate returns the live rows of every live enrollment of a course group on a date.
func (r *AttendanceRepository) ListByCourseGroupAndDate(ctx context.Context, courseGroupID int64, date time.Time) ([]models.Attendance, error) {
	query := "SELECT " + attendanceColumns + ` FROM course_group_attendance a
        JOIN course_group_student cgs ON cgs.id = a.course_group_student_id AND cgs.is_deleted = FALSE
        WHERE cgs.course_group_id = $1 AND a.date = $2 AND a.is_deleted = FALSE ORDER BY a.id`
	var items []models.Attendance
	if err := r.db.SelectContext(ctx, &items, query, courseGroupID, date); err != nil {
		return nil, fmt.Errorf("list attendance by course group: %w", err)
	}
	return items, nil
}

// ListByEnrollment returns live rows of an enrollment for a partial ordered by date.
func (r *AttendanceRepository) ListByEnrollment(ctx context.Context, courseGroupStudentID int64, partial int) ([]models.Attendance, error) {
	query := "SELECT " + attendanceColumns + ` FROM course_group_attendance a
        WHERE a.course_group_student_id = $1 AND a.partial = $2 AND a.is_deleted = FALSE ORDER BY a.date`
	var items []models.Attendance
	if err := r.db.SelectContext(ctx, &items, query, courseGroupStudentID, partial); err != nil {
		return nil, fmt.Errorf("list attendance by enrollment: %w", err)
	}
	return items, nil
}

// Update persists attendance columns.
func (r *AttendanceRepository) Update(ctx context.Context, attendance *models.Attendance) error {
	const query = `UPDATE course_group_attendance SET partial = :partial, date = :date, attend = :attend WHERE id = :id AND is_deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// SoftDelete marks an attendance row deleted.
func (r *AttendanceRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "course_group_attendance", id)
}
