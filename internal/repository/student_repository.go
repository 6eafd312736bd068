package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-records-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns live students matching the filter. When TeacherID is set only
// students enrolled in that teacher's live course groups are returned.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students s"
	args := []interface{}{}
	conditions := []string{"s.is_deleted = FALSE"}

	if filter.TeacherID != nil {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (SELECT 1 FROM course_group_student cgs
            JOIN course_group cg ON cg.id = cgs.course_group_id AND cg.is_deleted = FALSE
            WHERE cgs.student_id = s.id AND cgs.is_deleted = FALSE AND cg.user_id = $%d)`, len(args)+1))
		args = append(args, *filter.TeacherID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.registration_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	query := fmt.Sprintf("SELECT s.id, s.full_name, s.semester, s.registration_number, s.is_deleted %s ORDER BY s.full_name LIMIT %d OFFSET %d", base, filter.Limit, filter.Offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base), args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListNotInCourseGroup returns live students without a live enrollment in the course group.
func (r *StudentRepository) ListNotInCourseGroup(ctx context.Context, courseGroupID int64, search string, limit, offset int) ([]models.Student, int, error) {
	base := `FROM students s WHERE s.is_deleted = FALSE AND NOT EXISTS (
            SELECT 1 FROM course_group_student cgs WHERE cgs.student_id = s.id AND cgs.course_group_id = $1 AND cgs.is_deleted = FALSE)`
	args := []interface{}{courseGroupID}
	if search != "" {
		base += " AND (LOWER(s.full_name) LIKE $2 OR LOWER(s.registration_number) LIKE $2)"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}

	query := fmt.Sprintf("SELECT s.id, s.full_name, s.semester, s.registration_number, s.is_deleted %s ORDER BY s.full_name LIMIT %d OFFSET %d", base, limit, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students not in course group: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count students not in course group: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a live student.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	const query = `SELECT id, full_name, semester, registration_number, is_deleted FROM students WHERE id = $1 AND is_deleted = FALSE`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ExistsByRegistrationNumber checks for a live student with the registration
// number, optionally excluding an id.
func (r *StudentRepository) ExistsByRegistrationNumber(ctx context.Context, registrationNumber string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM students WHERE registration_number = $1 AND is_deleted = FALSE"
	args := []interface{}{registrationNumber}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	found, err := exists(ctx, r.db, query, args...)
	if err != nil {
		return false, fmt.Errorf("check registration number: %w", err)
	}
	return found, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (full_name, semester, registration_number) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, student.FullName, student.Semester, student.RegistrationNumber).Scan(&student.ID); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET full_name = :full_name, semester = :semester, registration_number = :registration_number WHERE id = :id AND is_deleted = FALSE`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// SoftDelete marks the student deleted.
func (r *StudentRepository) SoftDelete(ctx context.Context, id int64) error {
	return softDelete(ctx, r.db, "students", id)
}
