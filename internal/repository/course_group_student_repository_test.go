package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseGroupStudentRepositoryFindByIDNestsRelations(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseGroupStudentRepository(db)

	columns := []string{"id", "course_group_id", "student_id", "is_deleted",
		"cg.id", "cg.course_id", "cg.group_id", "cg.user_id", "cg.schedule", "cg.is_deleted",
		"cg.course_name", "cg.group_name", "cg.group_semester", "cg.period_id", "cg.period_name", "cg.user_full_name",
		"s.id", "s.full_name", "s.semester", "s.registration_number", "s.is_deleted"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE cgs.id = $1 AND cgs.is_deleted = FALSE")).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			100, 10, 5, false,
			10, 3, 1, 7, "Por Defecto", false,
			"Matematicas", "2A", 2, 1, "2024A", "Profe",
			5, "Ana", 2, "R-5", false,
		))

	detail, err := repo.FindByID(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(7), detail.CourseGroup.UserID)
	assert.Equal(t, "Matematicas", detail.CourseGroup.CourseName)
	assert.Equal(t, "R-5", detail.Student.RegistrationNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseGroupStudentRepositoryExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseGroupStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM course_group_student WHERE course_group_id = $1 AND student_id = $2 AND is_deleted = FALSE LIMIT 1")).
		WithArgs(int64(10), int64(5)).
		WillReturnError(sql.ErrNoRows)

	found, err := repo.Exists(context.Background(), 10, 5)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseGroupStudentRepositorySoftDeleteMatchesDeletedRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseGroupStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_group_student SET is_deleted = TRUE WHERE id = $1")).
		WithArgs(int64(100)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), 100))
	assert.NoError(t, mock.ExpectationsWereMet())
}
