package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradebookRepositoryEvaluationGradesScopesEnrollmentToCourseGroup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradebookRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE pe.course_group_id = $1 AND cgs.course_group_id = $1 AND peg.is_deleted = FALSE")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "grade", "course_group_student_id", "partial_evaluation_id", "evaluation_name", "evaluation_type", "evaluation_slot", "evaluation_partial"}).
			AddRow(1, 8.5, 100, 40, nil, "actividades", 2, 1))

	rows, err := repo.EvaluationGrades(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(100), rows[0].CourseGroupStudentID)
	assert.Nil(t, rows[0].EvaluationName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
