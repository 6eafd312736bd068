package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var userRowColumns = []string{"id", "full_name", "email", "password", "role", "is_deleted"}

func TestUserRepositoryFindByEmailNormalizes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows(userRowColumns).AddRow(1, "Admin", "admin@example.com", "hash", "administrador", false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, email, password, role, is_deleted FROM users WHERE LOWER(email) = $1 AND is_deleted = FALSE LIMIT 1")).
		WithArgs("admin@example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "  Admin@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, models.RoleAdministrador, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users WHERE id = \\$1").WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryExistsByEmailExcludesSelf(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM users WHERE LOWER(email) = $1 AND is_deleted = FALSE AND id <> $2 LIMIT 1")).
		WithArgs("a@b.com", int64(4)).
		WillReturnError(sql.ErrNoRows)

	found, err := repo.ExistsByEmail(context.Background(), "A@b.com", 4)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdatePasswordMissingUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET password = \\$2").
		WithArgs(int64(3), "new-hash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword(context.Background(), 3, "new-hash")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListWithSearch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, email, password, role, is_deleted FROM users WHERE is_deleted = FALSE AND (LOWER(email) LIKE $1 OR LOWER(full_name) LIKE $1) ORDER BY full_name LIMIT 10 OFFSET 0")).
		WithArgs("%ana%").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(2, "Ana", "ana@example.com", "hash", "maestro", false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE is_deleted = FALSE AND (LOWER(email) LIKE $1 OR LOWER(full_name) LIKE $1)")).
		WithArgs("%ana%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), "Ana", 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleMaestro, users[0].Role)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Ana", "ana@example.com", "hash", models.RoleMaestro).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	user := &models.User{FullName: "Ana", Email: "ana@example.com", Password: "hash", Role: models.RoleMaestro}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(12), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteUnknownID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_deleted = TRUE WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), 5)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
