package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type mockUserRepo struct {
	users   map[int64]*models.User
	nextID  int64
	deleted []int64
}

func newMockUserRepo(users ...models.User) *mockUserRepo {
	repo := &mockUserRepo{users: map[int64]*models.User{}, nextID: 100}
	for i := range users {
		u := users[i]
		repo.users[u.ID] = &u
	}
	return repo
}

func (m *mockUserRepo) List(ctx context.Context, search string, limit, offset int) ([]models.User, int, error) {
	var out []models.User
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	for id, u := range m.users {
		if id != excludeID && u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.nextID++
	user.ID = m.nextID
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserRepo) SoftDelete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type courseGroupsByUserStub struct {
	rows []models.CourseGroupDetail
}

func (s courseGroupsByUserStub) ListByUsers(ctx context.Context, userIDs []int64) ([]models.CourseGroupDetail, error) {
	return s.rows, nil
}

type tokenIssuerStub struct{}

func (tokenIssuerStub) IssueToken(user *models.User) (string, error) {
	return "token-for-" + user.Email, nil
}

func newUserServiceForTest(repo *mockUserRepo, groups courseGroupsByUserStub) *UserService {
	return NewUserService(repo, groups, tokenIssuerStub{}, nil, zap.NewNop())
}

func TestUserServiceCreate(t *testing.T) {
	repo := newMockUserRepo()
	svc := newUserServiceForTest(repo, courseGroupsByUserStub{})

	resp, err := svc.Create(context.Background(), CreateUserRequest{
		FullName: "  Luis Director ",
		Email:    "Luis@Example.com",
		Password: "Secret1",
		Role:     models.RoleDirector,
	})
	require.NoError(t, err)
	assert.Equal(t, "luis@example.com", resp.Email)
	assert.Equal(t, "Luis Director", resp.FullName)
	assert.Equal(t, "token-for-luis@example.com", resp.Token)

	stored := repo.users[resp.ID]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Secret1")))
}

func TestUserServiceCreateRejectsDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo(models.User{ID: 1, Email: "ana@example.com", Role: models.RoleMaestro})
	svc := newUserServiceForTest(repo, courseGroupsByUserStub{})

	_, err := svc.Create(context.Background(), CreateUserRequest{FullName: "Ana", Email: "ANA@example.com", Password: "Secret1", Role: models.RoleMaestro})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrorCode(t, err))
}

func TestUserServiceCreateRejectsUnknownRole(t *testing.T) {
	svc := newUserServiceForTest(newMockUserRepo(), courseGroupsByUserStub{})

	_, err := svc.Create(context.Background(), CreateUserRequest{FullName: "X", Email: "x@example.com", Password: "Secret1", Role: "alumno"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorCode(t, err))
}

func TestUserServiceListAttachesCourseGroups(t *testing.T) {
	repo := newMockUserRepo(
		models.User{ID: 1, FullName: "Admin", Role: models.RoleAdministrador},
		models.User{ID: 7, FullName: "Ana", Role: models.RoleMaestro},
	)
	groups := courseGroupsByUserStub{rows: []models.CourseGroupDetail{
		{CourseGroup: models.CourseGroup{ID: 10, UserID: 7}, CourseName: "Matematicas"},
		{CourseGroup: models.CourseGroup{ID: 11, UserID: 7}, CourseName: "Fisica"},
	}}
	svc := newUserServiceForTest(repo, groups)

	items, page, err := svc.List(context.Background(), models.PageQuery{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.DefaultPageLimit, page.Limit)
	assert.Equal(t, 2, page.TotalCount)
	assert.Empty(t, items[0].CourseGroups)
	assert.NotNil(t, items[0].CourseGroups)
	require.Len(t, items[1].CourseGroups, 2)
	assert.Equal(t, "Fisica", items[1].CourseGroups[1].CourseName)
}

func TestUserServiceUpdate(t *testing.T) {
	repo := newMockUserRepo(
		models.User{ID: 1, FullName: "Ana", Email: "ana@example.com", Role: models.RoleMaestro},
		models.User{ID: 2, FullName: "Beto", Email: "beto@example.com", Role: models.RoleMaestro},
	)
	svc := newUserServiceForTest(repo, courseGroupsByUserStub{})

	taken := "beto@example.com"
	_, err := svc.Update(context.Background(), 1, UpdateUserRequest{Email: &taken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBadRequest.Code, appErrorCode(t, err))

	name := "Ana Maria"
	role := models.RoleDirector
	password := "Cambio#1"
	user, err := svc.Update(context.Background(), 1, UpdateUserRequest{FullName: &name, Role: &role, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", user.FullName)
	assert.Equal(t, models.RoleDirector, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[1].Password), []byte("Cambio#1")))
}

func TestUserServiceDelete(t *testing.T) {
	repo := newMockUserRepo(models.User{ID: 3, FullName: "Carla"})
	svc := newUserServiceForTest(repo, courseGroupsByUserStub{})

	require.NoError(t, svc.Delete(context.Background(), 3))
	assert.Equal(t, []int64{3}, repo.deleted)

	err := svc.Delete(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}
