package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type mockAuthRepo struct {
	user              *models.User
	findErr           error
	updatePasswordErr error
	updatedID         int64
	updatedHash       string
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	m.updatedID = id
	m.updatedHash = passwordHash
	return nil
}

func newAuthServiceForTest(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "test",
	})
}

func hashedUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: 7, FullName: "Ana Maestra", Email: "ana@example.com", Password: string(hash), Role: models.RoleMaestro}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{user: hashedUser(t, "Secret1")}
	svc := newAuthServiceForTest(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "Secret1"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, models.RoleMaestro, resp.Role)
	require.NotEmpty(t, resp.Token)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "test", claims.Issuer)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	repo := &mockAuthRepo{user: hashedUser(t, "Secret1")}
	svc := newAuthServiceForTest(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "Wrong99"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrorCode(t, err))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "Secret1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrorCode(t, err))
}

func TestAuthServiceLoginValidatesPasswordShape(t *testing.T) {
	svc := newAuthServiceForTest(&mockAuthRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "alllowercase"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorCode(t, err))
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := &mockAuthRepo{user: hashedUser(t, "Secret1")}
	svc := newAuthServiceForTest(repo)

	err := svc.ChangePassword(context.Background(), teacherClaims, 7, models.ChangePasswordRequest{Password: "Nuevo#22"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), repo.updatedID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.updatedHash), []byte("Nuevo#22")))

	err = svc.ChangePassword(context.Background(), teacherClaims, 9, models.ChangePasswordRequest{Password: "Nuevo#22"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))

	err = svc.ChangePassword(context.Background(), adminClaims, 9, models.ChangePasswordRequest{Password: "Nuevo#22"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), repo.updatedID)
}

func TestAuthServiceChangePasswordUnknownUser(t *testing.T) {
	svc := newAuthServiceForTest(&mockAuthRepo{updatePasswordErr: sql.ErrNoRows})

	err := svc.ChangePassword(context.Background(), adminClaims, 42, models.ChangePasswordRequest{Password: "Nuevo#22"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestAuthServiceCheckAuthStatus(t *testing.T) {
	repo := &mockAuthRepo{user: hashedUser(t, "Secret1")}
	svc := newAuthServiceForTest(repo)

	resp, err := svc.CheckAuthStatus(context.Background(), teacherClaims)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maestra", resp.FullName)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.CheckAuthStatus(context.Background(), &models.JWTClaims{UserID: 99})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	issuer := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{AccessTokenSecret: "other"})
	token, err := issuer.IssueToken(&models.User{ID: 1, Role: models.RoleAdministrador})
	require.NoError(t, err)

	svc := newAuthServiceForTest(&mockAuthRepo{})
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := newAuthServiceForTest(&mockAuthRepo{})
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.IssueToken(&models.User{ID: 1, Role: models.RoleAdministrador})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
