package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/middleware"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type authServiceStub struct {
	tokens        map[string]*models.JWTClaims
	changedUserID int64
}

func (s *authServiceStub) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if req.Password != "Secret123" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.AuthResponse{ID: 1, Email: req.Email, Role: models.RoleAdministrador, Token: "admin-token"}, nil
}

func (s *authServiceStub) ChangePassword(ctx context.Context, claims *models.JWTClaims, userID int64, req models.ChangePasswordRequest) error {
	if claims.Role != models.RoleAdministrador && claims.UserID != userID {
		return appErrors.Clone(appErrors.ErrUnauthorized, "cannot change another user's password")
	}
	s.changedUserID = userID
	return nil
}

func (s *authServiceStub) CheckAuthStatus(ctx context.Context, claims *models.JWTClaims) (*models.AuthResponse, error) {
	return &models.AuthResponse{ID: claims.UserID, Role: claims.Role, Token: "refreshed"}, nil
}

func (s *authServiceStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s.tokens[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type courseGroupServiceStub struct{}

func (courseGroupServiceStub) Create(ctx context.Context, req service.CreateCourseGroupRequest) (*models.CourseGroupDetail, error) {
	return &models.CourseGroupDetail{}, nil
}

func (courseGroupServiceStub) ListByCourse(ctx context.Context, courseID int64, q models.PageQuery) ([]models.CourseGroupDetail, *models.Pagination, error) {
	return []models.CourseGroupDetail{}, &models.Pagination{Limit: q.Limit, Offset: q.Offset}, nil
}

func (courseGroupServiceStub) Get(ctx context.Context, id int64) (*models.CourseGroupDetail, error) {
	return &models.CourseGroupDetail{CourseGroup: models.CourseGroup{ID: id}}, nil
}

func (courseGroupServiceStub) Update(ctx context.Context, id int64, req service.UpdateCourseGroupRequest) (*models.CourseGroupDetail, error) {
	return &models.CourseGroupDetail{CourseGroup: models.CourseGroup{ID: id}}, nil
}

func (courseGroupServiceStub) Delete(ctx context.Context, id int64) error { return nil }

type gradebookServiceStub struct {
	requested int64
}

func (s *gradebookServiceStub) GetEvaluationsData(ctx context.Context, courseGroupID int64) (*dto.EvaluationsDataResponse, error) {
	s.requested = courseGroupID
	return &dto.EvaluationsDataResponse{CourseGroup: dto.CourseGroupSummary{ID: courseGroupID}}, nil
}

func (s *gradebookServiceStub) GetCompleteData(ctx context.Context, courseGroupID int64) (*dto.CompleteDataResponse, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "course group not found")
}

func (s *gradebookServiceStub) GetFinalData(ctx context.Context, courseGroupID int64) (*dto.FinalDataResponse, error) {
	return &dto.FinalDataResponse{Students: []dto.FinalDataStudent{}}, nil
}

func setupSecuredRouter(auth *authServiceStub, gradebook *gradebookServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	authHandler := NewAuthHandler(auth)
	courseGroups := NewCourseGroupHandler(courseGroupServiceStub{}, gradebook)
	adminTeacher := middleware.RequireRoles(models.RoleAdministrador, models.RoleMaestro)

	api := router.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))
	secured.GET("/auth/check-auth-status", middleware.RequireRoles(middleware.AllRoles...), authHandler.CheckAuthStatus)
	secured.PATCH("/auth/change-password/:id", middleware.RequireRoles(middleware.AllRoles...), authHandler.ChangePassword)
	secured.GET("/courses-groups/:id/evaluations-data", adminTeacher, courseGroups.EvaluationsData)
	secured.GET("/courses-groups/:id/complete-data", adminTeacher, courseGroups.CompleteData)
	secured.GET("/courses-groups/:id/final-data", adminTeacher, courseGroups.FinalData)
	return router
}

func performRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newAuthStub() *authServiceStub {
	return &authServiceStub{tokens: map[string]*models.JWTClaims{
		"admin-token":    {UserID: 1, Role: models.RoleAdministrador},
		"teacher-token":  {UserID: 7, Role: models.RoleMaestro},
		"director-token": {UserID: 9, Role: models.RoleDirector},
	}}
}

func TestSecuredRoutesLoginIsPublic(t *testing.T) {
	router := setupSecuredRouter(newAuthStub(), &gradebookServiceStub{})

	w := performRequest(router, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: "admin@example.com", Password: "Secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin-token")

	w = performRequest(router, http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	router := setupSecuredRouter(newAuthStub(), &gradebookServiceStub{})

	w := performRequest(router, http.MethodGet, "/api/v1/auth/check-auth-status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/auth/check-auth-status", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/auth/check-auth-status", "director-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "refreshed")
}

func TestSecuredRoutesGradebookRoles(t *testing.T) {
	gradebook := &gradebookServiceStub{}
	router := setupSecuredRouter(newAuthStub(), gradebook)

	w := performRequest(router, http.MethodGet, "/api/v1/courses-groups/10/evaluations-data", "teacher-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(10), gradebook.requested)

	w = performRequest(router, http.MethodGet, "/api/v1/courses-groups/10/evaluations-data", "director-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/courses-groups/abc/final-data", "admin-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/courses-groups/11/complete-data", "admin-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSecuredRoutesChangePassword(t *testing.T) {
	auth := newAuthStub()
	router := setupSecuredRouter(auth, &gradebookServiceStub{})
	payload := models.ChangePasswordRequest{Password: "Newpass123"}

	w := performRequest(router, http.MethodPatch, "/api/v1/auth/change-password/8", "teacher-token", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodPatch, "/api/v1/auth/change-password/7", "teacher-token", payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), auth.changedUserID)
}
