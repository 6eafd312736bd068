package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, search string, limit, offset int) ([]models.User, int, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SoftDelete(ctx context.Context, id int64) error
}

type userCourseGroupReader interface {
	ListByUsers(ctx context.Context, userIDs []int64) ([]models.CourseGroupDetail, error)
}

type tokenIssuer interface {
	IssueToken(user *models.User) (string, error)
}

// CreateUserRequest represents payload for creating users.
type CreateUserRequest struct {
	FullName string          `json:"fullName" validate:"required,max=150"`
	Email    string          `json:"email" validate:"required,email,max=100"`
	Password string          `json:"password" validate:"required,password"`
	Role     models.UserRole `json:"role" validate:"required,role"`
}

// UpdateUserRequest payload for updating users.
type UpdateUserRequest struct {
	FullName *string          `json:"fullName" validate:"omitempty,max=150"`
	Email    *string          `json:"email" validate:"omitempty,email,max=100"`
	Password *string          `json:"password" validate:"omitempty,password"`
	Role     *models.UserRole `json:"role" validate:"omitempty,role"`
}

// UserService handles user management workflows.
type UserService struct {
	repo         userRepository
	courseGroups userCourseGroupReader
	tokens       tokenIssuer
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, courseGroups userCourseGroupReader, tokens tokenIssuer, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &UserService{repo: repo, courseGroups: courseGroups, tokens: tokens, validator: validate, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	taken, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return translateDBError(s.logger, "check user email", err)
	}
	if taken {
		return duplicate("email " + email + " is already in use")
	}
	return nil
}

// Create registers a user and returns its profile with an access token.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid user payload")
	}
	email := normalizeEmail(req.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	user := &models.User{FullName: strings.TrimSpace(req.FullName), Email: email, Password: hash, Role: req.Role}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateDBError(s.logger, "create user", err)
	}

	token, err := s.tokens.IssueToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.AuthResponse{ID: user.ID, FullName: user.FullName, Email: user.Email, Role: user.Role, Token: token}, nil
}

// List returns paginated users with their live course groups.
func (s *UserService) List(ctx context.Context, q models.PageQuery) ([]models.UserWithCourseGroups, *models.Pagination, error) {
	q = q.Normalize()
	users, total, err := s.repo.List(ctx, q.Search, q.Limit, q.Offset)
	if err != nil {
		return nil, nil, translateDBError(s.logger, "list users", err)
	}

	items := make([]models.UserWithCourseGroups, len(users))
	if len(users) == 0 {
		return items, pageOf(q, total), nil
	}

	ids := make([]int64, len(users))
	byUser := make(map[int64]int, len(users))
	for i, user := range users {
		ids[i] = user.ID
		byUser[user.ID] = i
		items[i] = models.UserWithCourseGroups{User: user, CourseGroups: []models.CourseGroupDetail{}}
	}
	assignments, err := s.courseGroups.ListByUsers(ctx, ids)
	if err != nil {
		return nil, nil, translateDBError(s.logger, "list user course groups", err)
	}
	for _, cg := range assignments {
		if idx, ok := byUser[cg.UserID]; ok {
			items[idx].CourseGroups = append(items[idx].CourseGroups, cg)
		}
	}
	return items, pageOf(q, total), nil
}

// Get returns a user.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(s.logger, "find user", err, "user not found")
	}
	return user, nil
}

// Update merges the request into the user. A new password is re-hashed.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid user payload")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, id); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.Password = hash
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, translateDBError(s.logger, "update user", err)
	}
	return user, nil
}

// Delete soft deletes a user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFoundOr(s.logger, "delete user", err, "user not found")
	}
	return nil
}
