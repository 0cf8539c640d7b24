package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/qaforge/qaforge/internal/auth"
	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/domain"
	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/pkg/apperror"
)

// CreateUserRequest represents a user creation request
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest represents a user update request. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UserUseCase handles user management, admin-gated at the HTTP boundary
type UserUseCase struct {
	users  ports.UserRepository
	cfg    config.AuthConfig
	logger *logrus.Logger
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(users ports.UserRepository, cfg config.AuthConfig, logger *logrus.Logger) *UserUseCase {
	return &UserUseCase{
		users:  users,
		cfg:    cfg,
		logger: logger,
	}
}

// CreateUser creates a new user with a hashed password
func (uc *UserUseCase) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !strings.Contains(email, "@") {
		return nil, apperror.NewBadRequest("a valid email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.NewBadRequest("name is required")
	}
	if len(req.Password) < uc.cfg.PasswordMinLength {
		return nil, apperror.NewBadRequest(fmt.Sprintf("password must be at least %d characters", uc.cfg.PasswordMinLength))
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	existing, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, apperror.NewConflict("a user with this email already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(email, strings.TrimSpace(req.Name), hash, role)
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.logger.WithFields(logrus.Fields{"user": user.ID, "role": user.Role}).Info("user created")
	return user, nil
}

// GetUser retrieves a user by id
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperror.NewNotFound("user not found")
	}
	return user, nil
}

// ListUsers retrieves all users
func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser applies partial updates to a user
func (uc *UserUseCase) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*domain.User, error) {
	user, err := uc.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		role, err := parseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != nil {
		if len(*req.Password) < uc.cfg.PasswordMinLength {
			return nil, apperror.NewBadRequest(fmt.Sprintf("password must be at least %d characters", uc.cfg.PasswordMinLength))
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := uc.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user
func (uc *UserUseCase) DeleteUser(ctx context.Context, id string) error {
	if _, err := uc.GetUser(ctx, id); err != nil {
		return err
	}
	if err := uc.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	uc.logger.WithField("user", id).Info("user deleted")
	return nil
}

func parseRole(role string) (domain.UserRole, error) {
	switch domain.UserRole(strings.ToLower(strings.TrimSpace(role))) {
	case domain.UserRoleAdmin:
		return domain.UserRoleAdmin, nil
	case domain.UserRoleUser, "":
		return domain.UserRoleUser, nil
	default:
		return "", apperror.NewBadRequest(fmt.Sprintf("unknown role %q", role))
	}
}
