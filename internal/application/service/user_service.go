package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	"github.com/garyjia/print-order-tracker/internal/domain/permission"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
	"github.com/garyjia/print-order-tracker/pkg/utils"
)

// NewUser is the input for creating a staff account
type NewUser struct {
	Name       string
	Email      string
	Department entity.Department
	Role       entity.Role
}

// UserService manages staff accounts and their derived permissions
type UserService interface {
	Create(ctx context.Context, actor *entity.User, input NewUser) (*entity.User, error)
	Get(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context, actor *entity.User) ([]*entity.User, error)
	UpdateRole(ctx context.Context, actor *entity.User, id string, role entity.Role, department entity.Department) (*entity.User, error)

	// Bootstrap creates the first administrator. It does nothing once any user exists.
	Bootstrap(ctx context.Context, name, email string) (*entity.User, bool, error)
}

type userServiceImpl struct {
	userRepo  port.UserRepository
	txManager port.TransactionManager
	logger    Logger
	now       func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(userRepo port.UserRepository, txManager port.TransactionManager, logger Logger) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		txManager: txManager,
		logger:    logger,
		now:       time.Now,
	}
}

// Create registers a user. Only administrators manage accounts.
func (s *userServiceImpl) Create(ctx context.Context, actor *entity.User, input NewUser) (*entity.User, error) {
	if !permission.HasPermission(actor, permission.ManageUsers) {
		return nil, domainwf.NewAuthorizationError(actorLabel(actor), "create user", "missing manage_users permission")
	}

	user, err := s.newUser(input)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", "user_id", user.ID, "department", user.Department, "role", user.Role)
	return user, nil
}

// Bootstrap creates an Admin/Admin account when the user store is empty
func (s *userServiceImpl) Bootstrap(ctx context.Context, name, email string) (*entity.User, bool, error) {
	existing, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list users: %w", err)
	}
	if len(existing) > 0 {
		return nil, false, nil
	}

	user, err := s.newUser(NewUser{Name: name, Email: email, Department: entity.DepartmentAdmin, Role: entity.RoleAdmin})
	if err != nil {
		return nil, false, err
	}
	if err := s.store(ctx, user); err != nil {
		return nil, false, err
	}

	s.logger.Info("Bootstrap administrator created", "user_id", user.ID, "email", user.Email)
	return user, true, nil
}

func (s *userServiceImpl) newUser(input NewUser) (*entity.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, domainwf.NewValidationError("name", "is required")
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, domainwf.NewValidationError("email", err.Error())
	}
	if !input.Department.IsValid() {
		return nil, domainwf.NewValidationError("department", fmt.Sprintf("unknown department %q", input.Department))
	}
	if !input.Role.IsValid() {
		return nil, domainwf.NewValidationError("role", fmt.Sprintf("unknown role %q", input.Role))
	}

	now := s.now()
	user := &entity.User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		Department: input.Department,
		Role:       input.Role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	permission.Apply(user)
	return user, nil
}

// store inserts user unless its email is taken
func (s *userServiceImpl) store(ctx context.Context, user *entity.User) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		_, err := s.userRepo.GetByEmail(txCtx, user.Email)
		switch {
		case err == nil:
			return &domainwf.BusinessRuleViolation{
				Rule:    domainwf.RuleDuplicateEmail,
				Message: fmt.Sprintf("a user with email %s already exists", user.Email),
			}
		case !errors.Is(err, domainwf.ErrNotFound):
			return fmt.Errorf("failed to look up email: %w", err)
		}
		return s.userRepo.Create(txCtx, user)
	})
	if err != nil && !isDomainError(err) {
		s.logger.Error("Failed to create user", "error", err, "email", user.Email)
	}
	return err
}

// Get retrieves a user by ID
func (s *userServiceImpl) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns every user. Requires manage_users.
func (s *userServiceImpl) List(ctx context.Context, actor *entity.User) ([]*entity.User, error) {
	if !permission.HasPermission(actor, permission.ManageUsers) {
		return nil, domainwf.NewAuthorizationError(actorLabel(actor), "list users", "missing manage_users permission")
	}
	return s.userRepo.List(ctx)
}

// UpdateRole changes role and department and recomputes permissions
func (s *userServiceImpl) UpdateRole(ctx context.Context, actor *entity.User, id string, role entity.Role, department entity.Department) (*entity.User, error) {
	if !permission.HasPermission(actor, permission.ManageUsers) {
		return nil, domainwf.NewAuthorizationError(actorLabel(actor), "update role", "missing manage_users permission")
	}
	if !role.IsValid() {
		return nil, domainwf.NewValidationError("role", fmt.Sprintf("unknown role %q", role))
	}
	if department != "" && !department.IsValid() {
		return nil, domainwf.NewValidationError("department", fmt.Sprintf("unknown department %q", department))
	}

	var user *entity.User
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if user, err = s.userRepo.GetByID(txCtx, id); err != nil {
			return err
		}

		user.Role = role
		if department != "" {
			user.Department = department
		}
		user.UpdatedAt = s.now()
		permission.Apply(user)

		return s.userRepo.UpdateRole(txCtx, user)
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error("Failed to update role", "error", err, "user_id", id)
		}
		return nil, err
	}

	s.logger.Info("User role updated",
		"user_id", id,
		"role", user.Role,
		"department", user.Department,
		"permissions", len(user.Permissions),
	)
	return user, nil
}
