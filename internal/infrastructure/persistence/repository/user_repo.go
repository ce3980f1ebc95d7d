package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

// UserRepository implements port.UserRepository
type UserRepository struct {
	store  port.DocumentStore
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(store port.DocumentStore, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		store:  store,
		logger: logger,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	err := r.store.Create(ctx, entity.CollectionUsers, user.ID, user)
	if errors.Is(err, port.ErrDocumentExists) {
		return &domainwf.BusinessRuleViolation{
			Rule:    domainwf.RuleDuplicateEmail,
			Message: fmt.Sprintf("a user with email %s already exists", user.Email),
			Err:     err,
		}
	}
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("user_id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.store.Get(ctx, entity.CollectionUsers, id, &user)
	if errors.Is(err, port.ErrDocumentNotFound) {
		return nil, domainwf.NewNotFoundError("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetByEmail looks a user up by their stored (lower-case) email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	docs, err := r.store.List(ctx, entity.CollectionUsers, port.Filter{
		Equals: map[string]interface{}{"email": email},
		Limit:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, domainwf.NewNotFoundError("user", email)
	}

	var user entity.User
	if err := json.Unmarshal(docs[0], &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// List returns every user sorted by name
func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	docs, err := r.store.List(ctx, entity.CollectionUsers, port.Filter{OrderBy: "name"})
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*entity.User, 0, len(docs))
	for _, doc := range docs {
		var user entity.User
		if err := json.Unmarshal(doc, &user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}
	return users, nil
}

// UpdateRole writes the role, department and derived permissions of user
func (r *UserRepository) UpdateRole(ctx context.Context, user *entity.User) error {
	err := r.store.Update(ctx, entity.CollectionUsers, user.ID, map[string]interface{}{
		"role":        user.Role,
		"department":  user.Department,
		"permissions": user.Permissions,
		"updated_at":  user.UpdatedAt,
	})
	if errors.Is(err, port.ErrDocumentNotFound) {
		return domainwf.NewNotFoundError("user", user.ID)
	}
	if err != nil {
		r.logger.Error("Failed to update user role", zap.String("user_id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to update user role: %w", err)
	}
	return nil
}
