package port

import (
	"context"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

// OrderFilter narrows order listings. Empty fields match everything.
type OrderFilter struct {
	Department      entity.Department
	Status          entity.OrderStatus
	PaymentStatus   entity.PaymentStatus
	PendingApproval bool
	Limit           int
}

// OrderRepository persists orders as single aggregate documents
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByNumber(ctx context.Context, number string) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	Save(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id string) error
}

// UserRepository persists staff accounts
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	UpdateRole(ctx context.Context, user *entity.User) error
}

// NotificationRepository persists the notification inbox
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListForDepartment(ctx context.Context, department entity.Department, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
