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

// OrderRepository implements port.OrderRepository on a document store.
// Each order, with its history and payments, is a single document.
type OrderRepository struct {
	store  port.DocumentStore
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(store port.DocumentStore, logger *zap.Logger) port.OrderRepository {
	return &OrderRepository{
		store:  store,
		logger: logger,
	}
}

// Create stores a new order. A clash on id or order number is a duplicate-number violation.
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	err := r.store.Create(ctx, entity.CollectionOrders, order.ID, newOrderDocument(order))
	if errors.Is(err, port.ErrDocumentExists) {
		return &domainwf.BusinessRuleViolation{
			Rule:    domainwf.RuleDuplicateNumber,
			Message: fmt.Sprintf("order number %s is already in use", order.OrderNumber),
			Err:     err,
		}
	}
	if err != nil {
		r.logger.Error("Failed to create order",
			zap.String("order_id", order.ID),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID retrieves an order by ID
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.store.Get(ctx, entity.CollectionOrders, id, &order)
	if errors.Is(err, port.ErrDocumentNotFound) {
		return nil, domainwf.NewNotFoundError("order", id)
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.String("order_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// GetByNumber retrieves an order by its human-readable number
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*entity.Order, error) {
	docs, err := r.store.List(ctx, entity.CollectionOrders, port.Filter{
		Equals: map[string]interface{}{"order_number": number},
		Limit:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order by number: %w", err)
	}
	if len(docs) == 0 {
		return nil, domainwf.NewNotFoundError("order", number)
	}

	orders, err := decodeOrders(docs)
	if err != nil {
		return nil, err
	}
	return orders[0], nil
}

// List returns orders matching the filter, newest first
func (r *OrderRepository) List(ctx context.Context, filter port.OrderFilter) ([]*entity.Order, error) {
	docs, err := r.store.List(ctx, entity.CollectionOrders, documentFilter(filter))
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return decodeOrders(docs)
}

func documentFilter(filter port.OrderFilter) port.Filter {
	equals := make(map[string]interface{})
	if filter.Department != "" {
		equals["current_department"] = filter.Department
	}
	if filter.Status != "" {
		equals["status"] = filter.Status
	}
	if filter.PaymentStatus != "" {
		equals["payment_status"] = filter.PaymentStatus
	}
	if filter.PendingApproval {
		equals["status"] = entity.OrderStatusPendingApproval
	}

	return port.Filter{
		Equals:  equals,
		OrderBy: "-" + createdKey,
		Limit:   filter.Limit,
	}
}

func decodeOrders(docs []json.RawMessage) ([]*entity.Order, error) {
	orders := make([]*entity.Order, 0, len(docs))
	for _, doc := range docs {
		var order entity.Order
		if err := json.Unmarshal(doc, &order); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		orders = append(orders, &order)
	}
	return orders, nil
}

// Save replaces the stored aggregate
func (r *OrderRepository) Save(ctx context.Context, order *entity.Order) error {
	err := r.store.Replace(ctx, entity.CollectionOrders, order.ID, newOrderDocument(order))
	if errors.Is(err, port.ErrDocumentNotFound) {
		return domainwf.NewNotFoundError("order", order.ID)
	}
	if err != nil {
		r.logger.Error("Failed to save order", zap.String("order_id", order.ID), zap.Error(err))
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

// Delete removes an order
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, entity.CollectionOrders, id)
	if errors.Is(err, port.ErrDocumentNotFound) {
		return domainwf.NewNotFoundError("order", id)
	}
	if err != nil {
		r.logger.Error("Failed to delete order", zap.String("order_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}
