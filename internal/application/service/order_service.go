package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/garyjia/print-order-tracker/internal/application/dispatcher"
	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/application/workflow"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	"github.com/garyjia/print-order-tracker/internal/domain/event"
	"github.com/garyjia/print-order-tracker/internal/domain/permission"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
	"github.com/garyjia/print-order-tracker/pkg/utils"
)

const (
	// DefaultActionTimeout bounds a single load-apply-save cycle
	DefaultActionTimeout = 10 * time.Second

	orderNumberAttempts = 5
	redactedValue       = "[restricted]"
)

// OrderService runs workflow actions against stored orders
type OrderService interface {
	Create(ctx context.Context, actor *entity.User, draft workflow.NewOrder) (*entity.Order, error)
	Get(ctx context.Context, actor *entity.User, id string) (*entity.Order, error)
	List(ctx context.Context, actor *entity.User, filter port.OrderFilter) ([]*entity.Order, error)
	Apply(ctx context.Context, actor *entity.User, id string, action workflow.Action) (*entity.Order, error)
	EditUpdate(ctx context.Context, actor *entity.User, orderID, updateID string, patch workflow.UpdatePatch) (*entity.Order, error)
	UndoUpdate(ctx context.Context, actor *entity.User, orderID, updateID string) (*entity.Order, error)
	Delete(ctx context.Context, actor *entity.User, id string) error
	Export(ctx context.Context, actor *entity.User, filter port.OrderFilter, w io.Writer) error
}

type orderServiceImpl struct {
	orderRepo  port.OrderRepository
	txManager  port.TransactionManager
	engine     workflow.WorkflowEngine
	dispatcher dispatcher.Dispatcher
	exporter   port.OrderExporter
	logger     Logger
	timeout    time.Duration
	now        func() time.Time
}

// OrderServiceOption configures the order service
type OrderServiceOption func(*orderServiceImpl)

// WithActionTimeout overrides DefaultActionTimeout
func WithActionTimeout(d time.Duration) OrderServiceOption {
	return func(s *orderServiceImpl) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *orderServiceImpl) {
		s.now = now
	}
}

// WithExporter enables report export
func WithExporter(exporter port.OrderExporter) OrderServiceOption {
	return func(s *orderServiceImpl) {
		s.exporter = exporter
	}
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo port.OrderRepository,
	txManager port.TransactionManager,
	engine workflow.WorkflowEngine,
	d dispatcher.Dispatcher,
	logger Logger,
	opts ...OrderServiceOption,
) OrderService {
	s := &orderServiceImpl{
		orderRepo:  orderRepo,
		txManager:  txManager,
		engine:     engine,
		dispatcher: d,
		logger:     logger,
		timeout:    DefaultActionTimeout,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create opens a new order. A missing order number is generated with a Luhn check digit.
func (s *orderServiceImpl) Create(ctx context.Context, actor *entity.User, draft workflow.NewOrder) (*entity.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now()
	if draft.OrderNumber != "" {
		if err := utils.ValidateOrderNumber(draft.OrderNumber); err != nil {
			return nil, domainwf.NewValidationError("order_number", err.Error())
		}
	}

	res, err := s.engine.Open(ctx, draft, actor, now)
	if err != nil {
		return nil, err
	}
	order := res.Order

	if draft.OrderNumber == "" {
		number, err := s.nextOrderNumber(ctx, now)
		if err != nil {
			return nil, err
		}
		order.OrderNumber = number
	} else if taken, err := s.numberTaken(ctx, draft.OrderNumber); err != nil {
		return nil, err
	} else if taken {
		return nil, &domainwf.BusinessRuleViolation{
			Rule:    domainwf.RuleDuplicateNumber,
			Message: fmt.Sprintf("order number %s is already in use", draft.OrderNumber),
		}
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.orderRepo.Create(txCtx, order)
	})
	if err != nil {
		s.logger.Error("Failed to create order", "error", err, "order_number", order.OrderNumber)
		return nil, err
	}

	s.publish(ctx, res.Event.WithOrderNumber(order.OrderNumber))
	s.logger.Info("Order created", "order_id", order.ID, "order_number", order.OrderNumber, "actor", actor.Name)

	return s.redact(actor, order), nil
}

// nextOrderNumber derives a base from the clock and bumps it until unused
func (s *orderServiceImpl) nextOrderNumber(ctx context.Context, now time.Time) (string, error) {
	base := int(now.UnixMilli() % 1_000_000_000)
	for i := 0; i < orderNumberAttempts; i++ {
		number := utils.GenerateOrderNumber(base + i)
		taken, err := s.numberTaken(ctx, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", fmt.Errorf("failed to allocate an order number after %d attempts", orderNumberAttempts)
}

func (s *orderServiceImpl) numberTaken(ctx context.Context, number string) (bool, error) {
	_, err := s.orderRepo.GetByNumber(ctx, number)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domainwf.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
}

// Get returns an order with address details hidden from users who may not see them
func (s *orderServiceImpl) Get(ctx context.Context, actor *entity.User, id string) (*entity.Order, error) {
	if actor == nil {
		return nil, domainwf.NewAuthorizationError("anonymous", "view order", "no authenticated user")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.redact(actor, order), nil
}

// List returns orders matching the filter
func (s *orderServiceImpl) List(ctx context.Context, actor *entity.User, filter port.OrderFilter) ([]*entity.Order, error) {
	if actor == nil {
		return nil, domainwf.NewAuthorizationError("anonymous", "list orders", "no authenticated user")
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list orders", "error", err)
		return nil, err
	}

	for i, o := range orders {
		orders[i] = s.redact(actor, o)
	}
	return orders, nil
}

// Apply loads the order, runs the action and writes the new snapshot in one transaction
func (s *orderServiceImpl) Apply(ctx context.Context, actor *entity.User, id string, action workflow.Action) (*entity.Order, error) {
	order, err := s.mutate(ctx, id, func(ctx context.Context, order *entity.Order, now time.Time) (*workflow.Result, error) {
		return s.engine.Apply(ctx, order, actor, action, now)
	})
	if err != nil {
		return nil, err
	}
	return s.redact(actor, order), nil
}

// EditUpdate changes a status history entry inside the edit window
func (s *orderServiceImpl) EditUpdate(ctx context.Context, actor *entity.User, orderID, updateID string, patch workflow.UpdatePatch) (*entity.Order, error) {
	order, err := s.mutate(ctx, orderID, func(ctx context.Context, order *entity.Order, now time.Time) (*workflow.Result, error) {
		return s.engine.EditUpdate(ctx, order, actor, updateID, patch, now)
	})
	if err != nil {
		return nil, err
	}
	return s.redact(actor, order), nil
}

// UndoUpdate removes a status history entry inside the undo window
func (s *orderServiceImpl) UndoUpdate(ctx context.Context, actor *entity.User, orderID, updateID string) (*entity.Order, error) {
	order, err := s.mutate(ctx, orderID, func(ctx context.Context, order *entity.Order, now time.Time) (*workflow.Result, error) {
		return s.engine.UndoUpdate(ctx, order, actor, updateID, now)
	})
	if err != nil {
		return nil, err
	}
	return s.redact(actor, order), nil
}

type mutation func(ctx context.Context, order *entity.Order, now time.Time) (*workflow.Result, error)

func (s *orderServiceImpl) mutate(ctx context.Context, id string, fn mutation) (*entity.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var result *workflow.Result
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		result, err = fn(txCtx, order, s.now())
		if err != nil {
			return err
		}

		return s.orderRepo.Save(txCtx, result.Order)
	})
	if err != nil {
		if !isDomainError(err) {
			s.logger.Error("Failed to apply order change", "error", err, "order_id", id)
		}
		return nil, err
	}

	s.publish(ctx, result.Event)
	s.logger.Info("Order updated",
		"order_id", id,
		"event_type", result.Event.Type,
		"status", result.Order.Status,
		"department", result.Order.CurrentDepartment,
	)

	return result.Order, nil
}

// Delete removes an order. Admin only.
func (s *orderServiceImpl) Delete(ctx context.Context, actor *entity.User, id string) error {
	if !actor.IsAdmin() && !permission.HasPermission(actor, permission.DeleteOrders) {
		return domainwf.NewAuthorizationError(actorLabel(actor), "delete order", "only administrators may delete orders")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var order *entity.Order
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		if order, err = s.orderRepo.GetByID(txCtx, id); err != nil {
			return err
		}
		return s.orderRepo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}

	evt := event.NewEvent(event.TypeOrderDeleted, order.ID, actor.Name, s.now(), map[string]interface{}{
		event.KeyPreviousStatus: order.Status.String(),
		event.KeyDepartment:     order.CurrentDepartment.String(),
	}).WithOrderNumber(order.OrderNumber)
	s.publish(ctx, evt)

	s.logger.Info("Order deleted", "order_id", id, "order_number", order.OrderNumber, "actor", actor.Name)
	return nil
}

// Export writes a report of the filtered orders
func (s *orderServiceImpl) Export(ctx context.Context, actor *entity.User, filter port.OrderFilter, w io.Writer) error {
	if actor == nil {
		return domainwf.NewAuthorizationError("anonymous", "export orders", "no authenticated user")
	}
	if !actor.IsAdmin() && !permission.HasPermission(actor, permission.ViewReports) {
		return domainwf.NewAuthorizationError(actorLabel(actor), "export orders", "missing view_reports permission")
	}
	if s.exporter == nil {
		return errors.New("order export is not configured")
	}

	orders, err := s.List(ctx, actor, filter)
	if err != nil {
		return err
	}

	if err := s.exporter.Export(ctx, orders, w); err != nil {
		s.logger.Error("Failed to export orders", "error", err, "count", len(orders))
		return fmt.Errorf("failed to export orders: %w", err)
	}
	return nil
}

func (s *orderServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.dispatcher == nil || evt == nil {
		return
	}
	s.dispatcher.DispatchAsync(ctx, evt)
}

// redact hides the delivery address and contact when the actor may not see them
func (s *orderServiceImpl) redact(actor *entity.User, order *entity.Order) *entity.Order {
	if order == nil || order.DispatchDetails == nil || permission.CanViewAddressDetails(actor, order) {
		return order
	}

	c := order.Clone()
	c.DispatchDetails.Address = redactedValue
	c.DispatchDetails.Contact = redactedValue
	return c
}

func isDomainError(err error) bool {
	return errors.Is(err, domainwf.ErrValidation) ||
		errors.Is(err, domainwf.ErrUnauthorized) ||
		errors.Is(err, domainwf.ErrBusinessRule) ||
		errors.Is(err, domainwf.ErrNotFound)
}

func actorLabel(u *entity.User) string {
	if u == nil {
		return "anonymous"
	}
	return u.Name
}
