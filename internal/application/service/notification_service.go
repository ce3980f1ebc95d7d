package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/print-order-tracker/internal/application/dispatcher"
	"github.com/garyjia/print-order-tracker/internal/application/port"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	"github.com/garyjia/print-order-tracker/internal/domain/event"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

const (
	// DefaultNotifyTimeout bounds delivery of one notification
	DefaultNotifyTimeout = 15 * time.Second

	defaultInboxLimit = 50
)

// NotificationService turns order events into inbox entries and sink messages
type NotificationService interface {
	// Register subscribes the service to every order event
	Register(d dispatcher.Dispatcher)

	// HandleEvent builds, stores and sends the notification for one event.
	// Failures are logged and never returned.
	HandleEvent(ctx context.Context, evt *event.Event) error

	ListForDepartment(ctx context.Context, actor *entity.User, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, actor *entity.User, id string) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	sink             port.NotificationSink
	logger           Logger
	timeout          time.Duration
}

// NotificationOption configures the notification service
type NotificationOption func(*notificationServiceImpl)

// WithNotifyTimeout bounds storing and sending one notification
func WithNotifyTimeout(d time.Duration) NotificationOption {
	return func(s *notificationServiceImpl) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewNotificationService creates a new NotificationService. sink may be nil.
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	sink port.NotificationSink,
	logger Logger,
	opts ...NotificationOption,
) NotificationService {
	s := &notificationServiceImpl{
		notificationRepo: notificationRepo,
		sink:             sink,
		logger:           logger,
		timeout:          DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *notificationServiceImpl) Register(d dispatcher.Dispatcher) {
	d.SubscribeNamed(dispatcher.AllEvents, "notifications", s.HandleEvent)
}

func (s *notificationServiceImpl) HandleEvent(ctx context.Context, evt *event.Event) error {
	n := BuildNotification(evt)
	if n == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to store notification", "error", err, "event_type", evt.Type, "order_id", evt.OrderID)
	}

	if s.sink != nil {
		if err := s.sink.Notify(ctx, n); err != nil {
			s.logger.Error("Failed to deliver notification", "error", err, "event_type", evt.Type, "order_id", evt.OrderID)
			return nil
		}
	}

	s.logger.Info("Notification sent", "event_type", evt.Type, "order_id", evt.OrderID, "departments", n.Departments)
	return nil
}

// ListForDepartment returns the actor's department inbox. Admins see every notification.
func (s *notificationServiceImpl) ListForDepartment(ctx context.Context, actor *entity.User, limit int) ([]*entity.Notification, error) {
	if actor == nil {
		return nil, domainwf.NewAuthorizationError("anonymous", "list notifications", "no authenticated user")
	}
	if limit <= 0 {
		limit = defaultInboxLimit
	}

	department := actor.Department
	if actor.IsAdmin() {
		department = ""
	}
	return s.notificationRepo.ListForDepartment(ctx, department, limit)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor *entity.User, id string) error {
	if actor == nil {
		return domainwf.NewAuthorizationError("anonymous", "mark notification read", "no authenticated user")
	}
	return s.notificationRepo.MarkRead(ctx, id, actor.ID)
}

// BuildNotification maps an order event to the departments that should hear about it.
// It returns nil for events nobody is told about.
func BuildNotification(evt *event.Event) *entity.Notification {
	if evt == nil {
		return nil
	}

	order := evt.OrderNumber
	if order == "" {
		order = evt.OrderID
	}
	remarks := evt.GetPayloadString(event.KeyRemarks)
	from := entity.Department(evt.GetPayloadString(event.KeyFromDepartment))
	to := entity.Department(evt.GetPayloadString(event.KeyToDepartment))

	n := &entity.Notification{
		ID:        uuid.NewString(),
		OrderID:   evt.OrderID,
		Priority:  entity.PriorityNormal,
		CreatedAt: evt.Timestamp,
	}

	switch evt.Type {
	case event.TypeOrderCreated:
		n.Title = "New order"
		n.Message = fmt.Sprintf("Order %s was created by %s", order, evt.Actor)
		n.Departments = []entity.Department{entity.DepartmentSales}
	case event.TypeOrderForwarded:
		n.Title = fmt.Sprintf("Order forwarded to %s", to)
		n.Message = fmt.Sprintf("Order %s was forwarded from %s to %s by %s", order, from, to, evt.Actor)
		n.Departments = []entity.Department{to}
	case event.TypeApprovalRequested:
		n.Title = fmt.Sprintf("Approval requested by %s", from)
		n.Message = fmt.Sprintf("%s needs a decision on order %s: %s", from, order, evt.GetPayloadString(event.KeyReason))
		n.Departments = []entity.Department{entity.DepartmentSales}
		n.Priority = entity.PriorityHigh
	case event.TypeApprovalApproved:
		n.Title = "Request approved"
		n.Message = fmt.Sprintf("Sales approved the request on order %s", order)
		n.Departments = []entity.Department{to}
	case event.TypeApprovalRejected:
		n.Title = "Request rejected"
		n.Message = fmt.Sprintf("Sales rejected the request on order %s: %s", order, remarks)
		n.Departments = []entity.Department{to}
		n.Priority = entity.PriorityHigh
	case event.TypePaymentRecorded:
		n.Title = "Payment recorded"
		n.Message = fmt.Sprintf("Order %s received %s, %s pending", order,
			evt.GetPayloadString(event.KeyAmount), evt.GetPayloadString(event.KeyPendingAmount))
		n.Departments = []entity.Department{entity.DepartmentSales}
		n.Priority = entity.PriorityLow
	case event.TypeReadyToDispatch:
		n.Title = "Ready to dispatch"
		n.Message = fmt.Sprintf("Order %s is ready to dispatch", order)
		n.Departments = []entity.Department{entity.DepartmentSales}
		n.Priority = entity.PriorityHigh
	case event.TypeOrderVerified:
		n.Title = "Order verified"
		n.Message = fmt.Sprintf("Order %s was verified by %s", order, evt.Actor)
		n.Departments = []entity.Department{entity.DepartmentSales, entity.DepartmentProduction}
	case event.TypeOrderDispatched:
		n.Title = "Order dispatched"
		n.Message = fmt.Sprintf("Order %s was dispatched", order)
		n.Departments = append([]entity.Department(nil), entity.WorkflowDepartments...)
	case event.TypeStatusChanged:
		status := entity.OrderStatus(evt.GetPayloadString(event.KeyNewStatus))
		if status != entity.OrderStatusOnHold && status != entity.OrderStatusIssue {
			return nil
		}
		n.Title = fmt.Sprintf("Order %s", status)
		n.Message = fmt.Sprintf("Order %s is %s: %s", order, status, remarks)
		n.Departments = departments(entity.DepartmentSales, entity.Department(evt.GetPayloadString(event.KeyDepartment)))
		n.Priority = entity.PriorityHigh
	case event.TypeStatusUpdateUndone:
		n.Title = "Status update undone"
		n.Message = fmt.Sprintf("%s removed the %q update on order %s", evt.Actor,
			evt.GetPayloadString(event.KeyPreviousStatus), order)
		n.Departments = append([]entity.Department(nil), entity.WorkflowDepartments...)
		n.Priority = entity.PriorityLow
	case event.TypeOrderDeleted:
		n.Title = "Order deleted"
		n.Message = fmt.Sprintf("Order %s was deleted by %s", order, evt.Actor)
		n.Departments = append([]entity.Department(nil), entity.WorkflowDepartments...)
		n.Priority = entity.PriorityLow
	default:
		return nil
	}

	return n
}

func departments(ds ...entity.Department) []entity.Department {
	out := make([]entity.Department, 0, len(ds))
	for _, d := range ds {
		if !d.IsValid() {
			continue
		}
		dup := false
		for _, o := range out {
			dup = dup || o == d
		}
		if !dup {
			out = append(out, d)
		}
	}
	return out
}
