package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	"github.com/garyjia/print-order-tracker/internal/domain/event"
	"github.com/garyjia/print-order-tracker/internal/domain/permission"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

// engineImpl is the concrete implementation of WorkflowEngine
type engineImpl struct {
	policy domainwf.HistoryPolicy
	newID  func() string
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithHistoryPolicy overrides the edit and undo windows
func WithHistoryPolicy(p domainwf.HistoryPolicy) EngineOption {
	return func(e *engineImpl) {
		e.policy = p
	}
}

// WithIDGenerator sets the id source for new history entries, payments and orders
func WithIDGenerator(fn func() string) EngineOption {
	return func(e *engineImpl) {
		e.newID = fn
	}
}

// NewEngine creates a new workflow engine
func NewEngine(opts ...EngineOption) WorkflowEngine {
	e := &engineImpl{
		policy: domainwf.DefaultHistoryPolicy(),
		newID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// change describes what a handler did, so Apply can record it uniformly
type change struct {
	status          string
	remarks         string
	estimatedTime   string
	selectedProduct string
	eventType       event.Type
	payload         map[string]interface{}
}

func (e *engineImpl) Policy() domainwf.HistoryPolicy {
	return e.policy
}

// Open prepares a new order
func (e *engineImpl) Open(ctx context.Context, draft NewOrder, actor *entity.User, now time.Time) (*Result, error) {
	if actor == nil {
		return nil, domainwf.NewAuthorizationError("anonymous", "create order", "no authenticated user")
	}
	if !permission.HasPermission(actor, permission.CreateOrders) {
		return nil, domainwf.NewAuthorizationError(actor.Name, "create order", "missing create_orders permission")
	}
	if strings.TrimSpace(draft.ClientName) == "" {
		return nil, domainwf.NewValidationError("client_name", "is required")
	}
	if draft.Amount.IsNegative() {
		return nil, domainwf.NewValidationError("amount", "must not be negative")
	}

	items := make([]string, 0, len(draft.Items))
	for _, item := range draft.Items {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, domainwf.NewValidationError("items", "at least one item is required")
	}

	o := &entity.Order{
		ID:                e.newID(),
		OrderNumber:       draft.OrderNumber,
		ClientName:        strings.TrimSpace(draft.ClientName),
		Amount:            draft.Amount,
		Items:             items,
		CreatedAt:         now,
		LastUpdated:       now,
		Status:            entity.OrderStatusNew,
		CurrentDepartment: entity.DepartmentSales,
		StatusHistory:     []entity.StatusUpdate{},
		PaymentHistory:    []entity.PaymentRecord{},
	}
	for _, item := range items {
		o.ProductStatus = append(o.ProductStatus, entity.ProductStatus{
			ID:     e.newID(),
			Name:   item,
			Status: entity.ProductStatusPending,
		})
	}
	o.RecalculatePayments()

	remarks := draft.Remarks
	if remarks == "" {
		remarks = "Order created"
	}

	return e.record(o, actor, &change{
		status:    entity.OrderStatusNew.String(),
		remarks:   remarks,
		eventType: event.TypeOrderCreated,
		payload: map[string]interface{}{
			event.KeyNewStatus: entity.OrderStatusNew.String(),
			event.KeyAmount:    o.Amount.String(),
		},
	}, now), nil
}

// Apply validates and runs one action against a copy of the order
func (e *engineImpl) Apply(ctx context.Context, order *entity.Order, actor *entity.User, action Action, now time.Time) (*Result, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}
	if action == nil {
		return nil, fmt.Errorf("action is required")
	}
	if actor == nil {
		return nil, domainwf.NewAuthorizationError("anonymous", action.Name(), "no authenticated user")
	}

	o := order.Clone()
	previous := o.Status

	var (
		ch  *change
		err error
	)
	switch a := action.(type) {
	case ForwardTo:
		ch, err = e.forward(ctx, o, actor, a)
	case RequestApproval:
		ch, err = e.requestApproval(ctx, o, actor, a)
	case ApproveRequest:
		ch, err = e.respond(ctx, o, actor, true, a.EstimatedTime, a.Remarks)
	case RejectRequest:
		ch, err = e.respond(ctx, o, actor, false, "", a.Reason)
	case RecordPayment:
		ch, err = e.recordPayment(o, actor, a, now)
	case MarkReadyToDispatch:
		ch, err = e.markReady(ctx, o, actor, a.Remarks)
	case Verify:
		ch, err = e.verify(ctx, o, actor, a)
	case Dispatch:
		ch, err = e.dispatch(ctx, o, actor, a, now)
	case UpdateStatus:
		ch, err = e.updateStatus(ctx, o, actor, a)
	case UpdateProductionStage:
		ch, err = e.updateStage(ctx, o, actor, a)
	default:
		return nil, fmt.Errorf("unsupported action %T", action)
	}
	if err != nil {
		return nil, err
	}
	if err := o.CheckConsistency(); err != nil {
		return nil, fmt.Errorf("%s left order %s inconsistent: %w", action.Name(), o.ID, err)
	}

	if ch.payload == nil {
		ch.payload = make(map[string]interface{})
	}
	ch.payload[event.KeyPreviousStatus] = previous.String()
	ch.payload[event.KeyNewStatus] = o.Status.String()

	return e.record(o, actor, ch, now), nil
}

// record appends the status update for a change and builds the result
func (e *engineImpl) record(o *entity.Order, actor *entity.User, ch *change, now time.Time) *Result {
	update := entity.StatusUpdate{
		ID:              e.newID(),
		OrderID:         o.ID,
		Timestamp:       now,
		Department:      actor.Department,
		Status:          ch.status,
		Remarks:         ch.remarks,
		UpdatedBy:       actor.Name,
		EstimatedTime:   ch.estimatedTime,
		SelectedProduct: ch.selectedProduct,
		EditableUntil:   e.policy.EditableUntil(now),
	}
	o.StatusHistory = append(o.StatusHistory, update)
	o.LastUpdated = now

	if ch.payload == nil {
		ch.payload = make(map[string]interface{})
	}
	ch.payload[event.KeyStatusUpdateID] = update.ID
	ch.payload[event.KeyDepartment] = o.CurrentDepartment.String()
	if ch.remarks != "" {
		ch.payload[event.KeyRemarks] = ch.remarks
	}

	evt := event.NewEvent(ch.eventType, o.ID, actor.Name, now, ch.payload).WithOrderNumber(o.OrderNumber)

	return &Result{Order: o, Update: &update, Event: evt}
}

// EditUpdate replaces status, remarks or estimated time of a history entry
func (e *engineImpl) EditUpdate(ctx context.Context, order *entity.Order, actor *entity.User, updateID string, patch UpdatePatch, now time.Time) (*Result, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}

	idx := order.FindUpdate(updateID)
	if idx < 0 {
		return nil, domainwf.NewNotFoundError("status update", updateID)
	}
	if !e.policy.CanEdit(&order.StatusHistory[idx], actor, now) {
		return nil, domainwf.NewAuthorizationError(actorName(actor), "edit status update",
			fmt.Sprintf("only the author may edit an update, within %s of creating it", e.policy.EditWindow))
	}
	if patch.IsEmpty() {
		return nil, domainwf.NewValidationError("patch", "nothing to change")
	}
	if patch.Status != nil && strings.TrimSpace(*patch.Status) == "" {
		return nil, domainwf.NewValidationError("status", "must not be empty")
	}

	o := order.Clone()
	update := &o.StatusHistory[idx]
	if patch.Status != nil {
		update.Status = strings.TrimSpace(*patch.Status)
	}
	if patch.Remarks != nil {
		update.Remarks = *patch.Remarks
	}
	if patch.EstimatedTime != nil {
		update.EstimatedTime = *patch.EstimatedTime
	}
	o.LastUpdated = now

	edited := *update
	evt := event.NewEvent(event.TypeStatusUpdateEdited, o.ID, actor.Name, now, map[string]interface{}{
		event.KeyStatusUpdateID: edited.ID,
		event.KeyNewStatus:      edited.Status,
		event.KeyRemarks:        edited.Remarks,
	}).WithOrderNumber(o.OrderNumber)

	return &Result{Order: o, Update: &edited, Event: evt}, nil
}

// UndoUpdate hard-deletes a history entry. The order's current status and department stay as they are.
func (e *engineImpl) UndoUpdate(ctx context.Context, order *entity.Order, actor *entity.User, updateID string, now time.Time) (*Result, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}

	idx := order.FindUpdate(updateID)
	if idx < 0 {
		return nil, domainwf.NewNotFoundError("status update", updateID)
	}
	if !e.policy.CanUndo(&order.StatusHistory[idx], actor, now) {
		return nil, domainwf.NewAuthorizationError(actorName(actor), "undo status update",
			fmt.Sprintf("only the author may undo an update, within %s of creating it", e.policy.UndoWindow))
	}

	o := order.Clone()
	removed := o.StatusHistory[idx]
	o.StatusHistory = slices.Delete(o.StatusHistory, idx, idx+1)
	o.LastUpdated = now

	evt := event.NewEvent(event.TypeStatusUpdateUndone, o.ID, actor.Name, now, map[string]interface{}{
		event.KeyStatusUpdateID: removed.ID,
		event.KeyPreviousStatus: removed.Status,
		event.KeyRemarks:        removed.Remarks,
		event.KeyDepartment:     removed.Department.String(),
	}).WithOrderNumber(o.OrderNumber)

	return &Result{Order: o, Update: &removed, Event: evt}, nil
}

// target asks the lifecycle machine where a trigger leads from the order's status
func (e *engineImpl) target(ctx context.Context, o *entity.Order, trigger domainwf.Trigger) (entity.OrderStatus, error) {
	to, err := BuildOrderStateMachine(o).Target(ctx, trigger)
	if err == nil {
		return to, nil
	}

	var violation *domainwf.BusinessRuleViolation
	if errors.As(err, &violation) {
		return "", violation
	}
	return "", &domainwf.BusinessRuleViolation{
		Rule:          domainwf.RuleTransition,
		Message:       fmt.Sprintf("cannot %s an order that is %s", strings.ToLower(strings.ReplaceAll(trigger.String(), "_", " ")), o.Status),
		PaidAmount:    o.PaidAmount,
		PendingAmount: o.PendingAmount,
		Err:           err,
	}
}

func paymentRequired(o *entity.Order, action string) error {
	return &domainwf.BusinessRuleViolation{
		Rule:          domainwf.RulePaymentRequired,
		Message:       fmt.Sprintf("order must be fully paid before it can be %s", action),
		PaidAmount:    o.PaidAmount,
		PendingAmount: o.PendingAmount,
	}
}

func actorName(u *entity.User) string {
	if u == nil {
		return "anonymous"
	}
	return u.Name
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
