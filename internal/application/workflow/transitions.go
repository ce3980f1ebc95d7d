package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	"github.com/garyjia/print-order-tracker/internal/domain/event"
	"github.com/garyjia/print-order-tracker/internal/domain/permission"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

func (e *engineImpl) forward(ctx context.Context, o *entity.Order, actor *entity.User, a ForwardTo) (*change, error) {
	from := o.CurrentDepartment
	if !a.To.IsWorkflow() {
		return nil, domainwf.NewValidationError("to", "must be one of Sales, Design, Prepress or Production")
	}
	if a.To == from {
		return nil, domainwf.NewValidationError("to", fmt.Sprintf("order is already in %s", from))
	}
	if !permission.CanForwardToDepartment(actor, from, a.To) {
		return nil, domainwf.NewAuthorizationError(actor.Name, "forward order",
			fmt.Sprintf("%s cannot forward from %s to %s", actor.Department, from, a.To))
	}
	if blank(a.Remarks) {
		return nil, domainwf.NewValidationError("remarks", "handover remarks are required")
	}
	if blank(a.EstimatedTime) {
		return nil, domainwf.NewValidationError("estimated_time", "is required when forwarding")
	}

	to, err := e.target(ctx, o, domainwf.TriggerForward)
	if err != nil {
		return nil, err
	}

	marker := entity.ForwardedTo(a.To)
	o.SetSubStatus(from, marker)
	for _, d := range []entity.Department{entity.DepartmentDesign, entity.DepartmentPrepress} {
		if d != a.To && o.SubStatusOf(d).IsActive() {
			o.SetSubStatus(d, marker)
		}
	}
	o.SetSubStatus(a.To, entity.SubStatusWorkingOnIt)
	if a.To == entity.DepartmentProduction && len(o.ProductionStages) == 0 {
		for _, stage := range entity.DefaultProductionStages {
			o.ProductionStages = append(o.ProductionStages, entity.ProductionStage{
				Stage:  stage,
				Status: entity.StageStatusPending,
			})
		}
	}

	o.CurrentDepartment = a.To
	o.Status = to

	return &change{
		status:        to.String(),
		remarks:       a.Remarks,
		estimatedTime: a.EstimatedTime,
		eventType:     event.TypeOrderForwarded,
		payload: map[string]interface{}{
			event.KeyFromDepartment: from.String(),
			event.KeyToDepartment:   a.To.String(),
		},
	}, nil
}

func (e *engineImpl) requestApproval(ctx context.Context, o *entity.Order, actor *entity.User, a RequestApproval) (*change, error) {
	if !permission.CanRequestApprovalFromSales(actor) {
		return nil, domainwf.NewAuthorizationError(actor.Name, "request approval", "only Design or Prepress may ask Sales for approval")
	}

	from := a.From
	if from == "" {
		from = actor.Department
	}
	if from != entity.DepartmentDesign && from != entity.DepartmentPrepress {
		return nil, domainwf.NewValidationError("from", "approval requests come from Design or Prepress")
	}
	if !actor.IsAdmin() && from != actor.Department {
		return nil, domainwf.NewAuthorizationError(actor.Name, "request approval",
			fmt.Sprintf("%s cannot request approval on behalf of %s", actor.Department, from))
	}
	if a.To != "" && a.To != entity.DepartmentSales {
		return nil, domainwf.NewValidationError("to", "approval requests are answered by Sales")
	}
	if blank(a.Reason) {
		return nil, domainwf.NewValidationError("reason", "is required")
	}
	if o.PendingApprovalFrom != "" {
		return nil, &domainwf.BusinessRuleViolation{
			Rule:          domainwf.RuleApprovalPending,
			Message:       fmt.Sprintf("an approval request from %s is already pending", o.PendingApprovalFrom),
			PaidAmount:    o.PaidAmount,
			PendingAmount: o.PendingAmount,
		}
	}
	if o.CurrentDepartment != from {
		return nil, &domainwf.BusinessRuleViolation{
			Rule:          domainwf.RuleWrongDepartment,
			Message:       fmt.Sprintf("order is in %s, not %s", o.CurrentDepartment, from),
			PaidAmount:    o.PaidAmount,
			PendingAmount: o.PendingAmount,
		}
	}

	to, err := e.target(ctx, o, domainwf.TriggerRequestApproval)
	if err != nil {
		return nil, err
	}

	switch from {
	case entity.DepartmentDesign:
		o.DesignStatus = entity.SubStatusPendingSalesFeedback
	case entity.DepartmentPrepress:
		o.PrepressStatus = entity.SubStatusWaitingForApproval
	}
	o.Status = to
	o.PendingApprovalFrom = from
	o.ApprovalReason = a.Reason

	return &change{
		status:    to.String(),
		remarks:   a.Reason,
		eventType: event.TypeApprovalRequested,
		payload: map[string]interface{}{
			event.KeyFromDepartment: from.String(),
			event.KeyToDepartment:   entity.DepartmentSales.String(),
			event.KeyReason:         a.Reason,
		},
	}, nil
}

// respond handles both answers to an approval request
func (e *engineImpl) respond(ctx context.Context, o *entity.Order, actor *entity.User, approved bool, estimatedTime, remarks string) (*change, error) {
	action := "reject request"
	if approved {
		action = "approve request"
	}
	if !permission.CanRespondToApproval(actor) {
		return nil, domainwf.NewAuthorizationError(actor.Name, action, "only Sales may answer approval requests")
	}
	if approved && blank(estimatedTime) {
		return nil, domainwf.NewValidationError("estimated_time", "an estimated completion time is required")
	}
	if !approved && blank(remarks) {
		return nil, domainwf.NewValidationError("reason", "feedback is required when rejecting")
	}
	if o.PendingApprovalFrom == "" {
		return nil, &domainwf.BusinessRuleViolation{
			Rule:          domainwf.RuleNoPendingApproval,
			Message:       "there is no pending approval request",
			PaidAmount:    o.PaidAmount,
			PendingAmount: o.PendingAmount,
		}
	}

	trigger := domainwf.TriggerReject
	eventType := event.TypeApprovalRejected
	if approved {
		trigger = domainwf.TriggerApprove
		eventType = event.TypeApprovalApproved
	}
	to, err := e.target(ctx, o, trigger)
	if err != nil {
		return nil, err
	}

	origin := o.PendingApprovalFrom
	o.SetSubStatus(origin, entity.SubStatusWorkingOnIt)
	if !approved {
		o.SetSubRemarks(origin, remarks)
	}
	o.PendingApprovalFrom = ""
	o.ApprovalReason = ""
	o.Status = to

	return &change{
		status:        string(entity.OutcomeFor(origin, approved)),
		remarks:       remarks,
		estimatedTime: estimatedTime,
		eventType:     eventType,
		payload: map[string]interface{}{
			event.KeyFromDepartment: entity.DepartmentSales.String(),
			event.KeyToDepartment:   origin.String(),
		},
	}, nil
}

func (e *engineImpl) recordPayment(o *entity.Order, actor *entity.User, a RecordPayment, now time.Time) (*change, error) {
	if !permission.HasPermission(actor, permission.RecordPayment) {
		return nil, domainwf.NewAuthorizationError(actor.Name, "record payment", "missing record_payment permission")
	}
	if !a.Amount.IsPositive() {
		return nil, domainwf.NewValidationError("amount", "must be greater than zero")
	}
	if blank(a.Method) {
		return nil, domainwf.NewValidationError("method", "is required")
	}

	date := a.Date
	if date.IsZero() {
		date = now
	}
	o.PaymentHistory = append(o.PaymentHistory, entity.PaymentRecord{
		ID:         e.newID(),
		Amount:     a.Amount,
		Date:       date,
		Method:     strings.TrimSpace(a.Method),
		Remarks:    a.Remarks,
		RecordedBy: actor.Name,
	})
	o.RecalculatePayments()

	remarks := fmt.Sprintf("Payment of %s received via %s", a.Amount.StringFixed(2), strings.TrimSpace(a.Method))
	if !blank(a.Remarks) {
		remarks += ": " + a.Remarks
	}

	return &change{
		status:    o.Status.String(),
		remarks:   remarks,
		eventType: event.TypePaymentRecorded,
		payload: map[string]interface{}{
			event.KeyAmount:        a.Amount.StringFixed(2),
			event.KeyPendingAmount: o.PendingAmount.StringFixed(2),
			"payment_status":       string(o.PaymentStatus),
		},
	}, nil
}

func (e *engineImpl) markReady(ctx context.Context, o *entity.Order, actor *entity.User, remarks string) (*change, error) {
	if !actor.IsAdmin() &&
		(actor.Department != entity.DepartmentProduction || !permission.HasPermission(actor, permission.MarkReadyDispatch)) {
		return nil, domainwf.NewAuthorizationError(actor.Name, "mark ready to dispatch", "only Production may mark orders ready to dispatch")
	}
	if !o.IsPaid() {
		return nil, paymentRequired(o, "marked ready to dispatch")
	}

	to, err := e.target(ctx, o, domainwf.TriggerMarkReady)
	if err != nil {
		return nil, err
	}

	if i := o.FindStage(entity.StageReadyToDispatch); i >= 0 {
		o.ProductionStages[i].Status = entity.StageStatusCompleted
		if remarks != "" {
			o.ProductionStages[i].Remarks = remarks
		}
	} else {
		o.ProductionStages = append(o.ProductionStages, entity.ProductionStage{
			Stage:   entity.StageReadyToDispatch,
			Status:  entity.StageStatusCompleted,
			Remarks: remarks,
		})
	}
	o.Status = to

	return &change{
		status:    to.String(),
		remarks:   remarks,
		eventType: event.TypeReadyToDispatch,
	}, nil
}

func (e *engineImpl) verify(ctx context.Context, o *entity.Order, actor *entity.User, a Verify) (*change, error) {
	if !actor.IsAdmin() && !permission.HasPermission(actor, permission.VerifyPayment) {
		return nil, domainwf.NewAuthorizationError(actor.Name, "verify order", "missing verify_payment permission")
	}
	if !o.IsPaid() {
		return nil, paymentRequired(o, "verified")
	}

	to, err := e.target(ctx, o, domainwf.TriggerVerify)
	if err != nil {
		return nil, err
	}
	o.Status = to

	return &change{
		status:    to.String(),
		remarks:   a.Remarks,
		eventType: event.TypeOrderVerified,
	}, nil
}

func (e *engineImpl) dispatch(ctx context.Context, o *entity.Order, actor *entity.User, a Dispatch, now time.Time) (*change, error) {
	if !actor.IsAdmin() && !permission.HasPermission(actor, permission.DispatchOrders) {
		return nil, domainwf.NewAuthorizationError(actor.Name, "dispatch order", "missing dispatch_orders permission")
	}
	if !o.IsPaid() {
		return nil, paymentRequired(o, "dispatched")
	}

	to, err := e.target(ctx, o, domainwf.TriggerDispatch)
	if err != nil {
		return nil, err
	}

	details := a.Details
	if field := details.MissingField(); field != "" {
		return nil, domainwf.NewValidationError(field, "is required to dispatch")
	}
	if !details.DeliveryType.IsValid() {
		return nil, domainwf.NewValidationError("delivery_type", "must be Courier, Hand Delivery or Pickup")
	}

	dispatchedAt := now
	details.DispatchDate = &dispatchedAt
	details.VerifiedBy = actor.Name
	o.DispatchDetails = &details
	for i := range o.ProductStatus {
		o.ProductStatus[i].Status = entity.ProductStatusDispatched
	}
	o.Status = to

	remarks := a.Remarks
	if blank(remarks) {
		remarks = fmt.Sprintf("Dispatched via %s (%s)", details.Courier, details.DeliveryType)
	}

	return &change{
		status:    to.String(),
		remarks:   remarks,
		eventType: event.TypeOrderDispatched,
		payload: map[string]interface{}{
			"courier":       details.Courier,
			"delivery_type": string(details.DeliveryType),
		},
	}, nil
}

var statusTriggers = map[entity.OrderStatus]domainwf.Trigger{
	entity.OrderStatusOnHold:     domainwf.TriggerHold,
	entity.OrderStatusIssue:      domainwf.TriggerRaiseIssue,
	entity.OrderStatusInProgress: domainwf.TriggerResume,
	entity.OrderStatusCompleted:  domainwf.TriggerComplete,
}

func (e *engineImpl) updateStatus(ctx context.Context, o *entity.Order, actor *entity.User, a UpdateStatus) (*change, error) {
	if !actor.IsAdmin() &&
		(!permission.HasPermission(actor, permission.UpdateOrders) || actor.Department != o.CurrentDepartment) {
		return nil, domainwf.NewAuthorizationError(actor.Name, "update status",
			fmt.Sprintf("order is owned by %s", o.CurrentDepartment))
	}

	trigger, ok := statusTriggers[a.Status]
	if !ok {
		return nil, domainwf.NewValidationError("status", fmt.Sprintf("%q cannot be set directly", a.Status))
	}
	if (a.Status == entity.OrderStatusOnHold || a.Status == entity.OrderStatusIssue) && blank(a.Remarks) {
		return nil, domainwf.NewValidationError("remarks", fmt.Sprintf("are required for %s", a.Status))
	}
	product := -1
	if a.SelectedProduct != "" {
		if product = o.FindProduct(a.SelectedProduct); product < 0 {
			return nil, domainwf.NewValidationError("selected_product", "does not belong to this order")
		}
	}

	to, err := e.target(ctx, o, trigger)
	if err != nil {
		return nil, err
	}

	switch a.Status {
	case entity.OrderStatusCompleted:
		o.SetSubStatus(o.CurrentDepartment, entity.SubStatusCompleted)
	case entity.OrderStatusInProgress:
		o.SetSubStatus(o.CurrentDepartment, entity.SubStatusWorkingOnIt)
	}
	if product >= 0 {
		switch a.Status {
		case entity.OrderStatusCompleted:
			o.ProductStatus[product].Status = entity.ProductStatusCompleted
		case entity.OrderStatusInProgress:
			o.ProductStatus[product].Status = entity.ProductStatusInProgress
		}
		o.ProductStatus[product].Remarks = a.Remarks
	}
	o.SetSubRemarks(o.CurrentDepartment, a.Remarks)
	o.Status = to

	return &change{
		status:          to.String(),
		remarks:         a.Remarks,
		estimatedTime:   a.EstimatedTime,
		selectedProduct: a.SelectedProduct,
		eventType:       event.TypeStatusChanged,
	}, nil
}

func (e *engineImpl) updateStage(ctx context.Context, o *entity.Order, actor *entity.User, a UpdateProductionStage) (*change, error) {
	if !actor.IsAdmin() &&
		(actor.Department != entity.DepartmentProduction || !permission.HasPermission(actor, permission.UpdateProduction)) {
		return nil, domainwf.NewAuthorizationError(actor.Name, "update production stage", "only Production may update stages")
	}
	if !a.Status.IsValid() {
		return nil, domainwf.NewValidationError("status", "must be Pending, In Progress or Completed")
	}

	if a.Stage == entity.StageReadyToDispatch && a.Status == entity.StageStatusCompleted {
		return e.markReady(ctx, o, actor, a.Remarks)
	}

	i := o.FindStage(a.Stage)
	if i < 0 {
		return nil, domainwf.NewValidationError("stage", fmt.Sprintf("unknown production stage %q", a.Stage))
	}
	if o.CurrentDepartment != entity.DepartmentProduction {
		return nil, &domainwf.BusinessRuleViolation{
			Rule:          domainwf.RuleWrongDepartment,
			Message:       fmt.Sprintf("order is in %s, not Production", o.CurrentDepartment),
			PaidAmount:    o.PaidAmount,
			PendingAmount: o.PendingAmount,
		}
	}
	if domainwf.IsTerminal(o.Status) {
		return nil, &domainwf.BusinessRuleViolation{
			Rule:          domainwf.RuleTransition,
			Message:       fmt.Sprintf("order is already %s", o.Status),
			PaidAmount:    o.PaidAmount,
			PendingAmount: o.PendingAmount,
			Err:           domainwf.ErrInvalidTransition,
		}
	}

	o.ProductionStages[i].Status = a.Status
	if a.Remarks != "" {
		o.ProductionStages[i].Remarks = a.Remarks
	}
	if a.Timeline != "" {
		o.ProductionStages[i].Timeline = a.Timeline
	}

	remarks := fmt.Sprintf("%s: %s", a.Stage, a.Status)
	if !blank(a.Remarks) {
		remarks += " - " + a.Remarks
	}

	return &change{
		status:        o.Status.String(),
		remarks:       remarks,
		estimatedTime: a.Timeline,
		eventType:     event.TypeStatusChanged,
		payload: map[string]interface{}{
			"stage":        a.Stage,
			"stage_status": string(a.Status),
		},
	}, nil
}
