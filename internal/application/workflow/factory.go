package workflow

import (
	"context"
	"fmt"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

// BuildOrderStateMachine creates a state machine positioned at the order's status.
// Guards close over the order, so build a fresh machine per action.
func BuildOrderStateMachine(order *entity.Order) domainwf.StateMachine {
	builder := domainwf.NewBuilder()
	inProduction := requireDepartment(order, entity.DepartmentProduction)

	builder.Configure(entity.OrderStatusNew).
		Permit(domainwf.TriggerForward, entity.OrderStatusInProgress).
		Permit(domainwf.TriggerHold, entity.OrderStatusOnHold).
		Permit(domainwf.TriggerRaiseIssue, entity.OrderStatusIssue).
		Permit(domainwf.TriggerResume, entity.OrderStatusInProgress)

	builder.Configure(entity.OrderStatusInProgress).
		PermitReentry(domainwf.TriggerForward).
		PermitReentry(domainwf.TriggerResume).
		Permit(domainwf.TriggerRequestApproval, entity.OrderStatusPendingApproval).
		Permit(domainwf.TriggerHold, entity.OrderStatusOnHold).
		Permit(domainwf.TriggerRaiseIssue, entity.OrderStatusIssue).
		Permit(domainwf.TriggerComplete, entity.OrderStatusCompleted).
		PermitIf(domainwf.TriggerMarkReady, entity.OrderStatusReadyToDispatch, inProduction)

	builder.Configure(entity.OrderStatusOnHold).
		Permit(domainwf.TriggerResume, entity.OrderStatusInProgress).
		Permit(domainwf.TriggerRaiseIssue, entity.OrderStatusIssue).
		Permit(domainwf.TriggerForward, entity.OrderStatusInProgress)

	builder.Configure(entity.OrderStatusIssue).
		Permit(domainwf.TriggerResume, entity.OrderStatusInProgress).
		Permit(domainwf.TriggerHold, entity.OrderStatusOnHold).
		Permit(domainwf.TriggerForward, entity.OrderStatusInProgress)

	// Sales answers move the order back to active work
	builder.Configure(entity.OrderStatusPendingApproval).
		Permit(domainwf.TriggerApprove, entity.OrderStatusInProgress).
		Permit(domainwf.TriggerReject, entity.OrderStatusInProgress)

	builder.Configure(entity.OrderStatusCompleted).
		Permit(domainwf.TriggerForward, entity.OrderStatusInProgress).
		Permit(domainwf.TriggerResume, entity.OrderStatusInProgress).
		PermitIf(domainwf.TriggerMarkReady, entity.OrderStatusReadyToDispatch, inProduction)

	builder.Configure(entity.OrderStatusReadyToDispatch).
		Permit(domainwf.TriggerVerify, entity.OrderStatusVerified).
		Permit(domainwf.TriggerDispatch, entity.OrderStatusDispatched)

	builder.Configure(entity.OrderStatusVerified).
		Permit(domainwf.TriggerDispatch, entity.OrderStatusDispatched)

	// Dispatched is terminal

	return builder.Build(order.Status)
}

func requireDepartment(order *entity.Order, d entity.Department) domainwf.GuardFunc {
	return func(ctx context.Context) error {
		if order.CurrentDepartment == d {
			return nil
		}
		return &domainwf.BusinessRuleViolation{
			Rule:          domainwf.RuleWrongDepartment,
			Message:       fmt.Sprintf("order is in %s, not %s", order.CurrentDepartment, d),
			PaidAmount:    order.PaidAmount,
			PendingAmount: order.PendingAmount,
		}
	}
}
