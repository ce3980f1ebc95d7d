package event

// Type identifies the type of domain event
type Type string

const (
	TypeOrderCreated       Type = "order.created"
	TypeOrderForwarded     Type = "order.forwarded"
	TypeStatusChanged      Type = "order.status_changed"
	TypeApprovalRequested  Type = "approval.requested"
	TypeApprovalApproved   Type = "approval.approved"
	TypeApprovalRejected   Type = "approval.rejected"
	TypePaymentRecorded    Type = "payment.recorded"
	TypeReadyToDispatch    Type = "order.ready_to_dispatch"
	TypeOrderVerified      Type = "order.verified"
	TypeOrderDispatched    Type = "order.dispatched"
	TypeOrderDeleted       Type = "order.deleted"
	TypeStatusUpdateEdited Type = "status_update.edited"
	TypeStatusUpdateUndone Type = "status_update.undone"
)

// AllTypes lists every event type, in the order handlers are usually registered
var AllTypes = []Type{
	TypeOrderCreated,
	TypeOrderForwarded,
	TypeStatusChanged,
	TypeApprovalRequested,
	TypeApprovalApproved,
	TypeApprovalRejected,
	TypePaymentRecorded,
	TypeReadyToDispatch,
	TypeOrderVerified,
	TypeOrderDispatched,
	TypeOrderDeleted,
	TypeStatusUpdateEdited,
	TypeStatusUpdateUndone,
}

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeOrderCreated,
		TypeOrderForwarded,
		TypeStatusChanged,
		TypeApprovalRequested,
		TypeApprovalApproved,
		TypeApprovalRejected,
		TypePaymentRecorded,
		TypeReadyToDispatch,
		TypeOrderVerified,
		TypeOrderDispatched,
		TypeOrderDeleted,
		TypeStatusUpdateEdited,
		TypeStatusUpdateUndone:
		return true
	default:
		return false
	}
}
