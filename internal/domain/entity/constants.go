package entity

// Department identifies the custodian of an order
type Department string

const (
	DepartmentSales      Department = "Sales"
	DepartmentDesign     Department = "Design"
	DepartmentPrepress   Department = "Prepress"
	DepartmentProduction Department = "Production"
	DepartmentAdmin      Department = "Admin"
)

// WorkflowDepartments lists the departments an order can be forwarded through, in chain order
var WorkflowDepartments = []Department{
	DepartmentSales,
	DepartmentDesign,
	DepartmentPrepress,
	DepartmentProduction,
}

// IsValid checks if the department is one of the defined constants
func (d Department) IsValid() bool {
	switch d {
	case DepartmentSales, DepartmentDesign, DepartmentPrepress, DepartmentProduction, DepartmentAdmin:
		return true
	default:
		return false
	}
}

// IsWorkflow reports whether an order can be owned by the department
func (d Department) IsWorkflow() bool {
	switch d {
	case DepartmentSales, DepartmentDesign, DepartmentPrepress, DepartmentProduction:
		return true
	case DepartmentAdmin:
		return false
	default:
		return false
	}
}

func (d Department) String() string {
	return string(d)
}

// Role is the seniority of a user within a department
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleStaff   Role = "Staff"
)

// IsValid checks if the role is one of the defined constants
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// OrderStatus is the lifecycle stage of an order
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "New"
	OrderStatusInProgress      OrderStatus = "In Progress"
	OrderStatusOnHold          OrderStatus = "On Hold"
	OrderStatusIssue           OrderStatus = "Issue"
	OrderStatusPendingApproval OrderStatus = "Pending Approval"
	OrderStatusCompleted       OrderStatus = "Completed"
	OrderStatusReadyToDispatch OrderStatus = "Ready to Dispatch"
	OrderStatusVerified        OrderStatus = "Verified"
	OrderStatusDispatched      OrderStatus = "Dispatched"
)

// IsValid checks if the status is one of the defined constants
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew,
		OrderStatusInProgress,
		OrderStatusOnHold,
		OrderStatusIssue,
		OrderStatusPendingApproval,
		OrderStatusCompleted,
		OrderStatusReadyToDispatch,
		OrderStatusVerified,
		OrderStatusDispatched:
		return true
	default:
		return false
	}
}

func (s OrderStatus) String() string {
	return string(s)
}

// PaymentStatus is derived from paid and total amounts
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPartial PaymentStatus = "Partial"
	PaymentStatusNotPaid PaymentStatus = "Not Paid"
)

// IsValid checks if the payment status is one of the defined constants
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusPaid, PaymentStatusPartial, PaymentStatusNotPaid:
		return true
	default:
		return false
	}
}

// SubStatus is the design or prepress department's own progress marker
type SubStatus string

const (
	SubStatusWorkingOnIt           SubStatus = "Working on it"
	SubStatusPendingSalesFeedback  SubStatus = "Pending Feedback from Sales Team"
	SubStatusWaitingForApproval    SubStatus = "Waiting for approval"
	SubStatusForwardedToSales      SubStatus = "Forwarded to Sales"
	SubStatusForwardedToDesign     SubStatus = "Forwarded to Design"
	SubStatusForwardedToPrepress   SubStatus = "Forwarded to Prepress"
	SubStatusForwardedToProduction SubStatus = "Forwarded to Production"
	SubStatusCompleted             SubStatus = "Completed"
)

// IsValid checks if the sub-status is one of the defined constants
func (s SubStatus) IsValid() bool {
	switch s {
	case SubStatusWorkingOnIt,
		SubStatusPendingSalesFeedback,
		SubStatusWaitingForApproval,
		SubStatusForwardedToSales,
		SubStatusForwardedToDesign,
		SubStatusForwardedToPrepress,
		SubStatusForwardedToProduction,
		SubStatusCompleted:
		return true
	default:
		return false
	}
}

// IsActive reports whether the sub-status means the department is still working on the order
func (s SubStatus) IsActive() bool {
	switch s {
	case SubStatusWorkingOnIt, SubStatusPendingSalesFeedback, SubStatusWaitingForApproval:
		return true
	default:
		return false
	}
}

// ForwardedTo returns the hand-over marker for the target department
func ForwardedTo(d Department) SubStatus {
	switch d {
	case DepartmentSales:
		return SubStatusForwardedToSales
	case DepartmentDesign:
		return SubStatusForwardedToDesign
	case DepartmentPrepress:
		return SubStatusForwardedToPrepress
	case DepartmentProduction:
		return SubStatusForwardedToProduction
	default:
		return ""
	}
}

// ApprovalOutcome labels the history entry written when Sales answers an approval request
type ApprovalOutcome string

const (
	OutcomeDesignApproved   ApprovalOutcome = "Design Approved"
	OutcomeDesignRejected   ApprovalOutcome = "Design Rejected"
	OutcomePrepressApproved ApprovalOutcome = "Prepress Approved"
	OutcomePrepressRejected ApprovalOutcome = "Prepress Rejected"
)

// OutcomeFor returns the outcome label for a department's approval request
func OutcomeFor(d Department, approved bool) ApprovalOutcome {
	switch d {
	case DepartmentDesign:
		if approved {
			return OutcomeDesignApproved
		}
		return OutcomeDesignRejected
	case DepartmentPrepress:
		if approved {
			return OutcomePrepressApproved
		}
		return OutcomePrepressRejected
	default:
		return ""
	}
}

// StageStatus tracks a production stage
type StageStatus string

const (
	StageStatusPending    StageStatus = "Pending"
	StageStatusInProgress StageStatus = "In Progress"
	StageStatusCompleted  StageStatus = "Completed"
)

// IsValid checks if the stage status is one of the defined constants
func (s StageStatus) IsValid() bool {
	switch s {
	case StageStatusPending, StageStatusInProgress, StageStatusCompleted:
		return true
	default:
		return false
	}
}

// Production stage names
const (
	StagePrinting        = "Printing"
	StageFinishing       = "Finishing"
	StageQualityCheck    = "Quality Check"
	StageReadyToDispatch = "Ready to Dispatch"
)

// DefaultProductionStages are seeded when an order first enters Production
var DefaultProductionStages = []string{
	StagePrinting,
	StageFinishing,
	StageQualityCheck,
	StageReadyToDispatch,
}

// Product status values for per-item tracking
const (
	ProductStatusPending    = "Pending"
	ProductStatusInProgress = "In Progress"
	ProductStatusCompleted  = "Completed"
	ProductStatusDispatched = "Dispatched"
)

// DeliveryType is how a dispatched order reaches the client
type DeliveryType string

const (
	DeliveryCourier      DeliveryType = "Courier"
	DeliveryHandDelivery DeliveryType = "Hand Delivery"
	DeliveryPickup       DeliveryType = "Pickup"
)

// IsValid checks if the delivery type is one of the defined constants
func (d DeliveryType) IsValid() bool {
	switch d {
	case DeliveryCourier, DeliveryHandDelivery, DeliveryPickup:
		return true
	default:
		return false
	}
}

// Priority of a notification
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Document collections
const (
	CollectionOrders        = "orders"
	CollectionUsers         = "users"
	CollectionNotifications = "notifications"
)
