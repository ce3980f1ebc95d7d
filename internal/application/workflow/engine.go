package workflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	"github.com/garyjia/print-order-tracker/internal/domain/event"
	domainwf "github.com/garyjia/print-order-tracker/internal/domain/workflow"
)

// WorkflowEngine validates actions against the permission model and the order lifecycle.
// It never mutates the order it is given; each call returns a new snapshot.
type WorkflowEngine interface {
	// Open prepares a new order in status New owned by Sales
	Open(ctx context.Context, draft NewOrder, actor *entity.User, now time.Time) (*Result, error)

	// Apply runs one action and appends exactly one status update
	Apply(ctx context.Context, order *entity.Order, actor *entity.User, action Action, now time.Time) (*Result, error)

	// EditUpdate changes a status update in place within the edit policy
	EditUpdate(ctx context.Context, order *entity.Order, actor *entity.User, updateID string, patch UpdatePatch, now time.Time) (*Result, error)

	// UndoUpdate removes a status update within the undo policy
	UndoUpdate(ctx context.Context, order *entity.Order, actor *entity.User, updateID string, now time.Time) (*Result, error)

	// Policy returns the edit and undo windows in force
	Policy() domainwf.HistoryPolicy
}

// Result is the outcome of a successful engine call
type Result struct {
	Order  *entity.Order
	Update *entity.StatusUpdate
	Event  *event.Event
}

// NewOrder is the input for opening an order
type NewOrder struct {
	OrderNumber string
	ClientName  string
	Amount      decimal.Decimal
	Items       []string
	Remarks     string
}

// UpdatePatch lists the history fields an edit may replace. Nil fields are left unchanged.
type UpdatePatch struct {
	Status        *string
	Remarks       *string
	EstimatedTime *string
}

// IsEmpty reports whether the patch changes nothing
func (p UpdatePatch) IsEmpty() bool {
	return p.Status == nil && p.Remarks == nil && p.EstimatedTime == nil
}

// Action is a workflow transition request. The set of implementations is closed.
type Action interface {
	Name() string
	isAction()
}

// ForwardTo hands the order to another department
type ForwardTo struct {
	To            entity.Department
	Remarks       string
	EstimatedTime string
}

// RequestApproval pauses Design or Prepress work until Sales answers
type RequestApproval struct {
	From   entity.Department
	To     entity.Department
	Reason string
}

// ApproveRequest answers an outstanding approval request positively
type ApproveRequest struct {
	EstimatedTime string
	Remarks       string
}

// RejectRequest answers an outstanding approval request with feedback
type RejectRequest struct {
	Reason string
}

// RecordPayment appends a payment to the order
type RecordPayment struct {
	Amount  decimal.Decimal
	Method  string
	Remarks string
	Date    time.Time
}

// MarkReadyToDispatch completes the final production stage
type MarkReadyToDispatch struct {
	Remarks string
}

// Verify confirms a ready order before dispatch
type Verify struct {
	Remarks string
}

// Dispatch sends the order to the client
type Dispatch struct {
	Details entity.DispatchDetails
	Remarks string
}

// UpdateStatus lets the owning department put an order on hold, flag an issue, resume or complete it
type UpdateStatus struct {
	Status          entity.OrderStatus
	Remarks         string
	EstimatedTime   string
	SelectedProduct string
}

// UpdateProductionStage records progress on one production stage
type UpdateProductionStage struct {
	Stage    string
	Status   entity.StageStatus
	Remarks  string
	Timeline string
}

func (ForwardTo) Name() string             { return "forward" }
func (RequestApproval) Name() string       { return "request approval" }
func (ApproveRequest) Name() string        { return "approve" }
func (RejectRequest) Name() string         { return "reject" }
func (RecordPayment) Name() string         { return "record payment" }
func (MarkReadyToDispatch) Name() string   { return "mark ready to dispatch" }
func (Verify) Name() string                { return "verify" }
func (Dispatch) Name() string              { return "dispatch" }
func (UpdateStatus) Name() string          { return "update status" }
func (UpdateProductionStage) Name() string { return "update production stage" }

func (ForwardTo) isAction()             {}
func (RequestApproval) isAction()       {}
func (ApproveRequest) isAction()        {}
func (RejectRequest) isAction()         {}
func (RecordPayment) isAction()         {}
func (MarkReadyToDispatch) isAction()   {}
func (Verify) isAction()                {}
func (Dispatch) isAction()              {}
func (UpdateStatus) isAction()          {}
func (UpdateProductionStage) isAction() {}
