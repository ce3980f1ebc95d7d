package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/print-order-tracker/internal/application/workflow"
	"github.com/garyjia/print-order-tracker/internal/domain/entity"
	"github.com/garyjia/print-order-tracker/pkg/utils"
)

// actionRequest is a JSON body that maps to one workflow action
type actionRequest interface {
	toAction() workflow.Action
}

type createOrderRequest struct {
	OrderNumber string          `json:"order_number"`
	ClientName  string          `json:"client_name"`
	Amount      decimal.Decimal `json:"amount"`
	Items       []string        `json:"items"`
	Remarks     string          `json:"remarks"`
}

// toDraft strips control characters from the single-line fields
func (r createOrderRequest) toDraft() workflow.NewOrder {
	items := make([]string, len(r.Items))
	for i, item := range r.Items {
		items[i] = utils.SanitizeString(item)
	}
	return workflow.NewOrder{
		OrderNumber: r.OrderNumber,
		ClientName:  utils.SanitizeString(r.ClientName),
		Amount:      r.Amount,
		Items:       items,
		Remarks:     r.Remarks,
	}
}

type forwardRequest struct {
	To            string `json:"to"`
	Remarks       string `json:"remarks"`
	EstimatedTime string `json:"estimated_time"`
}

func (r forwardRequest) toAction() workflow.Action {
	return workflow.ForwardTo{
		To:            entity.Department(r.To),
		Remarks:       r.Remarks,
		EstimatedTime: r.EstimatedTime,
	}
}

type approvalRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

func (r approvalRequest) toAction() workflow.Action {
	return workflow.RequestApproval{
		From:   entity.Department(r.From),
		To:     entity.Department(r.To),
		Reason: r.Reason,
	}
}

type approveRequest struct {
	EstimatedTime string `json:"estimated_time"`
	Remarks       string `json:"remarks"`
}

func (r approveRequest) toAction() workflow.Action {
	return workflow.ApproveRequest{EstimatedTime: r.EstimatedTime, Remarks: r.Remarks}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (r rejectRequest) toAction() workflow.Action {
	return workflow.RejectRequest{Reason: r.Reason}
}

type paymentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Method  string          `json:"method"`
	Remarks string          `json:"remarks"`
	Date    *time.Time      `json:"date"`
}

func (r paymentRequest) toAction() workflow.Action {
	a := workflow.RecordPayment{Amount: r.Amount, Method: r.Method, Remarks: r.Remarks}
	if r.Date != nil {
		a.Date = *r.Date
	}
	return a
}

type readyRequest struct {
	Remarks string `json:"remarks"`
}

func (r readyRequest) toAction() workflow.Action {
	return workflow.MarkReadyToDispatch{Remarks: r.Remarks}
}

type verifyRequest struct {
	Remarks string `json:"remarks"`
}

func (r verifyRequest) toAction() workflow.Action {
	return workflow.Verify{Remarks: r.Remarks}
}

type dispatchRequest struct {
	Address        string     `json:"address"`
	Contact        string     `json:"contact"`
	Courier        string     `json:"courier"`
	DeliveryType   string     `json:"delivery_type"`
	TrackingNumber string     `json:"tracking_number"`
	DispatchDate   *time.Time `json:"dispatch_date"`
	Remarks        string     `json:"remarks"`
}

func (r dispatchRequest) toAction() workflow.Action {
	return workflow.Dispatch{
		Details: entity.DispatchDetails{
			Address:        r.Address,
			Contact:        r.Contact,
			Courier:        r.Courier,
			DeliveryType:   entity.DeliveryType(r.DeliveryType),
			TrackingNumber: r.TrackingNumber,
			DispatchDate:   r.DispatchDate,
		},
		Remarks: r.Remarks,
	}
}

type statusRequest struct {
	Status          string `json:"status"`
	Remarks         string `json:"remarks"`
	EstimatedTime   string `json:"estimated_time"`
	SelectedProduct string `json:"selected_product"`
}

func (r statusRequest) toAction() workflow.Action {
	return workflow.UpdateStatus{
		Status:          entity.OrderStatus(r.Status),
		Remarks:         r.Remarks,
		EstimatedTime:   r.EstimatedTime,
		SelectedProduct: r.SelectedProduct,
	}
}

type stageRequest struct {
	Stage    string `json:"stage"`
	Status   string `json:"status"`
	Remarks  string `json:"remarks"`
	Timeline string `json:"timeline"`
}

func (r stageRequest) toAction() workflow.Action {
	return workflow.UpdateProductionStage{
		Stage:    r.Stage,
		Status:   entity.StageStatus(r.Status),
		Remarks:  r.Remarks,
		Timeline: r.Timeline,
	}
}

type editUpdateRequest struct {
	Status        *string `json:"status"`
	Remarks       *string `json:"remarks"`
	EstimatedTime *string `json:"estimated_time"`
}

type listOrdersQuery struct {
	Department      string `form:"department"`
	Status          string `form:"status"`
	PaymentStatus   string `form:"payment_status"`
	PendingApproval bool   `form:"pending_approval"`
	Limit           int    `form:"limit"`
}

type createUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

type updateRoleRequest struct {
	Role       string `json:"role"`
	Department string `json:"department"`
}
