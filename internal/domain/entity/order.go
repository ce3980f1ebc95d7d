package entity

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the aggregate moved between departments. Status and payment
// histories are stored inside the same document.
type Order struct {
	ID                  string            `json:"id"`
	OrderNumber         string            `json:"order_number"`
	ClientName          string            `json:"client_name"`
	Amount              decimal.Decimal   `json:"amount"`
	PaidAmount          decimal.Decimal   `json:"paid_amount"`
	PendingAmount       decimal.Decimal   `json:"pending_amount"`
	Items               []string          `json:"items"`
	CreatedAt           time.Time         `json:"created_at"`
	LastUpdated         time.Time         `json:"last_updated"`
	Status              OrderStatus       `json:"status"`
	CurrentDepartment   Department        `json:"current_department"`
	PaymentStatus       PaymentStatus     `json:"payment_status"`
	StatusHistory       []StatusUpdate    `json:"status_history"`
	PaymentHistory      []PaymentRecord   `json:"payment_history"`
	DesignStatus        SubStatus         `json:"design_status,omitempty"`
	DesignRemarks       string            `json:"design_remarks,omitempty"`
	PrepressStatus      SubStatus         `json:"prepress_status,omitempty"`
	PrepressRemarks     string            `json:"prepress_remarks,omitempty"`
	ProductionStages    []ProductionStage `json:"production_stages,omitempty"`
	ProductStatus       []ProductStatus   `json:"product_status,omitempty"`
	DispatchDetails     *DispatchDetails  `json:"dispatch_details,omitempty"`
	PendingApprovalFrom Department        `json:"pending_approval_from,omitempty"`
	ApprovalReason      string            `json:"approval_reason,omitempty"`
}

// ProductionStage is one step of the production line
type ProductionStage struct {
	Stage    string      `json:"stage"`
	Status   StageStatus `json:"status"`
	Remarks  string      `json:"remarks,omitempty"`
	Timeline string      `json:"timeline,omitempty"`
}

// ProductStatus tracks a single line item
type ProductStatus struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

// DispatchDetails holds delivery information captured at dispatch
type DispatchDetails struct {
	Address        string       `json:"address"`
	Contact        string       `json:"contact"`
	Courier        string       `json:"courier"`
	DeliveryType   DeliveryType `json:"delivery_type"`
	TrackingNumber string       `json:"tracking_number,omitempty"`
	DispatchDate   *time.Time   `json:"dispatch_date,omitempty"`
	VerifiedBy     string       `json:"verified_by,omitempty"`
}

// MissingField returns the first required dispatch field that is empty
func (d *DispatchDetails) MissingField() string {
	switch {
	case d == nil:
		return "dispatch_details"
	case d.Address == "":
		return "address"
	case d.Contact == "":
		return "contact"
	case d.Courier == "":
		return "courier"
	case d.DeliveryType == "":
		return "delivery_type"
	default:
		return ""
	}
}

// Complete reports whether all required dispatch fields are present
func (d *DispatchDetails) Complete() bool {
	return d.MissingField() == ""
}

// RecalculatePayments recomputes paid, pending and payment status from the payment history
func (o *Order) RecalculatePayments() {
	paid := decimal.Zero
	for _, p := range o.PaymentHistory {
		paid = paid.Add(p.Amount)
	}
	o.PaidAmount = paid

	pending := o.Amount.Sub(paid)
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	o.PendingAmount = pending
	o.PaymentStatus = DerivePaymentStatus(o.Amount, paid)
}

// DerivePaymentStatus classifies a paid amount against the order total
func DerivePaymentStatus(amount, paid decimal.Decimal) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(amount):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusNotPaid
	}
}

// IsPaid reports whether the order is fully paid
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// SubStatusOf returns the sub-status tracked for a department
func (o *Order) SubStatusOf(d Department) SubStatus {
	switch d {
	case DepartmentDesign:
		return o.DesignStatus
	case DepartmentPrepress:
		return o.PrepressStatus
	default:
		return ""
	}
}

// SetSubStatus updates the sub-status for departments that track one
func (o *Order) SetSubStatus(d Department, s SubStatus) {
	switch d {
	case DepartmentDesign:
		o.DesignStatus = s
	case DepartmentPrepress:
		o.PrepressStatus = s
	}
}

// SetSubRemarks updates the department remarks for departments that track them
func (o *Order) SetSubRemarks(d Department, remarks string) {
	switch d {
	case DepartmentDesign:
		o.DesignRemarks = remarks
	case DepartmentPrepress:
		o.PrepressRemarks = remarks
	}
}

// CheckConsistency verifies that department sub-state agrees with the current department
func (o *Order) CheckConsistency() error {
	for _, d := range []Department{DepartmentDesign, DepartmentPrepress} {
		s := o.SubStatusOf(d)
		if !s.IsActive() || d == o.CurrentDepartment {
			continue
		}
		return fmt.Errorf("%s sub-status %q is active while order is in %s", d, s, o.CurrentDepartment)
	}

	if o.PendingApprovalFrom != "" && o.Status != OrderStatusPendingApproval {
		return fmt.Errorf("pending approval from %s but status is %s", o.PendingApprovalFrom, o.Status)
	}
	if o.PendingApprovalFrom == "" && o.Status == OrderStatusPendingApproval {
		return fmt.Errorf("status is %s without an outstanding request", o.Status)
	}

	return nil
}

// FindUpdate returns the index of a status update by id, or -1
func (o *Order) FindUpdate(id string) int {
	for i := range o.StatusHistory {
		if o.StatusHistory[i].ID == id {
			return i
		}
	}
	return -1
}

// FindStage returns the index of a production stage by name, or -1
func (o *Order) FindStage(stage string) int {
	for i := range o.ProductionStages {
		if o.ProductionStages[i].Stage == stage {
			return i
		}
	}
	return -1
}

// FindProduct returns the index of a product status by id, or -1
func (o *Order) FindProduct(id string) int {
	for i := range o.ProductStatus {
		if o.ProductStatus[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can derive a new snapshot without mutating the original
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}

	c := *o
	c.Items = slices.Clone(o.Items)
	c.StatusHistory = slices.Clone(o.StatusHistory)
	c.PaymentHistory = slices.Clone(o.PaymentHistory)
	c.ProductionStages = slices.Clone(o.ProductionStages)
	c.ProductStatus = slices.Clone(o.ProductStatus)

	if o.DispatchDetails != nil {
		d := *o.DispatchDetails
		if o.DispatchDetails.DispatchDate != nil {
			t := *o.DispatchDetails.DispatchDate
			d.DispatchDate = &t
		}
		c.DispatchDetails = &d
	}

	return &c
}
