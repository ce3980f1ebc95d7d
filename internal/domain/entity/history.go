package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusUpdate is one entry of an order's status history
type StatusUpdate struct {
	ID              string     `json:"id"`
	OrderID         string     `json:"order_id"`
	Timestamp       time.Time  `json:"timestamp"`
	Department      Department `json:"department"`
	Status          string     `json:"status"`
	Remarks         string     `json:"remarks,omitempty"`
	UpdatedBy       string     `json:"updated_by"`
	EstimatedTime   string     `json:"estimated_time,omitempty"`
	SelectedProduct string     `json:"selected_product,omitempty"`
	EditableUntil   time.Time  `json:"editable_until"`
}

// PaymentRecord is one payment received against an order
type PaymentRecord struct {
	ID         string          `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Method     string          `json:"method"`
	Remarks    string          `json:"remarks,omitempty"`
	RecordedBy string          `json:"recorded_by,omitempty"`
}
