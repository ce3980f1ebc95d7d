package event

import (
	"time"

	"github.com/google/uuid"
)

// Common payload keys
const (
	KeyFromDepartment = "from_department"
	KeyToDepartment   = "to_department"
	KeyPreviousStatus = "previous_status"
	KeyNewStatus      = "new_status"
	KeyStatusUpdateID = "status_update_id"
	KeyRemarks        = "remarks"
	KeyAmount         = "amount"
	KeyPendingAmount  = "pending_amount"
	KeyReason         = "reason"
	KeyDepartment     = "department"
)

// Event represents a domain event
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	OrderID       string                 `json:"order_id"`
	OrderNumber   string                 `json:"order_number,omitempty"`
	Actor         string                 `json:"actor"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a domain event stamped with the given time
func NewEvent(eventType Type, orderID, actor string, at time.Time, payload map[string]interface{}) *Event {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		OrderID:       orderID,
		Actor:         actor,
		Payload:       payload,
		Timestamp:     at,
		CorrelationID: uuid.NewString(),
	}
}

// WithOrderNumber returns a copy of the event carrying the human-facing order number
func (e *Event) WithOrderNumber(number string) *Event {
	c := e.clone()
	c.OrderNumber = number
	return c
}

// WithPayload returns a new Event with an added payload key-value pair (immutable operation)
func (e *Event) WithPayload(key string, value interface{}) *Event {
	c := e.clone()
	c.Payload[key] = value
	return c
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case string:
			return v
		case interface{ String() string }:
			return v.String()
		}
	}
	return ""
}

func (e *Event) clone() *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	c := *e
	c.Payload = payload
	return &c
}
