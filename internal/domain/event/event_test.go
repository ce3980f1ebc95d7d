package event

import (
	"testing"
	"time"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

func TestType_IsValid(t *testing.T) {
	for _, typ := range AllTypes {
		if !typ.IsValid() {
			t.Errorf("Type(%q).IsValid() = false, want true", typ)
		}
	}

	for _, typ := range []Type{"", "instance.created", "order"} {
		if typ.IsValid() {
			t.Errorf("Type(%q).IsValid() = true, want false", typ)
		}
	}
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	evt := NewEvent(TypeOrderForwarded, "order-1", "Sam", at, map[string]interface{}{
		KeyToDepartment: entity.DepartmentDesign,
	})

	if evt.ID == "" || evt.CorrelationID == "" {
		t.Fatal("NewEvent() should generate ID and CorrelationID")
	}
	if evt.ID == evt.CorrelationID {
		t.Error("ID and CorrelationID should differ")
	}
	if !evt.Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", evt.Timestamp, at)
	}
	if got := evt.GetPayloadString(KeyToDepartment); got != "Design" {
		t.Errorf("GetPayloadString() = %q, want %q", got, "Design")
	}
}

func TestNewEvent_NilPayload(t *testing.T) {
	evt := NewEvent(TypeOrderCreated, "order-1", "Sam", time.Now(), nil)
	if evt.Payload == nil {
		t.Fatal("Payload should never be nil")
	}
	if got := evt.GetPayloadString("missing"); got != "" {
		t.Errorf("GetPayloadString() = %q, want empty", got)
	}
}

func TestEvent_WithPayload_Immutable(t *testing.T) {
	original := NewEvent(TypeStatusChanged, "order-1", "Pat", time.Now(), map[string]interface{}{
		KeyNewStatus: "On Hold",
	})

	updated := original.WithPayload(KeyRemarks, "waiting on paper stock").WithOrderNumber("24060100017")

	if _, ok := original.Payload[KeyRemarks]; ok {
		t.Error("WithPayload() mutated the original payload")
	}
	if original.OrderNumber != "" {
		t.Error("WithOrderNumber() mutated the original event")
	}
	if updated.ID != original.ID || updated.CorrelationID != original.CorrelationID {
		t.Error("copies should keep ID and CorrelationID")
	}
	if got := updated.GetPayloadString(KeyNewStatus); got != "On Hold" {
		t.Errorf("GetPayloadString() = %q, want %q", got, "On Hold")
	}
}

func TestEvent_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		evt := NewEvent(TypeOrderCreated, "order-1", "Sam", time.Now(), nil)
		if seen[evt.ID] {
			t.Fatalf("duplicate event ID %s", evt.ID)
		}
		seen[evt.ID] = true
	}
}
