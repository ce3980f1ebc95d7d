package dispatcher

import (
	"context"

	"github.com/garyjia/print-order-tracker/internal/domain/event"
)

// Handler reacts to an order event
type Handler func(ctx context.Context, evt *event.Event) error

// AllEvents subscribes a handler to every event type
const AllEvents event.Type = "*"

// HandlerInfo describes a registered handler
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}
