package workflow

import "github.com/garyjia/print-order-tracker/internal/domain/entity"

// State is the order status driven by the machine
type State = entity.OrderStatus

var terminalStates = map[State]bool{
	entity.OrderStatusDispatched: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func IsTerminal(s State) bool {
	return terminalStates[s]
}
