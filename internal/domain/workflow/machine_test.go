package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{entity.OrderStatusNew, false},
		{entity.OrderStatusInProgress, false},
		{entity.OrderStatusPendingApproval, false},
		{entity.OrderStatusReadyToDispatch, false},
		{entity.OrderStatusVerified, false},
		{entity.OrderStatusDispatched, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := IsTerminal(tt.state); got != tt.expected {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTrigger_String(t *testing.T) {
	if got := TriggerForward.String(); got != "FORWARD" {
		t.Errorf("Trigger.String() = %v, want %v", got, "FORWARD")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	NewBuilder().Configure(State("Lost"))
}

func TestBuilder_PermitPanicsOnInvalidTarget(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on invalid target state")
		}
	}()

	NewBuilder().Configure(entity.OrderStatusNew).Permit(TriggerForward, State("Lost"))
}

func TestStateMachine_Fire(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(entity.OrderStatusNew).
		Permit(TriggerForward, entity.OrderStatusInProgress)

	machine := builder.Build(entity.OrderStatusNew)

	if err := machine.Fire(context.Background(), TriggerForward); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine.State() != entity.OrderStatusInProgress {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), entity.OrderStatusInProgress)
	}
}

func TestStateMachine_Fire_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(entity.OrderStatusNew).
		Permit(TriggerForward, entity.OrderStatusInProgress)

	machine := builder.Build(entity.OrderStatusNew)

	err := machine.Fire(context.Background(), TriggerDispatch)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if machine.State() != entity.OrderStatusNew {
		t.Errorf("State should remain %v after failed Fire(), got %v", entity.OrderStatusNew, machine.State())
	}
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	machine := NewBuilder().Build(entity.OrderStatusDispatched)

	if err := machine.Fire(context.Background(), TriggerForward); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
	if len(machine.PermittedTriggers()) != 0 {
		t.Errorf("PermittedTriggers() = %v, want none", machine.PermittedTriggers())
	}
}

func TestStateMachine_GuardFailureKeepsReason(t *testing.T) {
	unpaid := errors.New("order is not paid")

	builder := NewBuilder()
	builder.Configure(entity.OrderStatusCompleted).
		PermitIf(TriggerMarkReady, entity.OrderStatusReadyToDispatch, func(ctx context.Context) error {
			return unpaid
		})

	machine := builder.Build(entity.OrderStatusCompleted)

	err := machine.Fire(context.Background(), TriggerMarkReady)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if !errors.Is(err, unpaid) {
		t.Errorf("Fire() error = %v, want it to wrap the guard reason", err)
	}
	if machine.State() != entity.OrderStatusCompleted {
		t.Errorf("State = %v, want %v", machine.State(), entity.OrderStatusCompleted)
	}
}

func TestStateMachine_GuardsTriedInOrder(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(entity.OrderStatusReadyToDispatch).
		PermitIf(TriggerDispatch, entity.OrderStatusVerified, func(ctx context.Context) error {
			return errors.New("skip")
		}).
		Permit(TriggerDispatch, entity.OrderStatusDispatched)

	machine := builder.Build(entity.OrderStatusReadyToDispatch)

	target, err := machine.Target(context.Background(), TriggerDispatch)
	if err != nil {
		t.Fatalf("Target() failed: %v", err)
	}
	if target != entity.OrderStatusDispatched {
		t.Errorf("Target() = %v, want %v", target, entity.OrderStatusDispatched)
	}
	if machine.State() != entity.OrderStatusReadyToDispatch {
		t.Error("Target() must not move the machine")
	}
}

func TestStateMachine_PermitReentry(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(entity.OrderStatusInProgress).PermitReentry(TriggerForward)

	machine := builder.Build(entity.OrderStatusInProgress)

	if !machine.CanFire(TriggerForward) {
		t.Fatal("CanFire() = false, want true")
	}
	if err := machine.Fire(context.Background(), TriggerForward); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine.State() != entity.OrderStatusInProgress {
		t.Errorf("State = %v, want %v", machine.State(), entity.OrderStatusInProgress)
	}
}

func TestStateMachine_Immutability(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(entity.OrderStatusNew).
		Permit(TriggerForward, entity.OrderStatusInProgress)

	machine1 := builder.Build(entity.OrderStatusNew)
	machine2 := builder.Build(entity.OrderStatusNew)

	builder.Configure(entity.OrderStatusNew).Permit(TriggerHold, entity.OrderStatusOnHold)

	if err := machine1.Fire(context.Background(), TriggerForward); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine2.State() != entity.OrderStatusNew {
		t.Errorf("machine2 state = %v, want %v (machines should be independent)", machine2.State(), entity.OrderStatusNew)
	}
	if machine2.CanFire(TriggerHold) {
		t.Error("transitions configured after Build() must not leak into built machines")
	}
}
