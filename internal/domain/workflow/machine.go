package workflow

import (
	"context"
	"fmt"
)

// StateMachine tracks the status of one order and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is configured for the current state
	CanFire(trigger Trigger) bool

	// Target evaluates guards and returns the state the trigger would move to, without moving
	Target(ctx context.Context, trigger Trigger) (State, error)

	// Fire executes the trigger, transitioning to the new state if allowed
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers configured for the current state
	PermittedTriggers() []Trigger
}

type stateMachine struct {
	current     State
	transitions map[State]map[Trigger][]transition
}

func (m *stateMachine) State() State {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	return len(m.transitions[m.current][trigger]) > 0
}

func (m *stateMachine) Target(ctx context.Context, trigger Trigger) (State, error) {
	candidates := m.transitions[m.current][trigger]
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: cannot %s an order that is %s", ErrInvalidTransition, trigger, m.current)
	}

	var lastErr error
	for _, t := range candidates {
		if t.guard == nil {
			return t.to, nil
		}
		if err := t.guard(ctx); err != nil {
			lastErr = err
			continue
		}
		return t.to, nil
	}

	return "", fmt.Errorf("%w: %s from %s: %w", ErrGuardFailed, trigger, m.current, lastErr)
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	to, err := m.Target(ctx, trigger)
	if err != nil {
		return err
	}
	m.current = to
	return nil
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	byTrigger := m.transitions[m.current]
	triggers := make([]Trigger, 0, len(byTrigger))
	for trigger := range byTrigger {
		triggers = append(triggers, trigger)
	}
	return triggers
}
