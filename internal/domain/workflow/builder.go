package workflow

import (
	"context"
	"fmt"
)

// GuardFunc decides whether a transition may be taken. A non-nil error explains the refusal.
type GuardFunc func(ctx context.Context) error

// StateMachineBuilder collects transitions and builds independent machines from them
type StateMachineBuilder interface {
	// Configure returns the configuration for transitions leaving the given state
	Configure(state State) StateConfiguration

	// Build creates a machine positioned at the given state
	Build(initialState State) StateMachine
}

// StateConfiguration configures transitions for a specific state
type StateConfiguration interface {
	// Permit allows a trigger to move to the target state
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows a trigger to move to the target state when the guard passes.
	// Guards are tried in the order they were registered.
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration

	// PermitReentry allows a trigger that keeps the current state
	PermitReentry(trigger Trigger) StateConfiguration
}

type transition struct {
	to    State
	guard GuardFunc
}

type stateMachineBuilder struct {
	transitions map[State]map[Trigger][]transition
}

type stateConfig struct {
	from    State
	builder *stateMachineBuilder
}

// NewBuilder creates a new state machine builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{
		transitions: make(map[State]map[Trigger][]transition),
	}
}

func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}
	if _, ok := b.transitions[state]; !ok {
		b.transitions[state] = make(map[Trigger][]transition)
	}
	return &stateConfig{from: state, builder: b}
}

// Build copies the configured transitions so later Configure calls do not leak into built machines
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	copied := make(map[State]map[Trigger][]transition, len(b.transitions))
	for state, byTrigger := range b.transitions {
		inner := make(map[Trigger][]transition, len(byTrigger))
		for trigger, ts := range byTrigger {
			inner[trigger] = append([]transition(nil), ts...)
		}
		copied[state] = inner
	}

	return &stateMachine{
		current:     initialState,
		transitions: copied,
	}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}
	byTrigger := c.builder.transitions[c.from]
	byTrigger[trigger] = append(byTrigger[trigger], transition{to: toState, guard: guard})
	return c
}

func (c *stateConfig) PermitReentry(trigger Trigger) StateConfiguration {
	return c.Permit(trigger, c.from)
}
