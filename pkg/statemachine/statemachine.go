package statemachine

import (
	"context"
	"fmt"
)

// State represents a state in the state machine.
type State interface {
	Name() string
}

// Event represents an event that can trigger a state transition.
type Event interface {
	Name() string
}

// Action executes side effects during state transitions. Returning an error prevents the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard evaluates whether a transition should be allowed based on runtime conditions.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition defines a state change triggered by an event, with optional guards and actions.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard  // All must pass for transition to proceed
	Actions []Action // Executed in order before state change
}

// Machine is a stateless transition table for entities that persist their own
// current state (invoices, orders). Unlike a classic FSM the machine holds no
// position: callers pass the entity's current state into Fire and store the
// returned state themselves. The table is built once during wiring and read
// concurrently afterwards, so no locking is needed.
type Machine struct {
	// [fromState][event][]Transition for O(1) lookup
	transitions map[string]map[string][]Transition
}

// New returns an empty transition table.
func New() *Machine {
	return &Machine{transitions: make(map[string]map[string][]Transition)}
}

// AddTransition registers a state change. Multiple transitions for the same
// from/event pair are allowed to support guard-based branching; the first one
// whose guards all pass wins.
func (m *Machine) AddTransition(from, to State, event Event, guards []Guard, actions []Action) error {
	if from == nil || to == nil || event == nil {
		return ErrInvalidTransition
	}

	fromName := from.Name()
	if _, ok := m.transitions[fromName]; !ok {
		m.transitions[fromName] = make(map[string][]Transition)
	}

	m.transitions[fromName][event.Name()] = append(m.transitions[fromName][event.Name()], Transition{
		From:    from,
		To:      to,
		Event:   event,
		Guards:  guards,
		Actions: actions,
	})
	return nil
}

// Fire applies event to an entity currently in from and returns the state it
// lands in. Actions run before the new state is returned; any action error
// aborts the transition, so callers must not persist a state change when Fire
// fails.
func (m *Machine) Fire(ctx context.Context, from State, event Event, data any) (State, error) {
	if from == nil {
		return nil, ErrInvalidTransition
	}
	if event == nil {
		return nil, ErrInvalidEvent
	}

	t, err := m.match(ctx, from, event, data)
	if err != nil {
		return nil, err
	}

	for _, action := range t.Actions {
		if action != nil {
			if err := action(ctx, from, t.To, event, data); err != nil {
				return nil, fmt.Errorf("action failed: %w", err)
			}
		}
	}

	return t.To, nil
}

// CanFire reports whether the event has an unguarded path out of from.
func (m *Machine) CanFire(ctx context.Context, from State, event Event, data any) bool {
	if from == nil || event == nil {
		return false
	}
	_, err := m.match(ctx, from, event, data)
	return err == nil
}

func (m *Machine) match(ctx context.Context, from State, event Event, data any) (*Transition, error) {
	byEvent, ok := m.transitions[from.Name()]
	if !ok {
		return nil, NewErrNoTransitionAvailable(from.Name(), event.Name())
	}

	candidates, ok := byEvent[event.Name()]
	if !ok || len(candidates) == 0 {
		return nil, NewErrNoTransitionAvailable(from.Name(), event.Name())
	}

	for i, t := range candidates {
		passed := true
		for _, guard := range t.Guards {
			if guard != nil && !guard(ctx, from, event, data) {
				passed = false
				break
			}
		}
		if passed {
			return &candidates[i], nil
		}
	}

	return nil, NewErrTransitionRejected(from.Name(), event.Name())
}

// StringState provides a simple string-based state implementation for basic use cases.
type StringState string

func (s StringState) Name() string {
	return string(s)
}

// StringEvent provides a simple string-based event implementation for basic use cases.
type StringEvent string

func (e StringEvent) Name() string {
	return string(e)
}
