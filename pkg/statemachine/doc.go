// Package statemachine provides a stateless transition table for entities
// that persist their own state.
//
// A Machine is configured once with the valid transitions, then shared by all
// requests: Fire takes the entity's current state, runs guards and actions,
// and returns the state the entity should be persisted in. Invalid
// transitions return structured errors carrying the offending state/event
// pair so callers can report exactly what was attempted.
package statemachine
