// Package usage implements the per-feature, per-billing-period usage ledger
// that gates every limit-controlled create operation.
//
// The central primitive is Ledger.CheckAndIncrement: an atomic
// check-then-increment against the plan limit for the active billing window.
// Two concurrent requests racing for the last unit of a limit resolve to
// exactly one admission; on persistent write conflicts the ledger fails
// closed instead of over-admitting.
//
// Counters are provisional with respect to the domain write that follows
// them: a request that dies between increment and domain commit leaves the
// counter one ahead. ValidateConsistency detects such drift against an
// authoritative recount of domain rows and Repair converges the counter,
// both driven periodically by the reconciliation sweep.
package usage
