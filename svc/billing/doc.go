// Package billing orchestrates paid plan changes. An upgrade verifies the
// payment reference, converts unused time on the current plan into bonus days
// on the target plan, and persists the new plan, the audit record and the
// usage-counter reset as one all-or-nothing unit.
//
// The package also exposes the canonical subscription-status read: status is
// recomputed from the account's dates on every call rather than trusted from
// the stored flag.
package billing
