// Package proration converts unused value on a plan being left into extra
// duration on the plan being entered. The math is integer-only in the
// smallest currency unit: remaining value rounds down to whole bonus days so
// the business never grants more than was paid for.
package proration

import "github.com/Cachi0001/Biz-sub002/pkg/plan"

// Result describes the outcome of a pro-ration calculation. It is ephemeral:
// never persisted on its own, only embedded in the upgrade audit trail.
type Result struct {
	RemainingValue    int64 // unused value of the current plan, smallest currency unit
	BonusDurationDays int   // remaining value converted at the target plan's daily rate
	TotalDurationDays int   // target base duration plus bonus days
}

// Calculate computes the fair duration extension when switching from current
// to target with remainingDays of paid time left.
//
// Expired or free accounts (remainingDays <= 0) get no bonus. Downgrades are
// not special-cased: unused value converts at the target rate in both
// directions.
func Calculate(current plan.Plan, remainingDays int, target plan.Plan) Result {
	base := target.BaseDurationDays

	if remainingDays <= 0 || current.DailyRate <= 0 {
		return Result{TotalDurationDays: base}
	}

	remainingValue := int64(remainingDays) * current.DailyRate

	// A free target has no daily rate to convert against; the remaining value
	// is simply forfeited.
	if target.DailyRate <= 0 {
		return Result{RemainingValue: remainingValue, TotalDurationDays: base}
	}

	bonus := int(remainingValue / target.DailyRate)
	return Result{
		RemainingValue:    remainingValue,
		BonusDurationDays: bonus,
		TotalDurationDays: base + bonus,
	}
}
