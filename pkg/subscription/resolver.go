package subscription

import "time"

// Status is the canonical subscription state. Exactly one status holds for an
// account at any resolution instant.
type Status string

const (
	StatusTrial   Status = "trial"
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusFree    Status = "free"
)

// Resolution is the outcome of resolving an account's subscription state at a
// point in time.
type Resolution struct {
	Status        Status
	DaysRemaining int
}

// Resolve computes the canonical subscription status from stored timestamps.
// It is a pure function of the account fields and now: no side effects, and
// identical inputs always yield identical output.
//
// Priority order, first match wins:
//  1. a passed end date means expired, whatever the stored status claims
//  2. a running trial (stored trial intent plus a future trial end)
//  3. a future end date means active
//  4. everything else is free
func Resolve(a *Account, now time.Time) Resolution {
	now = now.UTC()

	if a.SubscriptionEndsAt != nil && now.After(*a.SubscriptionEndsAt) {
		return Resolution{Status: StatusExpired}
	}

	if a.Status == StatusTrial && a.TrialEndsAt != nil && a.TrialEndsAt.After(now) {
		return Resolution{Status: StatusTrial, DaysRemaining: ceilDays(a.TrialEndsAt.Sub(now))}
	}

	if a.SubscriptionEndsAt != nil && a.SubscriptionEndsAt.After(now) {
		return Resolution{Status: StatusActive, DaysRemaining: ceilDays(a.SubscriptionEndsAt.Sub(now))}
	}

	return Resolution{Status: StatusFree}
}

// ceilDays rounds a positive duration up to whole days so a user with one
// remaining hour still sees one day left.
func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
