package plan

import "time"

// Cadence is the billing frequency of a plan. It drives both the renewal
// duration and the window against which feature usage is counted.
type Cadence string

const (
	CadenceNone    Cadence = "none" // free plans with no billing cycle
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
	CadenceYearly  Cadence = "yearly"
)

// Days returns the length of one billing window in days.
// CadenceNone falls back to a monthly window so free accounts still get
// periodic usage counting.
func (c Cadence) Days() int {
	switch c {
	case CadenceWeekly:
		return 7
	case CadenceYearly:
		return 365
	default:
		return 30
	}
}

// Period is a half-open billing window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// PeriodAt returns the billing window containing now, anchored at startedAt.
// Windows advance in fixed steps of c.Days() from the anchor, so the same
// (anchor, now) pair always yields the same window regardless of when it is
// computed. If now precedes the anchor, the first window is returned.
func (c Cadence) PeriodAt(startedAt, now time.Time) Period {
	startedAt = startedAt.UTC()
	now = now.UTC()

	step := time.Duration(c.Days()) * 24 * time.Hour
	if now.Before(startedAt) {
		return Period{Start: startedAt, End: startedAt.Add(step)}
	}

	elapsed := now.Sub(startedAt)
	windows := elapsed / step
	start := startedAt.Add(windows * step)
	return Period{Start: start, End: start.Add(step)}
}
