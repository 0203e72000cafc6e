package plan

import "time"

// ID identifies a subscription plan tier.
type ID string

// Canonical plan identifiers. Legacy records may still carry the silver_*
// aliases; call Normalize before comparing or persisting.
const (
	Free    ID = "free"
	Weekly  ID = "weekly"
	Monthly ID = "monthly"
	Yearly  ID = "yearly"
)

// aliases maps legacy plan identifiers onto their canonical counterparts.
// The silver_* names shipped with identical limits to the bare cadence names,
// so they are treated as pure renames.
var aliases = map[ID]ID{
	"silver_weekly":  Weekly,
	"silver_monthly": Monthly,
	"silver_yearly":  Yearly,
}

// Normalize resolves legacy plan aliases to the canonical identifier.
// Unknown identifiers pass through unchanged so callers can surface
// ErrPlanNotFound with the original input.
func Normalize(id ID) ID {
	if canonical, ok := aliases[id]; ok {
		return canonical
	}
	return id
}

// Feature is a countable per-tenant resource gated by plan limits.
type Feature string

const (
	FeatureInvoices Feature = "invoices"
	FeatureExpenses Feature = "expenses"
	FeatureProducts Feature = "products"
	FeatureSales    Feature = "sales"
)

// Features lists every limit-gated feature in a stable order.
func Features() []Feature {
	return []Feature{FeatureInvoices, FeatureExpenses, FeatureProducts, FeatureSales}
}

const (
	// Unlimited indicates no limit for a feature (-1 chosen for SQL compatibility)
	Unlimited int64 = -1
)

// Money represents a monetary amount in the smallest currency unit.
type Money struct {
	Amount   int64  // amount in smallest currency unit
	Currency string // ISO 4217 currency code
}

// Plan describes a subscription tier: its price, cadence and feature limits.
type Plan struct {
	ID               ID
	Name             string
	Price            Money
	DailyRate        int64 // price per day in smallest currency unit; 0 for free
	BaseDurationDays int   // duration purchased by one payment; 0 for free
	Cadence          Cadence
	TrialDays        int
	Limits           map[Feature]int64 // -1 represents unlimited
}

// Limit returns the plan's limit for a feature, or false when the plan does
// not track it.
func (p Plan) Limit(f Feature) (int64, bool) {
	limit, ok := p.Limits[f]
	return limit, ok
}

// IsFree reports whether the plan requires no payment.
func (p Plan) IsFree() bool {
	return p.DailyRate == 0
}

// TrialEndsAt calculates when the trial period ends.
// Returns startedAt unchanged if no trial is available.
func (p Plan) TrialEndsAt(startedAt time.Time) time.Time {
	if p.TrialDays <= 0 {
		return startedAt
	}
	return startedAt.AddDate(0, 0, p.TrialDays).UTC()
}
