package plan

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
)

// Source defines how the plan catalog is loaded.
type Source interface {
	Load(ctx context.Context) (map[ID]Plan, error)
}

// Catalog is a validated, immutable plan catalog keyed by canonical plan ID.
type Catalog map[ID]Plan

// LoadCatalog loads and validates plans from a source. Alias keys are
// rejected: the catalog carries canonical IDs only.
func LoadCatalog(ctx context.Context, src Source) (Catalog, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if err := validate(plans); err != nil {
		return nil, err
	}
	return Catalog(plans), nil
}

// Get resolves a plan by ID, normalizing legacy aliases first.
func (c Catalog) Get(id ID) (Plan, error) {
	p, ok := c[Normalize(id)]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

func validate(plans map[ID]Plan) error {
	for id, p := range plans {
		if p.ID != id {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan ID mismatch: map key %s != plan.ID %s", id, p.ID))
		}
		if _, isAlias := aliases[id]; isAlias {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("catalog must use canonical IDs, got alias %s", id))
		}
		if p.TrialDays < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative trial days: %d", id, p.TrialDays))
		}
		if p.DailyRate < 0 || p.BaseDurationDays < 0 {
			return errors.Join(ErrInvalidPlanConfiguration,
				fmt.Errorf("plan %s has negative rate or duration", id))
		}
	}
	return nil
}

// inMemSource implements Source over an in-memory plan map.
type inMemSource struct {
	mu    sync.RWMutex
	plans map[ID]Plan
}

// NewInMemSource returns an in-memory Source with a deep copy of the given plans.
func NewInMemSource(plans map[ID]Plan) Source {
	return &inMemSource{plans: clonePlans(plans)}
}

// Load returns a copy of all available plans from memory.
func (s *inMemSource) Load(ctx context.Context) (map[ID]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePlans(s.plans), nil
}

func clonePlans(plans map[ID]Plan) map[ID]Plan {
	out := make(map[ID]Plan, len(plans))
	for id, p := range plans {
		p.Limits = maps.Clone(p.Limits)
		out[id] = p
	}
	return out
}

// Default returns the built-in plan catalog.
func Default() map[ID]Plan {
	return map[ID]Plan{
		Free: {
			ID:      Free,
			Name:    "Free",
			Price:   Money{Amount: 0, Currency: "NGN"},
			Cadence: CadenceNone,
			Limits: map[Feature]int64{
				FeatureInvoices: 5,
				FeatureExpenses: 5,
				FeatureProducts: 10,
				FeatureSales:    10,
			},
		},
		Weekly: {
			ID:               Weekly,
			Name:             "Silver Weekly",
			Price:            Money{Amount: 1400, Currency: "NGN"},
			DailyRate:        200,
			BaseDurationDays: 7,
			Cadence:          CadenceWeekly,
			TrialDays:        7,
			Limits: map[Feature]int64{
				FeatureInvoices: 100,
				FeatureExpenses: 100,
				FeatureProducts: 200,
				FeatureSales:    200,
			},
		},
		Monthly: {
			ID:               Monthly,
			Name:             "Silver Monthly",
			Price:            Money{Amount: 4500, Currency: "NGN"},
			DailyRate:        150,
			BaseDurationDays: 30,
			Cadence:          CadenceMonthly,
			Limits: map[Feature]int64{
				FeatureInvoices: 450,
				FeatureExpenses: 500,
				FeatureProducts: 500,
				FeatureSales:    1500,
			},
		},
		Yearly: {
			ID:               Yearly,
			Name:             "Silver Yearly",
			Price:            Money{Amount: 50000, Currency: "NGN"},
			DailyRate:        137,
			BaseDurationDays: 365,
			Cadence:          CadenceYearly,
			Limits: map[Feature]int64{
				FeatureInvoices: 6000,
				FeatureExpenses: 2000,
				FeatureProducts: 4000,
				FeatureSales:    18000,
			},
		},
	}
}
