// Package plan defines the subscription plan catalog: tier identifiers,
// pricing expressed in the smallest currency unit, per-feature usage limits,
// and the billing cadence that derives usage-counting windows.
//
// Plan identifiers are canonical (free, weekly, monthly, yearly). Legacy
// silver_* aliases from older account records are normalized on every lookup
// via Normalize and are never written back.
//
// Catalogs are loaded through the Source interface. NewInMemSource serves a
// fixed map (tests, embedded defaults), NewFileSource reads a YAML file so
// limits can be tuned without a rebuild:
//
//	catalog, err := plan.LoadCatalog(ctx, plan.NewFileSource("plans.yaml"))
//	if err != nil {
//		// handle error
//	}
//	p, err := catalog.Get("silver_weekly") // resolves to the weekly tier
package plan
