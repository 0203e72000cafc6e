// Package revenue records recognized revenue. Invoice payments and direct
// sales both append entries here, each exactly once per source document, so
// dashboard totals never double-count.
package revenue
