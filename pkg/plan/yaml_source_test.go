package plan_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
)

const testCatalogYAML = `plans:
  - id: free
    name: Free
    currency: NGN
    cadence: none
    limits:
      invoices: 5
      expenses: 5
  - id: silver_weekly
    name: Silver Weekly
    price: 1400
    currency: NGN
    daily_rate: 200
    base_duration_days: 7
    cadence: weekly
    trial_days: 7
    limits:
      invoices: 100
      expenses: 100
`

func TestFileSource(t *testing.T) {
	t.Parallel()

	t.Run("loads and normalizes aliases", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(path, []byte(testCatalogYAML), 0o644))

		catalog, err := plan.LoadCatalog(context.Background(), plan.NewFileSource(path))
		require.NoError(t, err)
		require.Len(t, catalog, 2)

		weekly, err := catalog.Get(plan.Weekly)
		require.NoError(t, err)
		assert.Equal(t, int64(200), weekly.DailyRate)
		assert.Equal(t, 7, weekly.BaseDurationDays)
		assert.Equal(t, int64(100), weekly.Limits[plan.FeatureInvoices])
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := plan.NewFileSource("/nonexistent/plans.yaml").Load(context.Background())
		assert.ErrorIs(t, err, plan.ErrFailedToLoadPlans)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(path, []byte("plans: {nope"), 0o644))

		_, err := plan.NewFileSource(path).Load(context.Background())
		assert.ErrorIs(t, err, plan.ErrFailedToLoadPlans)
	})
}
