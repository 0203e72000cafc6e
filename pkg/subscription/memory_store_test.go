package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
	"github.com/Cachi0001/Biz-sub002/pkg/subscription"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("get missing account", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, subscription.ErrAccountNotFound)
	})

	t.Run("save and get returns a copy", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		acc := &subscription.Account{ID: uuid.New(), Plan: plan.Weekly, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, store.Save(ctx, acc))

		got, err := store.Get(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, acc.Plan, got.Plan)

		got.Plan = plan.Yearly
		again, err := store.Get(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, plan.Weekly, again.Plan)
	})

	t.Run("upgrade history appends in order", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		accID := uuid.New()

		for i, to := range []plan.ID{plan.Weekly, plan.Monthly} {
			require.NoError(t, store.AppendUpgrade(ctx, &subscription.UpgradeRecord{
				ID:        uuid.New(),
				AccountID: accID,
				ToPlan:    to,
				CreatedAt: now.Add(time.Duration(i) * time.Hour),
			}))
		}

		hist, err := store.UpgradeHistory(ctx, accID)
		require.NoError(t, err)
		require.Len(t, hist, 2)
		assert.Equal(t, plan.Weekly, hist[0].ToPlan)
		assert.Equal(t, plan.Monthly, hist[1].ToPlan)
	})

	t.Run("expiry candidates", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		past := now.Add(-time.Hour)
		future := now.Add(time.Hour)

		stale := &subscription.Account{ID: uuid.New(), Status: subscription.StatusActive, SubscriptionEndsAt: &past}
		alreadyExpired := &subscription.Account{ID: uuid.New(), Status: subscription.StatusExpired, SubscriptionEndsAt: &past}
		active := &subscription.Account{ID: uuid.New(), Status: subscription.StatusActive, SubscriptionEndsAt: &future}

		for _, a := range []*subscription.Account{stale, alreadyExpired, active} {
			require.NoError(t, store.Save(ctx, a))
		}

		candidates, err := store.ListExpiryCandidates(ctx, now)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, stale.ID, candidates[0].ID)
	})

	t.Run("updated since", func(t *testing.T) {
		t.Parallel()

		store := subscription.NewMemoryStore()
		old := &subscription.Account{ID: uuid.New(), UpdatedAt: now.Add(-48 * time.Hour)}
		fresh := &subscription.Account{ID: uuid.New(), UpdatedAt: now}

		require.NoError(t, store.Save(ctx, old))
		require.NoError(t, store.Save(ctx, fresh))

		recent, err := store.ListUpdatedSince(ctx, now.Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, fresh.ID, recent[0].ID)
	})
}
