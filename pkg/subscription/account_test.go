package subscription_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
	"github.com/Cachi0001/Biz-sub002/pkg/subscription"
)

func TestNewTrialAccount(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	catalog := plan.Default()

	t.Run("weekly plan starts a seven day trial", func(t *testing.T) {
		t.Parallel()

		acc := subscription.NewTrialAccount(uuid.New(), catalog[plan.Weekly], now)

		require.NotNil(t, acc.TrialEndsAt)
		assert.Equal(t, now.AddDate(0, 0, 7), *acc.TrialEndsAt)
		assert.Equal(t, subscription.StatusTrial, acc.Status)

		res := subscription.Resolve(acc, now)
		assert.Equal(t, subscription.StatusTrial, res.Status)
		assert.Equal(t, 7, res.DaysRemaining)
	})

	t.Run("trial lapses to free", func(t *testing.T) {
		t.Parallel()

		acc := subscription.NewTrialAccount(uuid.New(), catalog[plan.Weekly], now)

		res := subscription.Resolve(acc, now.AddDate(0, 0, 8))
		assert.Equal(t, subscription.StatusFree, res.Status)
	})

	t.Run("plan without trial starts free", func(t *testing.T) {
		t.Parallel()

		acc := subscription.NewTrialAccount(uuid.New(), catalog[plan.Free], now)

		require.Nil(t, acc.TrialEndsAt)
		assert.Equal(t, subscription.StatusFree, acc.Status)
	})
}
