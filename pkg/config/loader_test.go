package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cachi0001/Biz-sub002/pkg/config"
)

type sweepConfig struct {
	Schedule string `env:"TEST_SWEEP_SCHEDULE" envDefault:"@every 5m"`
	LockTTL  int    `env:"TEST_SWEEP_LOCK_TTL" envDefault:"120"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN_UNSET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		var cfg sweepConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "@every 5m", cfg.Schedule)
		assert.Equal(t, 120, cfg.LockTTL)
	})

	t.Run("env override and caching", func(t *testing.T) {
		t.Setenv("TEST_SWEEP_SCHEDULE", "@every 1m")

		// The type was already parsed above, so the cached copy wins. This is
		// the documented once-per-type behavior.
		var cfg sweepConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "@every 5m", cfg.Schedule)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *sweepConfig
		err := config.Load(cfg)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}
