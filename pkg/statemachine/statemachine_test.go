package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cachi0001/Biz-sub002/pkg/statemachine"
)

const (
	stateIdle    = statemachine.StringState("idle")
	stateRunning = statemachine.StringState("running")
	stateDone    = statemachine.StringState("done")

	eventStart  = statemachine.StringEvent("start")
	eventFinish = statemachine.StringEvent("finish")
)

func TestFire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("valid transition returns target state", func(t *testing.T) {
		t.Parallel()

		m := statemachine.New()
		require.NoError(t, m.AddTransition(stateIdle, stateRunning, eventStart, nil, nil))

		to, err := m.Fire(ctx, stateIdle, eventStart, nil)
		require.NoError(t, err)
		assert.Equal(t, stateRunning, to)
	})

	t.Run("unknown transition returns structured error", func(t *testing.T) {
		t.Parallel()

		m := statemachine.New()
		require.NoError(t, m.AddTransition(stateIdle, stateRunning, eventStart, nil, nil))

		_, err := m.Fire(ctx, stateRunning, eventStart, nil)
		require.Error(t, err)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))

		var noTransition *statemachine.ErrNoTransitionAvailable
		require.ErrorAs(t, err, &noTransition)
		assert.Equal(t, "running", noTransition.StateName)
		assert.Equal(t, "start", noTransition.EventName)
	})

	t.Run("guard rejection", func(t *testing.T) {
		t.Parallel()

		deny := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
			return false
		}

		m := statemachine.New()
		require.NoError(t, m.AddTransition(stateIdle, stateRunning, eventStart, []statemachine.Guard{deny}, nil))

		_, err := m.Fire(ctx, stateIdle, eventStart, nil)
		assert.True(t, statemachine.IsTransitionRejectedError(err))
	})

	t.Run("first transition with passing guards wins", func(t *testing.T) {
		t.Parallel()

		deny := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
			return false
		}
		allow := func(ctx context.Context, from statemachine.State, event statemachine.Event, data any) bool {
			return true
		}

		m := statemachine.New()
		require.NoError(t, m.AddTransition(stateIdle, stateDone, eventStart, []statemachine.Guard{deny}, nil))
		require.NoError(t, m.AddTransition(stateIdle, stateRunning, eventStart, []statemachine.Guard{allow}, nil))

		to, err := m.Fire(ctx, stateIdle, eventStart, nil)
		require.NoError(t, err)
		assert.Equal(t, stateRunning, to)
	})

	t.Run("action failure aborts transition", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		failing := func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
			return boom
		}

		m := statemachine.New()
		require.NoError(t, m.AddTransition(stateRunning, stateDone, eventFinish, nil, []statemachine.Action{failing}))

		_, err := m.Fire(ctx, stateRunning, eventFinish, nil)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("actions receive transition context and data", func(t *testing.T) {
		t.Parallel()

		var gotFrom, gotTo string
		var gotData any
		record := func(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
			gotFrom, gotTo, gotData = from.Name(), to.Name(), data
			return nil
		}

		m := statemachine.New()
		require.NoError(t, m.AddTransition(stateRunning, stateDone, eventFinish, nil, []statemachine.Action{record}))

		_, err := m.Fire(ctx, stateRunning, eventFinish, 42)
		require.NoError(t, err)
		assert.Equal(t, "running", gotFrom)
		assert.Equal(t, "done", gotTo)
		assert.Equal(t, 42, gotData)
	})

	t.Run("nil inputs", func(t *testing.T) {
		t.Parallel()

		m := statemachine.New()
		assert.ErrorIs(t, m.AddTransition(nil, stateDone, eventFinish, nil, nil), statemachine.ErrInvalidTransition)

		_, err := m.Fire(ctx, nil, eventStart, nil)
		assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)

		_, err = m.Fire(ctx, stateIdle, nil, nil)
		assert.ErrorIs(t, err, statemachine.ErrInvalidEvent)
	})
}

func TestCanFire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	m := statemachine.New()
	require.NoError(t, m.AddTransition(stateIdle, stateRunning, eventStart, nil, nil))

	assert.True(t, m.CanFire(ctx, stateIdle, eventStart, nil))
	assert.False(t, m.CanFire(ctx, stateRunning, eventStart, nil))
	assert.False(t, m.CanFire(ctx, stateIdle, eventFinish, nil))
}
