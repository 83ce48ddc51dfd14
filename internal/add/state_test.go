package add

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineTransitions(t *testing.T) {
	m := newMachine(context.Background())
	for _, s := range []State{StatePreflighting, StateResolving, StateTransforming, StateWriting, StatePostInstall, StateDone} {
		require.NoError(t, m.enter(s))
	}
	assert.Equal(t, []State{
		StateIdle, StatePreflighting, StateResolving, StateTransforming,
		StateWriting, StatePostInstall, StateDone,
	}, m.history)

	assert.Error(t, m.enter(StateFailed), "done is terminal")
	m.fail(errors.New("late"))
	assert.Equal(t, StateDone, m.state)
}

func TestMachineRejectsSkips(t *testing.T) {
	m := newMachine(context.Background())
	assert.Error(t, m.enter(StateWriting))
	require.NoError(t, m.enter(StatePreflighting))
	assert.Error(t, m.enter(StateTransforming))
	assert.Equal(t, StatePreflighting, m.state)
}

func TestMachineFailFromAnyState(t *testing.T) {
	for _, path := range [][]State{
		nil,
		{StatePreflighting},
		{StatePreflighting, StateResolving, StateTransforming},
	} {
		m := newMachine(context.Background())
		for _, s := range path {
			require.NoError(t, m.enter(s))
		}
		m.fail(errors.New("boom"))
		assert.Equal(t, StateFailed, m.state)
		m.fail(errors.New("again"))
		assert.Equal(t, StateFailed, m.history[len(m.history)-1])
		assert.Len(t, m.history, len(path)+2)
	}
}
