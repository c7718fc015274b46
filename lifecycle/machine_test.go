package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateUninitialized, StateActive, true},
		{StateUninitialized, StateFailed, true},
		{StateUninitialized, StateUnloaded, false},
		{StateActive, StateUnloaded, true},
		{StateActive, StateFailed, false},
		{StateActive, StateActive, false},
		{StateFailed, StateActive, false},
		{StateUnloaded, StateUnloaded, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestState_TerminalAndPhase(t *testing.T) {
	assert.False(t, StateUninitialized.Terminal())
	assert.False(t, StateActive.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateUnloaded.Terminal())

	assert.Equal(t, PhaseRegistration, StateUninitialized.Phase())
	assert.Equal(t, PhaseRunning, StateActive.Phase())
	assert.Equal(t, PhaseStopped, StateUnloaded.Phase())
}

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateUninitialized, m.State())

	require.NoError(t, m.Transition(StateActive))
	require.NoError(t, m.Transition(StateUnloaded))
	assert.Equal(t, StateUnloaded, m.State())

	hist := m.History()
	require.Len(t, hist, 2)
	assert.Equal(t, StateUninitialized, hist[0].From)
	assert.Equal(t, StateUnloaded, hist[1].To)
	assert.NoError(t, m.Reason())
}

func TestMachine_SecondCleanupRejected(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Transition(StateActive))
	require.NoError(t, m.Transition(StateUnloaded))

	err := m.Transition(StateUnloaded)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, m.History(), 2)
}

func TestMachine_Fail(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Fail(errBoom))
	assert.Equal(t, StateFailed, m.State())
	assert.ErrorIs(t, m.Reason(), errBoom)

	assert.ErrorIs(t, m.Transition(StateUnloaded), ErrInvalidTransition)
	assert.ErrorIs(t, m.Fail(nil), ErrNilReason)
}

func TestMachine_CannotFailWhenActive(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Transition(StateActive))
	assert.ErrorIs(t, m.Fail(errBoom), ErrInvalidTransition)
	assert.NoError(t, m.Reason())
}
