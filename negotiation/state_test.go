package negotiation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandshakeHappyPath(t *testing.T) {
	m := NewMachine()
	require.Equal(t, StateInit, m.Current())

	steps := []State{
		StateM1Sent, StateM2Received, StateM3Sent, StateM3Received,
		StateM4Sent, StateM4Received, StateReady, StateSetup, StatePlaying,
	}
	for _, s := range steps {
		require.True(t, m.Advance(s), "advance to %s", s)
	}
	require.Equal(t, StatePlaying, m.Current())
}

func TestIllegalSkipRejected(t *testing.T) {
	m := NewMachine()
	require.False(t, m.Advance(StateM3Sent))
	require.Equal(t, StateInit, m.Current())
}

func TestTeardownReachableFromAnyState(t *testing.T) {
	m := NewMachine()
	require.True(t, m.Advance(StateM1Sent))
	require.True(t, m.Advance(StateTeardown))
	require.Equal(t, StateTeardown, m.Current())
}

func TestPlayingPauseRoundTrip(t *testing.T) {
	m := NewMachine()
	for _, s := range []State{StateM1Sent, StateM2Received, StateM3Sent, StateM3Received,
		StateM4Sent, StateM4Received, StateReady, StateSetup, StatePlaying} {
		require.True(t, m.Advance(s))
	}
	require.True(t, m.Advance(StatePaused))
	require.True(t, m.Advance(StatePlaying))
}
