package addrpool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateReturnsEvenOddPair(t *testing.T) {
	p := &Pool{Low: 19000, High: 19010}

	pair, err := p.Allocate()
	require.NoError(t, err)
	require.Equal(t, 19000, pair.RTPPort)
	require.Equal(t, 19001, pair.RTCPPort)

	pair2, err := p.Allocate()
	require.NoError(t, err)
	require.Equal(t, 19002, pair2.RTPPort)
}

func TestAllocateExhaustion(t *testing.T) {
	p := &Pool{Low: 19000, High: 19001}

	_, err := p.Allocate()
	require.NoError(t, err)

	_, err = p.Allocate()
	require.Error(t, err)
}

func TestReleaseFreesPair(t *testing.T) {
	p := &Pool{Low: 19000, High: 19001}

	pair, err := p.Allocate()
	require.NoError(t, err)

	p.Release(pair)

	pair2, err := p.Allocate()
	require.NoError(t, err)
	require.Equal(t, pair.RTPPort, pair2.RTPPort)
}
