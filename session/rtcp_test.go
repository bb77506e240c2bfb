package session

import (
	"net"
	"testing"
	"time"

	"github.com/pion/rtcp"
	"github.com/stretchr/testify/require"

	"github.com/go-wfd/wfdsource/addrpool"
)

func TestRTCPListenerMergesReceiverReport(t *testing.T) {
	pool := &addrpool.Pool{Low: 19100, High: 19198}

	received := make(chan *rtcp.ReceiverReport, 1)
	l, err := startRTCPListener(pool, "127.0.0.1", func(rr *rtcp.ReceiverReport, rtt time.Duration) {
		received <- rr
	})
	require.NoError(t, err)
	require.NotNil(t, l)
	defer l.close()

	rr := &rtcp.ReceiverReport{
		SSRC: 1,
		Reports: []rtcp.ReceptionReport{{
			SSRC:               2,
			FractionLost:       5,
			TotalLost:          10,
			LastSequenceNumber: 100,
			Jitter:             50,
		}},
	}
	buf, err := rr.Marshal()
	require.NoError(t, err)

	conn, err := net.DialUDP("udp", nil, &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: l.pair.RTCPPort})
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(buf)
	require.NoError(t, err)

	select {
	case got := <-received:
		require.Equal(t, uint32(10), got.Reports[0].TotalLost)
	case <-time.After(2 * time.Second):
		t.Fatal("receiver report never delivered")
	}
}

func TestStartRTCPListenerNilPoolIsNoop(t *testing.T) {
	l, err := startRTCPListener(nil, "127.0.0.1", nil)
	require.NoError(t, err)
	require.Nil(t, l)
}

func TestRTCPListenerCloseReleasesPortPair(t *testing.T) {
	pool := &addrpool.Pool{Low: 19200, High: 19202}

	l, err := startRTCPListener(pool, "127.0.0.1", nil)
	require.NoError(t, err)
	l.close()

	// The pair must be free again: allocating the whole range should
	// succeed without hitting exhaustion.
	pair, err := pool.Allocate()
	require.NoError(t, err)
	require.Equal(t, l.pair.RTPPort, pair.RTPPort)
}
