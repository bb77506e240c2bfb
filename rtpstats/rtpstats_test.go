package rtpstats

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pion/rtcp"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	bytes atomic.Uint64
	seq   atomic.Uint32
}

func (f *fakeSource) SentBytes() uint64 { return f.bytes.Load() }
func (f *fakeSource) SeqNum() uint16    { return uint16(f.seq.Load()) }

func TestAggregatorSamplesDeltas(t *testing.T) {
	src := &fakeSource{}
	src.bytes.Store(1000)
	src.seq.Store(10)

	var mu sync.Mutex
	var deltas []Delta

	a := &Aggregator{
		Source: src,
		Period: 5 * time.Millisecond,
		OnTick: func(d Delta) {
			mu.Lock()
			deltas = append(deltas, d)
			mu.Unlock()
		},
	}
	a.Initialize()
	defer a.Close()

	time.Sleep(12 * time.Millisecond)
	src.bytes.Store(1500)
	src.seq.Store(20)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, deltas)

	var total uint64
	for _, d := range deltas {
		total += d.BytesSent
	}
	require.Equal(t, uint64(500), total)
}

func TestMergeReceiverReport(t *testing.T) {
	a := &Aggregator{Source: &fakeSource{}}

	rr := &rtcp.ReceiverReport{
		Reports: []rtcp.ReceptionReport{
			{
				FractionLost:       5,
				TotalLost:          42,
				LastSequenceNumber: 1000,
				Jitter:             7,
				LastSenderReport:   99,
				Delay:              3,
			},
		},
	}
	a.MergeReceiverReport(rr, 20*time.Millisecond)

	snap := a.Snapshot()
	require.True(t, snap.RTCPStatsEnabled)
	require.Equal(t, uint8(5), snap.FractionLost)
	require.Equal(t, uint32(42), snap.CumulativeLost)
	require.Equal(t, uint32(1000), snap.MaxSeqNum)
	require.Equal(t, uint32(7), snap.Jitter)
	require.Equal(t, 20*time.Millisecond, snap.RTT)
}

func TestMergeReceiverReportIgnoresEmpty(t *testing.T) {
	a := &Aggregator{Source: &fakeSource{}}
	a.MergeReceiverReport(&rtcp.ReceiverReport{}, 0)
	require.False(t, a.Snapshot().RTCPStatsEnabled)
}
