// Package rtpstats aggregates outgoing RTP transport statistics: a
// periodic sample of the payloader's sequence number and sent-byte
// counter, merged with whatever the sink's RTCP receiver reports carry.
// It mirrors the Initialize/Close/run-ticker shape of gortsplib's
// rtpsender.Sender and the RTCP-merge shape of its rtpreceiver.Receiver,
// collapsed into a single aggregator since this module only ever tracks
// one outgoing stream per session.
package rtpstats

import (
	"sync"
	"time"

	"github.com/pion/rtcp"
)

const (
	// SamplePeriod is the cadence at which sent bytes/seqnum are sampled
	// (spec.md §4.6: "every 2s").
	SamplePeriod = 2 * time.Second
)

// RtpStats is the per-session statistics block guarded by a single mutex
// (the spec's stats_lock).
type RtpStats struct {
	LastSentBytes uint64
	LastSeqNum    uint16

	FractionLost   uint8
	CumulativeLost uint32
	MaxSeqNum      uint32
	Jitter         uint32
	LSR            uint32
	DLSR           uint32
	RTT            time.Duration

	RTCPStatsEnabled bool
}

// SampleSource is implemented by whatever owns the RTP payloader: the
// pipeline package supplies the current cumulative sent-byte count and
// sequence number each tick.
type SampleSource interface {
	SentBytes() uint64
	SeqNum() uint16
}

// Aggregator periodically samples a SampleSource and merges RTCP
// receiver reports, logging the delta since the previous tick.
type Aggregator struct {
	Source  SampleSource
	Period  time.Duration
	TimeNow func() time.Time
	OnTick  func(delta Delta)

	mu    sync.Mutex
	stats RtpStats

	prevBytes uint64
	prevSeq   uint16
	prevSet   bool

	terminate chan struct{}
	done      chan struct{}
}

// Delta is the observed change between two consecutive samples.
type Delta struct {
	BytesSent uint64
	SeqDelta  uint16
	At        time.Time
}

// Initialize starts the sampling goroutine.
func (a *Aggregator) Initialize() {
	if a.Period == 0 {
		a.Period = SamplePeriod
	}
	if a.TimeNow == nil {
		a.TimeNow = time.Now
	}
	a.terminate = make(chan struct{})
	a.done = make(chan struct{})
	go a.run()
}

// Close stops the sampling goroutine and waits for it to exit.
func (a *Aggregator) Close() {
	close(a.terminate)
	<-a.done
}

func (a *Aggregator) run() {
	defer close(a.done)

	t := time.NewTicker(a.Period)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			a.sample()
		case <-a.terminate:
			return
		}
	}
}

func (a *Aggregator) sample() {
	bytes := a.Source.SentBytes()
	seq := a.Source.SeqNum()

	a.mu.Lock()
	a.stats.LastSentBytes = bytes
	a.stats.LastSeqNum = seq
	a.mu.Unlock()

	if !a.prevSet {
		a.prevBytes = bytes
		a.prevSeq = seq
		a.prevSet = true
		return
	}

	delta := Delta{
		BytesSent: bytes - a.prevBytes,
		SeqDelta:  seq - a.prevSeq,
		At:        a.TimeNow(),
	}
	a.prevBytes = bytes
	a.prevSeq = seq

	if a.OnTick != nil {
		a.OnTick(delta)
	}
}

// MergeReceiverReport copies {fraction-lost, packets-lost, ext-highest-seq,
// jitter, lsr, dlsr, rtt} from an incoming RTCP receiver report under
// stats_lock, and flips RTCPStatsEnabled on first report (spec.md §4.6).
func (a *Aggregator) MergeReceiverReport(rr *rtcp.ReceiverReport, rtt time.Duration) {
	if len(rr.Reports) == 0 {
		return
	}
	rep := rr.Reports[0]

	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.FractionLost = rep.FractionLost
	a.stats.CumulativeLost = rep.TotalLost
	a.stats.MaxSeqNum = rep.LastSequenceNumber
	a.stats.Jitter = rep.Jitter
	a.stats.LSR = rep.LastSenderReport
	a.stats.DLSR = rep.Delay
	a.stats.RTT = rtt
	a.stats.RTCPStatsEnabled = true
}

// Snapshot returns a value copy of the current stats under stats_lock
// (mirrors rtpsender.Sender.Stats()).
func (a *Aggregator) Snapshot() RtpStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
