package rtpstats

import (
	"sync/atomic"

	"github.com/pion/rtp"

	"github.com/go-wfd/wfdsource/pipeline/graph"
)

// PadSource is a SampleSource backed by a buffer probe on the payloader's
// source pad: every RTP packet that passes is parsed with pion/rtp the
// way gortsplib's rtpsender samples its own outgoing stream, and the
// running byte count / last sequence number are kept in atomics so
// Aggregator's ticker goroutine never blocks the streaming thread.
type PadSource struct {
	bytes atomic.Uint64
	seq   atomic.Uint32
}

// Attach installs the buffer probe. Unparsable buffers still count toward
// SentBytes but leave SeqNum unchanged.
func (p *PadSource) Attach(pad graph.Pad) {
	pad.AddProbe(graph.ProbeBuffer, func(info graph.Info) graph.ProbeResult {
		p.bytes.Add(uint64(len(info.Buffer)))

		var pkt rtp.Packet
		if err := pkt.Unmarshal(info.Buffer); err == nil {
			p.seq.Store(uint32(pkt.SequenceNumber))
		}
		return graph.ProbeOK
	})
}

// SentBytes implements SampleSource.
func (p *PadSource) SentBytes() uint64 { return p.bytes.Load() }

// SeqNum implements SampleSource.
func (p *PadSource) SeqNum() uint16 { return uint16(p.seq.Load()) }
