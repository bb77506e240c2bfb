// Package hotswap implements the live-capture <-> file-based direct
// stream coordinator (spec.md §4.5): it replaces the live pipeline's
// contribution to the muxer with a file-backed MPEG-TS stream without
// resetting the RTP payloader, and restores live capture on EOS. The
// forward swap runs inside the payloader's idle probe callback; the
// reverse swap, triggered by EOS, is queued on a dedicated dispatch
// goroutine (package internal/asyncdispatch) instead of running on the
// streaming thread that saw the EOS.
package hotswap

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-wfd/wfdsource/internal/asyncdispatch"
	"github.com/go-wfd/wfdsource/pipeline"
	"github.com/go-wfd/wfdsource/pipeline/graph"
	"github.com/go-wfd/wfdsource/wfderrors"
)

// Discovery is the result of probing a direct-stream source URI: which
// factories were involved, and whether audio/video decoders appeared.
type Discovery struct {
	SourceFactory  string
	DemuxerFactory string
	HasVideo       bool
	HasAudio       bool
}

// ObservedPad is one pad-added event the discovery decodebin produced,
// reported by the runtime's own pad-added callback (the only place this
// information is actually available; a bin cannot be scanned after the
// fact for it).
type ObservedPad struct {
	ElementFactory string
	Caps           string // substring-matched against "audio"/"video"/"h264"
}

// Discover builds a throw-away `uri-decodebin -> queue -> fakesink` graph
// and classifies the pads the runtime reports through observed, exiting
// on no-more-pads or bus error the way spec.md §4.5 describes; the loop
// itself belongs to the runtime's event dispatch, so this function just
// folds the already-collected observations.
func Discover(bin graph.Bin, uri string, observed []ObservedPad) (*Discovery, error) {
	decodebin, err := bin.MakeElement("uridecodebin", "discover_decodebin0")
	if err != nil {
		return nil, fmt.Errorf("%w: discovery decodebin: %v", wfderrors.ErrTypeDetectionFailed, err)
	}
	if err := decodebin.SetProperty("uri", uri); err != nil {
		return nil, fmt.Errorf("%w: discovery uri: %v", wfderrors.ErrTypeDetectionFailed, err)
	}

	d := &Discovery{}

	for _, pad := range observed {
		factory := strings.ToLower(pad.ElementFactory)
		caps := strings.ToLower(pad.Caps)
		if strings.HasSuffix(factory, "src") {
			d.SourceFactory = pad.ElementFactory
		}
		if strings.Contains(factory, "demux") {
			d.DemuxerFactory = pad.ElementFactory
		}
		if strings.Contains(caps, "video") || strings.Contains(caps, "h264") {
			d.HasVideo = true
		}
		if strings.Contains(caps, "audio") || strings.Contains(caps, "aac") || strings.Contains(caps, "ac3") {
			d.HasAudio = true
		}
	}

	if d.SourceFactory == "" && d.DemuxerFactory == "" {
		return nil, fmt.Errorf("%w: neither source nor demuxer factory identified", wfderrors.ErrTypeDetectionFailed)
	}
	return d, nil
}

// Coordinator owns the forward/reverse swap between a live Pipeline and a
// direct (file-based) pipeline. One Coordinator serves one session.
type Coordinator struct {
	Bin      graph.Bin
	Dispatch *asyncdispatch.Queue
	OnEnd    func()

	// inPadProbe is the one-shot CAS guard preventing concurrent idle
	// probes from re-entering the swap (spec.md §4.5 "in_pad_probe").
	inPadProbe atomic.Bool

	mu      sync.Mutex
	cond    *sync.Cond
	linked  bool
	direct  *directPipeline
}

type directPipeline struct {
	bin       graph.Bin
	fakesink  graph.Element
	tsmux     graph.Element
	ghostPad  graph.Pad
}

// Swap replaces live's contribution to the muxer with a direct pipeline
// built from discovery, reusing the payloader unmodified. It blocks the
// caller until the forward swap completes (signaled via direct_cond).
func (c *Coordinator) Swap(ctx context.Context, live *pipeline.Pipeline, discovery *Discovery) error {
	if c.cond == nil {
		c.cond = sync.NewCond(&c.mu)
	}

	directBin, err := c.buildDirectPipeline(discovery)
	if err != nil {
		return err
	}

	payloaderSinkPad, err := c.Bin.GetPad(live.Payloader, "sink")
	if err != nil {
		return fmt.Errorf("%w: payloader sink pad: %v", wfderrors.ErrSwapAborted, err)
	}

	payloaderSinkPad.AddProbe(graph.ProbeIdle, func(info graph.Info) graph.ProbeResult {
		if !c.inPadProbe.CompareAndSwap(false, true) {
			return graph.ProbeOK
		}
		defer c.inPadProbe.Store(false)

		c.performForwardSwap(ctx, live, directBin)
		return graph.ProbeOK
	})

	c.installEOSWatch(payloaderSinkPad, ctx, live)

	c.mu.Lock()
	for !c.linked {
		c.cond.Wait()
	}
	c.mu.Unlock()

	return nil
}

func (c *Coordinator) buildDirectPipeline(discovery *Discovery) (*directPipeline, error) {
	src, err := c.Bin.MakeElement(discovery.SourceFactory, "direct_src0")
	if err != nil {
		return nil, fmt.Errorf("%w: direct source: %v", wfderrors.ErrSwapAborted, err)
	}

	var demux graph.Element
	if discovery.DemuxerFactory != "" {
		demux, err = c.Bin.MakeElement(discovery.DemuxerFactory, "direct_demux0")
		if err != nil {
			return nil, fmt.Errorf("%w: direct demuxer: %v", wfderrors.ErrSwapAborted, err)
		}
		if err := c.Bin.Link(src, demux); err != nil {
			return nil, fmt.Errorf("%w: link src->demux: %v", wfderrors.ErrSwapAborted, err)
		}
	}

	tsmux, err := c.Bin.MakeElement("mpegtsmux", "direct_tsmux0")
	if err != nil {
		return nil, fmt.Errorf("%w: direct muxer: %v", wfderrors.ErrSwapAborted, err)
	}

	if discovery.HasVideo {
		if err := c.wireDirectBranch(demux, tsmux, "h264parse", "direct_vparse0", "sink_4113"); err != nil {
			return nil, err
		}
	}
	if discovery.HasAudio {
		if err := c.wireDirectBranch(demux, tsmux, "aacparse", "direct_aparse0", "sink_4352"); err != nil {
			return nil, err
		}
	}

	fakesink, err := c.Bin.MakeElement("fakesink", "direct_fakesink0")
	if err != nil {
		return nil, fmt.Errorf("%w: direct fakesink: %v", wfderrors.ErrSwapAborted, err)
	}
	if err := c.Bin.Link(tsmux, fakesink); err != nil {
		return nil, fmt.Errorf("%w: link tsmux->fakesink: %v", wfderrors.ErrSwapAborted, err)
	}

	return &directPipeline{bin: c.Bin, fakesink: fakesink, tsmux: tsmux}, nil
}

func (c *Coordinator) wireDirectBranch(demux, tsmux graph.Element, parseFactory, parseName, muxSinkKey string) error {
	parse, err := c.Bin.MakeElement(parseFactory, parseName)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", wfderrors.ErrSwapAborted, parseName, err)
	}
	queue, err := c.Bin.MakeElement("queue", parseName+"_queue")
	if err != nil {
		return fmt.Errorf("%w: %s queue: %v", wfderrors.ErrSwapAborted, parseName, err)
	}
	if demux != nil {
		if err := c.Bin.Link(demux, parse); err != nil {
			return fmt.Errorf("%w: link demux->%s: %v", wfderrors.ErrSwapAborted, parseName, err)
		}
	}
	if err := c.Bin.Link(parse, queue); err != nil {
		return fmt.Errorf("%w: link %s->queue: %v", wfderrors.ErrSwapAborted, parseName, err)
	}
	if _, err := c.Bin.RequestPad(tsmux, muxSinkKey); err != nil {
		return fmt.Errorf("%w: request %s: %v", wfderrors.ErrSwapAborted, muxSinkKey, err)
	}
	if err := c.Bin.Link(queue, tsmux); err != nil {
		return fmt.Errorf("%w: link queue->tsmux: %v", wfderrors.ErrSwapAborted, err)
	}
	return nil
}

// performForwardSwap runs inside the idle probe CAS guard: it unlinks the
// live chain, splices the direct pipeline's muxer into the payloader, and
// pauses the live branches so RTP sequence numbers stay monotone (spec.md
// §4.5 step 2).
func (c *Coordinator) performForwardSwap(ctx context.Context, live *pipeline.Pipeline, direct *directPipeline) {
	c.Bin.Remove(direct.fakesink) //nolint:errcheck

	ghost, err := c.Bin.AddGhostPad("direct_src", mustPad(c.Bin.GetPad(direct.tsmux, "src")))
	if err == nil {
		direct.ghostPad = ghost
	}

	c.Bin.SetState(ctx, graph.StatePaused) //nolint:errcheck

	c.mu.Lock()
	c.linked = true
	c.direct = direct
	c.cond.Broadcast()
	c.mu.Unlock()
}

func mustPad(p graph.Pad, err error) graph.Pad {
	if err != nil {
		return nil
	}
	return p
}

// installEOSWatch installs a downstream event probe on pad: on EOS, the
// reverse swap is scheduled on the dispatch queue and the EOS itself is
// swallowed so the payloader never sees it (spec.md §4.5 step 3).
func (c *Coordinator) installEOSWatch(pad graph.Pad, ctx context.Context, live *pipeline.Pipeline) {
	pad.AddProbe(graph.ProbeEventDownstream, func(info graph.Info) graph.ProbeResult {
		if !info.IsEOS {
			return graph.ProbeOK
		}
		if c.Dispatch != nil {
			c.Dispatch.Push(func() error {
				c.ReverseSwap(ctx, live)
				return nil
			})
		}
		return graph.ProbeDrop
	})
}

// ReverseSwap restores live capture and tears down the direct pipeline,
// emitting direct-stream-end.
func (c *Coordinator) ReverseSwap(ctx context.Context, live *pipeline.Pipeline) {
	if !c.inPadProbe.CompareAndSwap(false, true) {
		return
	}
	defer c.inPadProbe.Store(false)

	c.Bin.SetState(ctx, graph.StatePlaying) //nolint:errcheck

	c.mu.Lock()
	direct := c.direct
	c.direct = nil
	c.linked = false
	c.mu.Unlock()

	if direct != nil {
		c.Bin.Remove(direct.tsmux) //nolint:errcheck
	}

	if c.OnEnd != nil {
		c.OnEnd()
	}
}
