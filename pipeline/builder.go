package pipeline

import (
	"context"
	"fmt"

	"github.com/go-wfd/wfdsource/pipeline/graph"
	"github.com/go-wfd/wfdsource/wfderrors"
)

// Pipeline is a built source→encoder→mux→RTP-payload graph: the handle
// the hot-swap coordinator (package hotswap) and the stats aggregator
// (package rtpstats) act on afterward.
type Pipeline struct {
	Bin graph.Bin

	VideoEncoder graph.Element
	AudioEncoder graph.Element

	Muxer        graph.Element
	MuxerQueue   graph.Element
	Payloader    graph.Element

	VideoSinkPad graph.Pad
	AudioSinkPad graph.Pad

	// branch containers, paused (not torn down) during a hot-swap so they
	// can be resumed without rebuilding.
	VideoBranchElements []graph.Element
	AudioBranchElements []graph.Element
}

// Builder builds a Pipeline from a negotiated Spec against a graph.Runtime.
// Any element-creation or link failure tears down the partial bin and
// returns wfderrors.ErrBuildFailed.
type Builder struct {
	Runtime graph.Runtime
}

// Build implements spec.md §4.4, steps 1-6.
func (b *Builder) Build(ctx context.Context, name string, spec Spec) (p *Pipeline, err error) {
	bin, err := b.Runtime.NewBin(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", wfderrors.ErrBuildFailed, err)
	}

	defer func() {
		if err != nil {
			bin.SetState(ctx, graph.StateNull) //nolint:errcheck
		}
	}()

	videoElems, videoOut, err := buildVideoBranch(bin, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: video branch: %v", wfderrors.ErrBuildFailed, err)
	}

	audioElems, audioOut, err := buildAudioBranch(bin, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: audio branch: %v", wfderrors.ErrBuildFailed, err)
	}

	muxer, err := bin.MakeElement("mpegtsmux", "mux0")
	if err != nil {
		return nil, fmt.Errorf("%w: muxer: %v", wfderrors.ErrBuildFailed, err)
	}
	if err := muxer.SetProperty("mode", "wfd"); err != nil {
		return nil, fmt.Errorf("%w: muxer mode: %v", wfderrors.ErrBuildFailed, err)
	}

	videoSinkPad, err := bin.RequestPad(muxer, VideoSinkPad)
	if err != nil {
		return nil, fmt.Errorf("%w: video sink pad: %v", wfderrors.ErrBuildFailed, err)
	}
	audioSinkPad, err := bin.RequestPad(muxer, AudioSinkPad)
	if err != nil {
		return nil, fmt.Errorf("%w: audio sink pad: %v", wfderrors.ErrBuildFailed, err)
	}

	if err := bin.Link(videoOut, muxer); err != nil {
		return nil, fmt.Errorf("%w: link video->mux: %v", wfderrors.ErrBuildFailed, err)
	}
	if err := bin.Link(audioOut, muxer); err != nil {
		return nil, fmt.Errorf("%w: link audio->mux: %v", wfderrors.ErrBuildFailed, err)
	}

	muxerQueue, err := bin.MakeElement("queue", "muxqueue0")
	if err != nil {
		return nil, fmt.Errorf("%w: muxer queue: %v", wfderrors.ErrBuildFailed, err)
	}
	if err := muxerQueue.SetProperty("max-size-buffers", muxerQueueMaxBuffers); err != nil {
		return nil, fmt.Errorf("%w: muxer queue props: %v", wfderrors.ErrBuildFailed, err)
	}
	if err := bin.Link(muxer, muxerQueue); err != nil {
		return nil, fmt.Errorf("%w: link mux->muxqueue: %v", wfderrors.ErrBuildFailed, err)
	}

	payloader, err := bin.MakeElement("rtpmp2tpay", "pay0")
	if err != nil {
		return nil, fmt.Errorf("%w: payloader: %v", wfderrors.ErrBuildFailed, err)
	}
	if err := payloader.SetProperty("pt", RTPPayloadType); err != nil {
		return nil, fmt.Errorf("%w: payloader pt: %v", wfderrors.ErrBuildFailed, err)
	}
	if err := payloader.SetProperty("mtu", spec.MTU); err != nil {
		return nil, fmt.Errorf("%w: payloader mtu: %v", wfderrors.ErrBuildFailed, err)
	}
	if err := payloader.SetProperty("rtp-flush", true); err != nil {
		return nil, fmt.Errorf("%w: payloader rtp-flush: %v", wfderrors.ErrBuildFailed, err)
	}
	if err := bin.Link(muxerQueue, payloader); err != nil {
		return nil, fmt.Errorf("%w: link muxqueue->pay: %v", wfderrors.ErrBuildFailed, err)
	}

	if spec.DumpTS {
		if muxPad, perr := bin.GetPad(muxer, "src"); perr == nil {
			attachDumpProbe(muxPad)
		}
	}

	return &Pipeline{
		Bin:                 bin,
		Muxer:               muxer,
		MuxerQueue:          muxerQueue,
		Payloader:           payloader,
		VideoSinkPad:        videoSinkPad,
		AudioSinkPad:        audioSinkPad,
		VideoBranchElements: videoElems,
		AudioBranchElements: audioElems,
	}, nil
}

// attachDumpProbe appends every buffer payload flowing over the muxer's
// source pad to /root/probe.ts, when debug dump-ts is enabled (spec.md
// §4.4 step 6). The write target is fixed by the spec; callers that need
// a configurable path should wrap the pipeline and attach their own probe.
func attachDumpProbe(pad graph.Pad) {
	pad.AddProbe(graph.ProbeBuffer, func(info graph.Info) graph.ProbeResult {
		appendProbeDump(info.Buffer)
		return graph.ProbeOK
	})
}
