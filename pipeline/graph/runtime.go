// Package graph declares the interface the media-processing graph runtime
// is expected to satisfy. Encoders, muxers and RTP payloaders are external
// collaborators (spec.md §1): this package never implements them, it only
// describes the shape the pipeline builder and hot-swap coordinator drive.
package graph

import "context"

// Element is a single node of the media graph (a source, encoder, muxer,
// queue, payloader, ...).
type Element interface {
	// Name is the element's identifier within its bin, e.g. "h264enc0".
	Name() string

	// SetProperty sets a construction-time or runtime property.
	SetProperty(key string, value any) error
}

// Pad is an element's input or output connection point.
type Pad interface {
	// AddProbe installs cb on the pad; cb is invoked on a streaming thread
	// whenever the requested probe condition (idle, buffer, event) is met.
	// It returns a handle that Remove cancels.
	AddProbe(probeType ProbeType, cb ProbeFunc) ProbeHandle
}

// ProbeType selects when a probe fires.
type ProbeType int

// Probe types used by the hot-swap coordinator and the dump-ts debug tap.
const (
	// ProbeIdle fires once, the next time no buffer is traversing the pad —
	// the only safe moment to restructure the graph around it.
	ProbeIdle ProbeType = iota
	// ProbeBuffer fires on every buffer that passes through the pad.
	ProbeBuffer
	// ProbeEventDownstream fires on every downstream event (including EOS).
	ProbeEventDownstream
)

// ProbeFunc is called from a streaming thread when its probe condition is met.
// Returning Drop discards the buffer/event that triggered it (used to
// swallow the file branch's EOS during hot-swap).
type ProbeFunc func(Info) ProbeResult

// Info describes what triggered a probe.
type Info struct {
	Buffer []byte // present for ProbeBuffer
	IsEOS  bool   // present for ProbeEventDownstream
}

// ProbeResult tells the runtime what to do with the triggering data.
type ProbeResult int

// Probe results.
const (
	ProbeOK ProbeResult = iota
	ProbeDrop
)

// ProbeHandle lets a caller remove a previously installed probe.
type ProbeHandle interface {
	Remove()
}

// State is a graph or bin's playback state.
type State int

// States, ordered the way the runtime transitions through them.
const (
	StateNull State = iota
	StateReady
	StatePaused
	StatePlaying
)

// Bin is a container of linked elements with its own state.
type Bin interface {
	// MakeElement instantiates and adds a named element of factory kind
	// (e.g. "x264enc", "mpegtsmux", "rtpmp2tpay") to the bin.
	MakeElement(factory, name string) (Element, error)

	// Link connects src's output to dst's input.
	Link(src, dst Element) error

	// RequestPad asks an element (typically a muxer) for a pad identified
	// by key (e.g. "sink_4113"); the element must already support it.
	RequestPad(el Element, key string) (Pad, error)

	// GetPad returns an already-existing static pad by name.
	GetPad(el Element, name string) (Pad, error)

	// SetState transitions the whole bin.
	SetState(ctx context.Context, s State) error

	// Remove detaches and disposes el.
	Remove(el Element) error

	// AddGhostPad exposes an internal pad as one of the bin's own pads,
	// so the bin can be linked into a parent graph as a single unit.
	AddGhostPad(name string, internal Pad) (Pad, error)
}

// Runtime creates top-level bins. Exactly one collaborator implements
// this in production (a GStreamer-style graph engine); tests use the fake
// implementation in package graphfake.
type Runtime interface {
	NewBin(name string) (Bin, error)
}
