// Package capability models source and sink capability sets and the
// rules used to intersect them into a single negotiated configuration.
package capability

import "github.com/go-wfd/wfdsource/wfdparam"

// Audio is one source or sink's audio capability set: the codecs it can
// offer, each carrying its own modes bitmap (frequency bits for LPCM,
// channel bits for AAC/AC3) and latency.
type Audio struct {
	Codecs []wfdparam.AudioCodec
}

// Video is one source or sink's video capability set.
type Video struct {
	NativeFamily wfdparam.ResolutionFamily
	NativeIndex  uint8
	Profiles     wfdparam.H264Profile
	Levels       wfdparam.H264Level
	CEA          uint32
	VESA         uint32
	HH           uint32
}

// Set is the full capability set of one side (source or sink) of a
// negotiation.
type Set struct {
	Audio             Audio
	Video             Video
	ContentProtection *wfdparam.ContentProtection
	RTPPorts          *wfdparam.ClientRTPPorts
	DisplayEDID       *wfdparam.DisplayEDID
}

// Resolution is the {width, height, framerate, interleaved} expansion of a
// single resolution bitmap bit, looked up from the static tables in tables.go.
type Resolution struct {
	Width       int
	Height      int
	FrameRate   int
	Interleaved bool
}
