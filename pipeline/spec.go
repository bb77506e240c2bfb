package pipeline

import "github.com/go-wfd/wfdsource/wfdparam"

// VideoSrcVariant selects the video capture element the source bin wraps.
type VideoSrcVariant string

// Variants accepted by configuration. The builder has a video branch for
// every variant except VideoSrcFileDemux, for which Build returns an error.
const (
	VideoSrcXCapture   VideoSrcVariant = "x-capture"
	VideoSrcXVCapture  VideoSrcVariant = "xv-capture"
	VideoSrcCamera     VideoSrcVariant = "camera"
	VideoSrcVideoTest  VideoSrcVariant = "videotest"
	VideoSrcWayland    VideoSrcVariant = "wayland"
	VideoSrcFileDemux  VideoSrcVariant = "file-demux"
)

// Fixed elementary PIDs and RTP payload type mandated by the WFD dialect
// (spec.md §3, §6): the muxer always puts video on 0x1011 / sink_4113 and
// audio on 0x1100 / sink_4352, and the RTP payloader always uses PT 33.
const (
	VideoPID     = 0x1011
	AudioPID     = 0x1100
	VideoSinkPad = "sink_4113"
	AudioSinkPad = "sink_4352"
	RTPPayloadType = 33

	muxerQueueMaxBuffers = 20000
)

// Spec is the directed graph skeleton the builder emits for one session.
type Spec struct {
	VideoVariant VideoSrcVariant
	AudioDevice  string

	Negotiated *wfdparam.VideoFormats // resolved resolution/profile/level, used for caps
	AudioCodec wfdparam.AudioFormat
	AudioFreq  int
	AudioChannels int
	AudioLatencyUS int
	AudioBufferUS  int
	AudioDoTimestamp bool

	VideoEncoderName     string
	AudioEncoderAACName  string
	AudioEncoderAC3Name  string

	Width, Height, FrameRate int
	MTU                      int

	DumpTS bool
}
