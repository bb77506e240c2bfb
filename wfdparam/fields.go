package wfdparam

// AudioFormat is the audio codec identifier used in wfd_audio_codecs.
type AudioFormat uint8

// Audio formats recognized by the WFD dialect.
const (
	AudioFormatLPCM AudioFormat = 1 << iota
	AudioFormatAAC
	AudioFormatAC3
)

func (f AudioFormat) String() string {
	switch f {
	case AudioFormatLPCM:
		return "LPCM"
	case AudioFormatAAC:
		return "AAC"
	case AudioFormatAC3:
		return "AC3"
	}
	return "unknown"
}

// AudioCodec is one entry of the wfd_audio_codecs list: a format, its
// modes bitmap (frequency bits for LPCM, channel bits for AAC/AC3), and a
// latency in units of 5ms.
type AudioCodec struct {
	Format  AudioFormat
	Modes   uint32
	Latency uint8
}

// ResolutionFamily distinguishes the three disjoint 32-bit resolution
// bitmaps carried in wfd_video_formats.
type ResolutionFamily uint8

// Resolution families, matching the 3-bit native-resolution tag.
const (
	ResolutionFamilyCEA ResolutionFamily = iota
	ResolutionFamilyVESA
	ResolutionFamilyHH
)

// H264Profile is a profile bitmap bit.
type H264Profile uint8

// Profiles recognized by the WFD dialect.
const (
	H264ProfileBaseline H264Profile = 1 << iota
	H264ProfileHigh
)

// H264Level is a level bitmap bit.
type H264Level uint8

// Levels recognized by the WFD dialect.
const (
	H264Level31 H264Level = 1 << iota
	H264Level32
	H264Level40
	H264Level41
	H264Level42
)

// VideoFormats is the single H.264 descriptor carried by wfd_video_formats.
type VideoFormats struct {
	NativeFamily ResolutionFamily
	NativeIndex  uint8 // 0-31, native resolution is 1<<NativeIndex within NativeFamily
	PreferredDisplayMode uint8
	Profiles             H264Profile
	Levels               H264Level
	CEASupport           uint32
	VESASupport          uint32
	HHSupport            uint32
	Latency              uint8
	MinSliceSize         uint16
	SliceEncParams       uint16
	FrameRateControl     uint8
	MaxHRes              *uint16 // nil means "none"
	MaxVRes              *uint16 // nil means "none"
}

// HDCPVersion is the content-protection capability.
type HDCPVersion uint8

// HDCP versions recognized by the WFD dialect.
const (
	HDCPNone HDCPVersion = iota
	HDCP20
	HDCP21
)

// ContentProtection is the wfd_content_protection field.
type ContentProtection struct {
	Version HDCPVersion
	TCPPort uint16
}

// DisplayEDID is the wfd_display_edid field.
type DisplayEDID struct {
	Supported  bool
	BlockCount int // 1..256, valid only when Supported
	Payload    []byte
}

// TriggerMethod is the wfd_trigger_method field.
type TriggerMethod string

// Trigger methods used to drive the sink toward an RTSP method.
const (
	TriggerSetup    TriggerMethod = "SETUP"
	TriggerPause    TriggerMethod = "PAUSE"
	TriggerPlay     TriggerMethod = "PLAY"
	TriggerTeardown TriggerMethod = "TEARDOWN"
)

// PresentationURL is the wfd_presentation_URL field: two optional stream URLs.
type PresentationURL struct {
	URL0 string // "none" is represented as ""
	URL1 string
}

// RTPPortMode is the trailing mode token of wfd_client_rtp_ports.
type RTPPortMode string

// Client RTP port modes.
const (
	RTPPortModePlay RTPPortMode = "mode=play"
)

// ClientRTPPorts is the wfd_client_rtp_ports field.
type ClientRTPPorts struct {
	Profile string // e.g. "RTP/AVP/UDP;unicast"
	Port0   int
	Port1   int
	Mode    RTPPortMode
}

// AVFormatChangeTiming is the wfd_av_format_change_timing field.
type AVFormatChangeTiming struct {
	PTS uint64
	DTS uint64
}
