package capability

import (
	"fmt"

	"github.com/go-wfd/wfdsource/wfdparam"
	"github.com/go-wfd/wfdsource/wfderrors"
)

// fixed audio channel count: the spec supports more, but this core ships
// stereo only (spec.md §4.2, an explicit simplification).
const negotiatedChannels = 2

// fixed profile/level: also used for non-H.264 codecs, per spec.md §9's
// Open Questions (this implementation fixes that ambiguity to baseline/3.1).
const (
	negotiatedProfile = wfdparam.H264ProfileBaseline
	negotiatedLevel   = wfdparam.H264Level31
)

// NegotiatedConfig is the result of intersecting source and sink
// capabilities: every field is a single value, never a bitmap.
type NegotiatedConfig struct {
	AudioCodec    wfdparam.AudioFormat
	AudioFreq     int
	AudioChannels int
	AudioLatency  uint8

	VideoFamily      wfdparam.ResolutionFamily
	VideoBit         int
	Resolution       Resolution
	Profile          wfdparam.H264Profile
	Level            wfdparam.H264Level

	RTPPort0 int
	RTPPort1 int

	ContentProtection *wfdparam.ContentProtection
	PresentationURL   string
}

// Intersect resolves source and sink capability sets into a single
// NegotiatedConfig. It returns ErrNegotiationFailed if any required
// dimension's intersection is empty.
func Intersect(source, sink Set) (*NegotiatedConfig, error) {
	cfg := &NegotiatedConfig{
		AudioChannels: negotiatedChannels,
		Profile:       negotiatedProfile,
		Level:         negotiatedLevel,
	}

	codec, srcEntry, sinkEntry, err := intersectAudioCodec(source.Audio, sink.Audio)
	if err != nil {
		return nil, err
	}
	cfg.AudioCodec = codec
	cfg.AudioLatency = sinkEntry.Latency

	cfg.AudioFreq = intersectAudioFreq(codec, srcEntry, sinkEntry)

	family, bit, err := intersectVideoResolution(source.Video, sink.Video)
	if err != nil {
		return nil, err
	}
	cfg.VideoFamily = family
	cfg.VideoBit = bit

	res, ok := LookupResolution(family, bit)
	if !ok {
		return nil, fmt.Errorf("%w: no table entry for family %v bit %d", wfderrors.ErrNegotiationFailed, family, bit)
	}
	cfg.Resolution = res

	if sink.RTPPorts == nil {
		return nil, fmt.Errorf("%w: sink did not advertise rtp ports", wfderrors.ErrNegotiationFailed)
	}
	cfg.RTPPort0 = sink.RTPPorts.Port0
	cfg.RTPPort1 = sink.RTPPorts.Port1

	cfg.ContentProtection = sink.ContentProtection

	return cfg, nil
}

// audioFormatPriority orders formats MSB-first over the 8-bit codec field:
// AC3 > AAC > LPCM.
var audioFormatPriority = []wfdparam.AudioFormat{
	wfdparam.AudioFormatAC3,
	wfdparam.AudioFormatAAC,
	wfdparam.AudioFormatLPCM,
}

func codecBitmask(codecs []wfdparam.AudioCodec) wfdparam.AudioFormat {
	var mask wfdparam.AudioFormat
	for _, c := range codecs {
		mask |= c.Format
	}
	return mask
}

func findCodec(codecs []wfdparam.AudioCodec, format wfdparam.AudioFormat) (wfdparam.AudioCodec, bool) {
	for _, c := range codecs {
		if c.Format == format {
			return c, true
		}
	}
	return wfdparam.AudioCodec{}, false
}

func intersectAudioCodec(source, sink Audio) (wfdparam.AudioFormat, wfdparam.AudioCodec, wfdparam.AudioCodec, error) {
	srcMask := codecBitmask(source.Codecs)
	sinkMask := codecBitmask(sink.Codecs)
	common := srcMask & sinkMask

	for _, f := range audioFormatPriority {
		if common&f != 0 {
			srcEntry, _ := findCodec(source.Codecs, f)
			sinkEntry, _ := findCodec(sink.Codecs, f)
			return f, srcEntry, sinkEntry, nil
		}
	}

	return 0, wfdparam.AudioCodec{}, wfdparam.AudioCodec{}, fmt.Errorf("%w: no common audio codec", wfderrors.ErrNegotiationFailed)
}

// LPCM frequency bitmap bits: bit0 = 44100 Hz, bit1 = 48000 Hz.
const (
	lpcmFreq44100 = 1 << 0
	lpcmFreq48000 = 1 << 1
)

// intersectAudioFreq resolves a single frequency for the negotiated codec.
// Only LPCM's modes bitmap encodes frequency (spec.md §4.1); AAC/AC3 are
// fixed at 48000 Hz.
func intersectAudioFreq(codec wfdparam.AudioFormat, source, sink wfdparam.AudioCodec) int {
	if codec != wfdparam.AudioFormatLPCM {
		return 48000
	}

	common := source.Modes & sink.Modes
	if common&lpcmFreq48000 != 0 {
		return 48000
	}
	if common&lpcmFreq44100 != 0 {
		return 44100
	}
	return 48000
}

// intersectVideoResolution scans the native family's 32-bit bitmap
// MSB-first, returning the first bit set in both source and sink.
func intersectVideoResolution(source, sink Video) (wfdparam.ResolutionFamily, int, error) {
	srcBitmap, sinkBitmap := familyBitmaps(source, sink)

	common := srcBitmap & sinkBitmap
	if common == 0 {
		return 0, 0, fmt.Errorf("%w: no common video resolution in family %v", wfderrors.ErrNegotiationFailed, sink.NativeFamily)
	}

	for bit := 31; bit >= 0; bit-- {
		if common&(1<<uint(bit)) != 0 {
			return sink.NativeFamily, bit, nil
		}
	}

	return 0, 0, fmt.Errorf("%w: no common video resolution", wfderrors.ErrNegotiationFailed)
}

func familyBitmaps(source, sink Video) (uint32, uint32) {
	switch sink.NativeFamily {
	case wfdparam.ResolutionFamilyVESA:
		return source.VESA, sink.VESA
	case wfdparam.ResolutionFamilyHH:
		return source.HH, sink.HH
	default:
		return source.CEA, sink.CEA
	}
}
