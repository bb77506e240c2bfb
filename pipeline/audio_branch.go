package pipeline

import (
	"fmt"

	"github.com/go-wfd/wfdsource/pipeline/graph"
	"github.com/go-wfd/wfdsource/wfdparam"
)

// buildAudioBranch builds the audio sub-bin per spec.md §4.4 step 3 and
// returns its constituent elements plus the element whose output feeds
// the muxer (the trailing queue).
func buildAudioBranch(bin graph.Bin, spec Spec) ([]graph.Element, graph.Element, error) {
	switch spec.AudioCodec {
	case wfdparam.AudioFormatAAC, wfdparam.AudioFormatAC3:
		return buildCompressedAudioBranch(bin, spec)
	case wfdparam.AudioFormatLPCM:
		return buildLPCMAudioBranch(bin, spec)
	default:
		return nil, nil, fmt.Errorf("unsupported audio codec %v", spec.AudioCodec)
	}
}

// buildCompressedAudioBranch: capture -> caps{S16LE, freq, channels} ->
// encoder(compliance=-2, tolerance=4e8ns, bitrate=128000, rate-control=2)
// -> queue.
func buildCompressedAudioBranch(bin graph.Bin, spec Spec) ([]graph.Element, graph.Element, error) {
	var elems []graph.Element

	src, err := makeElement(bin, &elems, "pulsesrc", "asrc0")
	if err != nil {
		return nil, nil, err
	}
	if err := src.SetProperty("device", spec.AudioDevice); err != nil {
		return nil, nil, err
	}
	if err := src.SetProperty("latency-time", spec.AudioLatencyUS); err != nil {
		return nil, nil, err
	}
	if err := src.SetProperty("buffer-time", spec.AudioBufferUS); err != nil {
		return nil, nil, err
	}
	if err := src.SetProperty("do-timestamp", spec.AudioDoTimestamp); err != nil {
		return nil, nil, err
	}

	caps, err := makeElement(bin, &elems, "capsfilter", "acaps0")
	if err != nil {
		return nil, nil, err
	}
	if err := caps.SetProperty("format", "S16LE"); err != nil {
		return nil, nil, err
	}
	if err := caps.SetProperty("rate", spec.AudioFreq); err != nil {
		return nil, nil, err
	}
	if err := caps.SetProperty("channels", spec.AudioChannels); err != nil {
		return nil, nil, err
	}

	encFactory := spec.AudioEncoderAACName
	if spec.AudioCodec == wfdparam.AudioFormatAC3 {
		encFactory = spec.AudioEncoderAC3Name
	}
	if encFactory == "" {
		if spec.AudioCodec == wfdparam.AudioFormatAC3 {
			encFactory = "avenc_ac3"
		} else {
			encFactory = "avenc_aac"
		}
	}

	enc, err := makeElement(bin, &elems, encFactory, "aenc0")
	if err != nil {
		return nil, nil, err
	}
	for k, v := range map[string]any{
		"compliance":    -2,
		"tolerance":     400000000,
		"bitrate":       128000,
		"rate-control":  2,
	} {
		if err := enc.SetProperty(k, v); err != nil {
			return nil, nil, err
		}
	}

	queue, err := makeElement(bin, &elems, "queue", "aqueue0")
	if err != nil {
		return nil, nil, err
	}

	if err := chain(bin, src, caps, enc, queue); err != nil {
		return nil, nil, err
	}

	return elems, queue, nil
}

// buildLPCMAudioBranch: capture(blocksize=1920) -> capssetter(x-lpcm) ->
// caps{S16BE, 48000, 2} -> queue.
func buildLPCMAudioBranch(bin graph.Bin, spec Spec) ([]graph.Element, graph.Element, error) {
	var elems []graph.Element

	src, err := makeElement(bin, &elems, "pulsesrc", "asrc0")
	if err != nil {
		return nil, nil, err
	}
	if err := src.SetProperty("device", spec.AudioDevice); err != nil {
		return nil, nil, err
	}
	if err := src.SetProperty("blocksize", 1920); err != nil {
		return nil, nil, err
	}

	setter, err := makeElement(bin, &elems, "capssetter", "alpcmsetter0")
	if err != nil {
		return nil, nil, err
	}
	if err := setter.SetProperty("caps", "audio/x-lpcm"); err != nil {
		return nil, nil, err
	}

	caps, err := makeElement(bin, &elems, "capsfilter", "acaps0")
	if err != nil {
		return nil, nil, err
	}
	if err := caps.SetProperty("format", "S16BE"); err != nil {
		return nil, nil, err
	}
	if err := caps.SetProperty("rate", 48000); err != nil {
		return nil, nil, err
	}
	if err := caps.SetProperty("channels", 2); err != nil {
		return nil, nil, err
	}

	queue, err := makeElement(bin, &elems, "queue", "aqueue0")
	if err != nil {
		return nil, nil, err
	}

	if err := chain(bin, src, setter, caps, queue); err != nil {
		return nil, nil, err
	}

	return elems, queue, nil
}
