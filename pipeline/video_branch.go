package pipeline

import (
	"fmt"

	"github.com/go-wfd/wfdsource/pipeline/graph"
)

// buildVideoBranch builds the video sub-bin per spec.md §4.4 step 2 and
// returns its constituent elements plus the element whose output feeds
// the muxer (the trailing queue).
func buildVideoBranch(bin graph.Bin, spec Spec) ([]graph.Element, graph.Element, error) {
	switch spec.VideoVariant {
	case VideoSrcXCapture:
		return buildXCaptureBranch(bin, spec)
	case VideoSrcXVCapture:
		return buildXVCaptureBranch(bin, spec)
	case VideoSrcCamera:
		return buildCameraBranch(bin, spec)
	case VideoSrcVideoTest:
		return buildVideoTestBranch(bin, spec)
	case VideoSrcWayland:
		return buildWaylandBranch(bin, spec)
	default:
		return nil, nil, fmt.Errorf("unsupported video_src_variant %q", spec.VideoVariant)
	}
}

func makeElement(bin graph.Bin, elems *[]graph.Element, factory, name string) (graph.Element, error) {
	el, err := bin.MakeElement(factory, name)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", name, factory, err)
	}
	*elems = append(*elems, el)
	return el, nil
}

func chain(bin graph.Bin, els ...graph.Element) error {
	for i := 0; i+1 < len(els); i++ {
		if err := bin.Link(els[i], els[i+1]); err != nil {
			return fmt.Errorf("link %s->%s: %w", els[i].Name(), els[i+1].Name(), err)
		}
	}
	return nil
}

func videoCaps(el graph.Element, spec Spec, format string) error {
	if err := el.SetProperty("width", spec.Width); err != nil {
		return err
	}
	if err := el.SetProperty("height", spec.Height); err != nil {
		return err
	}
	if err := el.SetProperty("framerate", spec.FrameRate); err != nil {
		return err
	}
	if format != "" {
		if err := el.SetProperty("format", format); err != nil {
			return err
		}
	}
	return nil
}

// buildXCaptureBranch: screen-capture -> videoscale -> videoconvert ->
// caps -> encoder -> caps{h264 baseline} -> h264-parse -> queue.
func buildXCaptureBranch(bin graph.Bin, spec Spec) ([]graph.Element, graph.Element, error) {
	var elems []graph.Element

	src, err := makeElement(bin, &elems, "ximagesrc", "vsrc0")
	if err != nil {
		return nil, nil, err
	}
	scale, err := makeElement(bin, &elems, "videoscale", "vscale0")
	if err != nil {
		return nil, nil, err
	}
	convert, err := makeElement(bin, &elems, "videoconvert", "vconvert0")
	if err != nil {
		return nil, nil, err
	}
	caps, err := makeElement(bin, &elems, "capsfilter", "vcaps0")
	if err != nil {
		return nil, nil, err
	}
	if err := videoCaps(caps, spec, ""); err != nil {
		return nil, nil, err
	}
	enc, err := makeElement(bin, &elems, elemOrDefault(spec.VideoEncoderName, "x264enc"), "venc0")
	if err != nil {
		return nil, nil, err
	}
	h264caps, err := makeElement(bin, &elems, "capsfilter", "vh264caps0")
	if err != nil {
		return nil, nil, err
	}
	if err := h264caps.SetProperty("profile", "baseline"); err != nil {
		return nil, nil, err
	}
	parse, err := makeElement(bin, &elems, "h264parse", "vparse0")
	if err != nil {
		return nil, nil, err
	}
	queue, err := makeElement(bin, &elems, "queue", "vqueue0")
	if err != nil {
		return nil, nil, err
	}

	if err := chain(bin, src, scale, convert, caps, enc, h264caps, parse, queue); err != nil {
		return nil, nil, err
	}

	return elems, queue, nil
}

// buildXVCaptureBranch: xv-screen -> caps{SN12} -> encoder (append-dci,
// idr-period, skip-inbuf) -> h264-parse -> queue.
func buildXVCaptureBranch(bin graph.Bin, spec Spec) ([]graph.Element, graph.Element, error) {
	var elems []graph.Element

	src, err := makeElement(bin, &elems, "xvimagesrc", "vsrc0")
	if err != nil {
		return nil, nil, err
	}
	caps, err := makeElement(bin, &elems, "capsfilter", "vcaps0")
	if err != nil {
		return nil, nil, err
	}
	if err := videoCaps(caps, spec, "SN12"); err != nil {
		return nil, nil, err
	}
	enc, err := makeElement(bin, &elems, elemOrDefault(spec.VideoEncoderName, "x264enc"), "venc0")
	if err != nil {
		return nil, nil, err
	}
	for k, v := range map[string]any{"append-dci": 1, "idr-period": 120, "skip-inbuf": 5} {
		if err := enc.SetProperty(k, v); err != nil {
			return nil, nil, err
		}
	}
	parse, err := makeElement(bin, &elems, "h264parse", "vparse0")
	if err != nil {
		return nil, nil, err
	}
	queue, err := makeElement(bin, &elems, "queue", "vqueue0")
	if err != nil {
		return nil, nil, err
	}

	if err := chain(bin, src, caps, enc, parse, queue); err != nil {
		return nil, nil, err
	}

	return elems, queue, nil
}

// buildCameraBranch: camera -> caps{SN12} -> encoder -> h264-parse -> queue.
func buildCameraBranch(bin graph.Bin, spec Spec) ([]graph.Element, graph.Element, error) {
	var elems []graph.Element

	src, err := makeElement(bin, &elems, "camerasrc", "vsrc0")
	if err != nil {
		return nil, nil, err
	}
	caps, err := makeElement(bin, &elems, "capsfilter", "vcaps0")
	if err != nil {
		return nil, nil, err
	}
	if err := videoCaps(caps, spec, "SN12"); err != nil {
		return nil, nil, err
	}
	enc, err := makeElement(bin, &elems, elemOrDefault(spec.VideoEncoderName, "x264enc"), "venc0")
	if err != nil {
		return nil, nil, err
	}
	parse, err := makeElement(bin, &elems, "h264parse", "vparse0")
	if err != nil {
		return nil, nil, err
	}
	queue, err := makeElement(bin, &elems, "queue", "vqueue0")
	if err != nil {
		return nil, nil, err
	}

	if err := chain(bin, src, caps, enc, parse, queue); err != nil {
		return nil, nil, err
	}

	return elems, queue, nil
}

// buildVideoTestBranch: test-pattern -> caps{I420} -> convert ->
// caps{SN12} -> encoder -> h264-parse -> queue.
func buildVideoTestBranch(bin graph.Bin, spec Spec) ([]graph.Element, graph.Element, error) {
	var elems []graph.Element

	src, err := makeElement(bin, &elems, "videotestsrc", "vsrc0")
	if err != nil {
		return nil, nil, err
	}
	caps1, err := makeElement(bin, &elems, "capsfilter", "vcaps0")
	if err != nil {
		return nil, nil, err
	}
	if err := videoCaps(caps1, spec, "I420"); err != nil {
		return nil, nil, err
	}
	convert, err := makeElement(bin, &elems, "videoconvert", "vconvert0")
	if err != nil {
		return nil, nil, err
	}
	caps2, err := makeElement(bin, &elems, "capsfilter", "vcaps1")
	if err != nil {
		return nil, nil, err
	}
	if err := videoCaps(caps2, spec, "SN12"); err != nil {
		return nil, nil, err
	}
	enc, err := makeElement(bin, &elems, elemOrDefault(spec.VideoEncoderName, "x264enc"), "venc0")
	if err != nil {
		return nil, nil, err
	}
	parse, err := makeElement(bin, &elems, "h264parse", "vparse0")
	if err != nil {
		return nil, nil, err
	}
	queue, err := makeElement(bin, &elems, "queue", "vqueue0")
	if err != nil {
		return nil, nil, err
	}

	if err := chain(bin, src, caps1, convert, caps2, enc, parse, queue); err != nil {
		return nil, nil, err
	}

	return elems, queue, nil
}

// buildWaylandBranch: wayland-surface -> caps{SN12} -> encoder -> h264-parse -> queue.
func buildWaylandBranch(bin graph.Bin, spec Spec) ([]graph.Element, graph.Element, error) {
	var elems []graph.Element

	src, err := makeElement(bin, &elems, "waylandsrc", "vsrc0")
	if err != nil {
		return nil, nil, err
	}
	caps, err := makeElement(bin, &elems, "capsfilter", "vcaps0")
	if err != nil {
		return nil, nil, err
	}
	if err := videoCaps(caps, spec, "SN12"); err != nil {
		return nil, nil, err
	}
	enc, err := makeElement(bin, &elems, elemOrDefault(spec.VideoEncoderName, "x264enc"), "venc0")
	if err != nil {
		return nil, nil, err
	}
	parse, err := makeElement(bin, &elems, "h264parse", "vparse0")
	if err != nil {
		return nil, nil, err
	}
	queue, err := makeElement(bin, &elems, "queue", "vqueue0")
	if err != nil {
		return nil, nil, err
	}

	if err := chain(bin, src, caps, enc, parse, queue); err != nil {
		return nil, nil, err
	}

	return elems, queue, nil
}

func elemOrDefault(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
