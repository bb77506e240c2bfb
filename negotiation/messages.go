package negotiation

import (
	"fmt"

	"github.com/go-wfd/wfdsource/capability"
	"github.com/go-wfd/wfdsource/wfdparam"
	"github.com/go-wfd/wfdsource/wfdrtsp"
)

// WfdRequireHeader is the capability negotiation marker RTSP requires
// throughout the handshake (spec.md §4.3, §6).
const WfdRequireHeader = "org.wfa.wfd1.0"

// PresentationPath is the fixed presentation URI path (spec.md §6).
const PresentationPath = "/wfd1.0/streamid=0"

// BuildM1 builds the initial `OPTIONS * RTSP/1.0` request.
func BuildM1() *wfdrtsp.Request {
	h := wfdrtsp.Header{}
	h.Set("Require", WfdRequireHeader)
	h.Set("CSeq", "1")
	return &wfdrtsp.Request{Method: wfdrtsp.OPTIONS, URL: "*", Header: h}
}

// BuildM2Reply answers a sink-initiated OPTIONS (M2) with the source's
// method list plus the wfd requirement, echoing the request's User-Agent.
func BuildM2Reply(req *wfdrtsp.Request, cseq string) *wfdrtsp.Response {
	h := wfdrtsp.Header{}
	h.Set("CSeq", cseq)
	h.Set("Public", "OPTIONS, PAUSE, PLAY, SETUP, GET_PARAMETER, SET_PARAMETER, TEARDOWN, "+WfdRequireHeader)
	if ua, ok := req.Header.Get("User-Agent"); ok {
		h.Set("User-Agent", ua)
	}
	return &wfdrtsp.Response{StatusCode: wfdrtsp.StatusOK, Header: h}
}

// BuildM3 builds the `GET_PARAMETER` probe request asking the sink to
// disclose its capability fields.
func BuildM3(host, cseq string) *wfdrtsp.Request {
	h := wfdrtsp.Header{}
	h.Set("CSeq", cseq)
	h.Set("Content-Type", "text/parameters")
	body := wfdparam.EmitNames(wfdparam.ProbeFieldNames())
	return &wfdrtsp.Request{
		Method:  wfdrtsp.GET_PARAMETER,
		URL:     fmt.Sprintf("rtsp://%s/wfd1.0", host),
		Header:  h,
		Content: body,
	}
}

// BuildM4 builds the `SET_PARAMETER` request carrying the negotiated
// configuration back to the sink.
func BuildM4(host, cseq string, cfg *capability.NegotiatedConfig) *wfdrtsp.Request {
	msg := &wfdparam.Message{
		AudioCodecs: []wfdparam.AudioCodec{{
			Format:  cfg.AudioCodec,
			Modes:   audioModesFor(cfg),
			Latency: cfg.AudioLatency,
		}},
		PresentationURL: &wfdparam.PresentationURL{
			URL0: fmt.Sprintf("rtsp://%s%s", host, PresentationPath),
		},
		ClientRTPPorts: &wfdparam.ClientRTPPorts{
			Profile: "RTP/AVP/UDP;unicast",
			Port0:   cfg.RTPPort0,
			Port1:   cfg.RTPPort1,
			Mode:    wfdparam.RTPPortModePlay,
		},
	}

	h := wfdrtsp.Header{}
	h.Set("CSeq", cseq)
	h.Set("Content-Type", "text/parameters")
	return &wfdrtsp.Request{
		Method:  wfdrtsp.SET_PARAMETER,
		URL:     fmt.Sprintf("rtsp://%s/wfd1.0", host),
		Header:  h,
		Content: wfdparam.EmitFull(msg),
	}
}

// BuildM5Trigger builds the SET_PARAMETER carrying a single
// wfd_trigger_method field, used to move the sink through SETUP, PAUSE,
// PLAY and TEARDOWN.
func BuildM5Trigger(host, cseq string, method wfdparam.TriggerMethod) *wfdrtsp.Request {
	msg := &wfdparam.Message{TriggerMethod: &method}

	h := wfdrtsp.Header{}
	h.Set("CSeq", cseq)
	h.Set("Content-Type", "text/parameters")
	return &wfdrtsp.Request{
		Method:  wfdrtsp.SET_PARAMETER,
		URL:     fmt.Sprintf("rtsp://%s/wfd1.0", host),
		Header:  h,
		Content: wfdparam.EmitFull(msg),
	}
}

// BuildKeepalive builds the M16 liveness probe: an empty-body
// GET_PARAMETER against the literal keepalive URI.
func BuildKeepalive(cseq string) *wfdrtsp.Request {
	h := wfdrtsp.Header{}
	h.Set("CSeq", cseq)
	return &wfdrtsp.Request{
		Method: wfdrtsp.GET_PARAMETER,
		URL:    "rtsp://localhost/wfd1.0",
		Header: h,
	}
}

// audioModesFor re-derives the modes bitmap the negotiated codec expects
// on the wire: for LPCM a single frequency bit, for AAC/AC3 a stereo
// channel bit (spec.md §4.2 hard-codes stereo).
func audioModesFor(cfg *capability.NegotiatedConfig) uint32 {
	if cfg.AudioCodec == wfdparam.AudioFormatLPCM {
		if cfg.AudioFreq == 48000 {
			return 1 << 1
		}
		return 1 << 0
	}
	return 1 << 1 // 2-channel bit, fixed per intersectAudioFreq/channels
}
