package wfdparam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func u16(v uint16) *uint16 { return &v }

func fullMessage() *Message {
	trigger := TriggerSetup
	return &Message{
		AudioCodecs: []AudioCodec{
			{Format: AudioFormatAAC, Modes: 0x00000002, Latency: 0x00},
			{Format: AudioFormatLPCM, Modes: 0x00000003, Latency: 0x05},
		},
		VideoFormats: &VideoFormats{
			NativeFamily:     ResolutionFamilyCEA,
			NativeIndex:      6,
			Profiles:         H264ProfileBaseline,
			Levels:           H264Level31,
			CEASupport:       0x00000040,
			VESASupport:      0,
			HHSupport:        0,
			Latency:          0,
			MinSliceSize:     0,
			SliceEncParams:   0,
			FrameRateControl: 0,
			MaxHRes:          u16(1280),
			MaxVRes:          u16(720),
		},
		ContentProtection: &ContentProtection{Version: HDCP20, TCPPort: 554},
		DisplayEDID: &DisplayEDID{
			Supported:  true,
			BlockCount: 1,
			Payload:    make([]byte, 128),
		},
		TriggerMethod: &trigger,
		PresentationURL: &PresentationURL{
			URL0: "rtsp://192.0.2.1/wfd1.0/streamid=0",
		},
		ClientRTPPorts: &ClientRTPPorts{
			Profile: "RTP/AVP/UDP;unicast",
			Port0:   19000,
			Port1:   0,
			Mode:    RTPPortModePlay,
		},
		AVFormatChangeTiming: &AVFormatChangeTiming{PTS: 1, DTS: 2},
		Standby:              true,
		IDRRequest:           true,
	}
}

// TestRoundTrip verifies parse(emit(m)) == m for every field the codec
// recognizes.
func TestRoundTrip(t *testing.T) {
	m := fullMessage()
	out, err := Parse(EmitFull(m))
	require.NoError(t, err)
	require.Equal(t, m, out)
}

func TestProbeBody(t *testing.T) {
	body := EmitNames(ProbeFieldNames())
	require.Equal(t, "wfd_audio_codecs\r\n"+
		"wfd_video_formats\r\n"+
		"wfd_client_rtp_ports\r\n"+
		"wfd_display_edid\r\n"+
		"wfd_content_protection\r\n", string(body))
}

func TestNegotiationScenario(t *testing.T) {
	// Scenario 4 from the spec: M4 body fields for a resolved negotiation.
	trig := TriggerMethod("")
	_ = trig

	m := &Message{
		AudioCodecs: []AudioCodec{{Format: AudioFormatAAC, Modes: 0x00000002, Latency: 0x00}},
		ClientRTPPorts: &ClientRTPPorts{
			Profile: "RTP/AVP/UDP;unicast",
			Port0:   19000,
			Port1:   0,
			Mode:    RTPPortModePlay,
		},
		PresentationURL: &PresentationURL{URL0: "rtsp://192.0.2.1/wfd1.0/streamid=0"},
	}

	out := string(EmitFull(m))
	require.Contains(t, out, "wfd_audio_codecs: AAC 00000002 00\r\n")
	require.Contains(t, out, "wfd_client_rtp_ports: RTP/AVP/UDP;unicast 19000 0 mode=play\r\n")
	require.Contains(t, out, "wfd_presentation_URL: rtsp://192.0.2.1/wfd1.0/streamid=0 none\r\n")
}

func TestMalformedHeader(t *testing.T) {
	_, err := Parse([]byte(":no key\r\n"))
	require.Error(t, err)
}

func TestUnknownKeysIgnored(t *testing.T) {
	m, err := Parse([]byte("wfd_nonexistent: foo\r\nwfd_standby\r\n"))
	require.NoError(t, err)
	require.True(t, m.Standby)
}

func TestEDIDLenientNibbleDecode(t *testing.T) {
	// 'z' is outside 0-9a-fA-F and should decode as 0.
	m, err := Parse([]byte("wfd_display_edid: 0001 zz" + hexPad(126*2) + "\r\n"))
	require.NoError(t, err)
	require.NotNil(t, m.DisplayEDID)
	require.Equal(t, byte(0), m.DisplayEDID.Payload[0])
}

func hexPad(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = '0'
	}
	return string(out)
}
