package negotiation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-wfd/wfdsource/capability"
	"github.com/go-wfd/wfdsource/wfdparam"
	"github.com/go-wfd/wfdsource/wfdrtsp"
)

func TestBuildM1RequiresWfd(t *testing.T) {
	req := BuildM1()
	require.Equal(t, wfdrtsp.OPTIONS, req.Method)
	require.Equal(t, "*", req.URL)
	v, ok := req.Header.Get("Require")
	require.True(t, ok)
	require.Equal(t, WfdRequireHeader, v)
}

func TestBuildM2ReplyEchoesUserAgent(t *testing.T) {
	req := &wfdrtsp.Request{Method: wfdrtsp.OPTIONS, URL: "*", Header: wfdrtsp.Header{}}
	req.Header.Set("User-Agent", "sink-device/1.0")

	res := BuildM2Reply(req, "2")
	require.Equal(t, wfdrtsp.StatusOK, res.StatusCode)
	ua, ok := res.Header.Get("User-Agent")
	require.True(t, ok)
	require.Equal(t, "sink-device/1.0", ua)
}

func TestBuildM2ReplyPublicHeaderListsFullMethodSet(t *testing.T) {
	req := &wfdrtsp.Request{Method: wfdrtsp.OPTIONS, URL: "*", Header: wfdrtsp.Header{}}

	res := BuildM2Reply(req, "2")
	public, ok := res.Header.Get("Public")
	require.True(t, ok)
	for _, want := range []string{"OPTIONS", "PAUSE", "PLAY", "SETUP", "GET_PARAMETER", "SET_PARAMETER", "TEARDOWN", WfdRequireHeader} {
		require.Contains(t, public, want)
	}
}

func TestBuildM3ProbesExpectedFields(t *testing.T) {
	req := BuildM3("192.0.2.1", "3")
	require.Equal(t, wfdrtsp.GET_PARAMETER, req.Method)
	require.Contains(t, string(req.Content), "wfd_audio_codecs\r\n")
	require.Contains(t, string(req.Content), "wfd_video_formats\r\n")
}

func TestBuildM4CarriesNegotiatedConfig(t *testing.T) {
	cfg := &capability.NegotiatedConfig{
		AudioCodec:   wfdparam.AudioFormatAAC,
		AudioLatency: 0,
		RTPPort0:     19000,
		RTPPort1:     0,
	}
	req := BuildM4("192.0.2.1", "4", cfg)
	require.Contains(t, string(req.Content), "wfd_client_rtp_ports: RTP/AVP/UDP;unicast 19000 0 mode=play\r\n")
	require.Contains(t, string(req.Content), "wfd_presentation_URL: rtsp://192.0.2.1/wfd1.0/streamid=0 none\r\n")
}

func TestBuildM5TriggerSetup(t *testing.T) {
	req := BuildM5Trigger("192.0.2.1", "5", wfdparam.TriggerSetup)
	require.Equal(t, "wfd_trigger_method: SETUP\r\n", string(req.Content))
}

func TestBuildKeepaliveUsesLiteralURI(t *testing.T) {
	req := BuildKeepalive("6")
	require.Equal(t, "rtsp://localhost/wfd1.0", req.URL)
	require.Empty(t, req.Content)
}
