package session

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-wfd/wfdsource/capability"
	"github.com/go-wfd/wfdsource/pipeline"
	"github.com/go-wfd/wfdsource/pipeline/graph/graphfake"
	"github.com/go-wfd/wfdsource/wfdparam"
	"github.com/go-wfd/wfdsource/wfdrtsp"
)

func testSourceCapability() capability.Set {
	return capability.Set{
		Audio: capability.Audio{Codecs: []wfdparam.AudioCodec{
			{Format: wfdparam.AudioFormatAAC, Modes: 1 << 1, Latency: 0},
		}},
		Video: capability.Video{
			NativeFamily: wfdparam.ResolutionFamilyCEA,
			Profiles:     wfdparam.H264ProfileBaseline,
			Levels:       wfdparam.H264Level31,
			CEA:          1 << 5, // bit 5: 1280x720@30
		},
	}
}

func testPipelineSpec() pipeline.Spec {
	return pipeline.Spec{
		VideoVariant: pipeline.VideoSrcVideoTest,
		AudioDevice:  "default",
		MTU:          1400,
	}
}

// sinkScript plays the fixed sink side of the handshake against one end of
// a net.Pipe: reply M2 to M1, advertise one AAC/CEA capability at M3,
// accept M4, accept the M5 SETUP trigger, then issue SETUP/PLAY itself.
func sinkScript(t *testing.T, conn *wfdrtsp.Conn, done chan<- error) {
	t.Helper()
	go func() {
		// M1
		req, err := conn.ReadRequest()
		if err != nil {
			done <- err
			return
		}
		if req.Method != wfdrtsp.OPTIONS {
			done <- err
			return
		}
		cseq, _ := req.Header.Get("CSeq")
		h := wfdrtsp.Header{}
		h.Set("CSeq", cseq)
		if err := conn.WriteResponse(&wfdrtsp.Response{StatusCode: wfdrtsp.StatusOK, Header: h}); err != nil {
			done <- err
			return
		}

		// M3
		req, err = conn.ReadRequest()
		if err != nil {
			done <- err
			return
		}
		cseq, _ = req.Header.Get("CSeq")
		h = wfdrtsp.Header{}
		h.Set("CSeq", cseq)
		body := "wfd_audio_codecs: AAC 00000002 00\r\n" +
			"wfd_video_formats: 00 00 01 01 00000020 00000000 00000000 00 0000 0000 00 none none\r\n" +
			"wfd_client_rtp_ports: RTP/AVP/UDP;unicast 19000 0 mode=play\r\n"
		if err := conn.WriteResponse(&wfdrtsp.Response{StatusCode: wfdrtsp.StatusOK, Header: h, Content: []byte(body)}); err != nil {
			done <- err
			return
		}

		// M4
		req, err = conn.ReadRequest()
		if err != nil {
			done <- err
			return
		}
		cseq, _ = req.Header.Get("CSeq")
		h = wfdrtsp.Header{}
		h.Set("CSeq", cseq)
		if err := conn.WriteResponse(&wfdrtsp.Response{StatusCode: wfdrtsp.StatusOK, Header: h}); err != nil {
			done <- err
			return
		}

		// M5 trigger (SETUP)
		req, err = conn.ReadRequest()
		if err != nil {
			done <- err
			return
		}
		cseq, _ = req.Header.Get("CSeq")
		h = wfdrtsp.Header{}
		h.Set("CSeq", cseq)
		if err := conn.WriteResponse(&wfdrtsp.Response{StatusCode: wfdrtsp.StatusOK, Header: h}); err != nil {
			done <- err
			return
		}

		// Sink-initiated SETUP
		h = wfdrtsp.Header{}
		h.Set("CSeq", "100")
		if err := conn.WriteRequest(&wfdrtsp.Request{Method: wfdrtsp.SETUP, URL: "rtsp://x/wfd1.0/streamid=0", Header: h}); err != nil {
			done <- err
			return
		}
		if _, err := conn.ReadResponse(); err != nil {
			done <- err
			return
		}

		// Sink-initiated PLAY
		h = wfdrtsp.Header{}
		h.Set("CSeq", "101")
		if err := conn.WriteRequest(&wfdrtsp.Request{Method: wfdrtsp.PLAY, URL: "rtsp://x/wfd1.0/streamid=0", Header: h}); err != nil {
			done <- err
			return
		}
		if _, err := conn.ReadResponse(); err != nil {
			done <- err
			return
		}

		// TEARDOWN
		h = wfdrtsp.Header{}
		h.Set("CSeq", "102")
		if err := conn.WriteRequest(&wfdrtsp.Request{Method: wfdrtsp.TEARDOWN, URL: "rtsp://x/wfd1.0/streamid=0", Header: h}); err != nil {
			done <- err
			return
		}
		if _, err := conn.ReadResponse(); err != nil {
			done <- err
			return
		}

		done <- nil
	}()
}

func TestSessionRunsFullHandshakeAndTearsDownCleanly(t *testing.T) {
	sourceConn, sinkConn := net.Pipe()
	defer sourceConn.Close()
	defer sinkConn.Close()

	sc := wfdrtsp.NewConn(sourceConn)
	kc := wfdrtsp.NewConn(sinkConn)

	sinkDone := make(chan error, 1)
	sinkScript(t, kc, sinkDone)

	rt := graphfake.New()
	s := New(sc, Source{
		HostAddress:  "192.0.2.1",
		Capability:   testSourceCapability(),
		PipelineSpec: testPipelineSpec(),
		Builder:      &pipeline.Builder{Runtime: rt},
	}, Callbacks{})

	playingDone := make(chan struct{}, 1)
	s.Callbacks.OnPlayingDone = func() { playingDone <- struct{}{} }

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(context.Background()) }()

	select {
	case <-playingDone:
	case <-time.After(2 * time.Second):
		t.Fatal("playing-done never fired")
	}

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session.Run did not return after TEARDOWN")
	}

	require.NoError(t, <-sinkDone)
	require.Equal(t, "AAC", s.negotiated.AudioCodec.String())
}

func TestSessionSnapshotBeforeStatsIsZeroValue(t *testing.T) {
	sourceConn, _ := net.Pipe()
	defer sourceConn.Close()

	s := New(wfdrtsp.NewConn(sourceConn), Source{}, Callbacks{})
	require.Equal(t, uint64(0), s.Snapshot().LastSentBytes)
}
