// Package session owns one sink connection end-to-end: it drives the
// M1-M16 RTSP handshake through package negotiation, builds and hot-swaps
// the media pipeline, and aggregates RTP statistics, serializing all of
// it the way gortsplib's ServerSession serializes one client's requests
// (spec.md §4.7, §5).
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/rtcp"
	"github.com/rs/zerolog"

	"github.com/go-wfd/wfdsource/addrpool"
	"github.com/go-wfd/wfdsource/capability"
	"github.com/go-wfd/wfdsource/hotswap"
	"github.com/go-wfd/wfdsource/internal/asyncdispatch"
	"github.com/go-wfd/wfdsource/negotiation"
	"github.com/go-wfd/wfdsource/pipeline"
	"github.com/go-wfd/wfdsource/pipeline/graph"
	"github.com/go-wfd/wfdsource/rtpstats"
	"github.com/go-wfd/wfdsource/wfderrors"
	"github.com/go-wfd/wfdsource/wfdparam"
	"github.com/go-wfd/wfdsource/wfdrtsp"
)

// Timeout is the default session timeout (spec.md §6 "Session defaults"),
// copied into Session.Timeout by New. Run does not apply it: no read
// deadline is set, so a sink that never answers a pending request leaves
// the session blocked in ReadResponse until the connection fails.
const Timeout = 60 * time.Second

// Transport is the minimal RTSP collaborator a Session drives: the
// wfdrtsp.Conn surface, kept as an interface so tests can substitute an
// in-memory pair.
type Transport interface {
	ReadRequest() (*wfdrtsp.Request, error)
	ReadResponse() (*wfdrtsp.Response, error)
	WriteRequest(*wfdrtsp.Request) error
	WriteResponse(*wfdrtsp.Response) error
}

// Callbacks are the observer signals spec.md §4.7 names. Every field is
// optional; a nil callback is simply not invoked.
type Callbacks struct {
	OnOptionsRequestDone     func()
	OnGetParameterRequestDone func()
	OnPlayingDone            func()
	OnKeepaliveFail          func()
	OnDirectStreamEnd        func()
}

// Source is the local capability set and config the session negotiates
// from; Builder and Runtime are used to build and drive the media graph.
type Source struct {
	HostAddress string
	Capability  capability.Set
	PipelineSpec pipeline.Spec
	Builder     *pipeline.Builder

	// AddrPool allocates the local RTP/RTCP port pair the session's RTCP
	// listener binds to. Nil disables the listener (e.g. in tests that
	// don't need real sockets).
	AddrPool *addrpool.Pool
}

// Session is the per-sink state machine, pipeline owner, and stats
// collector described in spec.md §3 and §4.7.
type Session struct {
	ID     string
	Conn   Transport
	Logger zerolog.Logger

	Callbacks Callbacks
	Timeout   time.Duration
	NowFunc   func() time.Time

	source Source

	// session.lock: guards pending-request state and the negotiated config.
	mu         sync.Mutex
	machine    *negotiation.Machine
	cseq       int
	m1Done     bool
	m3Done     bool
	m4Done     bool
	negotiated *capability.NegotiatedConfig

	keepalive *negotiation.Keepalive
	dispatch  *asyncdispatch.Queue
	stats     *rtpstats.Aggregator
	statSrc   *rtpstats.PadSource
	swap      *hotswap.Coordinator
	rtcp      *rtcpListener

	pipeline *pipeline.Pipeline

	teardownOnce sync.Once
}

// New allocates a Session around conn, in StateInit, with a fresh uuid.
func New(conn Transport, src Source, cb Callbacks) *Session {
	id := uuid.NewString()
	return &Session{
		ID:        id,
		Conn:      conn,
		Logger:    zerolog.New(zerolog.NewConsoleWriter()).With().Str("session_id", id).Timestamp().Logger(),
		Callbacks: cb,
		Timeout:   Timeout,
		NowFunc:   time.Now,
		source:    src,
		machine:   negotiation.NewMachine(),
	}
}

func (s *Session) nextCSeq() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cseq++
	return fmt.Sprintf("%d", s.cseq)
}

// Run drives the session to completion: the handshake, then the
// steady-state request loop, until TEARDOWN or a transport error. The
// returned error is nil on a clean TEARDOWN.
func (s *Session) Run(ctx context.Context) error {
	defer s.teardown()

	if err := s.runHandshake(ctx); err != nil {
		return err
	}

	s.startKeepaliveAndStats()

	return s.serve(ctx)
}

// runHandshake drives M1 through Ready (spec.md §4.3): M1 OPTIONS, M3
// capability probe, intersection, M4 negotiated-config push.
func (s *Session) runHandshake(ctx context.Context) error {
	if err := s.sendAdvance(negotiation.StateM1Sent, negotiation.BuildM1()); err != nil {
		return err
	}
	s.m1Done = true
	if _, err := s.Conn.ReadResponse(); err != nil {
		return fmt.Errorf("%w: m1 response: %v", wfderrors.ErrTransportFailure, err)
	}
	s.keepaliveRespondedLocked()
	s.advance(negotiation.StateM2Received)

	m3 := negotiation.BuildM3(s.source.HostAddress, s.nextCSeq())
	if err := s.sendAdvance(negotiation.StateM3Sent, m3); err != nil {
		return err
	}
	m3Res, err := s.Conn.ReadResponse()
	if err != nil {
		return fmt.Errorf("%w: m3 response: %v", wfderrors.ErrTransportFailure, err)
	}
	s.keepaliveRespondedLocked()
	s.advance(negotiation.StateM3Received)
	s.m3Done = true
	if s.Callbacks.OnGetParameterRequestDone != nil {
		s.Callbacks.OnGetParameterRequestDone()
	}

	sinkCaps, err := parseSinkCapabilities(m3Res.Content)
	if err != nil {
		return fmt.Errorf("%w: m3 capability parse: %v", wfderrors.ErrMalformedHeader, err)
	}

	cfg, err := capability.Intersect(s.source.Capability, *sinkCaps)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.negotiated = cfg
	s.mu.Unlock()

	m4 := negotiation.BuildM4(s.source.HostAddress, s.nextCSeq(), cfg)
	if err := s.sendAdvance(negotiation.StateM4Sent, m4); err != nil {
		return err
	}
	if _, err := s.Conn.ReadResponse(); err != nil {
		return fmt.Errorf("%w: m4 response: %v", wfderrors.ErrTransportFailure, err)
	}
	s.keepaliveRespondedLocked()
	s.advance(negotiation.StateM4Received)
	s.m4Done = true

	if err := s.buildPipeline(ctx, cfg); err != nil {
		return err
	}

	s.advance(negotiation.StateReady)

	trigger := negotiation.BuildM5Trigger(s.source.HostAddress, s.nextCSeq(), wfdparam.TriggerSetup)
	if err := s.Conn.WriteRequest(trigger); err != nil {
		return fmt.Errorf("%w: m5 setup trigger: %v", wfderrors.ErrTransportFailure, err)
	}
	if _, err := s.Conn.ReadResponse(); err != nil {
		return fmt.Errorf("%w: m5 response: %v", wfderrors.ErrTransportFailure, err)
	}
	s.keepaliveRespondedLocked()

	return nil
}

func (s *Session) buildPipeline(ctx context.Context, cfg *capability.NegotiatedConfig) error {
	spec := s.source.PipelineSpec
	spec.AudioCodec = cfg.AudioCodec
	spec.AudioFreq = cfg.AudioFreq
	spec.AudioChannels = cfg.AudioChannels
	spec.Width = cfg.Resolution.Width
	spec.Height = cfg.Resolution.Height
	spec.FrameRate = cfg.Resolution.FrameRate

	p, err := s.source.Builder.Build(ctx, s.ID, spec)
	if err != nil {
		return err
	}
	s.pipeline = p
	s.swap = &hotswap.Coordinator{Bin: p.Bin, Dispatch: s.dispatchQueue()}
	s.swap.OnEnd = func() {
		if s.Callbacks.OnDirectStreamEnd != nil {
			s.Callbacks.OnDirectStreamEnd()
		}
	}
	return nil
}

func (s *Session) dispatchQueue() *asyncdispatch.Queue {
	if s.dispatch == nil {
		s.dispatch = &asyncdispatch.Queue{}
		s.dispatch.Initialize()
		s.dispatch.Start()
	}
	return s.dispatch
}

// serve is the steady-state request loop after Ready: SETUP/PLAY/PAUSE/
// TEARDOWN requests from the sink, OPTIONS pings, and M16 keepalive
// response correlation, all serialized on this one goroutine (spec.md §5
// "server-I/O thread... single-threaded cooperative within a session").
func (s *Session) serve(ctx context.Context) error {
	for {
		req, err := s.Conn.ReadRequest()
		if err != nil {
			return fmt.Errorf("%w: %v", wfderrors.ErrTransportFailure, err)
		}
		s.keepaliveRespondedLocked()

		switch req.Method {
		case wfdrtsp.OPTIONS:
			if err := s.Conn.WriteResponse(negotiation.BuildM2Reply(req, s.cseqOf(req))); err != nil {
				return fmt.Errorf("%w: options reply: %v", wfderrors.ErrTransportFailure, err)
			}
			if s.Callbacks.OnOptionsRequestDone != nil {
				s.Callbacks.OnOptionsRequestDone()
			}

		case wfdrtsp.SETUP:
			s.advance(negotiation.StateSetup)
			if err := s.replyOK(req); err != nil {
				return err
			}

		case wfdrtsp.PLAY:
			s.advance(negotiation.StatePlaying)
			if err := s.replyOK(req); err != nil {
				return err
			}
			if s.Callbacks.OnPlayingDone != nil {
				s.Callbacks.OnPlayingDone()
			}

		case wfdrtsp.PAUSE:
			s.advance(negotiation.StatePaused)
			if err := s.replyOK(req); err != nil {
				return err
			}

		case wfdrtsp.TEARDOWN:
			s.advance(negotiation.StateTeardown)
			_ = s.replyOK(req)
			return nil

		case wfdrtsp.GET_PARAMETER:
			// Empty-body GET_PARAMETER is the sink echoing a keepalive probe;
			// a 200 with no content is sufficient (spec.md §6).
			if err := s.replyOK(req); err != nil {
				return err
			}

		default:
			h := wfdrtsp.Header{}
			h.Set("CSeq", s.cseqOf(req))
			if err := s.Conn.WriteResponse(&wfdrtsp.Response{StatusCode: wfdrtsp.StatusNotImplemented, Header: h}); err != nil {
				return fmt.Errorf("%w: %v", wfderrors.ErrTransportFailure, err)
			}
		}
	}
}

func (s *Session) cseqOf(req *wfdrtsp.Request) string {
	if v, ok := req.Header.Get("CSeq"); ok {
		return v
	}
	return "0"
}

func (s *Session) replyOK(req *wfdrtsp.Request) error {
	h := wfdrtsp.Header{}
	h.Set("CSeq", s.cseqOf(req))
	if err := s.Conn.WriteResponse(&wfdrtsp.Response{StatusCode: wfdrtsp.StatusOK, Header: h}); err != nil {
		return fmt.Errorf("%w: %v", wfderrors.ErrTransportFailure, err)
	}
	return nil
}

func (s *Session) sendAdvance(next negotiation.State, req *wfdrtsp.Request) error {
	if err := s.Conn.WriteRequest(req); err != nil {
		return fmt.Errorf("%w: %v", wfderrors.ErrTransportFailure, err)
	}
	s.advance(next)
	return nil
}

func (s *Session) advance(next negotiation.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.Advance(next)
}

func (s *Session) keepaliveRespondedLocked() {
	if s.keepalive != nil {
		s.keepalive.MarkResponded()
	}
}

// startKeepaliveAndStats starts the M16 ticker and the RTP stats
// aggregator once the pipeline is built and Ready (spec.md §4.6, §4.3).
func (s *Session) startKeepaliveAndStats() {
	s.keepalive = &negotiation.Keepalive{
		Send: func() {
			req := negotiation.BuildKeepalive(s.nextCSeq())
			_ = s.Conn.WriteRequest(req)
		},
		OnFail: func() {
			if s.Callbacks.OnKeepaliveFail != nil {
				s.Callbacks.OnKeepaliveFail()
			}
			s.teardown()
		},
	}
	s.keepalive.Initialize()

	if s.pipeline != nil {
		if pad, err := s.pipeline.Bin.GetPad(s.pipeline.Payloader, "src"); err == nil {
			src := &rtpstats.PadSource{}
			src.Attach(pad)
			s.statSrc = src
			s.stats = &rtpstats.Aggregator{Source: src}
			s.stats.Initialize()
		}
	}

	if l, err := startRTCPListener(s.source.AddrPool, s.source.HostAddress, func(rr *rtcp.ReceiverReport, rtt time.Duration) {
		if s.stats != nil {
			s.stats.MergeReceiverReport(rr, rtt)
		}
	}); err != nil {
		s.Logger.Warn().Err(err).Msg("rtcp listener unavailable")
	} else {
		s.rtcp = l
	}
}

// teardown releases the pipeline, timers, locks and connection in a fixed
// order (spec.md §4.7), and is idempotent (spec.md §5).
func (s *Session) teardown() {
	s.teardownOnce.Do(func() {
		if s.pipeline != nil {
			s.pipeline.Bin.SetState(context.Background(), graph.StateNull) //nolint:errcheck
		}
		if s.stats != nil {
			s.stats.Close()
		}
		if s.keepalive != nil {
			s.keepalive.Close()
		}
		if s.dispatch != nil {
			s.dispatch.Close()
		}
		if s.rtcp != nil {
			s.rtcp.close()
		}
	})
}

// Snapshot returns the session's current RTP statistics, or a zero value
// if stats collection hasn't started yet.
func (s *Session) Snapshot() rtpstats.RtpStats {
	if s.stats == nil {
		return rtpstats.RtpStats{}
	}
	return s.stats.Snapshot()
}

// State returns the current negotiation state.
func (s *Session) State() negotiation.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.Current()
}

// parseSinkCapabilities turns the M3 response body into a capability.Set,
// the shape capability.Intersect expects.
func parseSinkCapabilities(content []byte) (*capability.Set, error) {
	msg, err := wfdparam.Parse(content)
	if err != nil {
		return nil, err
	}

	set := &capability.Set{
		Audio:             capability.Audio{Codecs: msg.AudioCodecs},
		RTPPorts:          msg.ClientRTPPorts,
		ContentProtection: msg.ContentProtection,
		DisplayEDID:       msg.DisplayEDID,
	}
	if vf := msg.VideoFormats; vf != nil {
		set.Video = capability.Video{
			NativeFamily: vf.NativeFamily,
			NativeIndex:  vf.NativeIndex,
			Profiles:     vf.Profiles,
			Levels:       vf.Levels,
			CEA:          vf.CEASupport,
			VESA:         vf.VESASupport,
			HH:           vf.HHSupport,
		}
	}
	return set, nil
}
