// Command wfdsourced is the WFD source server: it listens for sink RTSP
// connections, negotiates capabilities, builds the media pipeline and
// drives one session per sink (spec.md §4.7).
package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-wfd/wfdsource/addrpool"
	"github.com/go-wfd/wfdsource/capability"
	"github.com/go-wfd/wfdsource/pipeline"
	"github.com/go-wfd/wfdsource/pipeline/graph"
	"github.com/go-wfd/wfdsource/pipeline/graph/graphfake"
	"github.com/go-wfd/wfdsource/session"
	"github.com/go-wfd/wfdsource/wfdconfig"
	"github.com/go-wfd/wfdsource/wfdparam"
	"github.com/go-wfd/wfdsource/wfdrtsp"
)

func main() {
	cfg := wfdconfig.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// The media runtime is an external collaborator (spec.md §1): no
	// GStreamer binding exists in this module's dependency graph, so the
	// in-memory fake stands in at this seam. A production deployment
	// plugs a real graph.Runtime in here.
	runtime := graph.Runtime(graphfake.New())

	addr := net.JoinHostPort(cfg.HostAddress, strconv.Itoa(cfg.ListenPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("listen failed")
	}
	log.Info().Str("addr", addr).Msg("wfdsourced listening")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutting down")
		cancel()
		ln.Close() //nolint:errcheck
	}()

	sourceCap := sourceCapabilityFromConfig(cfg)
	builder := &pipeline.Builder{Runtime: runtime}
	pool := &addrpool.Pool{Low: cfg.RTPPortLow, High: cfg.RTPPortHigh}

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Error().Err(err).Msg("accept failed")
				continue
			}
		}

		go handleConn(ctx, conn, cfg, sourceCap, builder, pool)
	}
}

func handleConn(ctx context.Context, conn net.Conn, cfg *wfdconfig.Config, sourceCap capability.Set, builder *pipeline.Builder, pool *addrpool.Pool) {
	defer conn.Close()

	rconn := wfdrtsp.NewConn(conn)
	src := session.Source{
		HostAddress:  cfg.HostAddress,
		Capability:   sourceCap,
		PipelineSpec: pipelineSpecFromConfig(cfg),
		Builder:      builder,
		AddrPool:     pool,
	}

	remote := conn.RemoteAddr().String()
	sess := session.New(rconn, src, session.Callbacks{
		OnKeepaliveFail: func() {
			log.Warn().Str("remote_addr", remote).Msg("keepalive failed")
		},
		OnPlayingDone: func() {
			log.Info().Str("remote_addr", remote).Msg("playing")
		},
		OnDirectStreamEnd: func() {
			log.Info().Str("remote_addr", remote).Msg("direct stream ended")
		},
	})
	sess.Logger = log.Logger.With().Str("session_id", sess.ID).Str("remote_addr", remote).Logger()

	if err := sess.Run(ctx); err != nil {
		sess.Logger.Error().Err(err).Msg("session ended")
	}
}

func sourceCapabilityFromConfig(cfg *wfdconfig.Config) capability.Set {
	return capability.Set{
		Audio: capability.Audio{Codecs: sourceAudioCodecs(cfg)},
		Video: capability.Video{
			NativeFamily: cfg.VideoNativeFamily,
			NativeIndex:  cfg.VideoNativeIndex,
			CEA:          cfg.VideoResolutionSupportedCEA,
			VESA:         cfg.VideoResolutionSupportedVESA,
			HH:           cfg.VideoResolutionSupportedHH,
		},
	}
}

// sourceAudioCodecs offers the configured codec at both supported stereo
// frequencies for LPCM, or a single fixed-mode entry for AAC/AC3: the
// source advertises what it can encode, the sink's M3 reply picks from it.
func sourceAudioCodecs(cfg *wfdconfig.Config) []wfdparam.AudioCodec {
	switch cfg.AudioCodec {
	case wfdparam.AudioFormatLPCM:
		return []wfdparam.AudioCodec{{Format: wfdparam.AudioFormatLPCM, Modes: 0b11, Latency: 0}}
	case wfdparam.AudioFormatAC3:
		return []wfdparam.AudioCodec{{Format: wfdparam.AudioFormatAC3, Modes: 1 << 1, Latency: 0}}
	default:
		return []wfdparam.AudioCodec{{Format: wfdparam.AudioFormatAAC, Modes: 1 << 1, Latency: 0}}
	}
}

func pipelineSpecFromConfig(cfg *wfdconfig.Config) pipeline.Spec {
	return pipeline.Spec{
		VideoVariant:        cfg.VideoSrcVariant,
		AudioDevice:         cfg.AudioDevice,
		AudioLatencyUS:      cfg.AudioLatencyTimeUS,
		AudioBufferUS:       cfg.AudioBufferTimeUS,
		AudioDoTimestamp:    cfg.AudioDoTimestamp,
		VideoEncoderName:    cfg.VideoEncoderName,
		AudioEncoderAACName: cfg.AudioEncoderAACName,
		AudioEncoderAC3Name: cfg.AudioEncoderAC3Name,
		MTU:                 cfg.MTUSize,
		DumpTS:              cfg.DumpTS,
	}
}

