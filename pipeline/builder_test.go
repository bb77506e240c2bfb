package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-wfd/wfdsource/pipeline/graph"
	"github.com/go-wfd/wfdsource/pipeline/graph/graphfake"
	"github.com/go-wfd/wfdsource/wfdparam"
)

func testSpec() Spec {
	return Spec{
		VideoVariant:     VideoSrcVideoTest,
		AudioDevice:      "default",
		AudioCodec:       wfdparam.AudioFormatAAC,
		AudioFreq:        48000,
		AudioChannels:    2,
		AudioLatencyUS:   20000,
		AudioBufferUS:    40000,
		AudioDoTimestamp: true,
		Width:            1280,
		Height:           720,
		FrameRate:        30,
		MTU:              1400,
	}
}

func TestBuildConnectsVideoAudioMuxPayloader(t *testing.T) {
	rt := graphfake.New()
	b := &Builder{Runtime: rt}

	p, err := b.Build(context.Background(), "sess0", testSpec())
	require.NoError(t, err)
	require.NotNil(t, p.Muxer)
	require.NotNil(t, p.MuxerQueue)
	require.NotNil(t, p.Payloader)
	require.NotEmpty(t, p.VideoBranchElements)
	require.NotEmpty(t, p.AudioBranchElements)

	bin := rt.Bins[0]
	els := bin.Elements()
	_, ok := els["pay0"]
	require.True(t, ok)
	mux, ok := els["mux0"]
	require.True(t, ok)
	mode, ok := mux.Property("mode")
	require.True(t, ok)
	require.Equal(t, "wfd", mode)

	pay := els["pay0"]
	pt, ok := pay.Property("pt")
	require.True(t, ok)
	require.Equal(t, RTPPayloadType, pt)
}

func TestBuildFailsOnMissingFactory(t *testing.T) {
	rt := &failingRuntime{inner: graphfake.New(), failFactory: "videotestsrc"}
	b := &Builder{Runtime: rt}

	_, err := b.Build(context.Background(), "sess1", testSpec())
	require.Error(t, err)
}

func TestBuildLPCMAudioBranch(t *testing.T) {
	rt := graphfake.New()
	b := &Builder{Runtime: rt}

	spec := testSpec()
	spec.AudioCodec = wfdparam.AudioFormatLPCM

	p, err := b.Build(context.Background(), "sess2", spec)
	require.NoError(t, err)
	require.NotEmpty(t, p.AudioBranchElements)

	bin := rt.Bins[0]
	els := bin.Elements()
	setter, ok := els["alpcmsetter0"]
	require.True(t, ok)
	capsVal, ok := setter.Property("caps")
	require.True(t, ok)
	require.Equal(t, "audio/x-lpcm", capsVal)
}

// failingRuntime wraps a graphfake.Runtime and forces the named factory to
// fail on every bin it creates, exercising Build's cleanup path.
type failingRuntime struct {
	inner       *graphfake.Runtime
	failFactory string
}

func (r *failingRuntime) NewBin(name string) (graph.Bin, error) {
	bin, err := r.inner.NewBin(name)
	if err != nil {
		return nil, err
	}
	bin.(*graphfake.Bin).FailFactory = r.failFactory
	return bin, nil
}
