// Package wfdconfig holds the source server's configuration surface
// (spec.md §6) and loads it from environment variables, following the
// getEnv/getEnvInt/getEnvBool helper pattern of plexTuner's internal/config.
package wfdconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-wfd/wfdsource/pipeline"
	"github.com/go-wfd/wfdsource/wfdparam"
)

// Config is the full configuration surface for one wfdsourced process.
type Config struct {
	HostAddress string
	ListenPort  int

	VideoSrcVariant pipeline.VideoSrcVariant
	AudioDevice     string

	AudioLatencyTimeUS int
	AudioBufferTimeUS  int
	AudioDoTimestamp   bool

	MTUSize int

	VideoEncoderName    string
	AudioEncoderAACName string
	AudioEncoderAC3Name string

	DumpTS bool

	NegotiatedResolutionFamily wfdparam.ResolutionFamily
	AudioCodec                 wfdparam.AudioFormat

	VideoResolutionSupportedCEA  uint32
	VideoResolutionSupportedVESA uint32
	VideoResolutionSupportedHH   uint32

	VideoNativeFamily wfdparam.ResolutionFamily
	VideoNativeIndex  uint8

	RTPPortLow, RTPPortHigh int
}

// Load reads a Config from environment variables, applying defaults.
func Load() *Config {
	c := &Config{
		HostAddress:         getEnv("WFD_HOST_ADDRESS", "0.0.0.0"),
		ListenPort:          getEnvInt("WFD_LISTEN_PORT", 7236),
		VideoSrcVariant:     pipeline.VideoSrcVariant(getEnv("WFD_VIDEO_SRC_VARIANT", string(pipeline.VideoSrcXCapture))),
		AudioDevice:         getEnv("WFD_AUDIO_DEVICE", "default"),
		AudioLatencyTimeUS:  getEnvInt("WFD_AUDIO_LATENCY_TIME", 20000),
		AudioBufferTimeUS:   getEnvInt("WFD_AUDIO_BUFFER_TIME", 40000),
		AudioDoTimestamp:    getEnvBool("WFD_AUDIO_DO_TIMESTAMP", true),
		MTUSize:             getEnvInt("WFD_MTU_SIZE", 1400),
		VideoEncoderName:    getEnv("WFD_VIDEO_ENCODER_NAME", "x264enc"),
		AudioEncoderAACName: getEnv("WFD_AUDIO_ENCODER_AAC_NAME", "avenc_aac"),
		AudioEncoderAC3Name: getEnv("WFD_AUDIO_ENCODER_AC3_NAME", "avenc_ac3"),
		DumpTS:              getEnvBool("WFD_DUMP_TS", false),

		NegotiatedResolutionFamily: wfdparam.ResolutionFamilyCEA,
		AudioCodec:                 wfdparam.AudioFormatAAC,

		VideoResolutionSupportedCEA:  getEnvUint32Hex("WFD_VIDEO_RESOLUTION_CEA", 0x00000001),
		VideoResolutionSupportedVESA: getEnvUint32Hex("WFD_VIDEO_RESOLUTION_VESA", 0),
		VideoResolutionSupportedHH:   getEnvUint32Hex("WFD_VIDEO_RESOLUTION_HH", 0),

		VideoNativeFamily: wfdparam.ResolutionFamilyCEA,
		VideoNativeIndex:  0,

		RTPPortLow:  getEnvInt("WFD_RTP_PORT_LOW", 19000),
		RTPPortHigh: getEnvInt("WFD_RTP_PORT_HIGH", 19999),
	}
	return c
}

// Validate rejects configurations that cannot produce a working session
// (supplemented beyond the distilled spec: see SPEC_FULL.md §11).
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HostAddress) == "" {
		return fmt.Errorf("wfdconfig: host address must not be empty")
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("wfdconfig: listen port %d out of range", c.ListenPort)
	}
	if c.MTUSize <= 0 {
		return fmt.Errorf("wfdconfig: mtu_size must be positive, got %d", c.MTUSize)
	}
	if c.RTPPortLow <= 0 || c.RTPPortHigh <= c.RTPPortLow {
		return fmt.Errorf("wfdconfig: invalid RTP port range [%d, %d]", c.RTPPortLow, c.RTPPortHigh)
	}
	switch c.VideoSrcVariant {
	case pipeline.VideoSrcXCapture, pipeline.VideoSrcXVCapture, pipeline.VideoSrcCamera,
		pipeline.VideoSrcVideoTest, pipeline.VideoSrcWayland, pipeline.VideoSrcFileDemux:
	default:
		return fmt.Errorf("wfdconfig: unrecognized video_src_variant %q", c.VideoSrcVariant)
	}
	switch c.AudioCodec {
	case wfdparam.AudioFormatLPCM, wfdparam.AudioFormatAAC, wfdparam.AudioFormatAC3:
	default:
		return fmt.Errorf("wfdconfig: unrecognized audio codec %v", c.AudioCodec)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return defaultVal
}

func getEnvUint32Hex(key string, defaultVal uint32) uint32 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return defaultVal
	}
	return uint32(n)
}
