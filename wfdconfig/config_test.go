package wfdconfig

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-wfd/wfdsource/pipeline"
)

func validConfig() *Config {
	c := Load()
	c.HostAddress = "192.0.2.1"
	return c
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsEmptyHost(t *testing.T) {
	c := validConfig()
	c.HostAddress = "  "
	require.Error(t, c.Validate())
}

func TestValidateRejectsZeroMTU(t *testing.T) {
	c := validConfig()
	c.MTUSize = 0
	require.Error(t, c.Validate())
}

func TestValidateRejectsBadPortRange(t *testing.T) {
	c := validConfig()
	c.RTPPortLow = 20000
	c.RTPPortHigh = 19000
	require.Error(t, c.Validate())
}

func TestValidateRejectsUnknownVideoVariant(t *testing.T) {
	c := validConfig()
	c.VideoSrcVariant = pipeline.VideoSrcVariant("bogus")
	require.Error(t, c.Validate())
}
