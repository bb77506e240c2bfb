package wfdparam

import (
	"fmt"
	"strings"
)

// EmitFull renders msg in the full-value form: one "key: value\r\n" line
// per present field. Used for M4 (source's SET_PARAMETER commit) and for
// the sink's M3 response.
func EmitFull(msg *Message) []byte {
	var b strings.Builder

	if len(msg.AudioCodecs) != 0 {
		b.WriteString(string(keyAudioCodecs) + ": " + emitAudioCodecs(msg.AudioCodecs) + "\r\n")
	}
	if msg.VideoFormats != nil {
		b.WriteString(string(keyVideoFormats) + ": " + emitVideoFormats(msg.VideoFormats) + "\r\n")
	}
	if msg.ContentProtection != nil {
		b.WriteString(string(keyContentProtection) + ": " + emitContentProtection(msg.ContentProtection) + "\r\n")
	}
	if msg.DisplayEDID != nil {
		b.WriteString(string(keyDisplayEDID) + ": " + emitDisplayEDID(msg.DisplayEDID) + "\r\n")
	}
	if msg.CoupledSink != nil {
		b.WriteString(string(keyCoupledSink) + ": " + *msg.CoupledSink + "\r\n")
	}
	if msg.TriggerMethod != nil {
		b.WriteString(string(keyTriggerMethod) + ": " + string(*msg.TriggerMethod) + "\r\n")
	}
	if msg.PresentationURL != nil {
		b.WriteString(string(keyPresentationURL) + ": " + emitPresentationURL(msg.PresentationURL) + "\r\n")
	}
	if msg.ClientRTPPorts != nil {
		b.WriteString(string(keyClientRTPPorts) + ": " + emitClientRTPPorts(msg.ClientRTPPorts) + "\r\n")
	}
	if msg.Route != nil {
		b.WriteString(string(keyRoute) + ": " + *msg.Route + "\r\n")
	}
	if msg.I2C != nil {
		b.WriteString(string(keyI2C) + ": " + *msg.I2C + "\r\n")
	}
	if msg.AVFormatChangeTiming != nil {
		b.WriteString(string(keyAVFormatChangeTiming) + ": " + emitAVFormatChangeTiming(msg.AVFormatChangeTiming) + "\r\n")
	}
	if msg.PreferredDisplayMode != nil {
		b.WriteString(string(keyPreferredDisplayMode) + ": " + *msg.PreferredDisplayMode + "\r\n")
	}
	if msg.StandbyResumeCapability != nil {
		b.WriteString(string(keyStandbyResumeCapab) + ": " + *msg.StandbyResumeCapability + "\r\n")
	}
	if msg.Standby {
		b.WriteString(string(keyStandby) + "\r\n")
	}
	if msg.ConnectorType != nil {
		b.WriteString(string(keyConnectorType) + ": " + *msg.ConnectorType + "\r\n")
	}
	if msg.IDRRequest {
		b.WriteString(string(keyIDRRequest) + "\r\n")
	}

	return []byte(b.String())
}

// EmitNames renders the parameter-names-only form used by the source's M3
// probe request body: just the key followed by CR/LF, for each name in
// names.
func EmitNames(names []string) []byte {
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n + "\r\n")
	}
	return []byte(b.String())
}

func emitAudioCodecs(codecs []AudioCodec) string {
	parts := make([]string, len(codecs))
	for i, c := range codecs {
		parts[i] = fmt.Sprintf("%s %08x %02x", c.Format, c.Modes, c.Latency)
	}
	return strings.Join(parts, ", ")
}

func emitVideoFormats(vf *VideoFormats) string {
	native := (uint8(vf.NativeFamily) << 5) | (vf.NativeIndex & 0x1f)

	maxH := "none"
	if vf.MaxHRes != nil {
		maxH = fmt.Sprintf("%04x", *vf.MaxHRes)
	}
	maxV := "none"
	if vf.MaxVRes != nil {
		maxV = fmt.Sprintf("%04x", *vf.MaxVRes)
	}

	return fmt.Sprintf("%02x %02x %02x %02x %08x %08x %08x %02x %04x %04x %02x %s %s",
		native, vf.PreferredDisplayMode, uint8(vf.Profiles), uint8(vf.Levels),
		vf.CEASupport, vf.VESASupport, vf.HHSupport, vf.Latency,
		vf.MinSliceSize, vf.SliceEncParams, vf.FrameRateControl, maxH, maxV)
}

func emitContentProtection(cp *ContentProtection) string {
	switch cp.Version {
	case HDCP20:
		return fmt.Sprintf("HDCP2.0 port=%d", cp.TCPPort)
	case HDCP21:
		return fmt.Sprintf("HDCP2.1 port=%d", cp.TCPPort)
	}
	return "none"
}

func emitDisplayEDID(e *DisplayEDID) string {
	if !e.Supported {
		return "none"
	}
	return fmt.Sprintf("%04x %s", e.BlockCount, encodeEDIDHex(e.Payload))
}

func emitPresentationURL(p *PresentationURL) string {
	url0 := p.URL0
	if url0 == "" {
		url0 = "none"
	}
	url1 := p.URL1
	if url1 == "" {
		url1 = "none"
	}
	return url0 + " " + url1
}

func emitClientRTPPorts(p *ClientRTPPorts) string {
	return fmt.Sprintf("%s %d %d %s", p.Profile, p.Port0, p.Port1, p.Mode)
}

func emitAVFormatChangeTiming(t *AVFormatChangeTiming) string {
	return fmt.Sprintf("%010x %010x", t.PTS, t.DTS)
}
