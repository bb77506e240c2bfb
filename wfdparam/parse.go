package wfdparam

import (
	"strconv"
	"strings"

	"github.com/go-wfd/wfdsource/wfderrors"
)

// Parse splits buf on CR/LF and populates a Message from the recognized
// wfd_* keys it finds. Unknown keys are ignored. A line that cannot be
// split into "key" or "key: value" at all reports ErrMalformedHeader;
// every field-level ambiguity below that is silently elided (the field is
// simply left absent) to tolerate a sink that gets a sub-token wrong.
func Parse(buf []byte) (*Message, error) {
	msg := &Message{}

	text := strings.ReplaceAll(string(buf), "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		k, value, hasValue := splitKeyValue(line)
		if k == "" {
			return nil, wfderrors.ErrMalformedHeader
		}

		applyField(msg, key(k), value, hasValue)
	}

	return msg, nil
}

// splitKeyValue splits "key: value" on the first colon. A line with no
// colon is a bare key (used by flag fields and by the M3 probe body).
func splitKeyValue(line string) (k, value string, hasValue bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return strings.TrimSpace(line), "", false
	}

	k = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	return k, value, true
}

func applyField(msg *Message, k key, value string, hasValue bool) {
	switch k {
	case keyAudioCodecs:
		if hasValue {
			msg.AudioCodecs = parseAudioCodecs(value)
		}
	case keyVideoFormats:
		if hasValue {
			msg.VideoFormats = parseVideoFormats(value)
		}
	case keyContentProtection:
		if hasValue {
			msg.ContentProtection = parseContentProtection(value)
		}
	case keyDisplayEDID:
		if hasValue {
			msg.DisplayEDID = parseDisplayEDID(value)
		}
	case keyCoupledSink:
		if hasValue {
			v := value
			msg.CoupledSink = &v
		}
	case keyTriggerMethod:
		if hasValue {
			t := TriggerMethod(strings.TrimSpace(value))
			msg.TriggerMethod = &t
		}
	case keyPresentationURL:
		if hasValue {
			msg.PresentationURL = parsePresentationURL(value)
		}
	case keyClientRTPPorts:
		if hasValue {
			msg.ClientRTPPorts = parseClientRTPPorts(value)
		}
	case keyRoute:
		if hasValue {
			v := value
			msg.Route = &v
		}
	case keyI2C:
		if hasValue {
			v := value
			msg.I2C = &v
		}
	case keyAVFormatChangeTiming:
		if hasValue {
			msg.AVFormatChangeTiming = parseAVFormatChangeTiming(value)
		}
	case keyPreferredDisplayMode:
		if hasValue {
			v := value
			msg.PreferredDisplayMode = &v
		}
	case keyStandbyResumeCapab:
		if hasValue {
			v := value
			msg.StandbyResumeCapability = &v
		}
	case keyStandby:
		msg.Standby = true
	case keyConnectorType:
		if hasValue {
			v := value
			msg.ConnectorType = &v
		}
	case keyIDRRequest:
		msg.IDRRequest = true
	}
}

func hexTok(tok string) (uint64, bool) {
	v, err := strconv.ParseUint(tok, 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func decTok(tok string) (int, bool) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseAudioCodecs(value string) []AudioCodec {
	var out []AudioCodec
	for _, entry := range strings.Split(value, ",") {
		toks := strings.Fields(entry)
		if len(toks) != 3 {
			continue
		}

		var fmtv AudioFormat
		switch strings.ToUpper(toks[0]) {
		case "LPCM":
			fmtv = AudioFormatLPCM
		case "AAC":
			fmtv = AudioFormatAAC
		case "AC3":
			fmtv = AudioFormatAC3
		default:
			continue
		}

		modes, ok := hexTok(toks[1])
		if !ok {
			continue
		}

		latency, ok := hexTok(toks[2])
		if !ok {
			continue
		}

		out = append(out, AudioCodec{Format: fmtv, Modes: uint32(modes), Latency: uint8(latency)})
	}
	return out
}

func parseVideoFormats(value string) *VideoFormats {
	toks := strings.Fields(value)
	if len(toks) != 13 {
		return nil
	}

	native, ok := hexTok(toks[0])
	if !ok {
		return nil
	}
	vf := &VideoFormats{
		NativeFamily: ResolutionFamily((native >> 5) & 0x7),
		NativeIndex:  uint8(native & 0x1f),
	}

	if v, ok := hexTok(toks[1]); ok {
		vf.PreferredDisplayMode = uint8(v)
	}
	if v, ok := hexTok(toks[2]); ok {
		vf.Profiles = H264Profile(v)
	}
	if v, ok := hexTok(toks[3]); ok {
		vf.Levels = H264Level(v)
	}
	if v, ok := hexTok(toks[4]); ok {
		vf.CEASupport = uint32(v)
	}
	if v, ok := hexTok(toks[5]); ok {
		vf.VESASupport = uint32(v)
	}
	if v, ok := hexTok(toks[6]); ok {
		vf.HHSupport = uint32(v)
	}
	if v, ok := hexTok(toks[7]); ok {
		vf.Latency = uint8(v)
	}
	if v, ok := hexTok(toks[8]); ok {
		vf.MinSliceSize = uint16(v)
	}
	if v, ok := hexTok(toks[9]); ok {
		vf.SliceEncParams = uint16(v)
	}
	if v, ok := hexTok(toks[10]); ok {
		vf.FrameRateControl = uint8(v)
	}
	if toks[11] != "none" {
		if v, ok := hexTok(toks[11]); ok {
			v16 := uint16(v)
			vf.MaxHRes = &v16
		}
	}
	if toks[12] != "none" {
		if v, ok := hexTok(toks[12]); ok {
			v16 := uint16(v)
			vf.MaxVRes = &v16
		}
	}

	return vf
}

func parseContentProtection(value string) *ContentProtection {
	if strings.TrimSpace(value) == "none" {
		return &ContentProtection{Version: HDCPNone}
	}

	toks := strings.Fields(value)
	if len(toks) != 2 {
		return nil
	}

	cp := &ContentProtection{}
	switch toks[0] {
	case "HDCP2.0":
		cp.Version = HDCP20
	case "HDCP2.1":
		cp.Version = HDCP21
	default:
		return nil
	}

	portStr, ok := strings.CutPrefix(toks[1], "port=")
	if !ok {
		return nil
	}
	port, ok := decTok(portStr)
	if !ok {
		return nil
	}
	cp.TCPPort = uint16(port)

	return cp
}

func parseDisplayEDID(value string) *DisplayEDID {
	if strings.TrimSpace(value) == "none" {
		return &DisplayEDID{Supported: false}
	}

	toks := strings.Fields(value)
	if len(toks) != 2 {
		return nil
	}

	blockCount, ok := hexTok(toks[0])
	if !ok {
		return nil
	}
	if blockCount < 1 || blockCount > 256 {
		return nil
	}

	payload := decodeEDIDHex(toks[1], int(blockCount)*128)

	return &DisplayEDID{
		Supported:  true,
		BlockCount: int(blockCount),
		Payload:    payload,
	}
}

func parsePresentationURL(value string) *PresentationURL {
	toks := strings.Fields(value)
	if len(toks) != 2 {
		return nil
	}

	p := &PresentationURL{}
	if toks[0] != "none" {
		p.URL0 = toks[0]
	}
	if toks[1] != "none" {
		p.URL1 = toks[1]
	}
	return p
}

func parseClientRTPPorts(value string) *ClientRTPPorts {
	toks := strings.Fields(value)
	if len(toks) != 4 {
		return nil
	}

	port0, ok := decTok(toks[1])
	if !ok {
		return nil
	}
	port1, ok := decTok(toks[2])
	if !ok {
		return nil
	}

	return &ClientRTPPorts{
		Profile: toks[0],
		Port0:   port0,
		Port1:   port1,
		Mode:    RTPPortMode(toks[3]),
	}
}

func parseAVFormatChangeTiming(value string) *AVFormatChangeTiming {
	toks := strings.Fields(value)
	if len(toks) != 2 {
		return nil
	}

	pts, ok := hexTok(toks[0])
	if !ok {
		return nil
	}
	dts, ok := hexTok(toks[1])
	if !ok {
		return nil
	}

	return &AVFormatChangeTiming{PTS: pts, DTS: dts}
}
