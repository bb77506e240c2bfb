// Package wfdparam implements the wfd_* parameter-line dialect used on the
// WFD negotiation path in place of SDP: parsing and canonical emission of
// capability/control documents exchanged during M3/M4/M5, plus the EDID
// hex sub-encoding.
package wfdparam

// key is the exact textual key a field serializes under, per the WFD spec.
type key string

// Recognized keys. Unknown keys are ignored on parse (forward-compat).
const (
	keyAudioCodecs           key = "wfd_audio_codecs"
	keyVideoFormats          key = "wfd_video_formats"
	keyContentProtection     key = "wfd_content_protection"
	keyDisplayEDID           key = "wfd_display_edid"
	keyCoupledSink           key = "wfd_coupled_sink"
	keyTriggerMethod         key = "wfd_trigger_method"
	keyPresentationURL       key = "wfd_presentation_URL"
	keyClientRTPPorts        key = "wfd_client_rtp_ports"
	keyRoute                 key = "wfd_route"
	keyI2C                   key = "wfd_I2C"
	keyAVFormatChangeTiming  key = "wfd_av_format_change_timing"
	keyPreferredDisplayMode  key = "wfd_preferred_display_mode"
	keyStandbyResumeCapab    key = "wfd_standby_resume_capability"
	keyStandby               key = "wfd_standby"
	keyConnectorType         key = "wfd_connector_type"
	keyIDRRequest            key = "wfd_idr_request"
)

// Message is a parsed capability/control document: an ordered bag of
// optional fields, each present-or-absent rather than a fixed record.
type Message struct {
	AudioCodecs        []AudioCodec
	VideoFormats       *VideoFormats
	ContentProtection  *ContentProtection
	DisplayEDID        *DisplayEDID
	CoupledSink        *string
	TriggerMethod      *TriggerMethod
	PresentationURL    *PresentationURL
	ClientRTPPorts     *ClientRTPPorts
	Route              *string
	I2C                *string
	AVFormatChangeTiming *AVFormatChangeTiming
	PreferredDisplayMode *string
	StandbyResumeCapability *string
	Standby            bool
	ConnectorType      *string
	IDRRequest         bool
}

// fieldNames is the closed set of parameter names the source can ask a
// sink to disclose in an M3 probe (names-only emitter).
var fieldNames = []key{
	keyAudioCodecs,
	keyVideoFormats,
	keyClientRTPPorts,
	keyDisplayEDID,
	keyContentProtection,
}

// ProbeFieldNames returns the exact set of wfd_* keys the source's M3
// probe asks the sink to disclose, in the canonical order.
func ProbeFieldNames() []string {
	out := make([]string, len(fieldNames))
	for i, k := range fieldNames {
		out[i] = string(k)
	}
	return out
}
