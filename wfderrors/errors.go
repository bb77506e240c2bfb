// Package wfderrors enumerates the error taxonomy of the negotiation
// engine and streaming pipeline, so callers can type-switch on failure
// class rather than parsing error strings.
package wfderrors

import "errors"

// Sentinel errors, matched with errors.Is. Wrap with fmt.Errorf("...: %w", err)
// at the point of detection to preserve context.
var (
	// ErrMalformedHeader means the top-level "key: value" split of a wfd_*
	// parameter line failed. Fatal to the current message only.
	ErrMalformedHeader = errors.New("malformed wfd parameter header")

	// ErrNegotiationFailed means intersecting source and sink capabilities
	// produced an empty set for some required dimension. Fatal to the session.
	ErrNegotiationFailed = errors.New("capability negotiation failed")

	// ErrBuildFailed means element creation or linking in the media graph failed.
	// Fatal to the session.
	ErrBuildFailed = errors.New("pipeline build failed")

	// ErrTypeDetectionFailed means hot-swap discovery found neither a usable
	// source factory nor a demuxer factory for the requested URI. Returned to
	// the direct-streaming caller; the live session continues.
	ErrTypeDetectionFailed = errors.New("type detection failed")

	// ErrTransportFailure means an RTSP send/receive error occurred. Fatal to
	// the session.
	ErrTransportFailure = errors.New("rtsp transport failure")

	// ErrKeepaliveTimeout means an M16 keepalive round trip exceeded its
	// budget. Emits keepalive-fail; the session is torn down by the observer.
	ErrKeepaliveTimeout = errors.New("keepalive timeout")

	// ErrSwapAborted means a hot-swap probe fired while one was already in
	// flight, or a graph precondition was violated. The live pipeline is left
	// intact.
	ErrSwapAborted = errors.New("hot-swap aborted")
)
