// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// ErrorKind is the tagged classification of a gateway error.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindEncodingPrecondition: malformed input to the codec, link, or
	// traversal. Fatal to the caller; never retried.
	KindEncodingPrecondition
	// KindTransport: connection failure or non-2xx status. Retryable.
	KindTransport
	// KindTimeout: the deadline on a remote call expired. Retryable.
	KindTimeout
	// KindDecode: the store answered with a body of the wrong shape.
	KindDecode
	// KindPartialWrite: a link failed after some of its triples were
	// written. Retry the whole link to converge.
	KindPartialWrite
)

func (k ErrorKind) String() string {
	switch k {
	case KindEncodingPrecondition:
		return "encoding_precondition"
	case KindTransport:
		return "transport_failure"
	case KindTimeout:
		return "timeout"
	case KindDecode:
		return "decode_failure"
	case KindPartialWrite:
		return "partial_write"
	default:
		return "unknown"
	}
}

// PartialWriteError reports a link that stopped after Written of Total
// triples. The graph may hold the edge without all endpoint attributes
// until the link is retried. Err is the failure of the next write.
type PartialWriteError struct {
	Written int
	Total   int
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("link partially written (%d of %d triples): %v", e.Written, e.Total, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// KindOf classifies err. A PartialWriteError wins over the code of its cause.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var pw *PartialWriteError
	if stderrors.As(err, &pw) {
		return KindPartialWrite
	}
	switch tmerr.CodeOf(err) {
	case tmerr.CodeGraphNodeEncodeInvalid, tmerr.CodeGraphNodeDecodeInvalid,
		tmerr.CodeGraphTraversalInvalid, tmerr.CodeGraphLinkInvalid:
		return KindEncodingPrecondition
	case tmerr.CodeGraphTransportFailure:
		return KindTransport
	case tmerr.CodeGraphTimeout:
		return KindTimeout
	case tmerr.CodeGraphDecodeFailure:
		return KindDecode
	default:
		return KindUnknown
	}
}

// IsGatewayError reports whether err came from talking to the graph store.
func IsGatewayError(err error) bool {
	switch KindOf(err) {
	case KindTransport, KindTimeout, KindDecode, KindPartialWrite:
		return true
	default:
		return false
	}
}

// Retryable reports whether repeating the failed call can succeed. Writes
// are idempotent and queries read-only, so every transport-level failure
// qualifies; a malformed response does not.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindTransport, KindTimeout, KindPartialWrite:
		return true
	default:
		return false
	}
}

// TransportError codes a failed round trip as a timeout or a transport
// failure. Backends call it on every error returned by their client.
func TransportError(err error, op string, fields ...tmerr.Attr) error {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return tmerr.Wrap(err, tmerr.CodeGraphTimeout, op, fields...)
	}
	return tmerr.Wrap(err, tmerr.CodeGraphTransportFailure, op, fields...)
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

func invalidLink(format string, args ...any) error {
	return tmerr.Errorf(tmerr.CodeGraphLinkInvalid, format, args...)
}
