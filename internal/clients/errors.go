// Package clients defines the shared error taxonomy for external data
// adapters. Every adapter call returns either normalized data or an *Error
// whose Kind the orchestrator matches on explicitly.
package clients

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind partitions adapter failures the orchestrator cares about.
type ErrorKind int

const (
	// KindUpstream covers non-2xx responses, malformed payloads, and
	// transport failures. The call is not retried.
	KindUpstream ErrorKind = iota
	// KindNoData marks an otherwise-successful call with an empty result
	// set — "nothing to show", distinct from "couldn't ask".
	KindNoData
	// KindTimeout marks a bounded wait that expired. Handled the same as
	// KindUpstream but kept distinct for logging.
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoData:
		return "no_data"
	case KindTimeout:
		return "timeout"
	default:
		return "upstream"
	}
}

// Error is a typed adapter failure.
type Error struct {
	Kind     ErrorKind
	Status   int
	Endpoint string
	Message  string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status: %d, endpoint: %s)", e.Kind, e.Message, e.Status, e.Endpoint)
	}
	return fmt.Sprintf("%s: %s (endpoint: %s)", e.Kind, e.Message, e.Endpoint)
}

// Upstream builds a KindUpstream error.
func Upstream(status int, endpoint, message string) *Error {
	return &Error{Kind: KindUpstream, Status: status, Endpoint: endpoint, Message: message}
}

// NoData builds a KindNoData error.
func NoData(endpoint, message string) *Error {
	return &Error{Kind: KindNoData, Endpoint: endpoint, Message: message}
}

// WrapTransport converts a transport-level failure into a typed Error,
// mapping deadline expiry onto KindTimeout.
func WrapTransport(err error, endpoint string) *Error {
	kind := KindUpstream
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Endpoint: endpoint, Message: err.Error()}
}

// IsNoData reports whether err is a KindNoData adapter error.
func IsNoData(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindNoData
}

// AsError extracts the typed adapter error, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
