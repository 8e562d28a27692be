package common

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind tags why a refresh or boot step failed.
type Kind string

const (
	KindNone               Kind = ""
	KindNetworkUnreachable Kind = "network_unreachable"
	KindTimeout            Kind = "timeout"
	KindHTTPError          Kind = "http_error"
	KindMalformedResponse  Kind = "malformed_response"
	KindNotConnected       Kind = "not_connected"
	KindStorageUnavailable Kind = "storage_unavailable"
	// KindConfiguration marks a missing key or backend. Retrying cannot fix it.
	KindConfiguration      Kind = "configuration"
)

// Error is a failure tagged with its Kind. Status carries the HTTP status
// code for KindHTTPError.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindHTTPError && e.Err != nil:
		return fmt.Sprintf("%s(%d): %v", e.Kind, e.Status, e.Err)
	case e.Kind == KindHTTPError:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with the given kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// HTTPStatusError reports a non-success HTTP status.
func HTTPStatusError(status int) *Error {
	return &Error{Kind: KindHTTPError, Status: status}
}

// KindOf extracts the failure kind of err. Untagged errors are classified
// from their type and message.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return Classify(err)
}

// Classify maps a raw transport error onto a failure kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if HasAny(err.Error(), "timeout", "deadline exceeded") {
		return KindTimeout
	}
	return KindNetworkUnreachable
}

// Tag wraps err with its classified kind unless it is already tagged.
func Tag(err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	return NewError(Classify(err), err)
}
