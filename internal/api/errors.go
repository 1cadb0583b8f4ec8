// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes client errors for handling.
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	// ErrKindConnection: the request never produced an HTTP response.
	ErrKindConnection
	// ErrKindTimeout: the bounded request deadline elapsed.
	ErrKindTimeout
	// ErrKindBackend: the backend answered and reported failure.
	ErrKindBackend
	// ErrKindInvalidResponse: the backend answered with a body the
	// client could not make sense of.
	ErrKindInvalidResponse
)

// String returns a short name for the kind, used in user-facing text.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindConnection:
		return "connection"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindBackend:
		return "backend"
	case ErrKindInvalidResponse:
		return "invalid response"
	default:
		return "unknown"
	}
}

// ClientError is the error type returned by every Client method.
type ClientError struct {
	Kind    ErrorKind
	Op      string // the operation that failed, e.g. "send message"
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is makes sentinel comparisons work: two ClientErrors match when
// their kinds match.
func (e *ClientError) Is(target error) bool {
	var other *ClientError
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// Sentinel errors for easy checking with errors.Is.
var (
	ErrConnection = &ClientError{Kind: ErrKindConnection, Message: "cannot reach the chat server"}
	ErrTimeout    = &ClientError{Kind: ErrKindTimeout, Message: "request timed out"}
)

// IsTransport reports whether err represents a transport-level failure
// (connection refused, timeout) as opposed to a backend-reported one.
// The controller degrades transport failures into an in-chat notice
// rather than a blocking alert.
func IsTransport(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind == ErrKindConnection || ce.Kind == ErrKindTimeout
	}
	return false
}

// wrapTransport converts an http.Client error into a ClientError with
// the right kind.
func wrapTransport(op string, err error) *ClientError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ClientError{Kind: ErrKindTimeout, Op: op, Message: "request timed out", Cause: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &ClientError{Kind: ErrKindTimeout, Op: op, Message: "request timed out", Cause: err}
	default:
		return &ClientError{Kind: ErrKindConnection, Op: op, Message: "cannot reach the chat server", Cause: err}
	}
}

// backendError builds the error for a success:false or non-2xx reply.
func backendError(op, message string) *ClientError {
	if message == "" {
		message = "the server reported a failure"
	}
	return &ClientError{Kind: ErrKindBackend, Op: op, Message: message}
}

// invalidResponse builds the error for an undecodable reply body.
func invalidResponse(op string, cause error) *ClientError {
	return &ClientError{Kind: ErrKindInvalidResponse, Op: op, Message: "malformed response from server", Cause: cause}
}
