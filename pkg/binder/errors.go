package binder

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrTransport indicates the HTTP round trip failed.
	ErrTransport = errors.New("transport failure")

	// ErrDecode indicates a response body could not be decoded into the
	// operation's return type.
	ErrDecode = errors.New("decode failure")

	// ErrMissingArgument indicates a required parameter was not bound.
	ErrMissingArgument = errors.New("missing argument")

	// ErrUnknownArgument indicates an argument naming no declared parameter.
	ErrUnknownArgument = errors.New("unknown argument")
)

// TransportError wraps a failed round trip: a connection-level error, or a
// response the binder treats as failure (status >= 400). It is propagated to
// the caller unchanged; the binder never retries.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Cause      error
}

// Error returns a human-readable error message.
func (e *TransportError) Error() string {
	msg := fmt.Sprintf("transport failure: %s %s", e.Method, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *TransportError) Unwrap() error { return e.Cause }

// Is reports whether target matches this error type.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DecodeError wraps a response-body decode failure. The partially decoded
// value is discarded entirely.
type DecodeError struct {
	Cause error
}

// Error returns a human-readable error message.
func (e *DecodeError) Error() string {
	return "decode failure: " + e.Cause.Error()
}

// Unwrap returns the underlying cause for error chaining.
func (e *DecodeError) Unwrap() error { return e.Cause }

// Is reports whether target matches this error type.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// MissingArgumentError is raised before any network activity when a required
// parameter has no bound value.
type MissingArgumentError struct {
	Parameter string
}

// Error returns a human-readable error message.
func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing argument for required parameter %q", e.Parameter)
}

// Is reports whether target matches this error type.
func (e *MissingArgumentError) Is(target error) bool { return target == ErrMissingArgument }

// UnknownArgumentError is raised before any network activity when a bound
// argument matches no declared parameter.
type UnknownArgumentError struct {
	Argument string
}

// Error returns a human-readable error message.
func (e *UnknownArgumentError) Error() string {
	return fmt.Sprintf("argument %q matches no declared parameter", e.Argument)
}

// Is reports whether target matches this error type.
func (e *UnknownArgumentError) Is(target error) bool { return target == ErrUnknownArgument }
