package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Metadata describes the exchange that produced a Result. Status is 0
// when no response was received.
type Metadata struct {
	Status   int
	Headers  http.Header
	Duration time.Duration
}

// Result is the outcome of one call: an output of type T, or an Error
// carrying either an application error of type E or a transport failure.
type Result[T, E any] struct {
	value    T
	err      *Error[E]
	metadata Metadata
}

// Success returns a successful result.
func Success[T, E any](value T, md Metadata) Result[T, E] {
	return Result[T, E]{value: value, metadata: md}
}

// Failure returns a failed result.
func Failure[T, E any](err *Error[E], md Metadata) Result[T, E] {
	return Result[T, E]{err: err, metadata: md}
}

// Ok returns the output and whether the call succeeded.
func (r Result[T, E]) Ok() (T, bool) {
	return r.value, r.err == nil
}

// Err returns the failure, or nil on success.
func (r Result[T, E]) Err() *Error[E] {
	return r.err
}

// IsOk reports whether the call succeeded.
func (r Result[T, E]) IsOk() bool { return r.err == nil }

// Unwrap returns the output, or the failure as an error.
func (r Result[T, E]) Unwrap() (T, error) {
	if r.err != nil {
		return r.value, r.err
	}
	return r.value, nil
}

// UnwrapOr returns the output, or fallback if the call failed.
func (r Result[T, E]) UnwrapOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// UnwrapErr returns the application error and true when the call failed
// with one.
func (r Result[T, E]) UnwrapErr() (E, bool) {
	if r.err == nil {
		var zero E
		return zero, false
	}
	return r.err.Application()
}

// Metadata returns the exchange metadata.
func (r Result[T, E]) Metadata() Metadata { return r.metadata }

// Status returns the HTTP status, 0 if no response was received.
func (r Result[T, E]) Status() int { return r.metadata.Status }

// Map transforms the output of a successful result.
func Map[T, U, E any](r Result[T, E], fn func(T) U) Result[U, E] {
	if r.err != nil {
		return Failure[U](r.err, r.metadata)
	}
	return Success[U, E](fn(r.value), r.metadata)
}

// MapErr transforms the application error of a failed result. Transport
// failures pass through unchanged.
func MapErr[T, E, F any](r Result[T, E], fn func(E) F) Result[T, F] {
	if r.err == nil {
		return Success[T, F](r.value, r.metadata)
	}
	out := &Error[F]{status: r.err.status, transport: r.err.transport}
	if app, ok := r.err.Application(); ok {
		mapped := fn(app)
		out.app = &mapped
	}
	return Failure[T](out, r.metadata)
}

// Error is the failure of a call. It holds exactly one of an application
// error, decoded from a non-2xx response, or a *TransportError.
type Error[E any] struct {
	status    int
	app       *E
	transport *TransportError
}

// ApplicationError returns an Error carrying the typed error app.
func ApplicationError[E any](status int, app E) *Error[E] {
	return &Error[E]{status: status, app: &app}
}

// TransportFailure returns an Error carrying a transport failure.
func TransportFailure[E any](status int, body []byte, cause error) *Error[E] {
	return &Error[E]{status: status, transport: &TransportError{Status: status, Body: body, Err: cause}}
}

// Application returns the typed application error, if that is what
// this is.
func (e *Error[E]) Application() (E, bool) {
	if e.app == nil {
		var zero E
		return zero, false
	}
	return *e.app, true
}

// Transport returns the transport failure, or nil for an application
// error.
func (e *Error[E]) Transport() *TransportError {
	return e.transport
}

// Status returns the HTTP status, 0 if no response was received.
func (e *Error[E]) Status() int { return e.status }

func (e *Error[E]) Error() string {
	if e.transport != nil {
		return e.transport.Error()
	}
	body, err := json.Marshal(e.app)
	if err != nil {
		return fmt.Sprintf("application error (status %d)", e.status)
	}
	return fmt.Sprintf("application error (status %d): %s", e.status, body)
}

// Unwrap returns the transport failure so errors.As can reach it.
func (e *Error[E]) Unwrap() error {
	if e.transport == nil {
		return nil
	}
	return e.transport
}

// TransportError is a failure that is not part of the API contract:
// the network failed, or the server replied with something that does not
// decode as the route's output or error type.
type TransportError struct {
	// Status is 0 when no response was received.
	Status int

	// Body is the raw response body, if any.
	Body []byte

	Err error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("transport error: status %d", e.Status)
	}
	return fmt.Sprintf("transport error: status %d: %v", e.Status, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
