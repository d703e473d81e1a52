package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/eegscreen/internal/app"
	"github.com/okian/eegscreen/internal/domain/signal"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// kindError ties a failure to the operation that saw it and to a sentinel
// kind callers can match with errors.Is.
type kindError struct {
	op   string
	kind error
	err  error
}

func (e *kindError) Error() string {
	if e.err == nil {
		return e.op + ": " + e.kind.Error()
	}
	return e.op + ": " + e.err.Error()
}

func (e *kindError) Unwrap() []error {
	if e.err == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.err}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &kindError{op: op, kind: kind, err: err}
}

// NewKind reports kind for op without an underlying cause.
func NewKind(op string, kind error) error {
	return &kindError{op: op, kind: kind}
}

// statusFor maps an error to its HTTP status and JSON error code.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge),
		errors.Is(err, ErrPayloadTooLarge),
		errors.Is(err, service.ErrTooManySamples):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, signal.ErrInvalidSample),
		errors.Is(err, signal.ErrNoSamples):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, service.ErrPoolClosed):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
