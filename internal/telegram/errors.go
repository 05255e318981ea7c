package telegram

import (
	"errors"
	"fmt"
	"net"
)

// ErrNotConfigured is returned by every call when no bot token is set.
// Callers treat it as "feature disabled" rather than a failure.
var ErrNotConfigured = errors.New("telegram: bot token not configured")

// TransportError reports that the Bot API could not be reached or that its
// response could not be understood (network failure, timeout, non-JSON body).
type TransportError struct {
	Method string
	Status int // HTTP status when a response was received, 0 otherwise
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("telegram: %s: transport (http %d): %v", e.Method, e.Status, e.Err)
	}
	return fmt.Sprintf("telegram: %s: transport: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the underlying failure was a deadline.
func (e *TransportError) Timeout() bool {
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// LogicalError is a response the Bot API delivered with "ok": false.
type LogicalError struct {
	Method      string
	Code        int
	Description string
}

func (e *LogicalError) Error() string {
	return fmt.Sprintf("telegram: %s: %d %s", e.Method, e.Code, e.Description)
}

// IsTransport reports whether err is a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsLogical reports whether err is a *LogicalError.
func IsLogical(err error) bool {
	var le *LogicalError
	return errors.As(err, &le)
}

// outcome maps an error onto the metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case IsLogical(err):
		return "logical_error"
	default:
		return "transport_error"
	}
}
