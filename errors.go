package rdbuf

import (
	"errors"
	"fmt"
	"time"
)

// ErrEndOfStream reports that the transport returned zero bytes while
// more were required. It is always fatal for the connection.
var ErrEndOfStream = errors.New("unexpected end of stream")

// ErrDisposed is the panic value for any use of a buffer after
// Dispose.
var ErrDisposed = errors.New("rdbuf: use of disposed read buffer")

// TimeoutError is returned when the read deadline expired and the caller
// never requested cancellation. The connection is terminated as a side
// effect: a timed-out stream cannot be trusted.
type TimeoutError struct {
	After time.Duration
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("read timed out after %v", e.After)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// Timeout implements the net.Error convention.
func (e *TimeoutError) Timeout() bool { return true }

// CancellationError is returned when the caller requested cancellation.
// Acknowledged reports whether the server-side cancellation protocol
// completed; the underlying timeout, if any, is kept as Cause.
type CancellationError struct {
	Acknowledged bool
	Cause        error
}

func (e *CancellationError) Error() string {
	if e.Acknowledged {
		return "query cancelled on server request"
	}
	return "query cancellation requested but not confirmed"
}

func (e *CancellationError) Unwrap() error { return e.Cause }

// TransportError wraps any non-timeout failure of the underlying stream.
// Always fatal.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("stream %s failed: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }
