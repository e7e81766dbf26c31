package transport

import (
	"errors"
	"net"
	"os"
	"time"
)

// Transport is the raw byte stream a read buffer pulls from.
//
// Read returning (0, nil) or io.EOF is treated by callers as end of
// stream.
// Deadlines follow net.Conn semantics: a read aborted by an expired
// deadline fails with a timeout error recognizable by IsTimeout.
type Transport interface {
	Read(p []byte) (n int, err error)

	// SetReadDeadline bounds future and in-flight Read calls.
	// The zero time clears the deadline.
	SetReadDeadline(t time.Time) error

	// BrokenAfterTimeout reports whether the stream must not be reused
	// once a read has timed out, even when the timeout was handled.
	// Resolved once at construction, not per call.
	BrokenAfterTimeout() bool

	Close() error
}

// IsTimeout reports whether err comes from an expired read deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
