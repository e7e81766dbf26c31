package rdbuf

import "time"

// Conn is the connection collaborator that owns fatal-error propagation
// and the out-of-band server-side cancellation request. The buffer never
// decides when to cancel, it only asks.
type Conn interface {

	// AttemptCancellationEnabled reports whether a read timeout should
	// trigger a server-side cancellation attempt.
	AttemptCancellationEnabled() bool

	// CancellationPerformed reports whether a server-side cancellation
	// has already been issued for the current operation.
	CancellationPerformed() bool

	// PerformCancellation issues the out-of-band cancellation request
	// and reports whether it was delivered.
	PerformCancellation() bool

	// CancellationGracePeriod returns how long to keep reading after a
	// delivered cancellation, waiting for the server to wind down.
	// Zero means wait without bound, negative means terminate instead.
	CancellationGracePeriod() time.Duration

	// UserRequestedCancellation reports whether the caller, rather than
	// a local timeout, asked for the current query to be cancelled.
	UserRequestedCancellation() bool

	// FatalBreak marks the connection permanently unusable and returns
	// the wrapped error for propagation.
	FatalBreak(err error) error
}

// Metrics receives observability callbacks. Optional.
type Metrics interface {
	ReportBytesRead(n int)
}
