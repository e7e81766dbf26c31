package rdbuf

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/rdbuf/rdbuf/log"
	gopool "github.com/rdbuf/rdbuf/pkg/pool/go"
	"github.com/rdbuf/rdbuf/transport"
)

// fillState carries the per-operation cancellation protocol state: the
// absolute deadline shared by every partial read of one operation, and
// whether a server-side cancellation was already attempted for it.
type fillState struct {
	deadline  time.Time
	attempted bool
	acked     bool
}

type readResult struct {
	n   int
	err error
}

// fill pulls from the transport into [filled, cap) until missing more
// bytes are buffered. The timeout bounds the whole fill, not each
// partial read. The controller is disarmed on every exit path.
func (r *ReadBuffer) fill(ctx context.Context, missing int, async bool) error {
	if missing > len(r.storage)-r.filled {
		panic("rdbuf: fill window exceeds free buffer space")
	}
	st := &fillState{}
	r.armTimeout(st)
	defer r.tc.Stop()

	for missing > 0 {
		n, err := r.readOnce(ctx, r.storage[r.filled:], st, async)
		if n > 0 {
			// bytes copied before an abort stay valid, never rolled back
			r.filled += n
			missing -= n
			r.countRead(n)
			if missing <= 0 {
				return nil
			}
		}
		if err == nil {
			if n == 0 {
				return r.fatal(&TransportError{Op: "read", Cause: ErrEndOfStream})
			}
			continue
		}
		retry, terr := r.afterReadError(ctx, err, st)
		if !retry {
			return terr
		}
	}
	return nil
}

// readDirect performs one logical transport read into dst, bypassing
// the buffer, with the same cancellation machinery as fill.
func (r *ReadBuffer) readDirect(ctx context.Context, dst []byte, async bool) (int, error) {
	st := &fillState{}
	r.armTimeout(st)
	defer r.tc.Stop()

	for {
		n, err := r.readOnce(ctx, dst, st, async)
		if n > 0 {
			r.flushed += uint64(n)
			r.countRead(n)
			// opportunistic contract: any bytes delivered are a success
			return n, nil
		}
		if err == nil {
			return 0, r.fatal(&TransportError{Op: "read", Cause: ErrEndOfStream})
		}
		retry, terr := r.afterReadError(ctx, err, st)
		if !retry {
			return 0, terr
		}
	}
}

// readOnce issues a single transport read. In cooperative mode the read
// runs on the shared worker pool while the caller waits on completion,
// the timeout countdown and ctx; an abort forces the in-flight read to
// return by expiring the transport deadline, so no two reads ever
// overlap.
func (r *ReadBuffer) readOnce(ctx context.Context, dst []byte, st *fillState, async bool) (int, error) {
	_ = r.tr.SetReadDeadline(st.deadline)
	if !async {
		return r.tr.Read(dst)
	}

	res := make(chan readResult, 1)
	tr := r.tr
	gopool.Submit(func() {
		n, err := tr.Read(dst)
		res <- readResult{n: n, err: err}
	})
	select {
	case rr := <-res:
		return rr.n, rr.err
	case <-ctx.Done():
		rr := r.abortRead(res)
		return rr.n, ctx.Err()
	case <-r.tc.Expired():
		rr := r.abortRead(res)
		if rr.err != nil {
			return rr.n, rr.err
		}
		return rr.n, os.ErrDeadlineExceeded
	}
}

// abortRead unblocks an in-flight worker read and collects its result.
func (r *ReadBuffer) abortRead(res chan readResult) readResult {
	_ = r.tr.SetReadDeadline(time.Now())
	return <-res
}

// afterReadError runs the cooperative cancel/break protocol for a
// failed transport read. retry is true only for the single documented
// timeout-then-cancel-then-retry sequence; every other outcome is
// terminal for the connection.
func (r *ReadBuffer) afterReadError(ctx context.Context, err error, st *fillState) (retry bool, terminal error) {
	if cerr := ctx.Err(); cerr != nil {
		// caller-driven cancellation, never answered with a server-side
		// cancel and never retried
		return false, r.fatal(&CancellationError{Acknowledged: false, Cause: cerr})
	}
	if errors.Is(err, io.EOF) {
		// net.Conn reports a clean peer close as io.EOF
		return false, r.fatal(&TransportError{Op: "read", Cause: ErrEndOfStream})
	}
	if !transport.IsTimeout(err) {
		return false, r.fatal(&TransportError{Op: "read", Cause: err})
	}

	// local read timeout
	if c := r.conn; c != nil && !st.attempted && c.AttemptCancellationEnabled() && !c.CancellationPerformed() {
		st.attempted = true
		log.Debugf("read timed out after %v, attempting server-side cancellation", r.timeout)
		if c.PerformCancellation() {
			st.acked = true
			if !r.tr.BrokenAfterTimeout() {
				if grace := c.CancellationGracePeriod(); grace >= 0 {
					r.rearm(st, grace)
					return true, nil
				}
			}
		}
	}
	return false, r.fatal(r.breakError(err, st))
}

// breakError picks the user-facing condition for a terminal timeout.
func (r *ReadBuffer) breakError(cause error, st *fillState) error {
	userCancel := r.conn != nil && r.conn.UserRequestedCancellation()
	if !userCancel {
		return &TimeoutError{After: r.timeout, Cause: cause}
	}
	if st.acked || r.conn.CancellationPerformed() {
		return &CancellationError{
			Acknowledged: true,
			Cause:        &TimeoutError{After: r.timeout, Cause: cause},
		}
	}
	return &CancellationError{Acknowledged: false, Cause: cause}
}

// fatal escalates err through the connection collaborator, disarming
// the countdown first so the next operation starts clean.
func (r *ReadBuffer) fatal(err error) error {
	r.tc.Stop()
	if r.conn != nil {
		return r.conn.FatalBreak(err)
	}
	return err
}

func (r *ReadBuffer) armTimeout(st *fillState) {
	if r.timeout > 0 {
		st.deadline = time.Now().Add(r.timeout)
		r.tc.Start(r.timeout)
	}
}

// rearm extends an in-progress wait with the cancellation grace period.
// A zero grace clears the bound entirely.
func (r *ReadBuffer) rearm(st *fillState, grace time.Duration) {
	if grace > 0 {
		st.deadline = time.Now().Add(grace)
		if r.tc.Armed() || r.tc.Fired() {
			r.tc.Restart(grace)
		} else {
			r.tc.Start(grace)
		}
		return
	}
	st.deadline = time.Time{}
	r.tc.Stop()
}

func (r *ReadBuffer) countRead(n int) {
	if r.metrics != nil {
		r.metrics.ReportBytesRead(n)
	}
}
