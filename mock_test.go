package rdbuf

import (
	"os"
	"sync"
	"time"
)

// scriptedTransport serves a fixed sequence of read outcomes. A step
// with err set fails the read; otherwise up to len(p) bytes of the
// step's data are delivered and any remainder stays queued.
type scriptedTransport struct {
	mu       sync.Mutex
	steps    []scriptStep
	broken   bool
	deadline time.Time
	reads    int
	closed   bool
}

type scriptStep struct {
	data []byte
	err  error
}

func timeoutStep() scriptStep {
	return scriptStep{err: os.ErrDeadlineExceeded}
}

func (t *scriptedTransport) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads++
	if len(t.steps) == 0 {
		return 0, nil // end of stream
	}
	s := t.steps[0]
	if s.err != nil {
		t.steps = t.steps[1:]
		return 0, s.err
	}
	n := copy(p, s.data)
	if n < len(s.data) {
		t.steps[0].data = s.data[n:]
	} else {
		t.steps = t.steps[1:]
	}
	return n, nil
}

func (t *scriptedTransport) SetReadDeadline(d time.Time) error {
	t.mu.Lock()
	t.deadline = d
	t.mu.Unlock()
	return nil
}

func (t *scriptedTransport) BrokenAfterTimeout() bool { return t.broken }

func (t *scriptedTransport) Close() error {
	t.closed = true
	return nil
}

// blockingTransport parks every read until released, honoring deadline
// updates mid-read the way a net.Conn does.
type blockingTransport struct {
	mu       sync.Mutex
	deadline time.Time
	changed  chan struct{}
	release  chan []byte
	broken   bool
}

func newBlockingTransport() *blockingTransport {
	return &blockingTransport{
		changed: make(chan struct{}),
		release: make(chan []byte, 8),
	}
}

func (t *blockingTransport) Read(p []byte) (int, error) {
	for {
		t.mu.Lock()
		deadline := t.deadline
		changed := t.changed
		t.mu.Unlock()

		var timer *time.Timer
		var expire <-chan time.Time
		if !deadline.IsZero() {
			d := time.Until(deadline)
			if d <= 0 {
				return 0, os.ErrDeadlineExceeded
			}
			timer = time.NewTimer(d)
			expire = timer.C
		}
		select {
		case data, ok := <-t.release:
			if timer != nil {
				timer.Stop()
			}
			if !ok {
				return 0, nil
			}
			return copy(p, data), nil
		case <-expire:
			return 0, os.ErrDeadlineExceeded
		case <-changed:
			if timer != nil {
				timer.Stop()
			}
			// re-evaluate the new deadline
		}
	}
}

func (t *blockingTransport) SetReadDeadline(d time.Time) error {
	t.mu.Lock()
	t.deadline = d
	close(t.changed)
	t.changed = make(chan struct{})
	t.mu.Unlock()
	return nil
}

func (t *blockingTransport) BrokenAfterTimeout() bool { return t.broken }

func (t *blockingTransport) Close() error { return nil }

// mockConn records the collaborator side of the cancellation protocol.
type mockConn struct {
	attemptEnabled bool
	performOK      bool
	grace          time.Duration
	userCancel     bool

	performed  int
	broken     bool
	fatalCause error
}

func (c *mockConn) AttemptCancellationEnabled() bool { return c.attemptEnabled }

func (c *mockConn) CancellationPerformed() bool { return c.performed > 0 && c.performOK }

func (c *mockConn) PerformCancellation() bool {
	c.performed++
	return c.performOK
}

func (c *mockConn) CancellationGracePeriod() time.Duration { return c.grace }

func (c *mockConn) UserRequestedCancellation() bool { return c.userCancel }

func (c *mockConn) FatalBreak(err error) error {
	c.broken = true
	c.fatalCause = err
	return err
}

type countingMetrics struct {
	bytes int
}

func (m *countingMetrics) ReportBytesRead(n int) { m.bytes += n }

// chunked builds a transport streaming total bytes of a repeating
// pattern in fixed-size chunks.
func chunked(total, chunk int) (*scriptedTransport, []byte) {
	src := make([]byte, total)
	for i := range src {
		src[i] = byte(i % 251)
	}
	t := &scriptedTransport{}
	for off := 0; off < total; off += chunk {
		end := off + chunk
		if end > total {
			end = total
		}
		t.steps = append(t.steps, scriptStep{data: src[off:end]})
	}
	return t, src
}
