package rdbuf

import (
	"sync"
	"time"
)

type timeoutState int8

const (
	timeoutIdle timeoutState = iota
	timeoutArmed
	timeoutFired
)

// TimeoutController is a resettable, restartable countdown owned by
// exactly one ReadBuffer. Arming an already armed controller is a
// programming error and panics: it means a previous fill loop exited
// without disarming.
//
// The mutex only fences the AfterFunc callback; the public methods are
// called from the single goroutine driving the buffer.
type TimeoutController struct {
	mu      sync.Mutex
	state   timeoutState
	timer   *time.Timer
	expired chan struct{}
}

func newTimeoutController() *TimeoutController {
	return &TimeoutController{}
}

// Start arms the countdown. Panics when already armed.
func (tc *TimeoutController) Start(d time.Duration) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.state == timeoutArmed {
		panic("rdbuf: timeout controller started while armed")
	}
	tc.arm(d)
}

// Restart re-arms the countdown without returning to idle, used to
// extend an in-progress wait with a cancellation grace period.
// Panics when idle.
func (tc *TimeoutController) Restart(d time.Duration) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.state == timeoutIdle {
		panic("rdbuf: timeout controller restarted while idle")
	}
	tc.disarm()
	tc.arm(d)
}

// Stop disarms without firing. Safe to call from any state so that
// every fill loop exit path can unconditionally release the countdown.
func (tc *TimeoutController) Stop() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.disarm()
	tc.state = timeoutIdle
}

// Reset returns to idle, discarding any pending arm.
func (tc *TimeoutController) Reset() {
	tc.Stop()
}

// Expired returns the channel closed when the armed countdown fires.
// Returns nil when the controller is not armed, which never selects.
func (tc *TimeoutController) Expired() <-chan struct{} {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.expired
}

// Fired reports whether the countdown elapsed before Stop.
func (tc *TimeoutController) Fired() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.state == timeoutFired
}

// Armed reports whether the countdown is running.
func (tc *TimeoutController) Armed() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.state == timeoutArmed
}

func (tc *TimeoutController) arm(d time.Duration) {
	ch := make(chan struct{})
	tc.expired = ch
	tc.state = timeoutArmed
	tc.timer = time.AfterFunc(d, func() {
		tc.mu.Lock()
		// a stale callback raced a Restart or Stop, ignore it
		if tc.state == timeoutArmed && tc.expired == ch {
			close(ch)
			tc.state = timeoutFired
		}
		tc.mu.Unlock()
	})
}

func (tc *TimeoutController) disarm() {
	if tc.timer != nil {
		tc.timer.Stop()
		tc.timer = nil
	}
	tc.expired = nil
}
