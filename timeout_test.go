package rdbuf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutControllerLifecycle(t *testing.T) {
	tc := newTimeoutController()
	assert.False(t, tc.Armed())
	assert.False(t, tc.Fired())

	tc.Start(time.Hour)
	assert.True(t, tc.Armed())

	tc.Stop()
	assert.False(t, tc.Armed())
	assert.False(t, tc.Fired())

	// restartable after a full stop
	tc.Start(time.Hour)
	tc.Restart(time.Hour)
	assert.True(t, tc.Armed())
	tc.Reset()
	assert.False(t, tc.Armed())
}

func TestTimeoutControllerFires(t *testing.T) {
	tc := newTimeoutController()
	tc.Start(10 * time.Millisecond)

	select {
	case <-tc.Expired():
	case <-time.After(time.Second):
		t.Fatalf("countdown never fired")
	}
	assert.True(t, tc.Fired())
	assert.False(t, tc.Armed())

	// a fired controller can be re-armed for a grace period
	tc.Restart(time.Hour)
	assert.True(t, tc.Armed())
	assert.False(t, tc.Fired())
	tc.Stop()
}

func TestTimeoutControllerStopPreventsFiring(t *testing.T) {
	tc := newTimeoutController()
	tc.Start(30 * time.Millisecond)
	expired := tc.Expired()
	tc.Stop()

	select {
	case <-expired:
		t.Fatalf("stopped countdown fired anyway")
	case <-time.After(80 * time.Millisecond):
	}
	assert.False(t, tc.Fired())
}

func TestTimeoutControllerDoubleArmPanics(t *testing.T) {
	tc := newTimeoutController()
	tc.Start(time.Hour)
	defer tc.Stop()

	assert.Panics(t, func() { tc.Start(time.Hour) })
}

func TestTimeoutControllerRestartIdlePanics(t *testing.T) {
	tc := newTimeoutController()
	assert.Panics(t, func() { tc.Restart(time.Hour) })
}
