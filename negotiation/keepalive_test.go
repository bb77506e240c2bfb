package negotiation

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeepaliveSucceedsWhenResponded(t *testing.T) {
	var sent atomic.Int32
	var failed atomic.Bool

	k := &Keepalive{
		Interval:       5 * time.Millisecond,
		ResponseBudget: 5 * time.Millisecond,
		OnFail:         func() { failed.Store(true) },
	}
	// The sink answers every keepalive, not only the first one.
	k.Send = func() {
		sent.Add(1)
		k.MarkResponded()
	}
	k.Initialize()
	defer k.Close()

	require.Eventually(t, func() bool { return sent.Load() >= 1 }, time.Second, time.Millisecond)
	k.MarkResponded()

	time.Sleep(20 * time.Millisecond)
	require.False(t, failed.Load())
}

func TestKeepaliveFailsWhenNoResponse(t *testing.T) {
	var failed atomic.Bool

	k := &Keepalive{
		Interval:       5 * time.Millisecond,
		ResponseBudget: 5 * time.Millisecond,
		Send:           func() {},
		OnFail:         func() { failed.Store(true) },
	}
	k.Initialize()
	defer k.Close()

	require.Eventually(t, func() bool { return failed.Load() }, time.Second, time.Millisecond)
}

// TestKeepaliveOnFailCanCloseItself reproduces the session-teardown shape:
// OnFail calling Close on its own Keepalive must not deadlock, since Close
// joins the very goroutine that is about to invoke OnFail.
func TestKeepaliveOnFailCanCloseItself(t *testing.T) {
	closed := make(chan struct{})
	k := &Keepalive{
		Interval:       5 * time.Millisecond,
		ResponseBudget: 5 * time.Millisecond,
		Send:           func() {},
	}
	k.OnFail = func() {
		k.Close()
		close(closed)
	}
	k.Initialize()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("OnFail-triggered Close deadlocked")
	}
}
