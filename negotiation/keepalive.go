package negotiation

import (
	"sync"
	"time"
)

// KeepaliveInterval is the default WFD timeout minus the 5s response
// budget (spec.md §4.3: "DEFAULT_WFD_TIMEOUT - 5 seconds, default 55s").
const KeepaliveInterval = 55 * time.Second

// KeepaliveResponseBudget is how long a keepalive response has to arrive
// before the session is considered dead.
const KeepaliveResponseBudget = 5 * time.Second

// Keepalive runs the M16 liveness loop: send, wait KeepaliveResponseBudget,
// then check whether a response arrived. The timers are injectable (NewTimer)
// following gortsplib's rtpsender.Sender.TimeNow testability seam.
type Keepalive struct {
	Interval        time.Duration
	ResponseBudget  time.Duration
	Send            func()
	OnFail          func()
	NewTimer        func(time.Duration) *time.Timer

	mu   sync.Mutex
	flag bool

	terminate chan struct{}
	done      chan struct{}
}

// Initialize applies defaults and starts the keepalive goroutine.
func (k *Keepalive) Initialize() {
	if k.Interval == 0 {
		k.Interval = KeepaliveInterval
	}
	if k.ResponseBudget == 0 {
		k.ResponseBudget = KeepaliveResponseBudget
	}
	if k.NewTimer == nil {
		k.NewTimer = time.NewTimer
	}
	k.terminate = make(chan struct{})
	k.done = make(chan struct{})
	go k.run()
}

// Close stops the keepalive goroutine.
func (k *Keepalive) Close() {
	close(k.terminate)
	<-k.done
}

// MarkResponded sets keepalive_flag = true; called whenever any response
// arrives from the sink, not only the keepalive's own reply (spec.md
// §4.3: "On any response, set keepalive_flag = true").
func (k *Keepalive) MarkResponded() {
	k.mu.Lock()
	k.flag = true
	k.mu.Unlock()
}

func (k *Keepalive) run() {
	defer close(k.done)

	intervalTimer := k.NewTimer(k.Interval)
	defer intervalTimer.Stop()

	for {
		select {
		case <-intervalTimer.C:
			k.mu.Lock()
			k.flag = false
			k.mu.Unlock()

			if k.Send != nil {
				k.Send()
			}

			checkTimer := k.NewTimer(k.ResponseBudget)
			select {
			case <-checkTimer.C:
				k.mu.Lock()
				ok := k.flag
				k.mu.Unlock()
				if !ok && k.OnFail != nil {
					// run() must return (and close done) before OnFail is
					// observed: OnFail commonly triggers teardown, which
					// calls Close, which joins done. Calling OnFail
					// synchronously here would self-join deadlock.
					go k.OnFail()
					return
				}
			case <-k.terminate:
				checkTimer.Stop()
				return
			}

			intervalTimer.Reset(k.Interval)

		case <-k.terminate:
			return
		}
	}
}
