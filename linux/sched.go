package linux

import (
	"time"

	"github.com/rigado/bthost"
)

// scheduler arms wall clock timers whose expiry is posted to the stack
// loop.
type scheduler struct {
	post func(func()) bool
}

// timer is only touched on the loop, apart from the underlying
// time.Timer.
type timer struct {
	t    *time.Timer
	done bool
}

func (s scheduler) AfterFunc(d time.Duration, f func()) bthost.Timer {
	tm := &timer{}
	tm.t = time.AfterFunc(d, func() {
		s.post(func() {
			if tm.done {
				return
			}
			tm.done = true
			f()
		})
	})
	return tm
}

// Stop keeps f from running even when expiry was already posted.
func (t *timer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.t.Stop()
	return true
}
