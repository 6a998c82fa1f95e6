// Package faketime provides a manually advanced bthost.Scheduler.
package faketime

import (
	"sort"
	"time"

	"github.com/rigado/bthost"
)

// Scheduler fires timers only when the test advances it.
type Scheduler struct {
	now    time.Duration
	seq    int
	timers []*Timer
}

// Timer is a pending callback of a Scheduler.
type Timer struct {
	s       *Scheduler
	at      time.Duration
	seq     int
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

// New returns a scheduler at time zero.
func New() *Scheduler {
	return &Scheduler{}
}

// AfterFunc implements bthost.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) bthost.Timer {
	s.seq++
	t := &Timer{s: s, at: s.now + d, seq: s.seq, d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Stop implements bthost.Timer.
func (t *Timer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Duration returns the delay the timer was armed with.
func (t *Timer) Duration() time.Duration { return t.d }

// Advance moves the clock forward by d and runs every timer due, in order.
// Timers armed by callbacks run too if they fall due within d.
func (s *Scheduler) Advance(d time.Duration) {
	end := s.now + d
	for {
		t := s.next(end)
		if t == nil {
			break
		}
		s.now = t.at
		t.fired = true
		t.f()
	}
	s.now = end
}

func (s *Scheduler) next(end time.Duration) *Timer {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.Slice(s.timers, func(i, j int) bool {
		if s.timers[i].at == s.timers[j].at {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].at < s.timers[j].at
	})
	if len(s.timers) == 0 || s.timers[0].at > end {
		return nil
	}
	return s.timers[0]
}

// Pending returns the delays of the armed timers, in firing order.
func (s *Scheduler) Pending() []time.Duration {
	s.next(-1)
	var out []time.Duration
	for _, t := range s.timers {
		out = append(out, t.d)
	}
	return out
}
