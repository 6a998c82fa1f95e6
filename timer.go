package bthost

import "time"

// Timer is a one-shot timer. Stop reports whether the timer was pending;
// a stopped timer never runs its callback.
type Timer interface {
	Stop() bool
}

// Scheduler arms timers whose callbacks run on the stack's serial context.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}
