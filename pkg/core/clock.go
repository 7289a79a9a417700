package core

import "time"

// Clock provides time and timers to refresh schedulers. The default
// implementation uses system time. Tests inject a fake clock through
// WithClock to control ticking deterministically.
type Clock interface {
	Now() time.Time
	// After returns a channel that receives once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// SystemClock uses system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
