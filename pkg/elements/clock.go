package elements

import "time"

// Clock is the time source timer elements read once per update.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

var timerClock Clock = wallClock{}

// SetClock makes every timer read time from c until the next call, and
// returns the clock it replaced. Passing nil goes back to wall time.
func SetClock(c Clock) (prev Clock) {
	prev = timerClock
	if c == nil {
		c = wallClock{}
	}
	timerClock = c
	return prev
}

// Now is the time timers currently see.
func Now() time.Time { return timerClock.Now() }

// advance reports whether a full interval has passed since start by now.
// When it has, next is start moved forward by every whole interval
// elapsed, so a timer that missed several periods fires once.
func advance(start, now time.Time, interval time.Duration) (next time.Time, due bool) {
	if interval <= 0 {
		return start, false
	}
	elapsed := now.Sub(start)
	if elapsed < interval {
		return start, false
	}
	return start.Add(elapsed / interval * interval), true
}
