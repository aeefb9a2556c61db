// Package cooldown holds the two per-user cooldowns of the event: the short
// in-memory draw cooldown and the persisted daily claim.
package cooldown

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/puzpuzpuz/xsync/v3"
)

// Limiter is a volatile per-user cooldown. State is lost on restart.
type Limiter struct {
	window time.Duration
	clock  clockwork.Clock
	until  *xsync.MapOf[string, time.Time]
}

func NewLimiter(window time.Duration, clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{
		window: window,
		clock:  clock,
		until:  xsync.NewMapOf[string, time.Time](),
	}
}

func (l *Limiter) Window() time.Duration {
	return l.window
}

// Reserve starts the user's cooldown if none is running. When one is, it
// reports false and the time left. Concurrent callers for the same user are
// serialised, so at most one of them wins.
func (l *Limiter) Reserve(userID string) (bool, time.Duration) {
	if l.window <= 0 {
		return true, 0
	}

	now := l.clock.Now()
	var remaining time.Duration
	l.until.Compute(userID, func(until time.Time, loaded bool) (time.Time, bool) {
		if loaded && now.Before(until) {
			remaining = until.Sub(now)
			return until, false
		}
		return now.Add(l.window), false
	})
	return remaining == 0, remaining
}

// Remaining reports the time left on the user's cooldown without touching it.
func (l *Limiter) Remaining(userID string) time.Duration {
	until, ok := l.until.Load(userID)
	if !ok {
		return 0
	}
	return max(until.Sub(l.clock.Now()), 0)
}

// Release ends the user's cooldown early.
func (l *Limiter) Release(userID string) {
	l.until.Delete(userID)
}

// Sweep drops expired entries and returns how many were removed.
func (l *Limiter) Sweep() int {
	now := l.clock.Now()
	removed := 0
	l.until.Range(func(userID string, until time.Time) bool {
		if !now.Before(until) {
			l.until.Compute(userID, func(current time.Time, loaded bool) (time.Time, bool) {
				expired := loaded && !now.Before(current)
				if expired {
					removed++
				}
				return current, expired
			})
		}
		return true
	})
	return removed
}

func (l *Limiter) Size() int {
	return l.until.Size()
}
