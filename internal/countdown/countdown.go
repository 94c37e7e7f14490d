// Package countdown turns an auction end timestamp into a displayable
// breakdown and drives the end-of-auction callback.
package countdown

import (
	"context"
	"sync"
	"time"
)

// Remaining is the countdown breakdown for an end timestamp.
type Remaining struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	IsEnded bool `json:"is_ended"`
}

// Until computes the breakdown of end relative to now by integer division
// of the millisecond delta. A past or present end yields the zero
// breakdown with IsEnded set.
func Until(end, now time.Time) Remaining {
	ms := end.Sub(now).Milliseconds()
	if ms <= 0 {
		return Remaining{IsEnded: true}
	}

	return Remaining{
		Days:    int(ms / (1000 * 60 * 60 * 24)),
		Hours:   int(ms / (1000 * 60 * 60) % 24),
		Minutes: int(ms / (1000 * 60) % 60),
		Seconds: int(ms / 1000 % 60),
	}
}

// Countdown recomputes the breakdown on a fixed interval and invokes the
// supplied callback exactly once when the countdown first reaches zero.
// It holds no state beyond the last computed breakdown.
type Countdown struct {
	end      time.Time
	interval time.Duration
	onEnd    func()
	now      func() time.Time

	once sync.Once

	mu   sync.Mutex
	last Remaining
}

// New creates a countdown toward end ticking every interval. onEnd may be
// nil. An interval of zero defaults to one second.
func New(end time.Time, interval time.Duration, onEnd func()) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		end:      end,
		interval: interval,
		onEnd:    onEnd,
		now:      time.Now,
	}
}

// Run ticks until the countdown ends or ctx is cancelled. The end callback
// fires at most once even across repeated Run calls.
func (c *Countdown) Run(ctx context.Context) {
	if c.tick() {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.tick() {
				return
			}
		}
	}
}

// Snapshot returns the last computed breakdown.
func (c *Countdown) Snapshot() Remaining {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// tick recomputes the breakdown and reports whether the countdown ended.
func (c *Countdown) tick() bool {
	r := Until(c.end, c.now())

	c.mu.Lock()
	c.last = r
	c.mu.Unlock()

	if r.IsEnded {
		c.once.Do(func() {
			if c.onEnd != nil {
				c.onEnd()
			}
		})
		return true
	}
	return false
}
