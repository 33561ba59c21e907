package fight

import (
	"sync"
	"time"
)

// cooldownScheduler owns one cancellable timer per boss. Starting a cooldown
// replaces any previous one; clearing cancels without firing the callback.
type cooldownScheduler struct {
	mu     sync.Mutex
	timers map[string]*cooldownEntry
}

type cooldownEntry struct {
	endsAt   time.Time
	duration time.Duration
	timer    *time.Timer
}

func newCooldownScheduler() *cooldownScheduler {
	return &cooldownScheduler{timers: make(map[string]*cooldownEntry)}
}

// start arms a cooldown for the boss and returns when it ends. onElapsed runs
// once on expiry, after the scheduler has already forgotten the entry.
func (c *cooldownScheduler) start(bossID string, d time.Duration, onElapsed func(bossID string)) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev := c.timers[bossID]; prev != nil {
		prev.timer.Stop()
	}

	endsAt := time.Now().Add(d)
	c.timers[bossID] = &cooldownEntry{
		endsAt:   endsAt,
		duration: d,
		timer: time.AfterFunc(d, func() {
			c.mu.Lock()
			delete(c.timers, bossID)
			c.mu.Unlock()

			onElapsed(bossID)
		}),
	}

	return endsAt
}

// clear cancels the boss's cooldown without invoking the callback.
func (c *cooldownScheduler) clear(bossID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.timers[bossID]; e != nil {
		e.timer.Stop()
		delete(c.timers, bossID)
	}
}

func (c *cooldownScheduler) isOnCooldown(bossID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.timers[bossID]
	return e != nil && time.Now().Before(e.endsAt)
}

// remaining returns how long until the cooldown ends, along with the end
// time. Zero values mean no cooldown.
func (c *cooldownScheduler) remaining(bossID string) (time.Duration, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.timers[bossID]
	if e == nil {
		return 0, time.Time{}
	}

	r := time.Until(e.endsAt)
	if r < 0 {
		r = 0
	}
	return r, e.endsAt
}
