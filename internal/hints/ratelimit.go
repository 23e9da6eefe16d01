package hints

import (
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between accepted advice calls for
// the same conversation. Rejection is normal control flow, not an error; the
// caller reuses its last known result or tells the user to wait.
type RateLimiter struct {
	mu       sync.Mutex
	last     map[string]time.Time
	interval time.Duration
	sweepAt  int
	sweepAge time.Duration
	now      func() time.Time
}

const (
	defaultRateInterval = 10 * time.Second
	defaultSweepAt      = 500
	defaultSweepAge     = 60 * time.Second
)

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		last:     make(map[string]time.Time),
		interval: defaultRateInterval,
		sweepAt:  defaultSweepAt,
		sweepAge: defaultSweepAge,
		now:      time.Now,
	}
}

// Allow reports whether a call for the key may proceed now, recording the
// attempt time when it does.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if last, ok := r.last[key]; ok && now.Sub(last) < r.interval {
		return false
	}
	r.last[key] = now
	if len(r.last) > r.sweepAt {
		for k, ts := range r.last {
			if now.Sub(ts) > r.sweepAge {
				delete(r.last, k)
			}
		}
	}
	return true
}

func (r *RateLimiter) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = make(map[string]time.Time)
}
