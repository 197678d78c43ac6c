package clients

import (
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRatePerMinute = 20
	defaultBurst         = 5
	limiterIdleTTL       = 10 * time.Minute
)

// RateLimiter keeps one token bucket per caller key (IP or Discord user).
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	r        rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows rpm requests per minute with the given burst. rpm <= 0
// disables limiting.
func NewRateLimiter(rpm, burst int) *RateLimiter {
	if burst <= 0 {
		burst = defaultBurst
	}
	r := rate.Limit(0)
	if rpm > 0 {
		r = rate.Limit(float64(rpm) / 60.0)
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		r:        r,
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Enabled() bool {
	return rl.r > 0
}

func (rl *RateLimiter) Allow(key string) bool {
	if !rl.Enabled() {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.r, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	if !entry.limiter.AllowN(now, 1) {
		log.Printf("⚠️ Rate limited %s", key)
		return false
	}
	return true
}

func (rl *RateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-limiterIdleTTL)
	for key, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}
