package ratelimit

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Policy defines a fixed-window request budget.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// Endpoint-class policies. Fixed windows reset hard at the boundary, which
// permits up to a 2x burst across a boundary; accepted trade-off for the
// simplicity of the counter.
var (
	// LoginPolicy throttles authentication attempts.
	LoginPolicy = Policy{MaxRequests: 5, Window: 15 * time.Minute}
	// MutatePolicy throttles mutating API requests.
	MutatePolicy = Policy{MaxRequests: 20, Window: time.Minute}
	// ReadPolicy throttles read-only API requests.
	ReadPolicy = Policy{MaxRequests: 100, Window: time.Minute}
)

// Result reports the outcome of a rate limit check.
type Result struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter is a per-process fixed-window counter keyed by caller identifier.
// Counters live only in memory; a multi-instance deployment multiplies the
// effective budget by the instance count (known scaling limitation).
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewLimiter constructs an empty Limiter.
func NewLimiter() *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Check counts one request against the key's current window and reports
// whether it is allowed. The first request of a new or expired window
// always passes and starts a fresh window.
func (l *Limiter) Check(key string, p Policy) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(p.Window)}
		l.entries[key] = e
		return Result{Allowed: true, Remaining: p.MaxRequests - 1, ResetTime: e.resetAt}
	}

	if e.count >= p.MaxRequests {
		return Result{
			Allowed:    false,
			Remaining:  0,
			ResetTime:  e.resetAt,
			RetryAfter: e.resetAt.Sub(now),
		}
	}

	e.count++
	return Result{Allowed: true, Remaining: p.MaxRequests - e.count, ResetTime: e.resetAt}
}

// StartSweeper launches a background loop that evicts expired entries to
// bound memory. Correctness never depends on the sweep; Check resets
// expired windows on its own.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				evicted := l.sweepOnce()
				if evicted > 0 {
					log.Debugf("ratelimit: swept %d expired entries", evicted)
				}
			}
		}
	}()
}

func (l *Limiter) sweepOnce() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for key, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, key)
			evicted++
		}
	}
	return evicted
}
