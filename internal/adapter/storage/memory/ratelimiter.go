package memory

import (
	"context"
	"math"
	"sync"
	"time"

	"wallet-ledger/internal/core/ports"

	"golang.org/x/time/rate"
)

// sweepInterval spaces out cleanup passes so Allow stays O(1) amortized.
const sweepInterval = time.Minute

type visitor struct {
	limiter  *rate.Limiter
	rule     ports.RateLimitRule
	lastSeen time.Time
}

// RateLimiter implements ports.RateLimiter with a token bucket per key.
// It is used when Redis is disabled and only limits the local process.
type RateLimiter struct {
	mu       sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates an empty in-process limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow takes one token from the bucket for key. A bucket holds rule.Limit
// tokens and refills at rule.Limit per rule.Window.
func (l *RateLimiter) Allow(_ context.Context, key string, rule ports.RateLimitRule) (*ports.RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}

	v, ok := l.visitors[key]
	if !ok || v.rule != rule {
		v = &visitor{limiter: rate.NewLimiter(every(rule), int(rule.Limit)), rule: rule}
		l.visitors[key] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	remaining := int64(math.Floor(v.limiter.TokensAt(now)))
	if remaining < 0 {
		remaining = 0
	}

	return &ports.RateLimitResult{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetAt:   now.Add(rule.Window).Unix(),
	}, nil
}

// sweep drops buckets idle for longer than their window; those are full again.
func (l *RateLimiter) sweep(now time.Time) {
	l.lastSweep = now
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > v.rule.Window {
			delete(l.visitors, key)
		}
	}
}

func every(rule ports.RateLimitRule) rate.Limit {
	if rule.Limit <= 0 || rule.Window <= 0 {
		return rate.Inf
	}
	return rate.Every(rule.Window / time.Duration(rule.Limit))
}
