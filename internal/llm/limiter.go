package llm

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-operation rate limiting for decision-service calls
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. A non-positive rate disables
// limiting entirely (Wait returns immediately).
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the given operation
func (l *Limiter) Wait(ctx context.Context, op string) error {
	return l.getLimiter(op).Wait(ctx)
}

// Allow checks if a call is allowed without waiting
func (l *Limiter) Allow(op string) bool {
	return l.getLimiter(op).Allow()
}

// getLimiter returns the rate limiter for an operation
func (l *Limiter) getLimiter(op string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[op]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[op]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[op] = limiter

	return limiter
}
