// Package ratelimit provides a fixed-window request limiter with a redis
// backed implementation and an in-memory fallback.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed    bool
	Count      int
	RetryAfter time.Duration
}

// Limiter counts requests per key over a fixed window.
type Limiter interface {
	Allow(key string, limit int, window time.Duration) Decision
	Close()
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

// sweepInterval bounds how often the memory limiter scans for dead windows.
const sweepInterval = time.Minute

type memoryLimiter struct {
	mu        sync.Mutex
	windows   map[string]*memoryWindow
	lastSweep time.Time
}

// NewMemoryLimiter constructs an in-process limiter. Counts are lost on
// restart, which is acceptable for the single-instance fallback case.
func NewMemoryLimiter() Limiter {
	return &memoryLimiter{
		windows:   make(map[string]*memoryWindow),
		lastSweep: time.Now(),
	}
}

func (l *memoryLimiter) Allow(key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		l.windows[key] = w
	}

	w.count++

	return Decision{
		Allowed:    w.count <= limit,
		Count:      w.count,
		RetryAfter: time.Until(w.resetAt),
	}
}

// sweep drops windows past their reset time so the map stays proportional to
// the set of currently active clients. Callers hold l.mu.
func (l *memoryLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.lastSweep = now
}

func (l *memoryLimiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*memoryWindow)
}
