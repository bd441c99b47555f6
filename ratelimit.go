package main

import (
	"sync"
	"time"
)

// Default call budget. Notion's published ceiling is 3 requests/second;
// 2.5 leaves headroom for clock and timer slack.
const defaultCallsPerSecond = 2.5

// RateLimiter throttles API calls to a maximum rate, globally across all
// goroutines sharing the instance.
type RateLimiter struct {
	mu        sync.Mutex
	interval  time.Duration
	lastGrant time.Time
}

// NewRateLimiter creates a limiter allowing callsPerSecond acquisitions.
func NewRateLimiter(callsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		interval: time.Duration(float64(time.Second) / callsPerSecond),
	}
}

// Acquire blocks until a request slot is available. Safe for arbitrary
// concurrent callers: no two acquisitions are granted less than the
// configured interval apart, and waiting callers are serialized on the
// lock so none starves.
func (rl *RateLimiter) Acquire() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	wait := rl.interval - time.Since(rl.lastGrant)
	if wait > 0 {
		time.Sleep(wait)
	}
	rl.lastGrant = time.Now()
}
