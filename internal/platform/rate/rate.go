// Package rate provides a token bucket rate limiter for controlling request rates.
package rate

import (
	"context"
	"sync"
	"time"
)

// Limiter implements a token bucket rate limiter that controls the rate of operations.
// It supports both blocking (Wait) and non-blocking (Allow) modes.
type Limiter struct {
	rate   float64 // tokens per second
	burst  int     // maximum burst size (bucket capacity)
	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// New creates a new rate limiter with the specified rate (requests per second)
// and burst size.
func New(rate float64, burst int) *Limiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		rate:   rate,
		burst:  burst,
		tokens: float64(burst), // start with full bucket
		last:   time.Now(),
	}
}

// Wait blocks until the limiter allows an operation to proceed or the context is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		if l.Allow() {
			return nil
		}

		waitTime := l.waitDuration()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// Allow reports whether an operation can proceed immediately.
// It consumes one token from the bucket if available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advance(time.Now())

	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// advance refills tokens based on elapsed time. Caller must hold l.mu.
func (l *Limiter) advance(now time.Time) {
	elapsed := now.Sub(l.last).Seconds()
	l.last = now

	l.tokens += elapsed * l.rate
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}
}

// waitDuration estimates how long until the next token is available.
func (l *Limiter) waitDuration() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.advance(time.Now())

	if l.tokens >= 1 {
		return 0
	}
	missing := 1 - l.tokens
	return time.Duration(missing / l.rate * float64(time.Second))
}
