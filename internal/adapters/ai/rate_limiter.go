package ai

import (
	"context"
	"sync"
	"time"

	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

// RateLimiter defines the interface for rate limiting capability requests.
type RateLimiter interface {
	// Wait blocks until request can proceed or context is cancelled.
	Wait(ctx context.Context) error

	// Allow checks if request can proceed without blocking.
	Allow() bool

	// Limit returns current rate limit (requests per minute).
	Limit() float64
}

// TokenBucketLimiter implements token bucket rate limiting algorithm.
// Thread-safe and efficient for high-concurrency scenarios.
type TokenBucketLimiter struct {
	rate       float64    // Requests per second
	burst      int        // Maximum burst size
	tokens     float64    // Current available tokens
	lastUpdate time.Time  // Last token refill time
	mu         sync.Mutex // Protects tokens and lastUpdate
	provider   string     // Provider name for logging
}

// NewTokenBucketLimiter creates a new token bucket rate limiter.
// reqPerMinute: maximum requests per minute
// burst: maximum burst size (typically 10-20% of rate)
func NewTokenBucketLimiter(provider string, reqPerMinute float64, burst int) *TokenBucketLimiter {
	if burst <= 0 {
		burst = int(reqPerMinute / 10)
		if burst < 1 {
			burst = 1
		}
	}

	return &TokenBucketLimiter{
		rate:       reqPerMinute / 60.0,
		burst:      burst,
		tokens:     float64(burst),
		lastUpdate: time.Now(),
		provider:   provider,
	}
}

// Wait blocks until a token is available or context is cancelled.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	for {
		if l.Allow() {
			return nil
		}

		l.mu.Lock()
		waitTime := time.Duration(float64(time.Second) / l.rate)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "rate limiter wait cancelled for provider %s", l.provider)
		case <-time.After(waitTime):
		}
	}
}

// Allow checks if a request can proceed and consumes a token if available.
func (l *TokenBucketLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Refill tokens based on elapsed time
	now := time.Now()
	elapsed := now.Sub(l.lastUpdate).Seconds()
	l.tokens += elapsed * l.rate

	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}

	l.lastUpdate = now

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true
	}

	return false
}

// Limit returns the current rate limit in requests per minute.
func (l *TokenBucketLimiter) Limit() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rate * 60.0
}

// NoOpLimiter is a rate limiter that never blocks (for testing or disabled rate limiting).
type NoOpLimiter struct{}

// NewNoOpLimiter creates a no-op rate limiter.
func NewNoOpLimiter() *NoOpLimiter {
	return &NoOpLimiter{}
}

// Wait always returns immediately without error.
func (l *NoOpLimiter) Wait(ctx context.Context) error {
	return nil
}

// Allow always returns true.
func (l *NoOpLimiter) Allow() bool {
	return true
}

// Limit returns -1 to indicate unlimited.
func (l *NoOpLimiter) Limit() float64 {
	return -1
}
