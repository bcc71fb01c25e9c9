package ai

import (
	"context"
	"testing"
	"time"

	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
)

func TestTokenBucketLimiter_Allow(t *testing.T) {
	// 60 req/min, burst=2
	limiter := NewTokenBucketLimiter("openai", 60, 2)

	// First two should be allowed (burst)
	if !limiter.Allow() {
		t.Error("First request should be allowed")
	}
	if !limiter.Allow() {
		t.Error("Second request should be allowed")
	}

	// Third should be denied (bucket empty)
	if limiter.Allow() {
		t.Error("Third request should be denied")
	}
}

func TestTokenBucketLimiter_ContextCancellation(t *testing.T) {
	limiter := NewTokenBucketLimiter("openai", 6, 1) // 6 req/min = 0.1 req/sec

	// Consume the burst
	_ = limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	if err == nil {
		t.Error("Expected error due to context cancellation")
	}

	if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context error, got: %v", err)
	}
}

func TestTokenBucketLimiter_Limit(t *testing.T) {
	limiter := NewTokenBucketLimiter("openai", 120, 10)
	if got := limiter.Limit(); got != 120 {
		t.Errorf("Expected limit 120, got %f", got)
	}
}

func TestNoOpLimiter(t *testing.T) {
	limiter := NewNoOpLimiter()

	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("NoOpLimiter should never fail: %v", err)
		}
		if !limiter.Allow() {
			t.Fatal("NoOpLimiter should always allow")
		}
	}

	if limiter.Limit() != -1 {
		t.Errorf("Expected limit -1, got %f", limiter.Limit())
	}
}
