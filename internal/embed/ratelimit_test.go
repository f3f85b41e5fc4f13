package embed

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_WaitConsumesTokens(t *testing.T) {
	r := NewRateLimiter(600)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := r.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	r := NewRateLimiter(60)
	r.tokens = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := r.Wait(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestRateLimiter_DefaultRate(t *testing.T) {
	r := NewRateLimiter(0)
	if r.Rate() != 300 {
		t.Errorf("expected default 300, got %d", r.Rate())
	}
}

func TestRateLimiter_SetRate(t *testing.T) {
	r := NewRateLimiter(300)

	r.SetRate(60)
	if r.Rate() != 60 {
		t.Errorf("expected 60 after SetRate, got %d", r.Rate())
	}
	if r.tokens > 60 {
		t.Errorf("accumulated tokens should be capped at new rate, got %f", r.tokens)
	}

	// Non-positive values are ignored.
	r.SetRate(0)
	if r.Rate() != 60 {
		t.Errorf("SetRate(0) should be a no-op, got %d", r.Rate())
	}
}

func TestGenerator_SetRequestsPerMinute(t *testing.T) {
	gen, err := NewGenerator(GeneratorConfig{
		Provider:          NewMockProvider(),
		RequestsPerMinute: 300,
		RetryDelay:        time.Millisecond,
		BatchDelay:        time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}

	gen.SetRequestsPerMinute(120)
	if gen.limiter.Rate() != 120 {
		t.Errorf("expected limiter rate 120, got %d", gen.limiter.Rate())
	}
}
