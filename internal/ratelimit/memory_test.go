package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	for i := 0; i < 2; i++ {
		result, err := limiter.Allow(ctx, "u:1", 2, now)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
	}

	result, err := limiter.Allow(ctx, "u:1", 2, now)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if result.Allowed {
		t.Fatalf("expected third request in the same second to be rejected")
	}
	if result.Remaining != 0 {
		t.Fatalf("expected remaining=0, got %d", result.Remaining)
	}

	// The next second opens a fresh window.
	result, err = limiter.Allow(ctx, "u:1", 2, now.Add(time.Second))
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !result.Allowed {
		t.Fatalf("expected request in next window to be allowed")
	}
}

func TestMemoryLimiter_ZeroLimitMeansUnlimited(t *testing.T) {
	limiter := NewMemoryLimiter()
	for i := 0; i < 10; i++ {
		result, err := limiter.Allow(context.Background(), "u:1", 0, time.Now())
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !result.Allowed {
			t.Fatalf("zero limit must allow everything")
		}
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Unix(1700000000, 0)

	if result, _ := limiter.Allow(context.Background(), "u:1", 1, now); !result.Allowed {
		t.Fatalf("expected first key to be allowed")
	}
	if result, _ := limiter.Allow(context.Background(), "u:1", 1, now); result.Allowed {
		t.Fatalf("expected first key to be limited")
	}
	if result, _ := limiter.Allow(context.Background(), "u:2", 1, now); !result.Allowed {
		t.Fatalf("expected second key to be unaffected")
	}
}

func TestKeyForUser(t *testing.T) {
	if got := KeyForUser(7); got != "u:7" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := KeyForUser(0); got != "" {
		t.Fatalf("expected empty key for zero user, got %q", got)
	}
}
