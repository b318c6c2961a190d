package connectors

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiterSpacesCalls(t *testing.T) {
	limiter := NewRateLimiter(20)
	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.WaitTurn(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("three calls at 20 rps took %s, want >= 100ms spacing", elapsed)
	}
}

func TestRateLimiterDefaultsToOnePerSecond(t *testing.T) {
	if got := NewRateLimiter(0).interval; got != time.Second {
		t.Fatalf("interval=%s", got)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	limiter := NewRateLimiter(1)
	if err := limiter.WaitTurn(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.WaitTurn(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v", err)
	}
}
