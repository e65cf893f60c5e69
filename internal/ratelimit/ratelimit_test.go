package ratelimit

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"
)

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	l := New("", "", 0, 1, time.Second)

	for i := 0; i < 10; i++ {
		if !l.Allow(context.Background(), 1) {
			t.Fatal("limiter without redis must fail open")
		}
	}
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestFixedWindowIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	pass := os.Getenv("REDIS_PASSWORD")
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	max := 2
	l := New(addr, pass, db, max, 2*time.Second)
	if l.client == nil {
		t.Fatal("expected redis-backed limiter")
	}

	ctx := context.Background()
	user := time.Now().UnixNano()

	for i := 0; i < max; i++ {
		if !l.Allow(ctx, user) {
			t.Fatalf("request %d within limit was blocked", i+1)
		}
	}
	if l.Allow(ctx, user) {
		t.Fatal("request over the limit was allowed")
	}

	// a different user has an independent window
	if !l.Allow(ctx, user+1) {
		t.Fatal("second user must not share the first user's window")
	}
}
