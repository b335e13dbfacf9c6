//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/gatekeep/gatekeep/internal/testutil"
)

func TestIntegrationRateLimit_LoginWindow(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	// Login policy: 5 attempts per window.
	const limit = 5

	for i := 1; i <= limit; i++ {
		res, err := c.CheckRateLimit(ctx, "login", "1.2.3.4", limit, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit failed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("attempt %d should be allowed", i)
		}
		if res.Remaining != int64(limit-i) {
			t.Errorf("attempt %d: remaining = %d, want %d", i, res.Remaining, limit-i)
		}
	}

	res, err := c.CheckRateLimit(ctx, "login", "1.2.3.4", limit, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if res.Allowed {
		t.Error("6th attempt within the window should be blocked")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("blocked result should carry RetryAfter, got %s", res.RetryAfter)
	}
}

func TestIntegrationRateLimit_SignupWindow(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	// Signup policy: 3 attempts per window.
	const limit = 3

	for i := 1; i <= limit; i++ {
		res, err := c.CheckRateLimit(ctx, "signup", "1.2.3.4", limit, 15*time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit failed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}

	res, err := c.CheckRateLimit(ctx, "signup", "1.2.3.4", limit, 15*time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if res.Allowed {
		t.Error("4th attempt within the window should be blocked")
	}
}

func TestIntegrationRateLimit_WindowReset(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	const limit = 2
	window := 300 * time.Millisecond

	for i := 0; i < limit; i++ {
		if _, err := c.CheckRateLimit(ctx, "login", "5.6.7.8", limit, window); err != nil {
			t.Fatalf("CheckRateLimit failed: %v", err)
		}
	}

	res, err := c.CheckRateLimit(ctx, "login", "5.6.7.8", limit, window)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if res.Allowed {
		t.Fatal("attempt over the limit should be blocked")
	}

	time.Sleep(window + 100*time.Millisecond)

	res, err = c.CheckRateLimit(ctx, "login", "5.6.7.8", limit, window)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if !res.Allowed {
		t.Error("attempts should resume after the window elapses")
	}
}

func TestIntegrationRateLimit_PerClientPerOperation(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	const limit = 1

	// Exhaust the login limit for one client.
	if _, err := c.CheckRateLimit(ctx, "login", "1.2.3.4", limit, time.Minute); err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	res, _ := c.CheckRateLimit(ctx, "login", "1.2.3.4", limit, time.Minute)
	if res.Allowed {
		t.Fatal("client should be blocked on login")
	}

	// A different client is unaffected.
	res, err := c.CheckRateLimit(ctx, "login", "9.9.9.9", limit, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if !res.Allowed {
		t.Error("other clients should not share the counter")
	}

	// The same client is unaffected on a different operation.
	res, err = c.CheckRateLimit(ctx, "signup", "1.2.3.4", limit, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if !res.Allowed {
		t.Error("operations should not share the counter")
	}
}

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}
