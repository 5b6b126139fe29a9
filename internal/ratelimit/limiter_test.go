package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestLimiter(windowSec, max int) (*Limiter, *time.Time) {
	logger := logrus.NewEntry(logrus.New())
	l := New(nil, windowSec, max, logger)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowWithinBudget(t *testing.T) {
	l, _ := newTestLimiter(60, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res := l.Allow(ctx, "user:1")
		if !res.Allowed {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}

	res := l.Allow(ctx, "user:1")
	if res.Allowed {
		t.Error("Fourth request should be rejected")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("Expected positive RetryAfter, got %d", res.RetryAfter)
	}
}

func TestWindowRollover(t *testing.T) {
	l, now := newTestLimiter(60, 1)
	ctx := context.Background()

	if res := l.Allow(ctx, "user:1"); !res.Allowed {
		t.Fatal("First request should be allowed")
	}
	if res := l.Allow(ctx, "user:1"); res.Allowed {
		t.Fatal("Second request in window should be rejected")
	}

	*now = now.Add(61 * time.Second)

	if res := l.Allow(ctx, "user:1"); !res.Allowed {
		t.Error("Request after window rollover should be allowed")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(60, 1)
	ctx := context.Background()

	if res := l.Allow(ctx, "user:1"); !res.Allowed {
		t.Fatal("user:1 should be allowed")
	}
	if res := l.Allow(ctx, "user:2"); !res.Allowed {
		t.Error("user:2 budget must be independent of user:1")
	}
}

func TestRemainingCountsDown(t *testing.T) {
	l, _ := newTestLimiter(60, 3)
	ctx := context.Background()

	want := []int{2, 1, 0}
	for i, w := range want {
		res := l.Allow(ctx, "user:1")
		if res.Remaining != w {
			t.Errorf("Request %d: expected remaining %d, got %d", i+1, w, res.Remaining)
		}
	}
}
