package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Result reports one admission decision
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter int // seconds until the window resets; 0 when allowed
}

// Limiter enforces a fixed-window request budget per caller key. The
// counter lives in Redis so the budget holds across replicas; when
// Redis is unavailable the limiter degrades to an in-process window
// rather than failing the request.
type Limiter struct {
	rdb    *redis.Client
	logger *logrus.Entry
	window time.Duration
	max    int
	now    func() time.Time

	mu    sync.Mutex
	local map[string]*localWindow
}

type localWindow struct {
	count   int
	resetAt time.Time
}

// New creates a limiter. rdb may be nil, in which case only the
// in-process fallback is used.
func New(rdb *redis.Client, windowSec, max int, logger *logrus.Entry) *Limiter {
	return &Limiter{
		rdb:    rdb,
		logger: logger.WithField("component", "rate-limiter"),
		window: time.Duration(windowSec) * time.Second,
		max:    max,
		now:    time.Now,
		local:  make(map[string]*localWindow),
	}
}

// Allow admits or rejects one request for key
func (l *Limiter) Allow(ctx context.Context, key string) Result {
	if l.rdb != nil {
		res, err := l.allowRedis(ctx, key)
		if err == nil {
			return res
		}
		l.logger.WithError(err).Warn("redis counter failed, falling back to in-process window")
	}
	return l.allowLocal(key)
}

func (l *Limiter) allowRedis(ctx context.Context, key string) (Result, error) {
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, l.now().Unix()/int64(l.window.Seconds()))

	count, err := l.rdb.Incr(ctx, windowKey).Result()
	if err != nil {
		return Result{}, err
	}
	if count == 1 {
		// First hit in the window owns the expiry
		if err := l.rdb.Expire(ctx, windowKey, l.window).Err(); err != nil {
			return Result{}, err
		}
	}

	if count > int64(l.max) {
		ttl, err := l.rdb.TTL(ctx, windowKey).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return Result{Allowed: false, RetryAfter: int(ttl.Seconds()) + 1}, nil
	}

	return Result{Allowed: true, Remaining: l.max - int(count)}, nil
}

func (l *Limiter) allowLocal(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.local[key]
	if !ok || now.After(w.resetAt) {
		w = &localWindow{resetAt: now.Add(l.window)}
		l.local[key] = w
	}

	w.count++
	if w.count > l.max {
		return Result{Allowed: false, RetryAfter: int(w.resetAt.Sub(now).Seconds()) + 1}
	}
	return Result{Allowed: true, Remaining: l.max - w.count}
}
