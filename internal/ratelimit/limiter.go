package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AttemptCounter is the authoritative source for windowed attempt counts,
// served by the Postgres store.
type AttemptCounter interface {
	CountBidAttempts(ctx context.Context, userID, ip string, since time.Time) (int, error)
	CountFailedLogins(ctx context.Context, email, ip string, since time.Time) (int, error)
}

type WindowConfig struct {
	Max      int           // attempts allowed inside the window
	Window   time.Duration // trailing window length
	CacheTTL time.Duration // counter staleness bound
}

// Limiter throttles bid and login attempts per actor+origin pair. Counters
// are served cache-aside from Redis with a short TTL and recomputed from the
// attempt tables on a miss; staleness never exceeds the TTL. Allow calls are
// read-only: recording attempts stays with the caller, exactly once per real
// attempt.
type Limiter struct {
	rdc    *redis.Client
	counts AttemptCounter
	bids   WindowConfig
	logins WindowConfig
	now    func() time.Time
}

func NewLimiter(rdc *redis.Client, counts AttemptCounter, bids, logins WindowConfig) *Limiter {
	return &Limiter{
		rdc:    rdc,
		counts: counts,
		bids:   bids,
		logins: logins,
		now:    time.Now,
	}
}

// AllowBid reports whether another bid attempt from the actor+origin pair is
// permitted. actorKey is empty for anonymous requests, which throttles the
// origin as a whole.
func (l *Limiter) AllowBid(ctx context.Context, actorKey, originKey string) (bool, error) {
	actor := actorKey
	if actor == "" {
		actor = "anonymous"
	}
	key := fmt.Sprintf("bid_attempts:%s:%s", actor, originKey)
	n, err := l.cachedCount(ctx, key, l.bids.CacheTTL, func(since time.Time) (int, error) {
		return l.counts.CountBidAttempts(ctx, actorKey, originKey, since)
	}, l.bids.Window)
	if err != nil {
		return true, err // fail open, throttle is best-effort
	}
	return n < l.bids.Max, nil
}

// AllowLogin throttles on failed logins only, keyed by email+origin.
func (l *Limiter) AllowLogin(ctx context.Context, email, originKey string) (bool, error) {
	key := fmt.Sprintf("login_attempts:%s:%s", email, originKey)
	n, err := l.cachedCount(ctx, key, l.logins.CacheTTL, func(since time.Time) (int, error) {
		return l.counts.CountFailedLogins(ctx, email, originKey, since)
	}, l.logins.Window)
	if err != nil {
		return true, err
	}
	return n < l.logins.Max, nil
}

// cachedCount is the cache-aside read: Redis first, authoritative count on a
// miss, write-back with the TTL as the documented staleness bound.
func (l *Limiter) cachedCount(ctx context.Context, key string, ttl time.Duration,
	count func(since time.Time) (int, error), window time.Duration) (int, error) {

	val, err := l.rdc.Get(ctx, key).Result()
	if err == nil {
		if n, convErr := strconv.Atoi(val); convErr == nil {
			return n, nil
		}
	} else if err != redis.Nil {
		zap.L().Warn("ratelimit.cache_get", zap.String("key", key), zap.Error(err))
	}

	n, err := count(l.now().Add(-window))
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}

	if err := l.rdc.Set(ctx, key, n, ttl).Err(); err != nil {
		zap.L().Warn("ratelimit.cache_set", zap.String("key", key), zap.Error(err))
	}
	return n, nil
}
