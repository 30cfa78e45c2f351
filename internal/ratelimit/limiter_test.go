package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	bidCount   int
	loginCount int
	err        error
	gotSince   time.Time
	gotUser    string
	gotIP      string
}

func (s *stubCounter) CountBidAttempts(_ context.Context, userID, ip string, since time.Time) (int, error) {
	s.gotUser, s.gotIP, s.gotSince = userID, ip, since
	return s.bidCount, s.err
}

func (s *stubCounter) CountFailedLogins(_ context.Context, email, ip string, since time.Time) (int, error) {
	s.gotUser, s.gotIP, s.gotSince = email, ip, since
	return s.loginCount, s.err
}

func newLimiterWithMock(counter *stubCounter) (*Limiter, redismock.ClientMock, time.Time) {
	rdc, mock := redismock.NewClientMock()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(rdc, counter,
		WindowConfig{Max: 10, Window: 60 * time.Second, CacheTTL: 30 * time.Second},
		WindowConfig{Max: 5, Window: 15 * time.Minute, CacheTTL: 60 * time.Second},
	)
	l.now = func() time.Time { return now }
	return l, mock, now
}

func TestAllowBid_CacheHitBelowLimit(t *testing.T) {
	l, mock, _ := newLimiterWithMock(&stubCounter{})

	mock.ExpectGet("bid_attempts:u1:1.2.3.4").SetVal("9")

	ok, err := l.AllowBid(context.Background(), "u1", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllowBid_CacheHitAtLimit(t *testing.T) {
	l, mock, _ := newLimiterWithMock(&stubCounter{})

	mock.ExpectGet("bid_attempts:u1:1.2.3.4").SetVal("10")

	ok, err := l.AllowBid(context.Background(), "u1", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
}

// Miss path: the authoritative count is read over the trailing window and
// written back with the configured TTL.
func TestAllowBid_CacheMissCountsAndWritesBack(t *testing.T) {
	counter := &stubCounter{bidCount: 4}
	l, mock, now := newLimiterWithMock(counter)

	mock.ExpectGet("bid_attempts:u1:1.2.3.4").RedisNil()
	mock.ExpectSet("bid_attempts:u1:1.2.3.4", 4, 30*time.Second).SetVal("OK")

	ok, err := l.AllowBid(context.Background(), "u1", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "u1", counter.gotUser)
	assert.Equal(t, "1.2.3.4", counter.gotIP)
	assert.Equal(t, now.Add(-60*time.Second), counter.gotSince)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllowBid_AnonymousActorKeyedByOrigin(t *testing.T) {
	counter := &stubCounter{bidCount: 2}
	l, mock, _ := newLimiterWithMock(counter)

	mock.ExpectGet("bid_attempts:anonymous:1.2.3.4").RedisNil()
	mock.ExpectSet("bid_attempts:anonymous:1.2.3.4", 2, 30*time.Second).SetVal("OK")

	ok, err := l.AllowBid(context.Background(), "", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "", counter.gotUser)
}

// Redis being down degrades to the authoritative count; the store failing
// too fails open.
func TestAllowBid_FailureModes(t *testing.T) {
	t.Run("cache down, store up", func(t *testing.T) {
		counter := &stubCounter{bidCount: 12}
		l, mock, _ := newLimiterWithMock(counter)

		mock.ExpectGet("bid_attempts:u1:1.2.3.4").SetErr(errors.New("connection refused"))
		mock.ExpectSet("bid_attempts:u1:1.2.3.4", 12, 30*time.Second).SetVal("OK")

		ok, err := l.AllowBid(context.Background(), "u1", "1.2.3.4")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("store down", func(t *testing.T) {
		counter := &stubCounter{err: errors.New("pg down")}
		l, mock, _ := newLimiterWithMock(counter)

		mock.ExpectGet("bid_attempts:u1:1.2.3.4").RedisNil()

		ok, err := l.AllowBid(context.Background(), "u1", "1.2.3.4")
		require.Error(t, err)
		assert.True(t, ok)
	})
}

func TestAllowLogin_DeniesAtLimit(t *testing.T) {
	counter := &stubCounter{loginCount: 5}
	l, mock, now := newLimiterWithMock(counter)

	mock.ExpectGet("login_attempts:alice@example.com:1.2.3.4").RedisNil()
	mock.ExpectSet("login_attempts:alice@example.com:1.2.3.4", 5, 60*time.Second).SetVal("OK")

	ok, err := l.AllowLogin(context.Background(), "alice@example.com", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, now.Add(-15*time.Minute), counter.gotSince)
}

func TestAllowLogin_BelowLimit(t *testing.T) {
	l, mock, _ := newLimiterWithMock(&stubCounter{})

	mock.ExpectGet("login_attempts:alice@example.com:1.2.3.4").SetVal("4")

	ok, err := l.AllowLogin(context.Background(), "alice@example.com", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}
