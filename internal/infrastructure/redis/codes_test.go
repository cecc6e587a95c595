package redisinfra

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/email-login-otp/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisForTest(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		m.Close()
	})
	return m, client
}

func TestCodeStore_SuccessThenNotFound(t *testing.T) {
	_, client := newRedisForTest(t)
	s := NewCodeStore(client, "otp_test", 5*time.Minute, time.Hour)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Put(ctx, "a@example.com", "012345", now.Add(5*time.Minute)))

	out, err := s.TakeIfValid(ctx, "a@example.com", "012345", now.Add(299*time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, out)

	out, err = s.TakeIfValid(ctx, "a@example.com", "012345", now.Add(299*time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoRecord, out)
}

func TestCodeStore_ExpiredAndMismatchConsume(t *testing.T) {
	m, client := newRedisForTest(t)
	s := NewCodeStore(client, "otp_test", 5*time.Minute, time.Hour)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Put(ctx, "a@example.com", "111111", now.Add(5*time.Minute)))
	out, err := s.TakeIfValid(ctx, "a@example.com", "111111", now.Add(301*time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeExpired, out)
	assert.False(t, m.Exists("otp_test:code:a@example.com"))

	require.NoError(t, s.Put(ctx, "a@example.com", "111111", now.Add(5*time.Minute)))
	out, err = s.TakeIfValid(ctx, "a@example.com", "999999", now)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeMismatch, out)
	assert.False(t, m.Exists("otp_test:code:a@example.com"))
}

func TestCodeStore_KeyOutlivesExpiryByRetention(t *testing.T) {
	m, client := newRedisForTest(t)
	s := NewCodeStore(client, "otp_test", 5*time.Minute, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a@example.com", "111111", time.Now().Add(5*time.Minute)))
	assert.Equal(t, 15*time.Minute, m.TTL("otp_test:code:a@example.com"))
}

func TestCodeStore_KeyTTLIgnoresWallClock(t *testing.T) {
	m, client := newRedisForTest(t)
	s := NewCodeStore(client, "otp_test", 5*time.Minute, time.Minute)
	ctx := context.Background()

	// an issuance timestamp far from the wall clock does not shrink or stretch the key
	issuedAt := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, "a@example.com", "111111", issuedAt.Add(5*time.Minute)))
	assert.Equal(t, 6*time.Minute, m.TTL("otp_test:code:a@example.com"))

	out, err := s.TakeIfValid(ctx, "a@example.com", "111111", issuedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, out)
}

func TestCodeStore_ConcurrentTakeSucceedsOnce(t *testing.T) {
	_, client := newRedisForTest(t)
	s := NewCodeStore(client, "otp_test", 5*time.Minute, time.Hour)
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, s.Put(ctx, "a@example.com", "424242", now.Add(time.Minute)))

	const n = 16
	var wg sync.WaitGroup
	results := make(chan domain.Outcome, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := s.TakeIfValid(ctx, "a@example.com", "424242", now)
			assert.NoError(t, err)
			results <- out
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	for out := range results {
		if out == domain.OutcomeSuccess {
			success++
		} else {
			assert.Equal(t, domain.OutcomeNoRecord, out)
		}
	}
	assert.Equal(t, 1, success)
}

func TestCodeStore_BackendError(t *testing.T) {
	badClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 20 * time.Millisecond, ReadTimeout: 20 * time.Millisecond, WriteTimeout: 20 * time.Millisecond})
	t.Cleanup(func() { _ = badClient.Close() })
	s := NewCodeStore(badClient, "", time.Minute, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.Error(t, s.Put(ctx, "a@example.com", "111111", time.Now().Add(time.Minute)))
	_, err := s.TakeIfValid(ctx, "a@example.com", "111111", time.Now())
	assert.Error(t, err)
}
